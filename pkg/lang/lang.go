// Package lang maps entry language ids to the bracketed labels used in the CSV interchange format.
package lang

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bgrewell/sdt-kit/pkg/consts"
)

var (
	ErrInvalidName = errors.New("invalid language name")
	ErrDuplicateID = errors.New("duplicate language id")
)

var defaultNames = map[string]uint16{
	"ENG": 1,
	"FRE": 2,
	"GER": 3,
	"ITA": 4,
	"SPA": 5,
	"JPN": 7,
}

// Table is an immutable two-way mapping between language ids and their short names. The zero value has no names,
// every id then renders as its numeric label.
type Table struct {
	byID   map[uint16]string
	byName map[string]uint16
}

// Default returns the table of languages known to appear in SDT containers.
func Default() Table {
	t, _ := NewTable(defaultNames)
	return t
}

// NewTable builds a Table from short names (e.g. "ENG") to ids. Names may be given with or without brackets.
func NewTable(names map[string]uint16) (Table, error) {
	t := Table{
		byID:   make(map[uint16]string, len(names)),
		byName: make(map[string]uint16, len(names)),
	}
	for name, id := range names {
		n := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(name), "["), "]")
		if n == "" || strings.ContainsAny(n, "[],") {
			return Table{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if _, err := strconv.ParseUint(n, 10, 16); err == nil {
			return Table{}, fmt.Errorf("%w: %q is numeric", ErrInvalidName, name)
		}
		if prev, ok := t.byID[id]; ok {
			return Table{}, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateID, id, prev, n)
		}
		t.byID[id] = n
		t.byName[n] = id
	}
	return t, nil
}

// Merge returns a new table holding the names of t overridden by names. An id given in names replaces whatever name
// t had for it.
func (t Table) Merge(names map[string]uint16) (Table, error) {
	override, err := NewTable(names)
	if err != nil {
		return Table{}, err
	}
	merged := make(map[string]uint16, len(t.byName)+len(names))
	for name, id := range t.byName {
		if _, taken := override.byID[id]; taken {
			continue
		}
		if _, taken := override.byName[name]; taken {
			continue
		}
		merged[name] = id
	}
	for name, id := range override.byName {
		merged[name] = id
	}
	return NewTable(merged)
}

// Known reports whether id has a name in the table.
func (t Table) Known(id uint16) bool {
	_, ok := t.byID[id]
	return ok
}

// Label returns the display label for id, "[ENG]" for named ids and "[9]" otherwise.
func (t Table) Label(id uint16) string {
	if name, ok := t.byID[id]; ok {
		return "[" + name + "]"
	}
	return fmt.Sprintf("[%d]", id)
}

// ID maps a label back to an id. Named labels map to their id and bracketed numbers map to the number. Anything else
// yields the default id with ok set to false.
func (t Table) ID(label string) (id uint16, ok bool) {
	label = strings.TrimSpace(label)
	if !strings.HasPrefix(label, "[") || !strings.HasSuffix(label, "]") || len(label) < 2 {
		return consts.SDT_DEFAULT_LANG_ID, false
	}
	inner := label[1 : len(label)-1]
	if id, found := t.byName[inner]; found {
		return id, true
	}
	n, err := strconv.ParseUint(inner, 10, 16)
	if err != nil {
		return consts.SDT_DEFAULT_LANG_ID, false
	}
	return uint16(n), true
}

// IDs returns the named ids in ascending order.
func (t Table) IDs() []uint16 {
	ids := make([]uint16, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
