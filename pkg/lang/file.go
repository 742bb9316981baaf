package lang

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tableFile is the on-disk form of a language table override:
//
//	[languages]
//	ENG = 1
//	KOR = 8
type tableFile struct {
	Languages map[string]uint16 `toml:"languages"`
}

// ParseTable decodes a TOML language table and merges it over base.
func ParseTable(base Table, data []byte) (Table, error) {
	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return Table{}, fmt.Errorf("failed to decode language table: %w", err)
	}
	return base.Merge(f.Languages)
}

// LoadTable reads a TOML language table from path and merges it over base.
func LoadTable(base Table, path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read language table %s: %w", path, err)
	}
	return ParseTable(base, data)
}
