// Package info describes where each region of an SDT container sits, for tools that display a container's layout.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/container"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const (
	CATEGORY_PREFIX    = "Prefix"
	CATEGORY_FIELD     = "Field"
	CATEGORY_SIGNATURE = "Signature"
	CATEGORY_ENTRY     = "Entry"
	CATEGORY_CODE      = "Code Block"
	CATEGORY_PADDING   = "Padding"
	CATEGORY_AUDIO     = "Audio"
)

// Region is one contiguous span of the container.
type Region struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
}

// ContainerLayout lists the regions of a container in file order.
type ContainerLayout struct {
	FileSize        int       `json:"file_size"`
	SignatureOffset int       `json:"signature_offset"`
	TextBlockSize   uint32    `json:"text_block_size"`
	CodeBlockSize   uint32    `json:"code_block_size"`
	EndOffset       uint32    `json:"end_offset"`
	EntryCount      int       `json:"entry_count"`
	Regions         []*Region `json:"regions"`
}

// NewContainerLayout builds the region list from a parsed layout and the entries decoded from it.
func NewContainerLayout(l *container.Layout, entries []entry.Entry) *ContainerLayout {
	c := &ContainerLayout{
		FileSize:        l.FileSize,
		SignatureOffset: l.SignatureOffset,
		TextBlockSize:   l.TextBlockSize,
		CodeBlockSize:   l.CodeBlockSize,
		EndOffset:       l.EndOffset,
		EntryCount:      len(entries),
		Regions:         make([]*Region, 0, len(entries)+8),
	}

	sig := l.SignatureOffset
	endField := sig - consts.SDT_END_OFFSET_OFFSET
	c.AddRegion(CATEGORY_PREFIX, "Leading bytes", 0, endField)
	c.AddRegion(CATEGORY_FIELD, fmt.Sprintf("End offset (0x%X)", l.EndOffset), endField, 4)
	c.AddRegion(CATEGORY_PREFIX, "Reserved", endField+4, sig-consts.SDT_CODE_BLOCK_SIZE_OFFSET-endField-4)
	c.AddRegion(CATEGORY_FIELD, fmt.Sprintf("Code block size (0x%X)", l.CodeBlockSize), sig-consts.SDT_CODE_BLOCK_SIZE_OFFSET, 4)
	c.AddRegion(CATEGORY_SIGNATURE, consts.SDT_SIGNATURE, sig, consts.SDT_SIGNATURE_SIZE)
	c.AddRegion(CATEGORY_FIELD, fmt.Sprintf("Text block size (0x%X)", l.TextBlockSize), sig+consts.SDT_TEXT_BLOCK_SIZE_OFFSET, 4)
	for i, e := range entries {
		c.AddRegion(CATEGORY_ENTRY, fmt.Sprintf("#%d %s %d-%d", i+1, e.Label, e.StartTime, e.EndTime), e.Offset, int(e.Size))
	}
	c.AddRegion(CATEGORY_CODE, "Opaque", l.CodeBlockStart(), int(l.CodeBlockSize))
	c.AddRegion(CATEGORY_PADDING, "Zero bytes", l.TextBlockEnd(), l.PaddingSize())
	c.AddRegion(CATEGORY_AUDIO, "Opaque", l.AudioOffset, l.AudioSize())
	return c
}

// AddRegion appends a region and keeps the list sorted by offset. Empty regions are skipped.
func (c *ContainerLayout) AddRegion(category string, detail string, offset int, length int) {
	if length <= 0 {
		return
	}
	c.Regions = append(c.Regions, &Region{Category: category, Detail: detail, Offset: offset, Length: length})
	slices.SortStableFunc(c.Regions, func(a, b *Region) int {
		return a.Offset - b.Offset
	})
}

// PrettyJSON returns a pretty-printed JSON representation of the layout.
func (c *ContainerLayout) PrettyJSON() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON: %v", err)
	}
	return string(data)
}

// Print writes one line per region to w.
// - `useColor` controls whether colored output is used.
// - `useHexOffset` prints offsets in hexadecimal if true.
func (c *ContainerLayout) Print(w io.Writer, useColor bool, useHexOffset bool) {
	colorMap := map[string]func(a ...interface{}) string{
		CATEGORY_PREFIX:    color.New(color.FgBlue, color.Bold).SprintFunc(),
		CATEGORY_FIELD:     color.New(color.FgYellow, color.Bold).SprintFunc(),
		CATEGORY_SIGNATURE: color.New(color.FgMagenta, color.Bold).SprintFunc(),
		CATEGORY_ENTRY:     color.New(color.FgCyan, color.Bold).SprintFunc(),
		CATEGORY_CODE:      color.New(color.FgRed, color.Bold).SprintFunc(),
		CATEGORY_PADDING:   color.New(color.FgWhite).SprintFunc(),
		CATEGORY_AUDIO:     color.New(color.FgGreen, color.Bold).SprintFunc(),
	}
	offsetColor := color.New(color.FgGreen).SprintFunc()
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()

	plain := func(a ...interface{}) string { return fmt.Sprint(a...) }
	if !useColor {
		for key := range colorMap {
			colorMap[key] = plain
		}
		offsetColor = plain
		headerColor = plain
	}

	offsetWidth := 14
	if useHexOffset {
		offsetWidth = 16
	}
	categoryWidth := 10
	lengthWidth := 10

	fmt.Fprintln(w, headerColor("=== SDT Layout ==="))
	for _, r := range c.Regions {
		offsetStr := fmt.Sprintf("Offset: %*d", offsetWidth-8, r.Offset)
		if useHexOffset {
			offsetStr = fmt.Sprintf("Offset: %#*x", offsetWidth-8, r.Offset)
		}
		fmt.Fprintf(w, "[%s] [%s] [%s] %s\n",
			offsetColor(offsetStr),
			colorMap[r.Category](fmt.Sprintf("%-*s", categoryWidth, r.Category)),
			fmt.Sprintf("%*s", lengthWidth, humanize.IBytes(uint64(r.Length))),
			r.Detail,
		)
	}
	fmt.Fprintf(w, "%s %d entries, %s total\n", headerColor("==="), c.EntryCount, humanize.IBytes(uint64(c.FileSize)))
}
