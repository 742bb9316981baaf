// Package plausibility decides whether 16 bytes read from a text block look like a real entry header. The text block
// carries no entry count, so a filter is what stops the decoder from walking into non-entry data.
package plausibility

import (
	"github.com/bgrewell/sdt-kit/pkg/consts"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/lang"
)

// Filter reports whether a header is believable enough to be decoded.
type Filter interface {
	Plausible(h *entry.Header) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(h *entry.Header) bool

func (f FilterFunc) Plausible(h *entry.Header) bool {
	return f(h)
}

// Tolerant accepts headers whose language id is named in langs or falls inside the small range of ids that appear in
// real containers without a name.
func Tolerant(langs lang.Table) Filter {
	return FilterFunc(func(h *entry.Header) bool {
		if langs.Known(h.LangID) {
			return true
		}
		return h.LangID >= consts.SDT_TOLERANT_LANG_MIN && h.LangID <= consts.SDT_TOLERANT_LANG_MAX
	})
}

// Strict accepts only headers whose language id is named in langs and whose end time is not before the start time.
func Strict(langs lang.Table) Filter {
	return FilterFunc(func(h *entry.Header) bool {
		return langs.Known(h.LangID) && h.EndTime >= h.StartTime
	})
}

// AcceptAll trusts every header. Only the declared text block size then ends decoding.
func AcceptAll() Filter {
	return FilterFunc(func(h *entry.Header) bool {
		return true
	})
}
