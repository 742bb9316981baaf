package consts

const (
	// Signature marking the start of the PACB metadata block.
	SDT_SIGNATURE = "PACB"

	// Length of the signature in bytes.
	SDT_SIGNATURE_SIZE = 4

	// Offset of the text block size field relative to the signature.
	SDT_TEXT_BLOCK_SIZE_OFFSET = 4

	// Offset of the first entry relative to the signature.
	SDT_TEXT_BLOCK_START_OFFSET = 8

	// Offset of the code block size field, counted backwards from the signature.
	SDT_CODE_BLOCK_SIZE_OFFSET = 4

	// Offset of the end offset field, counted backwards from the signature.
	SDT_END_OFFSET_OFFSET = 0x0C

	// Size of a single entry header.
	SDT_ENTRY_HEADER_SIZE = 16

	// Size of the reserved (unknown) header field.
	SDT_ENTRY_UNKNOWN_SIZE = 4

	// Largest entry the 16-bit size field can describe.
	SDT_MAX_ENTRY_SIZE = 0xFFFF

	// Alignment applied to the end offset field and to the audio block start.
	SDT_ALIGNMENT = 0x10

	// Signature position the end offset field is measured against. Containers whose
	// signature sits further in get the difference, rounded down to the alignment,
	// subtracted from the end offset. The formula was derived from sample files and
	// has not been confirmed for every signature position, keep it as is.
	SDT_END_OFFSET_NOMINAL_BASE = 0x20

	// Upper bound used when skipping a template entry's text while scanning for its
	// terminator.
	SDT_TEMPLATE_TEXT_SCAN_LIMIT = 0x1000

	// Inclusive range of language ids the default plausibility filter tolerates even
	// when they have no label.
	SDT_TOLERANT_LANG_MIN = 1
	SDT_TOLERANT_LANG_MAX = 20

	// Language id used when a label cannot be mapped.
	SDT_DEFAULT_LANG_ID = 1
)

// CSV interchange column headers, in file order.
const (
	CSV_COLUMN_START_TIME = "Start Time"
	CSV_COLUMN_END_TIME   = "End Time"
	CSV_COLUMN_LANG_ID    = "Lang ID"
	CSV_COLUMN_TEXT       = "Text"
)
