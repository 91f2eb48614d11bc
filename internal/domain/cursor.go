package domain

// Cursor is an opaque resume position in the ledger's total order.
// Horizon paging tokens are decimal strings that grow with ledger position,
// so ordering compares by length first, then lexically.
type Cursor string

// CursorEmpty means "no position persisted yet".
const CursorEmpty Cursor = ""

// IsZero reports whether the cursor holds no position.
func (c Cursor) IsZero() bool {
	return c == CursorEmpty
}

// Before reports whether c orders strictly before other.
func (c Cursor) Before(other Cursor) bool {
	if len(c) != len(other) {
		return len(c) < len(other)
	}
	return c < other
}

// IndexerCursor is the persisted pipeline position, one row per
// configured contract address.
type IndexerCursor struct {
	ContractAddress string
	Cursor          Cursor
	UpdatedAt       int64 // Unix ms
}
