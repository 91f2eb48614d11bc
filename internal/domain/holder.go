package domain

// Holder represents one (token, account) position.
// Created on first purchase, accumulated on every later one, never deleted:
// the balance may reach zero but the row persists as history.
type Holder struct {
	TokenRowID      string // FK to tokens.id
	HolderAddress   string
	Balance         int64
	FirstPurchaseAt int64 // Unix ms
	LastPurchaseAt  int64 // Unix ms
	TotalPurchased  int64
}
