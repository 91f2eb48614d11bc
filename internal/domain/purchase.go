package domain

// Purchase represents one executed bonding-curve buy.
// Corresponds to the purchases table in PostgreSQL.
// TransactionHash is the idempotency key: unique per purchase.
type Purchase struct {
	ID              string // internal UUID
	TokenRowID      string // FK to tokens.id
	BuyerAddress    string
	XLMAmount       int64 // amount paid, stroops
	TokensReceived  int64
	PricePerToken   int64 // paid/received, floor division, 0 if received is 0
	TransactionHash string
	CreatedAt       int64 // Unix ms, ledger close time of the purchase
}

// UnitPrice computes paid/received with floor division, 0 when received is 0.
func UnitPrice(paid, received int64) int64 {
	if received <= 0 {
		return 0
	}
	return paid / received
}
