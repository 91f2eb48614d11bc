package domain

// Address is a Stellar account or contract identity observed on a ledger
// operation. The zero value is the explicit "unknown" sentinel: an operation
// view that does not expose a field yields an unknown Address, never a
// fabricated one. Callers must check IsKnown before trusting the value.
type Address struct {
	value string
}

// AddressOf wraps a concrete identity. An empty string stays unknown.
func AddressOf(s string) Address {
	return Address{value: s}
}

// UnknownAddress is the sentinel for identities the raw operation view
// does not expose.
func UnknownAddress() Address {
	return Address{}
}

// IsKnown reports whether the address carries a real identity.
func (a Address) IsKnown() bool {
	return a.value != ""
}

// String returns the underlying identity, empty when unknown.
func (a Address) String() string {
	return a.value
}
