package horizon

import "time"

// Operation type code for Soroban contract invocations.
const OpTypeInvokeHostFunction = 24

// Operation is one record of the ledger's operation listing, in the shape
// the pipeline consumes: identity, invocation target, ordered parameters and
// a monotonically comparable paging token.
type Operation struct {
	ID              string
	PagingToken     string
	TransactionHash string
	SourceAccount   string
	TypeI           int
	Type            string
	Contract        string
	Function        string
	Parameters      []Parameter
	CreatedAt       time.Time
}

// Parameter is one positional invocation argument.
type Parameter struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
