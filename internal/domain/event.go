package domain

// EventKind tags the closed set of contract events the pipeline recognizes.
type EventKind string

// Recognized event kinds.
const (
	EventKindCreated   EventKind = "created"
	EventKindPurchased EventKind = "purchased"
	EventKindLaunched  EventKind = "launched"
)

// Event is the closed union of typed contract events. Anything the
// classifier cannot recognize never becomes an Event.
type Event interface {
	Kind() EventKind
	// Tx returns the stable transaction identity of the originating operation.
	Tx() string
	// Time returns the ledger close time of the operation, Unix ms.
	Time() int64
}

// CreatedEvent corresponds to a create_token invocation.
// Quantities left at zero and unknown Addresses mean the raw operation
// view did not expose them.
type CreatedEvent struct {
	TransactionHash        string
	TokenID                string // ledger-side token identity, "" if undecodable
	Creator                Address
	Name                   string
	Symbol                 string
	TotalSupply            int64
	LaunchThresholdXLM     int64
	LaunchThresholdPercent int32
	CurveType              CurveType
	BasePrice              int64
	PriceMultiplier        int64
	Timestamp              int64
}

func (e *CreatedEvent) Kind() EventKind { return EventKindCreated }
func (e *CreatedEvent) Tx() string      { return e.TransactionHash }
func (e *CreatedEvent) Time() int64     { return e.Timestamp }

// PurchasedEvent corresponds to a buy_tokens invocation.
// TokensReceived and NewPrice are zero when the operation view omits the
// invocation result; the applier reconstructs them with the pricing engine.
type PurchasedEvent struct {
	TransactionHash string
	TokenID         string
	Buyer           Address
	XLMAmount       int64
	TokensReceived  int64
	NewPrice        int64
	Timestamp       int64
}

func (e *PurchasedEvent) Kind() EventKind { return EventKindPurchased }
func (e *PurchasedEvent) Tx() string      { return e.TransactionHash }
func (e *PurchasedEvent) Time() int64     { return e.Timestamp }

// LaunchedEvent corresponds to an execute_launch_transition invocation.
// Zero finals mean "keep the projected values".
type LaunchedEvent struct {
	TransactionHash string
	TokenID         string
	FinalPrice      int64
	XLMRaised       int64
	TokensSold      int64
	Timestamp       int64
}

func (e *LaunchedEvent) Kind() EventKind { return EventKindLaunched }
func (e *LaunchedEvent) Tx() string      { return e.TransactionHash }
func (e *LaunchedEvent) Time() int64     { return e.Timestamp }
