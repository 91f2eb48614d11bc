// Package horizon implements a read-only client for the ledger's paginated
// operation listing. The listing is append-only and ordered by paging token;
// the client performs single attempts and leaves retry policy to the caller.
package horizon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
)

// Order of a page request.
type Order string

// Page orders.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// Client fetches operation pages from a Horizon-compatible endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Horizon client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// operationsPage is the raw listing envelope.
type operationsPage struct {
	Embedded struct {
		Records []operationRecord `json:"records"`
	} `json:"_embedded"`
}

// operationRecord is the raw operation view.
type operationRecord struct {
	ID              string      `json:"id"`
	PagingToken     string      `json:"paging_token"`
	TransactionHash string      `json:"transaction_hash"`
	SourceAccount   string      `json:"source_account"`
	TypeI           int         `json:"type_i"`
	Type            string      `json:"type"`
	Contract        string      `json:"contract"`
	Function        string      `json:"function"`
	Parameters      []Parameter `json:"parameters"`
	CreatedAt       string      `json:"created_at"`
}

// Operations fetches one page of operations. With a non-zero cursor the page
// starts strictly after it; records come back in the requested order.
func (c *Client) Operations(ctx context.Context, cursor domain.Cursor, limit int, order Order) ([]Operation, error) {
	q := url.Values{}
	q.Set("order", string(order))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if !cursor.IsZero() {
		q.Set("cursor", string(cursor))
	}

	endpoint := fmt.Sprintf("%s/operations?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page operationsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unmarshal operations page: %w", err)
	}

	ops := make([]Operation, 0, len(page.Embedded.Records))
	for _, rec := range page.Embedded.Records {
		op := Operation{
			ID:              rec.ID,
			PagingToken:     rec.PagingToken,
			TransactionHash: rec.TransactionHash,
			SourceAccount:   rec.SourceAccount,
			TypeI:           rec.TypeI,
			Type:            rec.Type,
			Contract:        rec.Contract,
			Function:        rec.Function,
			Parameters:      rec.Parameters,
		}
		if rec.CreatedAt != "" {
			t, err := time.Parse(time.RFC3339, rec.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("parse created_at %q: %w", rec.CreatedAt, err)
			}
			op.CreatedAt = t
		}
		ops = append(ops, op)
	}

	return ops, nil
}

// LatestCursor returns the paging token of the most recent operation, or the
// empty cursor when the ledger has none. Used for cold starts that skip
// historical replay.
func (c *Client) LatestCursor(ctx context.Context) (domain.Cursor, error) {
	ops, err := c.Operations(ctx, domain.CursorEmpty, 1, OrderDesc)
	if err != nil {
		return domain.CursorEmpty, err
	}
	if len(ops) == 0 {
		return domain.CursorEmpty, nil
	}
	return domain.Cursor(ops[0].PagingToken), nil
}
