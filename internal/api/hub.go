package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/observability"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second

	// Slow consumers past this backlog are dropped rather than allowed to
	// stall the broadcast loop.
	wsSendBuffer = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only public data; origin checks add nothing here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// TradeMessage is one live feed frame pushed to websocket clients after a
// purchase is durably applied.
type TradeMessage struct {
	Type           string  `json:"type"`
	TokenID        string  `json:"token_id"`
	Symbol         string  `json:"symbol"`
	Buyer          string  `json:"buyer,omitempty"`
	XLMAmount      string  `json:"xlm_amount"`
	TokensReceived string  `json:"tokens_received"`
	Price          string  `json:"price"`
	TokensSold     string  `json:"tokens_sold"`
	XLMRaised      string  `json:"xlm_raised"`
	LaunchProgress float64 `json:"launch_progress"`
	IsLaunched     bool    `json:"is_launched"`
	Timestamp      int64   `json:"timestamp"`
}

// Hub fans applied trades out to connected websocket clients.
type Hub struct {
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	logger  *log.Logger
	metrics *observability.Metrics
}

// HubOptions contains configuration for creating a Hub.
type HubOptions struct {
	Logger  *log.Logger
	Metrics *observability.Metrics // optional
}

// NewHub creates a new Hub. Run must be started for clients to receive
// anything.
func NewHub(opts HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Run owns the client set until the context is cancelled. All membership
// changes go through the channels, so no locking is needed.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*wsClient]struct{})
	defer func() {
		for c := range clients {
			close(c.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.setClientCount(len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.setClientCount(len(clients))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					delete(clients, c)
					close(c.send)
					h.setClientCount(len(clients))
				}
			}
		}
	}
}

// NotifyPurchase publishes an applied purchase to the feed. Never blocks the
// caller: if the hub is saturated the frame is dropped.
func (h *Hub) NotifyPurchase(tok *domain.Token, p *domain.Purchase) {
	msg := TradeMessage{
		Type:           "purchase",
		TokenID:        tok.TokenID,
		Symbol:         tok.Symbol,
		Buyer:          p.BuyerAddress,
		XLMAmount:      formatInt(p.XLMAmount),
		TokensReceived: formatInt(p.TokensReceived),
		Price:          formatInt(p.PricePerToken),
		TokensSold:     formatInt(tok.TokensSold),
		XLMRaised:      formatInt(tok.XLMRaised),
		LaunchProgress: tok.LaunchProgressPercent(),
		IsLaunched:     tok.IsLaunched,
		Timestamp:      p.CreatedAt,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("[ws] ERROR marshaling trade frame: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Printf("[ws] WARN feed saturated, dropping trade frame tx=%s", p.TransactionHash)
	}
}

// ServeWS upgrades an HTTP request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[ws] WARN upgrade failed: %v", err)
		return
	}

	c := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (h *Hub) setClientCount(n int) {
	if h.metrics != nil {
		h.metrics.WSClientsConnected.Set(float64(n))
	}
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound frames; the feed is one-way. It exists to
// surface closes and keep the pong handler serviced.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
