// Package monitoring exposes the running system over HTTP: a JSON status
// endpoint and a websocket stream that relays every emitted ledger event to
// connected clients.
package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/events"
	"github.com/noahlitvin/TomatoCoin/core/lpt"
	"github.com/noahlitvin/TomatoCoin/core/pool"
	"github.com/noahlitvin/TomatoCoin/core/sale"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

type StreamServer struct {
	token  *token.Ledger
	sale   *sale.Controller
	pool   *pool.Pool
	shares *lpt.ShareLedger

	upgrader     websocket.Upgrader
	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]bool

	startTime time.Time
	log       *logrus.Entry
}

// NewStreamServer wires the server against the components it reports on and
// subscribes to the event bus so every emission reaches connected clients.
func NewStreamServer(tok *token.Ledger, sc *sale.Controller, p *pool.Pool, shares *lpt.ShareLedger, bus *events.Bus, logger *logrus.Logger) *StreamServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &StreamServer{
		token:  tok,
		sale:   sc,
		pool:   p,
		shares: shares,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		startTime: time.Now(),
		log:       logger.WithField("component", "monitoring"),
	}
	if bus != nil {
		bus.RegisterHandler(s.broadcast)
	}
	return s
}

// Router returns the HTTP routes. Split from ListenAndServe so tests can
// serve them with httptest.
func (s *StreamServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/ws/events", s.handleEvents)
	return r
}

func (s *StreamServer) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("monitoring server listening")
	return http.ListenAndServe(addr, s.Router())
}

type statusResponse struct {
	Uptime      string `json:"uptime"`
	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`
	TotalSupply string `json:"total_supply"`
	SupplyCap   string `json:"supply_cap"`
	TaxEnabled  bool   `json:"tax_enabled"`

	SalePhase   string `json:"sale_phase"`
	SalePaused  bool   `json:"sale_paused"`
	TotalRaised string `json:"total_raised"`

	ReserveNative string `json:"reserve_native"`
	ReserveToken  string `json:"reserve_token"`
	TotalShares   string `json:"total_shares"`

	ConnectedClients int `json:"connected_clients"`
}

func (s *StreamServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	rNative, rToken := s.pool.Reserves()

	s.clientsMutex.RLock()
	connected := len(s.clients)
	s.clientsMutex.RUnlock()

	resp := statusResponse{
		Uptime:           time.Since(s.startTime).String(),
		TokenName:        token.Name,
		TokenSymbol:      token.Symbol,
		TotalSupply:      s.token.TotalSupply().Dec(),
		SupplyCap:        token.SupplyCap.Dec(),
		TaxEnabled:       s.token.TaxEnabled(),
		SalePhase:        s.sale.CurrentPhase(),
		SalePaused:       s.sale.IsPaused(),
		TotalRaised:      s.sale.TotalRaised().Dec(),
		ReserveNative:    rNative.Dec(),
		ReserveToken:     rToken.Dec(),
		TotalShares:      s.shares.TotalShares().Dec(),
		ConnectedClients: connected,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.WithError(err).Error("writing status response")
	}
}

func (s *StreamServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.clientsMutex.Lock()
	s.clients[conn] = true
	s.clientsMutex.Unlock()
	s.log.Info("event stream client connected")

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
		s.log.Info("event stream client disconnected")
	}()

	welcome := map[string]interface{}{
		"type":      "welcome",
		"message":   "Connected to TomatoCoin event stream",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err := conn.WriteJSON(welcome); err != nil {
		return
	}

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Error("websocket read failed")
			}
			return
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "ping" {
			conn.WriteJSON(map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			})
		}
	}
}

// broadcast relays one event to every connected client, dropping clients
// whose connection has gone away.
func (s *StreamServer) broadcast(event events.Event) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	for conn := range s.clients {
		if err := conn.WriteJSON(event); err != nil {
			s.log.WithError(err).Warn("dropping event stream client")
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
