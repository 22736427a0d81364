package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/infra/metrics"
)

// Server receives the remote service's webhook callbacks and relays them to
// connected websocket clients in the push wire shape the orchestrator
// expects: {"data": {...}}.
type Server struct {
	hub         *Hub
	webhookPath string
	upgrader    websocket.Upgrader
	log         *zerolog.Logger
}

func NewServer(webhookPath string, hub *Hub, log *zerolog.Logger) *Server {
	return &Server{
		hub:         hub,
		webhookPath: webhookPath,
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:         log,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post(s.webhookPath, s.handleWebhook)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		metrics.IncRelayWebhook("bad_request")
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// Callbacks may arrive bare or already wrapped in a data envelope.
	data, ok := body["data"].(map[string]any)
	if !ok {
		data = body
	}
	data["_id"] = ulid.Make().String()

	msg, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		metrics.IncRelayWebhook("bad_request")
		http.Error(w, "unserializable body", http.StatusBadRequest)
		return
	}

	sent := s.hub.Broadcast(msg)
	metrics.IncRelayWebhook("ok")
	s.log.Info().Int("clients", sent).Msg("webhook relayed")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.hub.Add(conn)

	// Reader goroutine only detects disconnects; clients never send payloads.
	// The read limit and pong deadline reap stalled or misbehaving clients.
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Remove(conn)
				return
			}
		}
	}()
}
