// File: internal/infra/channel/manager.go
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/config"
	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/domain/ports/adapter"
	"reage-orchestrator/internal/infra/metrics"
)

// Compile-time assurance this manager satisfies the port
var _ adapter.NotificationChannel = (*Manager)(nil)

// Manager owns one long-lived websocket connection to the push endpoint.
// Transport failures are retried with a fixed delay up to a bounded attempt
// budget; a server-initiated close is followed by an immediate reconnect,
// since the server does not signal permanent unavailability distinctly.
type Manager struct {
	endpoint    string
	delay       time.Duration
	maxAttempts int
	log         *zerolog.Logger

	onMsg  adapter.MessageHandler
	onDown adapter.DownHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewManager(cfg config.ChannelConfig, log *zerolog.Logger) *Manager {
	return &Manager{
		endpoint:    cfg.Endpoint,
		delay:       cfg.ReconnectDelay,
		maxAttempts: cfg.MaxAttempts,
		log:         log,
	}
}

func (m *Manager) OnMessage(h adapter.MessageHandler) { m.onMsg = h }

func (m *Manager) OnDown(h adapter.DownHandler) { m.onDown = h }

func (m *Manager) Connect(ctx context.Context) error {
	if m.onMsg == nil {
		return errors.New("no message handler registered")
	}
	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrChannelDown, err)
	}
	m.setConn(conn)
	m.log.Info().Str("endpoint", m.endpoint).Msg("push channel connected")
	go m.readLoop(ctx)
	return nil
}

func (m *Manager) Disconnect() error {
	m.mu.Lock()
	m.closed = true
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}

// dial attempts the websocket handshake with a fixed-delay retry budget.
func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.delay), uint64(m.maxAttempts-1)), ctx)
	return backoff.RetryWithData(func() (*websocket.Conn, error) {
		metrics.IncChannelReconnect()
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.endpoint, nil)
		if err != nil {
			m.log.Warn().Err(err).Str("endpoint", m.endpoint).Msg("channel dial failed")
			return nil, err
		}
		return conn, nil
	}, policy)
}

// dialOnce is the immediate, budget-free reconnect used after a
// server-initiated close.
func (m *Manager) dialOnce(ctx context.Context) (*websocket.Conn, error) {
	metrics.IncChannelReconnect()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.endpoint, nil)
	return conn, err
}

func (m *Manager) readLoop(ctx context.Context) {
	for {
		conn := m.getConn()
		if conn == nil {
			return
		}
		_, raw, err := conn.ReadMessage()
		if err == nil {
			m.onMsg(raw)
			continue
		}
		if m.isClosed() || ctx.Err() != nil {
			return
		}

		var next *websocket.Conn
		if isServerClose(err) {
			m.log.Info().Msg("server closed the channel, reconnecting immediately")
			next, _ = m.dialOnce(ctx)
		} else {
			m.log.Warn().Err(err).Msg("channel read failed, reconnecting")
		}
		if next == nil {
			var derr error
			next, derr = m.dial(ctx)
			if derr != nil {
				err := fmt.Errorf("%w: %v", domain.ErrChannelDown, derr)
				m.log.Error().Err(err).Msg("channel reconnect budget exhausted")
				if m.onDown != nil {
					m.onDown(err)
				}
				return
			}
		}
		m.setConn(next)
		m.log.Info().Msg("push channel reconnected")
	}
}

// isServerClose reports whether the peer sent a close frame, as opposed to a
// transport-level failure.
func isServerClose(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}

func (m *Manager) setConn(conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
}

func (m *Manager) getConn() *websocket.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
