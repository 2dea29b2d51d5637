package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/internal/core/services"
	apperrors "netqoe/pkg/errors"
	"netqoe/pkg/tracing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	MessageCalculate  = "calculate"
	MessageParameters = "parameters"
	MessagePing       = "ping"

	MessageResult  = "result"
	MessageCatalog = "parameters"
	MessagePong    = "pong"
	MessageError   = "error"
)

// Calculator runs the engine for one parameter set.
type Calculator interface {
	Calculate(ctx context.Context, params domain.Parameters) domain.QoEResult
}

// ConnectionRecorder observes connection churn.
type ConnectionRecorder interface {
	RecordLiveConnected()
	RecordLiveDisconnected()
}

type Config struct {
	PingInterval   time.Duration
	PongTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
	MaxConnections int // 0 = unlimited
	AllowedOrigins []string
}

// Message is the envelope exchanged in both directions.
type Message struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type inbound struct {
	msg Message
	err error
}

type client struct {
	id        string
	principal domain.Principal
	conn      *websocket.Conn
}

// WebSocketServer serves live simulation sessions: clients push parameter
// sets and receive a freshly computed result for each.
type WebSocketServer struct {
	calculator Calculator
	auth       ports.AuthService
	recorder   ConnectionRecorder
	cfg        Config
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	clients  map[string]*client
	reserved int
	closed   bool

	logger *zap.SugaredLogger
}

func NewWebSocketServer(
	calculator Calculator,
	auth ports.AuthService,
	recorder ConnectionRecorder,
	cfg Config,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	s := &WebSocketServer{
		calculator: calculator,
		auth:       auth,
		recorder:   recorder,
		cfg:        cfg,
		clients:    make(map[string]*client),
		logger:     logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return s
}

// originChecker accepts requests without an Origin header, any origin when
// "*" is configured, and otherwise only listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.HandleWebSocket(w, r)
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeHTTPError(w, apperrors.NewUnauthorizedError(err.Error()))
		return
	}

	if !s.reserve() {
		writeHTTPError(w, apperrors.NewServiceUnavailableError("too many live connections"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release()
		s.logger.Warnw("websocket upgrade failed", "error", err, "user_id", principal.UserID)
		return
	}

	c := &client{id: uuid.NewString(), principal: *principal, conn: conn}
	if !s.register(c) {
		conn.Close()
		return
	}
	defer s.unregister(c)

	s.logger.Infow("live session opened", "client_id", c.id, "user_id", c.principal.UserID)
	s.serve(r.Context(), c)
	s.logger.Infow("live session closed", "client_id", c.id, "user_id", c.principal.UserID)
}

func (s *WebSocketServer) authenticate(r *http.Request) (*domain.Principal, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		return nil, errors.New("token required")
	}
	principal, err := s.auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// reserve claims a connection slot before upgrading.
func (s *WebSocketServer) reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.cfg.MaxConnections > 0 && len(s.clients)+s.reserved >= s.cfg.MaxConnections {
		return false
	}
	s.reserved++
	return true
}

func (s *WebSocketServer) release() {
	s.mu.Lock()
	s.reserved--
	s.mu.Unlock()
}

func (s *WebSocketServer) register(c *client) bool {
	s.mu.Lock()
	s.reserved--
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.clients[c.id] = c
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordLiveConnected()
	}
	return true
}

func (s *WebSocketServer) unregister(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()

	c.conn.Close()
	if ok && s.recorder != nil {
		s.recorder.RecordLiveDisconnected()
	}
}

// serve owns all writes to the connection; a reader goroutine feeds it.
func (s *WebSocketServer) serve(ctx context.Context, c *client) {
	conn := c.conn
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	messages := make(chan inbound, 8)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

			var in inbound
			in.err = json.Unmarshal(data, &in.msg)
			select {
			case messages <- in:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case in := <-messages:
			reply := Message{Type: MessageError, Error: "malformed message"}
			if in.err == nil {
				reply = s.handleMessage(ctx, c, in.msg)
			}
			if err := s.write(conn, reply); err != nil {
				s.logger.Infow("live write failed", "client_id", c.id, "error", err)
				return
			}

		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Infow("live ping failed", "client_id", c.id, "error", err)
				return
			}

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("live read failed", "client_id", c.id, "error", err)
			}
			return

		case <-ctx.Done():
			return
		}
	}
}

func (s *WebSocketServer) handleMessage(ctx context.Context, c *client, msg Message) Message {
	ctx, span := tracing.TraceWebSocketMessage(ctx, msg.Type, string(c.principal.UserID))
	defer span.End()

	reply := Message{RequestID: msg.RequestID}

	switch msg.Type {
	case MessageCalculate:
		params, err := services.DecodeParameters(msg.Payload)
		if err != nil {
			tracing.RecordError(ctx, err)
			reply.Type, reply.Error = MessageError, err.Error()
			return reply
		}
		return withPayload(reply, MessageResult, s.calculator.Calculate(ctx, params))

	case MessageParameters:
		return withPayload(reply, MessageCatalog, services.Catalog())

	case MessagePing:
		reply.Type = MessagePong
		return reply

	case "":
		reply.Type, reply.Error = MessageError, "message type is required"
		return reply

	default:
		reply.Type, reply.Error = MessageError, fmt.Sprintf("unknown message type: %s", msg.Type)
		return reply
	}
}

func withPayload(reply Message, msgType string, payload interface{}) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		reply.Type, reply.Error = MessageError, "failed to encode response"
		return reply
	}
	reply.Type, reply.Payload = msgType, data
	return reply
}

func (s *WebSocketServer) write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteJSON(msg)
}

// ConnectionCount returns the number of open live sessions.
func (s *WebSocketServer) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown refuses new sessions and closes the open ones with a going-away
// frame. Sessions unwind on their own once their reads fail.
func (s *WebSocketServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range clients {
		deadline := time.Now().Add(s.cfg.WriteTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := c.conn.WriteControl(websocket.CloseMessage, closeMsg, deadline); err != nil {
			s.logger.Debugw("live close frame failed", "client_id", c.id, "error", err)
		}
	}
	return ctx.Err()
}

func writeHTTPError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(err.Body())
}
