// Package feed serves the live activity feed over websockets.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	appLogger "github.com/fastygo/erp-audit/pkg/logger"
	auditUC "github.com/fastygo/erp-audit/usecase/audit"
)

// Authenticator resolves the token a feed client presents.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Source is the hub the gateway streams from.
type Source interface {
	Subscribe(ctx context.Context) *auditUC.Subscription
	Status() auditUC.Status
}

type Options struct {
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PingInterval   time.Duration
}

// Message is written to the socket for every snapshot.
type Message struct {
	Type   string              `json:"type"`
	Events []domain.AuditEvent `json:"events"`
	SentAt time.Time           `json:"sent_at"`
}

const MessageSnapshot = "snapshot"

type Gateway struct {
	source   Source
	auth     Authenticator
	logger   *zap.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewGateway(source Source, auth Authenticator, logger *zap.Logger, opts Options) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	g := &Gateway{
		source: source,
		auth:   auth,
		logger: logger,
		opts:   opts,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Handler returns the routes of the gateway.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(httpcontext.RequestIDMiddleware)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: g.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/feed/status", g.handleStatus)
	r.Get("/feed/audit", g.handleAudit)
	return r
}

func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := g.source.Status()
	code := http.StatusOK
	if status.Stalled {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, transport.NewSuccess(status, nil))
}

func (g *Gateway) handleAudit(w http.ResponseWriter, r *http.Request) {
	log := appLogger.WithRequestID(r.Context(), g.logger)

	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearer(r.Header.Get("Authorization"))
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing token", nil))
		return
	}
	identity, err := g.auth.Authenticate(r.Context(), token)
	if err != nil {
		log.Warn("feed client rejected", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "invalid or expired token", nil))
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("feed websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := g.source.Subscribe(ctx)
	defer sub.Unsubscribe()

	log = log.With(zap.String("user_id", identity.ID))
	log.Info("feed client connected")
	defer log.Info("feed client disconnected")

	go g.readLoop(conn, cancel)
	g.writeLoop(ctx, conn, sub, log)
}

// readLoop discards client frames and ends the session on close or
// missed pongs.
func (g *Gateway) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	pongWait := 2 * g.opts.PingInterval
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) writeLoop(ctx context.Context, conn *websocket.Conn, sub *auditUC.Subscription, log *zap.Logger) {
	ticker := time.NewTicker(g.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case snapshot, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(g.opts.WriteTimeout))
			msg := Message{Type: MessageSnapshot, Events: snapshot, SentAt: time.Now().UTC()}
			if err := conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("feed write failed", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(g.opts.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range g.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload transport.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
