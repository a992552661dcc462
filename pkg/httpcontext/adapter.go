package httpcontext

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/erp-audit/domain"
	appLogger "github.com/fastygo/erp-audit/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// UserValueIdentity is the fasthttp user value under which the auth
// middleware stores the *domain.Identity of the caller.
const UserValueIdentity = "identity"

const headerRequestID = "X-Request-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach derives a context bounded by the adapter timeout carrying the
// request id, client metadata and the authenticated identity, if any.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(string(ctx.Request.Header.Peek(headerRequestID)))
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(headerRequestID, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if identity := IdentityFromRequest(ctx); identity != nil {
		stdCtx = domain.ContextWithIdentity(stdCtx, identity)
	}

	return stdCtx, cancel
}

// IdentityFromRequest returns the identity stored by the auth middleware.
func IdentityFromRequest(ctx *fasthttp.RequestCtx) *domain.Identity {
	if ctx == nil {
		return nil
	}
	identity, _ := ctx.UserValue(UserValueIdentity).(*domain.Identity)
	return identity
}

// RequestIDMiddleware gives net/http requests the same request id handling
// as Attach.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestID(r.Header.Get(headerRequestID))
		w.Header().Set(headerRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(appLogger.ContextWithRequestID(r.Context(), reqID)))
	})
}

func requestID(header string) string {
	if strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
