package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/erp-audit/api/handler"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/internal/infrastructure/monitor"
	"github.com/fastygo/erp-audit/internal/middleware"
	"github.com/fastygo/erp-audit/internal/security"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	"github.com/fastygo/erp-audit/repository/memory"
	"github.com/fastygo/erp-audit/usecase"
	auditUC "github.com/fastygo/erp-audit/usecase/audit"
	authUC "github.com/fastygo/erp-audit/usecase/auth"
	documentsUC "github.com/fastygo/erp-audit/usecase/documents"
	inventoryUC "github.com/fastygo/erp-audit/usecase/inventory"
	"github.com/fastygo/erp-audit/usecase/reports"
	treasuryUC "github.com/fastygo/erp-audit/usecase/treasury"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Meta   json.RawMessage `json:"meta"`
}

type app struct {
	handler fasthttp.RequestHandler
	events  *memory.AuditLog
	logger  *auditUC.Logger
}

func newApp(t *testing.T) app {
	t.Helper()
	ctx := context.Background()

	entities := memory.NewStore()
	if err := memory.Seed(ctx, entities, time.Now()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	events := memory.NewAuditLog(nil)
	hub := auditUC.NewHub(events, nil)

	tokens, err := security.NewTokens("0123456789abcdef0123456789abcdef", "erp-audit")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	logger := auditUC.NewLogger(events, nil, auditUC.WithChangeListeners(hub))
	auth := authUC.New(memory.NewUserStore(), memory.NewSessionStore(time.Hour), tokens, logger, nil, time.Hour)
	if _, err := auth.EnsureUser(ctx, "admin@x.com", "correct-horse", "Admin", domain.RoleAdmin); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	inventory := inventoryUC.New(entities, entities, logger, nil)
	documents := documentsUC.New(entities, entities, logger, nil)
	treasury := treasuryUC.New(entities, logger, nil)
	dispatcher := usecase.NewDispatcher()
	reports.Register(dispatcher, inventory, documents, treasury)

	adapter := httpcontext.NewAdapter(time.Second)
	r := New(Handlers{
		Auth:      apiHandler.NewAuthHandler(auth, adapter, nil),
		Audit:     apiHandler.NewAuditHandler(logger, hub, adapter, nil),
		Inventory: apiHandler.NewInventoryHandler(inventory, adapter, nil),
		Documents: apiHandler.NewDocumentHandler(documents, adapter, nil),
		Treasury:  apiHandler.NewTreasuryHandler(treasury, adapter, nil),
		Reports:   apiHandler.NewReportHandler(dispatcher, adapter, nil),
		Health:    apiHandler.NewHealthHandler(monitor.New(time.Minute, nil), hub, adapter, nil),
	}, middleware.JWTAuth(auth, nil))

	return app{handler: r.Handler, events: events, logger: logger}
}

func (a app) do(t *testing.T, method, uri, token string, body interface{}) (int, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody(raw)
	}

	a.handler(&ctx)

	var env envelope
	if raw := ctx.Response.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, uri, raw, err)
		}
	}
	return ctx.Response.StatusCode(), env
}

func (a app) login(t *testing.T) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@x.com", "password": "correct-horse",
	})
	if status != http.StatusCreated {
		t.Fatalf("login: expected 201, got %d (%s)", status, env.Code)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil || result.Token == "" {
		t.Fatalf("login: no token in %s", env.Data)
	}
	return result.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newApp(t)

	status, env := a.do(t, http.MethodGet, "/api/v1/audit", "", nil)
	if status != http.StatusUnauthorized || env.Code != string(domain.ErrCodeUnauthorized) {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %q", status, env.Code)
	}
	status, _ = a.do(t, http.MethodGet, "/api/v1/audit", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", status)
	}
}

func TestLoginIsRecordedInActivityFeed(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	status, env := a.do(t, http.MethodGet, "/api/v1/audit?limit=10", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var events []domain.AuditEvent
	if err := json.Unmarshal(env.Data, &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Action != authUC.ActionLogin || events[0].ActorName != "admin@x.com" || events[0].Module != domain.ModuleAuth {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestLogActionIsAccepted(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	status, _ := a.do(t, http.MethodPost, "/api/v1/audit", token, map[string]string{
		"action": "Export", "module": "Vendas", "details": "exported invoices",
	})
	if status != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.logger.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if a.events.Len() != 2 {
		t.Fatalf("expected login and export events, got %d", a.events.Len())
	}
}

func TestWorkWithoutIdentityStaysAnonymousAfterLogin(t *testing.T) {
	a := newApp(t)
	a.login(t)

	a.logger.LogAction(context.Background(), "Sync", domain.ModuleSystem, "background job")

	events, err := a.events.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 || events[0].Action != "Sync" {
		t.Fatalf("unexpected newest event %+v", events)
	}
	if events[0].ActorID != domain.AnonymousActorID || events[0].ActorName != domain.AnonymousActorName {
		t.Errorf("actor = %s/%s, want anonymous", events[0].ActorID, events[0].ActorName)
	}
}

func TestStockHealthAndPendingTotals(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	status, env := a.do(t, http.MethodGet, "/api/v1/products/health", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stock health: expected 200, got %d", status)
	}
	var summary domain.StockSummary
	if err := json.Unmarshal(env.Meta, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Total != 3 || summary.Healthy != 1 || summary.Low != 1 || summary.OutOfStock != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	status, env = a.do(t, http.MethodGet, "/api/v1/documents/pending?kind=invoice", token, nil)
	if status != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d", status)
	}
	var pending domain.PendingSummary
	if err := json.Unmarshal(env.Data, &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if pending.Count != 1 || pending.TotalCents != 3490 {
		t.Fatalf("unexpected pending summary %+v", pending)
	}
}

func TestQuoteConversionFlow(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	status, _ := a.do(t, http.MethodPost, "/api/v1/documents/doc-003/convert", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("converting a sent quote: expected 400, got %d", status)
	}

	status, _ = a.do(t, http.MethodPost, "/api/v1/documents/doc-003/status", token, map[string]string{"status": "Accepted"})
	if status != http.StatusOK {
		t.Fatalf("accept quote: expected 200, got %d", status)
	}

	status, env := a.do(t, http.MethodPost, "/api/v1/documents/doc-003/convert", token, nil)
	if status != http.StatusCreated {
		t.Fatalf("convert: expected 201, got %d", status)
	}
	var invoice domain.Document
	if err := json.Unmarshal(env.Data, &invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if invoice.Kind != domain.KindInvoice || invoice.Status != domain.StatusPending {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
}

func TestUnknownDocumentAndReport(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	if status, _ := a.do(t, http.MethodGet, "/api/v1/documents/missing", token, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown document, got %d", status)
	}
	if status, _ := a.do(t, http.MethodGet, "/api/v1/reports/unknown", token, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", status)
	}
}

func TestStatementReport(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	status, env := a.do(t, http.MethodGet, "/api/v1/ledger/cli-002/statement", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var statement treasuryUC.Statement
	if err := json.Unmarshal(env.Data, &statement); err != nil {
		t.Fatalf("decode statement: %v", err)
	}
	if statement.ClosingCents != 0 || statement.DebitCents != 2380 || statement.CreditCents != 2380 {
		t.Fatalf("unexpected statement %+v", statement)
	}
}

func TestHealthReflectsCriticalChecks(t *testing.T) {
	a := newApp(t)
	if status, _ := a.do(t, http.MethodGet, "/health", "", nil); status != http.StatusOK {
		t.Fatalf("expected 200 with no failing checks, got %d", status)
	}

	mon := monitor.New(time.Minute, nil)
	mon.Add("postgres", func(context.Context) error { return errors.New("connection refused") }, true)
	mon.Refresh(context.Background())

	health := apiHandler.NewHealthHandler(mon, nil, nil, nil)
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/health")
	health.Check(&ctx)
	if ctx.Response.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", ctx.Response.StatusCode())
	}
}
