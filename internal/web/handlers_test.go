package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mintyhq/minty/internal/config"
	"github.com/mintyhq/minty/internal/ingest"
	"github.com/mintyhq/minty/internal/ledger"
	"github.com/mintyhq/minty/internal/store/memory"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *memory.Store) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
		cfg.Server.RequestTimeout = 60 * time.Second
		cfg.Ingest.MaxFileSize = 1 << 20
	}
	st := memory.NewStore()
	ing := ingest.New(st, nil, nil)
	return NewServer(st, ing, cfg), st
}

func doJSON(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test CSV: %v", err)
	}
	return path
}

// ============================================================================
// Health Tests
// ============================================================================

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

// ============================================================================
// Account Tests
// ============================================================================

func TestCreateAccount(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts",
		map[string]string{"name": "checking", "currency": "USD"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	account := decodeBody[ledger.Account](t, rec)
	if account.Name != "checking" || account.Currency != "USD" || account.ID == "" {
		t.Errorf("account = %+v", account)
	}

	// Names are unique.
	rec = doJSON(t, srv, http.MethodPost, "/api/accounts",
		map[string]string{"name": "checking"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate create status = %d, want 400", rec.Code)
	}
}

func TestCreateAccount_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListAccounts(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if accounts := decodeBody[[]ledger.Account](t, rec); len(accounts) != 0 {
		t.Errorf("got %d accounts, want empty list", len(accounts))
	}

	if _, err := st.CreateAccount(context.Background(), "savings", "EUR"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/accounts", nil)
	if accounts := decodeBody[[]ledger.Account](t, rec); len(accounts) != 1 {
		t.Errorf("got %d accounts, want 1", len(accounts))
	}
}

// ============================================================================
// Ingest Tests
// ============================================================================

func TestIngestEndpoint(t *testing.T) {
	srv, st := newTestServer(t, nil)
	acc, err := st.CreateAccount(context.Background(), "checking", "USD")
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	path := writeTestCSV(t, `Date,Amount,Description
2026-01-15,-12.34,COFFEE SHOP
2026-01-16,-5.00,LUNCH PLACE
`)

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest",
		map[string]any{"account": "checking", "file": path})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody[ingest.Result](t, rec)
	if result.Inserted != 2 || result.Skipped != 0 {
		t.Errorf("result = %+v, want inserted 2, skipped 0", result)
	}
	if result.AccountID != acc.ID {
		t.Errorf("result.AccountID = %q, want %q", result.AccountID, acc.ID)
	}
}

func TestIngestEndpoint_Errors(t *testing.T) {
	srv, st := newTestServer(t, nil)
	if _, err := st.CreateAccount(context.Background(), "checking", "USD"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	goodCSV := writeTestCSV(t, "Date,Amount,Description\n2026-01-15,-1.00,X Y\n")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "missing account and file",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown account",
			body:       map[string]any{"account": "nope", "file": goodCSV},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad date format selector",
			body:       map[string]any{"account": "checking", "file": goodCSV, "dateFormat": "yday"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing file",
			body: map[string]any{
				"account": "checking",
				"file":    filepath.Join(os.TempDir(), "definitely-missing.csv"),
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/ingest", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestIngestEndpoint_UnmappableColumns(t *testing.T) {
	srv, st := newTestServer(t, nil)
	if _, err := st.CreateAccount(context.Background(), "checking", "USD"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	path := writeTestCSV(t, "Foo,Bar\n1,2\n")

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest",
		map[string]any{"account": "checking", "file": path})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestEndpoint_FileTooLarge(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 60 * time.Second
	cfg.Ingest.MaxFileSize = 10

	srv, st := newTestServer(t, cfg)
	if _, err := st.CreateAccount(context.Background(), "checking", "USD"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	path := writeTestCSV(t, "Date,Amount,Description\n2026-01-15,-1.00,X Y\n")

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest",
		map[string]any{"account": "checking", "file": path})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != fmt.Sprintf("file exceeds %d byte limit", cfg.Ingest.MaxFileSize) {
		t.Errorf("error = %q", body["error"])
	}
}

// ============================================================================
// Runs and Transactions Tests
// ============================================================================

func TestListRunsAndTransactions(t *testing.T) {
	srv, st := newTestServer(t, nil)
	if _, err := st.CreateAccount(context.Background(), "checking", "USD"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	path := writeTestCSV(t, "Date,Amount,Description\n2026-01-15,-12.34,COFFEE SHOP\n")

	if rec := doJSON(t, srv, http.MethodPost, "/api/ingest",
		map[string]any{"account": "checking", "file": path}); rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/runs?account=checking", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("runs status = %d", rec.Code)
	}
	runs := decodeBody[[]ledger.IngestRun](t, rec)
	if len(runs) != 1 || runs[0].Status != ledger.RunSuccess {
		t.Errorf("runs = %+v, want one successful run", runs)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions?account=checking", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions status = %d", rec.Code)
	}
	txs := decodeBody[[]ledger.Transaction](t, rec)
	if len(txs) != 1 || txs[0].Amount != -1234 {
		t.Errorf("transactions = %+v, want one -1234 transaction", txs)
	}
}

func TestListRuns_RequiresAccountParam(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/runs", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/runs?account=ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown account status = %d, want 404", rec.Code)
	}
}
