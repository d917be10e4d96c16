package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/mintyhq/minty/internal/csvfile"
	"github.com/mintyhq/minty/internal/dates"
	"github.com/mintyhq/minty/internal/ingest"
	"github.com/mintyhq/minty/internal/ledger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.E(ledger.KindValidation, "invalid request body"))
		return
	}

	account, err := s.store.CreateAccount(r.Context(), req.Name, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

type ingestRequest struct {
	Account    string `json:"account"`
	File       string `json:"file"`
	DateFormat string `json:"dateFormat"`
	Delimiter  string `json:"delimiter"`
	InvertSign bool   `json:"invertSign"`

	Columns struct {
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
		ExternalID  string `json:"externalId"`
	} `json:"columns"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.E(ledger.KindValidation, "invalid request body"))
		return
	}
	if req.Account == "" || req.File == "" {
		writeError(w, ledger.E(ledger.KindValidation, "account and file are required"))
		return
	}

	format, err := dates.ParseFormat(req.DateFormat)
	if err != nil {
		writeError(w, err)
		return
	}

	if info, err := os.Stat(req.File); err == nil && info.Size() > s.cfg.Ingest.MaxFileSize {
		writeError(w, ledger.E(ledger.KindValidation,
			"file exceeds %d byte limit", s.cfg.Ingest.MaxFileSize))
		return
	}

	result, err := s.ingestor.IngestCSV(r.Context(), ingest.Options{
		AccountRef: req.Account,
		FilePath:   req.File,
		Delimiter:  req.Delimiter,
		DateFormat: format,
		InvertSign: req.InvertSign,
		Columns: csvfile.Overrides{
			Date:        req.Columns.Date,
			Amount:      req.Columns.Amount,
			Currency:    req.Columns.Currency,
			Description: req.Columns.Description,
			ExternalID:  req.Columns.ExternalID,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	account, ok := s.resolveAccountParam(w, r)
	if !ok {
		return
	}

	runs, err := s.store.ListRuns(r.Context(), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []ledger.IngestRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := s.resolveAccountParam(w, r)
	if !ok {
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// resolveAccountParam resolves the ?account= query parameter, writing the
// error response itself when resolution fails.
func (s *Server) resolveAccountParam(w http.ResponseWriter, r *http.Request) (*ledger.Account, bool) {
	ref := r.URL.Query().Get("account")
	if ref == "" {
		writeError(w, ledger.E(ledger.KindValidation, "account query parameter is required"))
		return nil, false
	}

	account, err := s.store.ResolveAccount(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return account, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Unknown and store
// errors hide their details behind a generic 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var le *ledger.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case ledger.KindNotFound:
			status = http.StatusNotFound
		case ledger.KindValidation, ledger.KindIO:
			status = http.StatusBadRequest
		case ledger.KindParse, ledger.KindMapping:
			status = http.StatusUnprocessableEntity
		case ledger.KindStore:
			status = http.StatusInternalServerError
			message = "internal storage error"
		}
	} else {
		message = "internal error"
	}

	writeJSON(w, status, map[string]string{"error": message})
}
