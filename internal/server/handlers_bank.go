package server

import (
	"io"
	"mime"
	"net/http"

	"github.com/simonvc/libromayor/internal/ledger"
)

// Bank statements larger than this are rejected.
const maxImportBytes = 10 << 20

type createBankTransactionRequest struct {
	Date        ledger.Date      `json:"date"`
	Description string           `json:"description"`
	Amount      ledger.Amount    `json:"amount"`
	Direction   ledger.Direction `json:"direction,omitempty"`
	Reference   string           `json:"reference,omitempty"`
}

func (s *Server) createBankTransaction(w http.ResponseWriter, r *http.Request) {
	var req createBankTransactionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	txn, err := s.books.AddBankTransaction(r.Context(), &ledger.BankTransaction{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Direction:   req.Direction,
		Reference:   req.Reference,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// importBankTransactions accepts the statement either as the raw request
// body or as the "file" part of a multipart form.
func (s *Server) importBankTransactions(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "generic"
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
			return
		}
		defer f.Close()
		src = f
	}

	res, err := s.books.ImportBankCSV(r.Context(), format, src)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listBankTransactions(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryDateRange(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	txns, err := s.books.ListBankTransactions(r.Context(), ledger.BankFilter{
		Status: ledger.ReconciliationStatus(r.URL.Query().Get("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

func (s *Server) getBankTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.books.GetBankTransaction(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) matchCandidates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.books.Candidates(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

type matchRequest struct {
	TransactionID  string `json:"transaction_id"`
	JournalEntryID string `json:"journal_entry_id"`
}

func (s *Server) matchTransaction(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var verrs ledger.ValidationErrors
	if req.TransactionID == "" {
		verrs.Add("transaction_id", ledger.ErrMissingField, "")
	}
	if req.JournalEntryID == "" {
		verrs.Add("journal_entry_id", ledger.ErrMissingField, "")
	}
	if err := verrs.Err(); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.books.Match(r.Context(), req.TransactionID, req.JournalEntryID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
