package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/ledger"
)

type createPayableRequest struct {
	SupplierID  string        `json:"supplier_id"`
	InvoiceID   string        `json:"invoice_id,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	IssueDate   ledger.Date   `json:"issue_date"`
	DueDate     ledger.Date   `json:"due_date"`
	TotalAmount ledger.Amount `json:"total_amount"`
}

func (s *Server) createPayable(w http.ResponseWriter, r *http.Request) {
	var req createPayableRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	item, err := s.books.CreatePayable(r.Context(), &ledger.OpenItem{
		PartyID:     req.SupplierID,
		InvoiceID:   req.InvoiceID,
		Reference:   req.Reference,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// openItemRoutes registers the read and payment routes shared by
// receivables and payables.
func (s *Server) openItemRoutes(kind ledger.ItemKind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", s.listOpenItems(kind))
		r.Get("/{id}", s.getOpenItem(kind))
		r.Post("/{id}/payments", s.recordPayment(kind))
		r.Post("/{id}/mark-paid", s.markPaid(kind))
	}
}

func (s *Server) listOpenItems(kind ledger.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := queryDateRange(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		items, err := s.books.ListOpenItems(r.Context(), ledger.ItemFilter{
			Kind:    kind,
			PartyID: r.URL.Query().Get("party_id"),
			From:    from,
			To:      to,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	}
}

func (s *Server) getOpenItem(kind ledger.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.books.GetOpenItem(r.Context(), kind, pathID(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// IdempotencyKeyHeader lets a client retry a payment without applying it
// twice.
const IdempotencyKeyHeader = "Idempotency-Key"

func (s *Server) recordPayment(kind ledger.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req books.PaymentRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		req.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

		res, err := s.books.RecordPayment(r.Context(), kind, pathID(r, "id"), req)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}
		writeJSON(w, status, res)
	}
}

func (s *Server) markPaid(kind ledger.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.books.MarkAsPaid(r.Context(), kind, pathID(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}
