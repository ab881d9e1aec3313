package server

import (
	"net/http"

	"github.com/simonvc/libromayor/internal/ledger"
)

type createInvoiceRequest struct {
	ID       string        `json:"id,omitempty"`
	ClientID string        `json:"client_id"`
	Date     ledger.Date   `json:"date"`
	Amount   ledger.Amount `json:"amount"`
	CFDIUse  string        `json:"cfdi_use,omitempty"`
	FileName string        `json:"file_name,omitempty"`
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	inv, err := s.books.CreateInvoice(r.Context(), &ledger.Invoice{
		ID:       req.ID,
		ClientID: req.ClientID,
		Date:     req.Date,
		Amount:   req.Amount,
		CFDIUse:  req.CFDIUse,
		FileName: req.FileName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoices, err := s.books.ListInvoices(r.Context(), ledger.InvoiceFilter{
		ClientID:  q.Get("client_id"),
		SATStatus: ledger.SATStatus(q.Get("sat_status")),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(invoices))
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.books.GetInvoice(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.books.CancelInvoice(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
