package server

import (
	"net/http"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/ledger"
)

type createEntryRequest struct {
	Number    string                    `json:"number,omitempty"`
	Date      ledger.Date               `json:"date"`
	Concept   string                    `json:"concept"`
	Type      ledger.EntryType          `json:"type"`
	Status    ledger.EntryStatus        `json:"status,omitempty"`
	Reference string                    `json:"reference,omitempty"`
	ClientID  string                    `json:"client_id,omitempty"`
	Lines     []ledger.JournalEntryLine `json:"lines"`
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.books.CommitEntry(r.Context(), &ledger.JournalEntry{
		Number:    req.Number,
		Date:      req.Date,
		Concept:   req.Concept,
		Type:      req.Type,
		Status:    req.Status,
		Reference: req.Reference,
		ClientID:  req.ClientID,
		Lines:     req.Lines,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) createTemplateEntry(w http.ResponseWriter, r *http.Request) {
	var req books.TemplateEntry
	if !s.decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.books.CommitTemplate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := queryDateRange(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	entries, err := s.books.ListEntries(r.Context(), ledger.EntryFilter{
		Type:           ledger.EntryType(q.Get("type")),
		Status:         ledger.EntryStatus(q.Get("status")),
		ClientID:       q.Get("client_id"),
		Reconciliation: ledger.ReconciliationStatus(q.Get("reconciliation")),
		From:           from,
		To:             to,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.books.GetEntry(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) setEntryStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status ledger.EntryStatus `json:"status"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.books.SetEntryStatus(r.Context(), pathID(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.Templates)
}
