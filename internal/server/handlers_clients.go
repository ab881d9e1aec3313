package server

import (
	"net/http"

	"github.com/simonvc/libromayor/internal/ledger"
)

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var c ledger.Client
	if !s.decodeJSON(w, r, &c) {
		return
	}

	created, err := s.books.CreateClient(r.Context(), &c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clients, err := s.books.ListClients(r.Context(), ledger.ClientFilter{
		Status: ledger.ClientStatus(q.Get("status")),
		Search: q.Get("q"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(clients))
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.books.GetClient(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	var c ledger.Client
	if !s.decodeJSON(w, r, &c) {
		return
	}

	updated, err := s.books.UpdateClient(r.Context(), pathID(r, "id"), &c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) clientExposure(w http.ResponseWriter, r *http.Request) {
	exp, err := s.books.CreditExposure(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) clientDelinquency(w http.ResponseWriter, r *http.Request) {
	d, err := s.books.Delinquency(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) clientStatement(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryDateRange(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	st, err := s.books.Statement(r.Context(), pathID(r, "id"), from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) checkRFC(w http.ResponseWriter, r *http.Request) {
	check, err := s.books.CheckRFC(r.Context(), pathID(r, "rfc"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}
