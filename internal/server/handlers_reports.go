package server

import (
	"net/http"

	"github.com/simonvc/libromayor/internal/ledger"
)

// agingReport serves ?type=receivable|payable&entity=&from=&to=. The date
// bounds apply to the due date.
func (s *Server) agingReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := queryDateRange(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	party := q.Get("entity")
	if party == "" {
		party = q.Get("party_id")
	}

	rep, err := s.books.AgingReport(r.Context(), ledger.AgingFilter{
		Kind:    ledger.ItemKind(q.Get("type")),
		PartyID: party,
		From:    from,
		To:      to,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := s.books.TrialBalance(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tb)
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	bs, err := s.books.BalanceSheet(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) balanceCheck(w http.ResponseWriter, r *http.Request) {
	check, err := s.books.VerifyBalances(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.DefaultChart)
}
