package server

import (
	"net/http"

	"github.com/simonvc/libromayor/internal/ledger"
)

type createAccountRequest struct {
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Type           ledger.AccountType `json:"type"`
	Nature         ledger.Nature      `json:"nature,omitempty"`
	Level          int                `json:"level,omitempty"`
	ParentID       string             `json:"parent_id,omitempty"`
	OpeningBalance ledger.Amount      `json:"opening_balance"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	acct, err := s.books.AddAccount(r.Context(), &ledger.Account{
		Code:     req.Code,
		Name:     req.Name,
		Type:     req.Type,
		Nature:   req.Nature,
		Level:    req.Level,
		ParentID: req.ParentID,
		Balance:  req.OpeningBalance,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.AccountFilter{
		Type:     ledger.AccountType(q.Get("type")),
		Status:   ledger.AccountStatus(q.Get("status")),
		ParentID: q.Get("parent_id"),
	}

	accounts, err := s.books.ListAccounts(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.books.GetAccount(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) setAccountStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status ledger.AccountStatus `json:"status"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	acct, err := s.books.SetAccountStatus(r.Context(), pathID(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
