// Package server exposes the books service over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/ledger"
)

type Server struct {
	books   *books.Service
	router  chi.Router
	addr    string
	timeout time.Duration
	log     *zap.Logger
}

func New(svc *books.Service, cfg config.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	s := &Server{books: svc, router: r, addr: cfg.Addr, timeout: cfg.RequestTimeout, log: log}

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}/status", s.setAccountStatus)

		// Journal
		r.Post("/journal-entries", s.createEntry)
		r.Post("/journal-entries/template", s.createTemplateEntry)
		r.Get("/journal-entries", s.listEntries)
		r.Get("/journal-entries/{id}", s.getEntry)
		r.Patch("/journal-entries/{id}/status", s.setEntryStatus)
		r.Get("/templates", s.listTemplates)

		// Clients and suppliers
		r.Post("/clients", s.createClient)
		r.Get("/clients", s.listClients)
		r.Get("/clients/{id}", s.getClient)
		r.Put("/clients/{id}", s.updateClient)
		r.Get("/clients/{id}/exposure", s.clientExposure)
		r.Get("/clients/{id}/delinquency", s.clientDelinquency)
		r.Get("/clients/{id}/statement", s.clientStatement)

		// Invoices
		r.Post("/invoices", s.createInvoice)
		r.Get("/invoices", s.listInvoices)
		r.Get("/invoices/{id}", s.getInvoice)
		r.Post("/invoices/{id}/cancel", s.cancelInvoice)

		// Receivables and payables
		r.Route("/receivables", s.openItemRoutes(ledger.Receivable))
		r.Route("/payables", func(r chi.Router) {
			r.Post("/", s.createPayable)
			s.openItemRoutes(ledger.Payable)(r)
		})

		// Bank reconciliation
		r.Post("/bank-transactions", s.createBankTransaction)
		r.Post("/bank-transactions/import", s.importBankTransactions)
		r.Get("/bank-transactions", s.listBankTransactions)
		r.Get("/bank-transactions/{id}", s.getBankTransaction)
		r.Get("/bank-transactions/{id}/candidates", s.matchCandidates)
		r.Post("/reconciliation/match", s.matchTransaction)

		// Reports
		r.Get("/reports/aging", s.agingReport)
		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/balance-check", s.balanceCheck)

		// Chart of accounts reference
		r.Get("/chart", s.getChart)

		// Tax calendar
		r.Get("/tax-events", s.listTaxEvents)
		r.Post("/tax-events/generate", s.generateTaxEvents)
		r.Get("/tax-events/upcoming", s.upcomingTaxEvents)
		r.Post("/tax-events/{id}/filed", s.markTaxEventFiled)

		// Fiscal validation
		r.Get("/fiscal/rfc/{rfc}", s.checkRFC)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	srv := s.httpServer()
	s.log.Info("libromayor server listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := s.httpServer()
	errc := make(chan error, 1)
	go func() {
		s.log.Info("libromayor server listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
