package books

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/fiscal"
	"github.com/simonvc/libromayor/internal/ledger"
)

// CreateClient registers a client or supplier. With fiscal.verify_on_create
// the RFC is checked against the fiscal validator first, and an empty tax
// regime is filled from its answer.
func (s *Service) CreateClient(ctx context.Context, c *ledger.Client) (*ledger.Client, error) {
	c.ApplyDefaults()
	if err := s.checkClient(ctx, c); err != nil {
		return nil, err
	}
	if err := s.verifyRFC(ctx, c); err != nil {
		return nil, err
	}

	c.ID = newID()
	c.Balance = 0
	c.CreatedAt = s.now().UTC()
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("client created", zap.String("id", c.ID), zap.String("rfc", c.RFC))
	return c, nil
}

// UpdateClient replaces a client's editable fields. Id, balance and
// creation time are kept.
func (s *Service) UpdateClient(ctx context.Context, id string, c *ledger.Client) (*ledger.Client, error) {
	current, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = current.ID
	c.Balance = current.Balance
	c.CreatedAt = current.CreatedAt
	c.ApplyDefaults()
	if err := s.checkClient(ctx, c); err != nil {
		return nil, err
	}
	if c.RFC != current.RFC {
		if err := s.verifyRFC(ctx, c); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("client updated", zap.String("id", c.ID))
	return c, nil
}

func (s *Service) checkClient(ctx context.Context, c *ledger.Client) error {
	var verrs ledger.ValidationErrors
	if err := c.Validate(); err != nil {
		verrs = append(verrs, ledger.Fields(err)...)
	}
	if c.AssociatedAccountID != "" {
		_, err := s.repo.GetAccount(ctx, c.AssociatedAccountID)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			verrs.Add("associated_account_id", ledger.ErrUnknownAccount, "%s", c.AssociatedAccountID)
		} else if err != nil {
			return err
		}
	}
	return verrs.Err()
}

func (s *Service) verifyRFC(ctx context.Context, c *ledger.Client) error {
	if !s.cfg.Fiscal.VerifyOnCreate {
		return nil
	}
	check, err := s.fiscal.ValidateRFC(ctx, c.RFC)
	if errors.Is(err, fiscal.ErrUnavailable) {
		s.log.Warn("fiscal validation unavailable, RFC not verified", zap.String("rfc", c.RFC))
		return nil
	}
	if err != nil {
		return err
	}
	if !check.Valid {
		return ledger.FieldError{Field: "rfc", Err: ledger.ErrInvalidRFC, Detail: check.Message}
	}
	if c.TaxRegime == "" {
		c.TaxRegime = check.TaxRegime
	}
	return nil
}

func (s *Service) GetClient(ctx context.Context, id string) (*ledger.Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) ListClients(ctx context.Context, f ledger.ClientFilter) ([]ledger.Client, error) {
	return s.repo.ListClients(ctx, f)
}

// CreditExposure measures the client's open receivables against its limit.
func (s *Service) CreditExposure(ctx context.Context, clientID string) (ledger.CreditExposure, error) {
	c, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return ledger.CreditExposure{}, err
	}
	items, err := s.repo.ListOpenItems(ctx, ledger.ItemFilter{Kind: ledger.Receivable, PartyID: clientID})
	if err != nil {
		return ledger.CreditExposure{}, err
	}
	return ledger.ComputeExposure(c, items), nil
}

// Delinquency reports how long the client has gone without a payment
// entry while owing a balance.
func (s *Service) Delinquency(ctx context.Context, clientID string) (ledger.Delinquency, error) {
	c, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return ledger.Delinquency{}, err
	}
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{ClientID: clientID})
	if err != nil {
		return ledger.Delinquency{}, err
	}
	return ledger.ComputeDelinquency(c, entries, s.Today()), nil
}

// CheckRFC asks the fiscal validator about an RFC.
func (s *Service) CheckRFC(ctx context.Context, rfc string) (fiscal.RFCCheck, error) {
	return s.fiscal.ValidateRFC(ctx, rfc)
}
