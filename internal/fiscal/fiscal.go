// Package fiscal checks taxpayer and CFDI data against the tax authority.
// Only a simulated backend exists; the SAT web services are not called.
package fiscal

import (
	"context"
	"errors"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

// ErrUnavailable is returned when fiscal validation is switched off.
var ErrUnavailable = errors.New("fiscal validation unavailable")

type CFDIState string

const (
	CFDIVigente   CFDIState = "Vigente"
	CFDICancelado CFDIState = "Cancelado"
	CFDINotFound  CFDIState = "No Encontrado"
)

type OpinionResult string

const (
	OpinionPositive OpinionResult = "Positiva"
	OpinionNegative OpinionResult = "Negativa"
)

// RFCCheck is the taxpayer status for an RFC.
type RFCCheck struct {
	RFC        string            `json:"rfc"`
	Valid      bool              `json:"valid"`
	Type       ledger.ClientType `json:"type,omitempty"`
	Registered bool              `json:"registered"`
	TaxRegime  string            `json:"tax_regime,omitempty"`
	Message    string            `json:"message,omitempty"`
}

type CFDIStatus struct {
	UUID        string    `json:"uuid"`
	State       CFDIState `json:"state"`
	Cancellable bool      `json:"cancellable"`
}

type Opinion struct {
	RFC    string        `json:"rfc"`
	Result OpinionResult `json:"result"`
}

// Validator answers fiscal questions about taxpayers and invoices.
type Validator interface {
	ValidateRFC(ctx context.Context, rfc string) (RFCCheck, error)
	CFDIStatus(ctx context.Context, uuid, issuerRFC, receiverRFC string, total ledger.Amount) (CFDIStatus, error)
	TaxRegime(ctx context.Context, rfc string) (string, error)
	ComplianceOpinion(ctx context.Context, rfc string) (Opinion, error)
}

// Regimes is the subset of the SAT c_RegimenFiscal catalog the simulated
// backend hands out.
var Regimes = map[string]string{
	"601": "General de Ley Personas Morales",
	"612": "Personas Físicas con Actividades Empresariales y Profesionales",
	"626": "Régimen Simplificado de Confianza",
	"616": "Sin obligaciones fiscales",
}

// Disabled rejects every call with ErrUnavailable.
type Disabled struct{}

func (Disabled) ValidateRFC(context.Context, string) (RFCCheck, error) {
	return RFCCheck{}, ErrUnavailable
}

func (Disabled) CFDIStatus(context.Context, string, string, string, ledger.Amount) (CFDIStatus, error) {
	return CFDIStatus{}, ErrUnavailable
}

func (Disabled) TaxRegime(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) ComplianceOpinion(context.Context, string) (Opinion, error) {
	return Opinion{}, ErrUnavailable
}

// Simulated answers from the RFC's shape alone. Answers are deterministic
// so tests and demos behave the same on every run.
type Simulated struct {
	// Cancelled lists folios that report as cancelled.
	Cancelled map[string]bool
}

func NewSimulated() *Simulated {
	return &Simulated{Cancelled: make(map[string]bool)}
}

func (s *Simulated) ValidateRFC(ctx context.Context, rfc string) (RFCCheck, error) {
	if err := ctx.Err(); err != nil {
		return RFCCheck{}, err
	}
	rfc = ledger.NormalizeRFC(rfc)
	res := RFCCheck{RFC: rfc}
	if err := ledger.CheckRFC(rfc, ""); err != nil {
		res.Message = err.Error()
		return res, nil
	}
	res.Valid = true
	res.Type = typeOf(rfc)
	res.Registered = true
	res.TaxRegime = regimeFor(rfc)
	res.Message = Regimes[res.TaxRegime]
	return res, nil
}

func (s *Simulated) CFDIStatus(ctx context.Context, uuid, issuerRFC, receiverRFC string, total ledger.Amount) (CFDIStatus, error) {
	if err := ctx.Err(); err != nil {
		return CFDIStatus{}, err
	}
	uuid = strings.ToUpper(strings.TrimSpace(uuid))
	switch {
	case uuid == "" || !total.IsPositive():
		return CFDIStatus{UUID: uuid, State: CFDINotFound}, nil
	case ledger.CheckRFC(issuerRFC, "") != nil || ledger.CheckRFC(receiverRFC, "") != nil:
		return CFDIStatus{UUID: uuid, State: CFDINotFound}, nil
	case s.Cancelled[uuid]:
		return CFDIStatus{UUID: uuid, State: CFDICancelado}, nil
	default:
		return CFDIStatus{UUID: uuid, State: CFDIVigente, Cancellable: true}, nil
	}
}

func (s *Simulated) TaxRegime(ctx context.Context, rfc string) (string, error) {
	check, err := s.ValidateRFC(ctx, rfc)
	if err != nil {
		return "", err
	}
	if !check.Valid {
		return "", ledger.FieldError{Field: "rfc", Err: ledger.ErrInvalidRFC, Detail: check.RFC}
	}
	return check.TaxRegime, nil
}

// ComplianceOpinion is negative only for the foreign generic RFC, which
// cannot hold an opinion.
func (s *Simulated) ComplianceOpinion(ctx context.Context, rfc string) (Opinion, error) {
	check, err := s.ValidateRFC(ctx, rfc)
	if err != nil {
		return Opinion{}, err
	}
	if !check.Valid {
		return Opinion{}, ledger.FieldError{Field: "rfc", Err: ledger.ErrInvalidRFC, Detail: check.RFC}
	}
	op := Opinion{RFC: check.RFC, Result: OpinionPositive}
	if check.RFC == ledger.RFCGenericForeign {
		op.Result = OpinionNegative
	}
	return op, nil
}

func typeOf(rfc string) ledger.ClientType {
	if len([]rune(rfc)) == 12 {
		return ledger.ClientLegalEntity
	}
	return ledger.ClientIndividual
}

func regimeFor(rfc string) string {
	switch {
	case rfc == ledger.RFCGenericNational || rfc == ledger.RFCGenericForeign:
		return "616"
	case typeOf(rfc) == ledger.ClientLegalEntity:
		return "601"
	default:
		return "612"
	}
}

// ForMode returns the validator for a configured mode name. Anything other
// than "disabled" gets the simulated backend.
func ForMode(mode string) Validator {
	if mode == "disabled" {
		return Disabled{}
	}
	return NewSimulated()
}
