package ledger

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type ClientType string

const (
	ClientIndividual  ClientType = "Individual"
	ClientLegalEntity ClientType = "LegalEntity"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "Active"
	ClientInactive ClientStatus = "Inactive"
)

// Client is a customer; the same record serves as a supplier for payables.
type Client struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	RFC                 string       `json:"rfc"`
	Type                ClientType   `json:"type"`
	Status              ClientStatus `json:"status"`
	Email               string       `json:"email,omitempty"`
	Phone               string       `json:"phone,omitempty"`
	Address             string       `json:"address,omitempty"`
	TaxRegime           string       `json:"tax_regime,omitempty"`
	AssociatedAccountID string       `json:"associated_account_id,omitempty"`
	CreditLimit         Amount       `json:"credit_limit"`
	CreditDays          int          `json:"credit_days"`
	Balance             Amount       `json:"balance"`
	InternalNotes       string       `json:"internal_notes,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

var (
	rfcIndividual  = regexp.MustCompile(`^[A-ZÑ&]{4}([0-9]{6})[A-Z0-9]{3}$`)
	rfcLegalEntity = regexp.MustCompile(`^[A-ZÑ&]{3}([0-9]{6})[A-Z0-9]{3}$`)
)

// Generic RFCs SAT assigns to the general public and to foreign residents.
const (
	RFCGenericNational = "XAXX010101000"
	RFCGenericForeign  = "XEXX010101000"
)

// NormalizeRFC upper-cases and trims an RFC.
func NormalizeRFC(rfc string) string {
	return strings.ToUpper(strings.TrimSpace(rfc))
}

// CheckRFC validates an RFC's shape for the given taxpayer type, including
// that the embedded YYMMDD is a real date. An empty type accepts either shape.
func CheckRFC(rfc string, t ClientType) error {
	rfc = NormalizeRFC(rfc)
	if rfc == RFCGenericNational || rfc == RFCGenericForeign {
		return nil
	}

	var m []string
	switch t {
	case ClientIndividual:
		m = rfcIndividual.FindStringSubmatch(rfc)
	case ClientLegalEntity:
		m = rfcLegalEntity.FindStringSubmatch(rfc)
	default:
		if m = rfcIndividual.FindStringSubmatch(rfc); m == nil {
			m = rfcLegalEntity.FindStringSubmatch(rfc)
		}
	}
	if m == nil {
		return FieldError{Field: "rfc", Err: ErrInvalidRFC, Detail: rfc}
	}
	if _, err := time.Parse("060102", m[1]); err != nil {
		return FieldError{Field: "rfc", Err: ErrInvalidRFC, Detail: "bad date segment " + m[1]}
	}
	return nil
}

// ApplyDefaults fills in the values a draft may leave out.
func (c *Client) ApplyDefaults() {
	c.RFC = NormalizeRFC(c.RFC)
	c.Name = strings.TrimSpace(c.Name)
	if c.Status == "" {
		c.Status = ClientActive
	}
	if c.Type == "" {
		if len([]rune(c.RFC)) == 12 {
			c.Type = ClientLegalEntity
		} else {
			c.Type = ClientIndividual
		}
	}
}

func (c *Client) Validate() error {
	var verrs ValidationErrors
	if c.Name == "" {
		verrs.Add("name", ErrMissingField, "")
	}
	if c.Type != ClientIndividual && c.Type != ClientLegalEntity {
		verrs.Add("type", ErrInvalidField, "unknown client type %q", c.Type)
	}
	if c.Status != ClientActive && c.Status != ClientInactive {
		verrs.Add("status", ErrInvalidField, "unknown status %q", c.Status)
	}
	if err := CheckRFC(c.RFC, c.Type); err != nil {
		verrs.Add("rfc", ErrInvalidRFC, "%q", c.RFC)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			verrs.Add("email", ErrInvalidField, "%q", c.Email)
		}
	}
	if c.CreditLimit < 0 {
		verrs.Add("credit_limit", ErrInvalidAmount, "cannot be negative")
	}
	if c.CreditDays < 0 {
		verrs.Add("credit_days", ErrInvalidField, "cannot be negative")
	}
	return verrs.Err()
}
