package ledger

import (
	"strings"
	"time"
)

type SATStatus string

const (
	SATValid     SATStatus = "Valid"
	SATCancelled SATStatus = "Cancelled"
)

// Invoice is an issued CFDI. It references, but does not own, the income
// entry and the receivable created with it.
type Invoice struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	Date           Date      `json:"date"`
	Amount         Amount    `json:"amount"`
	CFDIUse        string    `json:"cfdi_use"`
	SATStatus      SATStatus `json:"sat_status"`
	JournalEntryID string    `json:"journal_entry_id,omitempty"`
	ReceivableID   string    `json:"receivable_id,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CFDIUses is the subset of the SAT c_UsoCFDI catalog accepted here.
var CFDIUses = map[string]string{
	"G01":  "Adquisición de mercancías",
	"G02":  "Devoluciones, descuentos o bonificaciones",
	"G03":  "Gastos en general",
	"I01":  "Construcciones",
	"I02":  "Mobiliario y equipo de oficina por inversiones",
	"I04":  "Equipo de cómputo y accesorios",
	"I08":  "Otra maquinaria y equipo",
	"D01":  "Honorarios médicos, dentales y gastos hospitalarios",
	"S01":  "Sin efectos fiscales",
	"CP01": "Pagos",
}

func (inv *Invoice) ApplyDefaults() {
	inv.ID = strings.ToUpper(strings.TrimSpace(inv.ID))
	inv.CFDIUse = strings.ToUpper(strings.TrimSpace(inv.CFDIUse))
	if inv.CFDIUse == "" {
		inv.CFDIUse = "G03"
	}
	if inv.SATStatus == "" {
		inv.SATStatus = SATValid
	}
}

func (inv *Invoice) Validate() error {
	var verrs ValidationErrors
	if inv.ClientID == "" {
		verrs.Add("client_id", ErrMissingField, "")
	}
	if inv.Date.IsZero() {
		verrs.Add("date", ErrMissingField, "")
	}
	if !inv.Amount.IsPositive() {
		verrs.Add("amount", ErrInvalidAmount, "must be positive")
	}
	if _, ok := CFDIUses[inv.CFDIUse]; !ok {
		verrs.Add("cfdi_use", ErrInvalidCFDIUse, "%q", inv.CFDIUse)
	}
	return verrs.Err()
}
