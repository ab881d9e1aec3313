package ledger

import "strings"

// TemplateLine defines one side of a template entry. ChartCode is the
// suggested account from the default chart; the caller may substitute
// another account when executing the template.
type TemplateLine struct {
	ChartCode string `json:"chart_code"`
	Role      string `json:"role"` // human label like "Bancos", "Ventas"
	IsDebit   bool   `json:"is_debit"`
}

// Template is a reusable two-line póliza.
type Template struct {
	Name        string         `json:"name"`
	Type        EntryType      `json:"type"`
	Description string         `json:"description"`
	Lines       []TemplateLine `json:"lines"`
}

// Templates is the list of predefined entry templates.
var Templates = []Template{
	{
		Name:        "venta-contado",
		Type:        EntryIncome,
		Description: "Venta cobrada al momento. Bancos aumenta (cargo), Ventas aumenta (abono).",
		Lines: []TemplateLine{
			{ChartCode: "102.01", Role: "Bancos", IsDebit: true},
			{ChartCode: "401.01", Role: "Ventas", IsDebit: false},
		},
	},
	{
		Name:        "venta-credito",
		Type:        EntryIncome,
		Description: "Venta a crédito. Clientes aumenta (cargo), Ventas aumenta (abono).",
		Lines: []TemplateLine{
			{ChartCode: "105.01", Role: "Clientes", IsDebit: true},
			{ChartCode: "401.01", Role: "Ventas", IsDebit: false},
		},
	},
	{
		Name:        "cobro-cliente",
		Type:        EntryExpense,
		Description: "El cliente liquida una factura. Bancos aumenta (cargo), Clientes disminuye (abono).",
		Lines: []TemplateLine{
			{ChartCode: "102.01", Role: "Bancos", IsDebit: true},
			{ChartCode: "105.01", Role: "Clientes", IsDebit: false},
		},
	},
	{
		Name:        "gasto-proveedor",
		Type:        EntryExpense,
		Description: "Gasto facturado por un proveedor. Gastos aumenta (cargo), Proveedores aumenta (abono).",
		Lines: []TemplateLine{
			{ChartCode: "601.03", Role: "Gastos", IsDebit: true},
			{ChartCode: "201.01", Role: "Proveedores", IsDebit: false},
		},
	},
	{
		Name:        "pago-proveedor",
		Type:        EntryExpense,
		Description: "Pago a proveedor. Proveedores disminuye (cargo), Bancos disminuye (abono).",
		Lines: []TemplateLine{
			{ChartCode: "201.01", Role: "Proveedores", IsDebit: true},
			{ChartCode: "102.01", Role: "Bancos", IsDebit: false},
		},
	},
	{
		Name:        "aportacion-capital",
		Type:        EntryDiary,
		Description: "Los socios aportan capital. Bancos aumenta (cargo), Capital social aumenta (abono).",
		Lines: []TemplateLine{
			{ChartCode: "102.01", Role: "Bancos", IsDebit: true},
			{ChartCode: "301", Role: "Capital social", IsDebit: false},
		},
	},
}

// LookupTemplate finds a template by name, case-insensitively.
func LookupTemplate(name string) (*Template, bool) {
	for i := range Templates {
		if strings.EqualFold(Templates[i].Name, name) {
			return &Templates[i], true
		}
	}
	return nil, false
}

// Build expands the template into balanced lines for amount. accountFor
// maps a chart code to the account id that should receive the line.
func (t *Template) Build(amount Amount, accountFor func(code string) (string, bool)) ([]JournalEntryLine, error) {
	if !amount.IsPositive() {
		return nil, FieldError{Field: "amount", Err: ErrInvalidAmount, Detail: "must be positive"}
	}
	lines := make([]JournalEntryLine, 0, len(t.Lines))
	for _, tl := range t.Lines {
		id, ok := accountFor(tl.ChartCode)
		if !ok {
			return nil, FieldError{Field: "account_id", Err: ErrUnknownAccount, Detail: "no account with code " + tl.ChartCode}
		}
		l := JournalEntryLine{AccountID: id, Description: tl.Role}
		if tl.IsDebit {
			l.Debit = amount
		} else {
			l.Credit = amount
		}
		lines = append(lines, l)
	}
	return lines, nil
}
