package ledger

// ChartEntry represents a predefined entry in the default chart of accounts.
type ChartEntry struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Level       int         `json:"level"`
	ParentCode  string      `json:"parent_code,omitempty"`
	Description string      `json:"description"`
}

// DefaultChart is a minimal chart following the SAT grouping codes
// (código agrupador). Level-2 accounts hang off their level-1 group.
var DefaultChart = []ChartEntry{
	// Activo (1xx)
	{Code: "101", Name: "Caja", Type: AccountAsset, Level: 1, Description: "Efectivo en caja"},
	{Code: "101.01", Name: "Caja y efectivo", Type: AccountAsset, Level: 2, ParentCode: "101", Description: "Fondo de caja chica"},
	{Code: "102", Name: "Bancos", Type: AccountAsset, Level: 1, Description: "Cuentas bancarias"},
	{Code: "102.01", Name: "Bancos nacionales", Type: AccountAsset, Level: 2, ParentCode: "102", Description: "Cuenta de cheques principal"},
	{Code: "105", Name: "Clientes", Type: AccountAsset, Level: 1, Description: "Cuentas por cobrar a clientes"},
	{Code: "105.01", Name: "Clientes nacionales", Type: AccountAsset, Level: 2, ParentCode: "105", Description: "Facturas emitidas pendientes de cobro"},
	{Code: "118", Name: "Impuestos acreditables pagados", Type: AccountAsset, Level: 1, Description: "IVA acreditable"},
	{Code: "118.01", Name: "IVA acreditable pagado", Type: AccountAsset, Level: 2, ParentCode: "118", Description: "IVA pagado en compras"},

	// Pasivo (2xx)
	{Code: "201", Name: "Proveedores", Type: AccountLiability, Level: 1, Description: "Cuentas por pagar a proveedores"},
	{Code: "201.01", Name: "Proveedores nacionales", Type: AccountLiability, Level: 2, ParentCode: "201", Description: "Facturas recibidas pendientes de pago"},
	{Code: "208", Name: "Impuestos trasladados", Type: AccountLiability, Level: 1, Description: "IVA trasladado"},
	{Code: "208.01", Name: "IVA trasladado cobrado", Type: AccountLiability, Level: 2, ParentCode: "208", Description: "IVA cobrado a clientes"},
	{Code: "213", Name: "Impuestos y derechos por pagar", Type: AccountLiability, Level: 1, Description: "Contribuciones por enterar"},

	// Capital (3xx)
	{Code: "301", Name: "Capital social", Type: AccountEquity, Level: 1, Description: "Aportaciones de los socios"},
	{Code: "304", Name: "Resultado de ejercicios anteriores", Type: AccountEquity, Level: 1, Description: "Utilidades acumuladas"},

	// Ingresos (4xx)
	{Code: "401", Name: "Ingresos", Type: AccountIncome, Level: 1, Description: "Ingresos por actividades"},
	{Code: "401.01", Name: "Ventas y/o servicios gravados", Type: AccountIncome, Level: 2, ParentCode: "401", Description: "Ventas facturadas"},
	{Code: "403", Name: "Otros ingresos", Type: AccountIncome, Level: 1, Description: "Intereses y otros"},

	// Gastos (6xx)
	{Code: "601", Name: "Gastos generales", Type: AccountExpense, Level: 1, Description: "Gastos de operación"},
	{Code: "601.01", Name: "Sueldos y salarios", Type: AccountExpense, Level: 2, ParentCode: "601", Description: "Nómina"},
	{Code: "601.02", Name: "Arrendamiento", Type: AccountExpense, Level: 2, ParentCode: "601", Description: "Renta de oficina"},
	{Code: "601.03", Name: "Servicios profesionales", Type: AccountExpense, Level: 2, ParentCode: "601", Description: "Honorarios"},
	{Code: "602", Name: "Gastos de venta", Type: AccountExpense, Level: 1, Description: "Publicidad y comisiones"},
}

// LookupChartEntry finds a chart entry by code.
func LookupChartEntry(code string) *ChartEntry {
	for i := range DefaultChart {
		if DefaultChart[i].Code == code {
			return &DefaultChart[i]
		}
	}
	return nil
}
