package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/libromayor/internal/ledger"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Papelería La Estrella", ledger.ClientIndividual)
	cfg.Business.RFC = "GODE561231GR8"
	cfg.Calendar.Holidays = []string{"2025-12-12"}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Books.VoidReversesBalances = false

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Mi Empresa", "")

	assert.Equal(t, "Mi Empresa", cfg.Business.Name)
	assert.Equal(t, ledger.ClientLegalEntity, cfg.Business.EntityType)
	assert.Equal(t, 30, cfg.Books.DefaultCreditDays)
	assert.Equal(t, "105.01", cfg.Books.ReceivableAccountCode)
	assert.Equal(t, "401.01", cfg.Books.SalesAccountCode)
	assert.True(t, cfg.Books.VoidReversesBalances)
	assert.Equal(t, 5, cfg.Aging.ReceivableDueSoonDays)
	assert.Equal(t, 3, cfg.Aging.PayableDueSoonDays)
	assert.Equal(t, FiscalSimulated, cfg.Fiscal.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("aging:\n  payable_due_soon_days: 7\nserver:\n  request_timeout: 2s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Aging.PayableDueSoonDays)
	assert.Equal(t, 5, cfg.Aging.ReceivableDueSoonDays)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "MXN", cfg.Books.Currency)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default("", ""), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"entity type", func(c *Config) { c.Business.EntityType = "Cooperative" }},
		{"credit days", func(c *Config) { c.Books.DefaultCreditDays = -1 }},
		{"aging", func(c *Config) { c.Aging.PayableDueSoonDays = -3 }},
		{"fiscal mode", func(c *Config) { c.Fiscal.Mode = "live" }},
		{"timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus_Mons" }},
		{"holiday", func(c *Config) { c.Calendar.Holidays = []string{"12/12/2025"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("x", "")
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBusinessCalendar(t *testing.T) {
	cfg := Default("x", "")
	cfg.Calendar.Holidays = []string{"2025-12-12"}
	cal, err := cfg.BusinessCalendar()
	require.NoError(t, err)
	assert.False(t, cal.IsBusinessDay(ledger.MustParseDate("2025-12-12")))
	assert.False(t, cal.IsBusinessDay(ledger.MustParseDate("2025-12-25")))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestLogger(t *testing.T) {
	cfg := Default("x", "")
	cfg.Log.Level = "debug"
	cfg.Log.Format = "console"
	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Log.Format = "xml"
	_, err = cfg.Logger()
	assert.Error(t, err)

	cfg.Log.Format = "json"
	cfg.Log.Level = "loud"
	_, err = cfg.Logger()
	assert.Error(t, err)
}
