package commands

import (
	"earningsdump/internal/earnings"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return defaultConfig().withDefaults()
}

func withOrder(cfg Config) Config {
	cfg.ColumnNames = []string{"Symbol", "Company", "Earnings Call Time", "EPS Estimate"}
	cfg.OutputOrder = []earnings.OrderEntry{
		{Abbrev: "nm", Column: "Company"},
		{Abbrev: "sym", Column: "Symbol"},
		{Abbrev: "eps", Column: "EPS Estimate"},
		{Abbrev: "tm", Column: "Earnings Call Time"},
	}
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, withOrder(validConfig()).validate())

	negative := -1
	cases := []struct {
		name   string
		modify func(c *Config)
		expect string
	}{
		{
			name:   "missing columns",
			modify: func(c *Config) { c.ColumnNames = nil },
			expect: "column_names must not be empty",
		},
		{
			name:   "duplicate column",
			modify: func(c *Config) { c.ColumnNames = append(c.ColumnNames, "Symbol") },
			expect: `"Symbol" is listed twice`,
		},
		{
			name: "output order references unknown column",
			modify: func(c *Config) {
				c.ColumnNames = []string{"Company", "Earnings Call Time", "EPS Estimate"}
			},
			expect: `column "Symbol" is not one of column_names`,
		},
		{
			name:   "too few output fields",
			modify: func(c *Config) { c.OutputOrder = c.OutputOrder[:3] },
			expect: "at least 4 entries",
		},
		{
			name: "unmapped column",
			modify: func(c *Config) {
				c.ColumnNames = append(c.ColumnNames, "Market Cap")
			},
			expect: "output_order has 4 entries but column_names has 5",
		},
		{
			name:   "duplicate abbrev",
			modify: func(c *Config) { c.OutputOrder[3].Abbrev = "nm" },
			expect: `abbrev "nm" is used twice`,
		},
		{
			name:   "unknown filter field",
			modify: func(c *Config) { c.Filter.Field = "ticker" },
			expect: `filter.field: "ticker"`,
		},
		{
			name:   "bad pattern",
			modify: func(c *Config) { c.Filter.Pattern = "([" },
			expect: "filter.pattern",
		},
		{
			name:   "bad existence policy",
			modify: func(c *Config) { c.Fetch.Existence = "maybe" },
			expect: "fetch.existence",
		},
		{
			name:   "negative table index",
			modify: func(c *Config) { c.Table.Index = &negative },
			expect: "table.index",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			cfg := withOrder(validConfig())
			test.modify(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), test.expect)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		// comments are allowed
		column_names: ["Symbol", "Company", "Earnings Call Time", "EPS Estimate"],
		output_order: [
			{ abbrev: "nm", column: "Company" },
			{ abbrev: "sym", column: "Symbol" },
			{ abbrev: "eps", column: "EPS Estimate" },
			{ abbrev: "tm", column: "Earnings Call Time" },
		],
		table: { index: 1 },
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		fetch: { attempts: 3, existence: "strict" },
		filter: { unique: false },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://finance.yahoo.com/calendar/earnings", cfg.Url)
	require.Equal(t, 3, cfg.Fetch.Attempts)
	require.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, "sym", cfg.Filter.Field)
	require.NotNil(t, cfg.Filter.Unique)
	require.False(t, *cfg.Filter.Unique)
	require.Equal(t, earnings.IndexLocator{Index: 1}, cfg.Layout().Locator)

	opts := cfg.FetcherOptions(nil)
	require.Equal(t, 3, opts.Attempts)
	require.Equal(t, 30*time.Second, opts.Timeout)
	require.True(t, opts.Existence(200, nil))
	require.False(t, opts.Existence(500, nil))

	_, err = LoadConfig(filepath.Join(dir, "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)

	err = os.WriteFile(path, []byte(`{ output_order: [] }`), 0600)
	require.NoError(t, err)
	_, err = LoadConfig(path)
	require.ErrorContains(t, err, "invalid config")
}

func TestLayoutLocator(t *testing.T) {
	cfg := withOrder(validConfig())
	require.Nil(t, cfg.Layout().Locator)

	index := 3
	cfg.Table.Index = &index
	require.Equal(t, earnings.IndexLocator{Index: 3}, cfg.Layout().Locator)

	cfg.Table.Selector = "#cal table"
	require.Equal(t, earnings.SelectorLocator{Selector: "#cal table"}, cfg.Layout().Locator)
	require.Len(t, cfg.Layout().OutputOrder, 4)
}

func apply(pred earnings.Predicate, values ...string) []string {
	out := []string{}
	for _, v := range values {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func TestPredicate(t *testing.T) {
	disabled := false
	values := []string{"AAPL", "", "MSFT", "AAPL", "WBA", " "}

	cases := []struct {
		name   string
		filter FilterConfig
		expect []string
	}{
		{
			name:   "default",
			filter: FilterConfig{},
			expect: []string{"AAPL", "MSFT", "WBA"},
		},
		{
			name:   "no unique",
			filter: FilterConfig{Unique: &disabled},
			expect: []string{"AAPL", "MSFT", "AAPL", "WBA"},
		},
		{
			name:   "nothing",
			filter: FilterConfig{Unique: &disabled, NonEmpty: &disabled},
			expect: values,
		},
		{
			name:   "allow list",
			filter: FilterConfig{Allow: []string{"WBA", "AAPL"}},
			expect: []string{"AAPL", "WBA"},
		},
		{
			name:   "pattern",
			filter: FilterConfig{Pattern: `^[A-M]`},
			expect: []string{"AAPL", "MSFT"},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Filter = test.filter
			factory := cfg.Predicate()
			require.Equal(t, test.expect, apply(factory(), values...))
			// every call starts from a clean slate
			require.Equal(t, test.expect, apply(factory(), values...))
		})
	}
}
