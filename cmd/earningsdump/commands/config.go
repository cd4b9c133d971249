package commands

import (
	"earningsdump/internal/components/telemetry"
	"earningsdump/internal/configutil"
	"earningsdump/internal/earnings"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

type FetchConfig struct {
	Attempts         int    `json:"attempts"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	Cookie           string `json:"cookie"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// Existence is either "coarse" (only a 404 means missing) or "strict" (only a 2xx means present).
	Existence string `json:"existence"`
	// DumpDir is where request/response pairs are written in verbose mode.
	DumpDir string `json:"dump_dir"`
}

type TableConfig struct {
	// Index is the position of the earnings table among every table on the page.
	Index *int `json:"index"`
	// Selector overrides Index when set.
	Selector string `json:"selector"`
}

type FilterConfig struct {
	// Field is the output order abbreviation rows are filtered on.
	Field    string   `json:"field"`
	NonEmpty *bool    `json:"non_empty"`
	Unique   *bool    `json:"unique"`
	Allow    []string `json:"allow"`
	Pattern  string   `json:"pattern"`
}

type OutputConfig struct {
	Dir string `json:"dir"`
}

type LedgerConfig struct {
	// Dsn is a sqlite file, ":memory:" or a libsql:// url. Empty disables the ledger.
	Dsn string `json:"dsn"`
}

type WatchConfig struct {
	Cron     string `json:"cron"`
	Weekdays bool   `json:"weekdays"`
}

type Config struct {
	Url         string                `json:"url"`
	ColumnNames []string              `json:"column_names"`
	OutputOrder []earnings.OrderEntry `json:"output_order"`
	Help        string                `json:"help"`
	Fetch       FetchConfig           `json:"fetch"`
	Table       TableConfig           `json:"table"`
	Filter      FilterConfig          `json:"filter"`
	Output      OutputConfig          `json:"output"`
	Ledger      LedgerConfig          `json:"ledger"`
	Watch       WatchConfig           `json:"watch"`
	Otlp        telemetry.OtlpConfig  `json:"otlp"`
}

const defaultHelp = `usage: earningsdump dump <mm/dd/yyyy> [count]

Dumps the earnings calendar of the given day, and of the count-1 following days
if count is given, into one csv file per day.`

func defaultConfig() Config {
	return Config{
		Url:  "https://finance.yahoo.com/calendar/earnings",
		Help: defaultHelp,
		Fetch: FetchConfig{
			Attempts:       earnings.DefaultAttempts,
			TimeoutSeconds: int(earnings.DefaultTimeout / time.Second),
			Existence:      "coarse",
			DumpDir:        ".dev/resty",
		},
		Filter: FilterConfig{
			Field: "sym",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Watch: WatchConfig{
			Cron:     "0 7 * * 1-5",
			Weekdays: true,
		},
	}
}

// LoadConfig reads `path` (and its .local override) on top of the defaults.
// A bare file name is also looked up in every parent of the working directory.
func LoadConfig(path string) (Config, error) {
	read := configutil.ReadConfig[Config]
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg = cfg.withDefaults()
	err = cfg.validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	defaults := defaultConfig()
	if c.Url == "" {
		c.Url = defaults.Url
	}
	if c.Help == "" {
		c.Help = defaults.Help
	}
	if c.Fetch.Attempts == 0 {
		c.Fetch.Attempts = defaults.Fetch.Attempts
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = defaults.Fetch.TimeoutSeconds
	}
	if c.Fetch.Existence == "" {
		c.Fetch.Existence = defaults.Fetch.Existence
	}
	if c.Fetch.DumpDir == "" {
		c.Fetch.DumpDir = defaults.Fetch.DumpDir
	}
	if c.Filter.Field == "" {
		c.Filter.Field = defaults.Filter.Field
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaults.Output.Dir
	}
	if c.Watch.Cron == "" {
		c.Watch = defaults.Watch
	}
	return c
}

// the YahooCSVFormatter relies on the first 4 fields of every row.
const minOutputFields = 4

func (c Config) validate() error {
	var errs []error

	if c.Url == "" {
		errs = append(errs, fmt.Errorf("url must be set"))
	}
	if len(c.ColumnNames) == 0 {
		errs = append(errs, fmt.Errorf("column_names must not be empty"))
	}

	columns := make(map[string]bool, len(c.ColumnNames))
	for _, name := range c.ColumnNames {
		if columns[name] {
			errs = append(errs, fmt.Errorf("column_names: %q is listed twice", name))
		}
		columns[name] = true
	}

	if len(c.OutputOrder) < minOutputFields {
		errs = append(errs, fmt.Errorf("output_order must have at least %d entries, got %d", minOutputFields, len(c.OutputOrder)))
	}
	if len(c.OutputOrder) != len(c.ColumnNames) {
		errs = append(errs, fmt.Errorf("output_order has %d entries but column_names has %d", len(c.OutputOrder), len(c.ColumnNames)))
	}
	abbrevs := make(map[string]bool, len(c.OutputOrder))
	for i, entry := range c.OutputOrder {
		if entry.Abbrev == "" {
			errs = append(errs, fmt.Errorf("output_order[%d]: abbrev must be set", i))
		}
		if abbrevs[entry.Abbrev] {
			errs = append(errs, fmt.Errorf("output_order[%d]: abbrev %q is used twice", i, entry.Abbrev))
		}
		abbrevs[entry.Abbrev] = true
		if !columns[entry.Column] {
			errs = append(errs, fmt.Errorf("output_order[%d]: column %q is not one of column_names", i, entry.Column))
		}
	}

	if !abbrevs[c.Filter.Field] {
		errs = append(errs, fmt.Errorf("filter.field: %q is not an output_order abbrev", c.Filter.Field))
	}
	if c.Filter.Pattern != "" {
		_, err := regexp.Compile(c.Filter.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("filter.pattern: %w", err))
		}
	}

	switch c.Fetch.Existence {
	case "coarse", "strict":
	default:
		errs = append(errs, fmt.Errorf("fetch.existence: expected \"coarse\" or \"strict\", got %q", c.Fetch.Existence))
	}
	if c.Fetch.Attempts < 1 {
		errs = append(errs, fmt.Errorf("fetch.attempts must be at least 1"))
	}
	if c.Table.Index != nil && *c.Table.Index < 0 {
		errs = append(errs, fmt.Errorf("table.index must not be negative"))
	}

	return errors.Join(errs...)
}

// Layout returns the table layout described by the config.
func (c Config) Layout() earnings.Layout {
	layout := earnings.Layout{
		ColumnNames: c.ColumnNames,
		OutputOrder: c.OutputOrder,
	}
	switch {
	case c.Table.Selector != "":
		layout.Locator = earnings.SelectorLocator{Selector: c.Table.Selector}
	case c.Table.Index != nil:
		layout.Locator = earnings.IndexLocator{Index: *c.Table.Index}
	}
	return layout
}

// Predicate returns a factory for the configured row filter. Without any
// filter settings rows need a non-empty, not yet seen value.
func (c Config) Predicate() func() earnings.Predicate {
	nonEmpty := c.Filter.NonEmpty == nil || *c.Filter.NonEmpty
	unique := c.Filter.Unique == nil || *c.Filter.Unique

	var pattern *regexp.Regexp
	if c.Filter.Pattern != "" {
		pattern = regexp.MustCompile(c.Filter.Pattern)
	}

	return func() earnings.Predicate {
		var preds []earnings.Predicate
		if nonEmpty {
			preds = append(preds, earnings.NonEmpty)
		}
		if len(c.Filter.Allow) > 0 {
			preds = append(preds, earnings.AllowList(c.Filter.Allow...))
		}
		if pattern != nil {
			preds = append(preds, earnings.MatchPattern(pattern))
		}
		// unique goes last so rejected rows don't mark their value as seen.
		if unique {
			preds = append(preds, earnings.Unique())
		}
		return earnings.All(preds...)
	}
}

// FetcherOptions converts the fetch settings, `output` may be nil.
func (c Config) FetcherOptions(output telemetry.MessageOutput) earnings.FetcherOptions {
	existence := earnings.CoarseExistence
	if c.Fetch.Existence == "strict" {
		existence = earnings.StrictExistence
	}
	return earnings.FetcherOptions{
		Attempts:         c.Fetch.Attempts,
		Timeout:          time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		Cookie:           c.Fetch.Cookie,
		UserAgent:        c.Fetch.UserAgent,
		CloudflareBypass: c.Fetch.CloudflareBypass,
		Existence:        existence,
		Output:           output,
	}
}
