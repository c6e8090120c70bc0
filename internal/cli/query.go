package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/siftql/sift/internal/cache"
	"github.com/siftql/sift/internal/catalog"
	"github.com/siftql/sift/internal/config"
	"github.com/siftql/sift/internal/engine"
	"github.com/siftql/sift/internal/output"
	"github.com/siftql/sift/internal/plan"
	"github.com/siftql/sift/internal/sql"
)

var (
	flagSQL     string
	flagFormat  string
	flagOut     string
	flagCatalog string
	flagExplain bool
	flagNoCache bool
	flagStats   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [statement]",
	Short: "Run a SQL query against the catalog",
	Long:  "Run a SQL SELECT against the configured catalog. The statement comes from --sql or the first argument.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlText := flagSQL
		if sqlText == "" && len(args) == 1 {
			sqlText = args[0]
		}
		if strings.TrimSpace(sqlText) == "" {
			fmt.Fprintln(os.Stderr, "Error: provide a statement with --sql or as an argument")
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagNoCache {
			cfg.Cache.Enabled = false
		}
		if !cfg.Color {
			color.NoColor = true
		}

		cat, err := loadCatalog(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		node, err := sql.Parse(sqlText)
		if err != nil {
			var perr *sql.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
				exitCode = ExitParseError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		physical := plan.Optimize(node, cat)

		if flagExplain {
			fmt.Fprint(os.Stdout, plan.Explain(physical))
			return nil
		}

		res, err := executeQuery(cat, physical, cfg, sqlText)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if cfg.MaxRows > 0 && len(res.Rows) > cfg.MaxRows {
			res.Rows = res.Rows[:cfg.MaxRows]
		}

		if err := output.WriteResult(res, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if flagStats {
			fmt.Fprintf(os.Stderr, "%d rows processed\n", res.Cost.RowsProcessed)
		}
		return nil
	},
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagCatalog != "" {
		m["catalog"] = flagCatalog
	}
	return m
}

// loadCatalog opens the configured catalog, or the built-in demo catalog
// when none is configured.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Demo(), nil
	}
	return catalog.Load(cfg.Catalog)
}

// executeQuery runs the plan, consulting the result cache first. Cache
// trouble degrades to a plain run; it never fails the query.
func executeQuery(cat *catalog.Catalog, node plan.Node, cfg config.Config, sqlText string) (*engine.Result, error) {
	if !cfg.Cache.Enabled {
		return engine.Run(node, cat)
	}

	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		warnf(os.Stderr, "Warning: cache unavailable: %v\n", err)
		return engine.Run(node, cat)
	}

	key := cache.BuildKey(cat.Fingerprint(), sqlText)
	if raw, ok := c.Get(key); ok {
		var res engine.Result
		if err := json.Unmarshal(raw, &res); err == nil {
			normalizeRows(&res)
			return &res, nil
		}
	}

	res, err := engine.Run(node, cat)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := c.Put(key, data); err != nil {
			warnf(os.Stderr, "Warning: caching result: %v\n", err)
		}
	}
	return res, nil
}

// normalizeRows restores engine value types after a cache round trip,
// where JSON decoding turns every number into float64.
func normalizeRows(res *engine.Result) {
	for _, row := range res.Rows {
		for i, v := range row {
			row[i] = catalog.Normalize(v)
		}
	}
}

func init() {
	queryCmd.Flags().StringVar(&flagSQL, "sql", "", "SQL statement to run")
	queryCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (json, text, csv, markdown)")
	queryCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	queryCmd.Flags().StringVar(&flagCatalog, "catalog", "", "Catalog file path (default: built-in demo catalog)")
	queryCmd.Flags().BoolVar(&flagExplain, "explain", false, "Print the physical plan instead of executing")
	queryCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	queryCmd.Flags().BoolVar(&flagStats, "stats", false, "Print rows-processed count to stderr")
}
