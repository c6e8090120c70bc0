package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/siftql/sift/internal/config"
)

var (
	flagTablesFormat  string
	flagTablesCatalog string
)

type tableInfo struct {
	Name     string      `json:"name"`
	Columns  []string    `json:"columns"`
	Indexes  []indexInfo `json:"indexes,omitempty"`
	RowCount int         `json:"rowCount"`
}

type indexInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List catalog tables, columns, and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]string{}
		if flagTablesCatalog != "" {
			overrides["catalog"] = flagTablesCatalog
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
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

		var infos []tableInfo
		for _, name := range cat.Names() {
			t, err := cat.Table(name)
			if err != nil {
				return err
			}
			info := tableInfo{
				Name:     t.Name,
				Columns:  t.Columns,
				RowCount: len(t.Rows),
			}
			for _, idx := range t.Indexes {
				info.Indexes = append(info.Indexes, indexInfo{
					Name:    idx.Name,
					Columns: idx.Columns,
				})
			}
			infos = append(infos, info)
		}

		if flagTablesFormat == "json" {
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}

		bold := color.New(color.Bold)
		for _, info := range infos {
			fmt.Fprintf(os.Stdout, "%s (%d rows)\n", bold.Sprint(info.Name), info.RowCount)
			fmt.Fprintf(os.Stdout, "  columns: %s\n", strings.Join(info.Columns, ", "))
			for _, idx := range info.Indexes {
				fmt.Fprintf(os.Stdout, "  index %s (%s)\n", idx.Name, strings.Join(idx.Columns, ", "))
			}
		}
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVar(&flagTablesFormat, "format", "text", "Output format (text, json)")
	tablesCmd.Flags().StringVar(&flagTablesCatalog, "catalog", "", "Catalog file path (default: built-in demo catalog)")
}
