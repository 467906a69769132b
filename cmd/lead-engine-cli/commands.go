package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/assistant"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/engine"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

// errNothingToExport is returned when the export filter matches no lead.
var errNothingToExport = errors.New("no leads match the export filter")

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the assistant a question about the lead directory",
		Example: `  lead-engine-cli ask "Leads de Curitiba"
  lead-engine-cli ask "Exportar leads de saúde para excel" --out exports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, err := engine.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			stop := func() {}
			if eng.Composer.GenerationEnabled() {
				stop = ui.Spinner("Consultando o assistente...")
			} else {
				ui.Info("Generation is off; replies use fixed templates")
			}
			start := time.Now()
			reply, err := eng.Composer.Respond(ctx, assistant.Request{Message: strings.Join(args, " ")})
			stop()
			if err != nil {
				return err
			}

			logger.Debug().
				Str("intent", reply.Intent.String()).
				Bool("generated", reply.Generated).
				Dur("elapsed", time.Since(start)).
				Msg("Reply composed")

			if reply.File != nil {
				path, size, err := saveFile(reply.File, outDir)
				if err != nil {
					return err
				}
				defer ui.Success("Spreadsheet saved to %s (%s)", path, FormatBytes(size))
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), reply)
			}

			if reply.Stats != nil {
				printStats(*reply.Stats)
				return nil
			}
			ui.Println(reply.Response)
			if len(reply.Leads) > 0 {
				ui.Newline()
				ui.Table(leadHeaders, leadRows(reply.Leads))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for exported spreadsheets")
	return cmd
}

// newClassifyCmd creates the classify subcommand.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Show how a message is classified, without searching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := retrieval.NewIntentClassifier().Classify(strings.Join(args, " "))
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), intent)
			}
			ui.KeyValue("Intent", intent.String())
			return nil
		},
	}
}

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show contact coverage of the lead directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := loadLeads(cmd.Context())
			if err != nil {
				return err
			}
			stats := leads.ComputeStats(all)
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]leads.Stats{"stats": stats})
			}
			printStats(stats)
			return nil
		},
	}
}

// newExportCmd creates the export subcommand.
func newExportCmd() *cobra.Command {
	var (
		city    string
		segment string
		query   string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export leads to an Excel spreadsheet",
		Long: `Export leads to an Excel spreadsheet.

Without filters every lead is exported. --city and --segment match the
respective field; --query runs the general keyword search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			all, err := loadLeads(ctx)
			if err != nil {
				return err
			}
			selected := selectForExport(retrieval.NewIndex(all), city, segment, query)
			if len(selected) == 0 {
				return errNothingToExport
			}

			encoder := export.NewXLSXEncoder(cfg.Export.SheetName, cfg.Export.FilePrefix)
			file, err := encoder.Encode(ctx, export.RowsFromLeads(selected))
			if err != nil {
				return err
			}
			path, size, err := saveFile(file, outDir)
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"file": path, "leads": len(selected)})
			}
			ui.Success("Exported %d leads to %s (%s)", len(selected), path, FormatBytes(size))
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "only leads in this city")
	cmd.Flags().StringVar(&segment, "segment", "", "only leads in this segment")
	cmd.Flags().StringVarP(&query, "query", "q", "", "general keyword search")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// newConsolidateCmd creates the consolidate subcommand.
func newConsolidateCmd() *cobra.Command {
	var (
		dir     string
		outName string
	)

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Merge per-lead JSON files into one dataset file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = filepath.Dir(cfg.Dataset.Path)
			}
			if outName == "" {
				outName = leads.DefaultConsolidatedName
			}

			files, err := leads.ListSourceFiles(dir, outName)
			if err != nil {
				return err
			}
			ui.Step("Consolidating %d files from %s", len(files), dir)

			bar := ui.ProgressBar(len(files), "Reading")
			var failed []leads.FileOutcome
			result, err := leads.Consolidate(cmd.Context(), dir, outName, func(o leads.FileOutcome) {
				if o.Err != nil {
					failed = append(failed, o)
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			})
			if bar != nil {
				_ = bar.Finish()
			}
			for _, f := range failed {
				ui.Warning("Skipped %s: %v", f.Name, f.Err)
			}
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"output":  result.Output,
					"leads":   result.Leads,
					"files":   result.FilesRead(),
					"skipped": len(failed),
				})
			}
			ui.Success("Wrote %d leads from %d files to %s", result.Leads, result.FilesRead(), result.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory of lead JSON files (default: dataset directory)")
	cmd.Flags().StringVarP(&outName, "out", "o", "", "output file name inside the directory")
	return cmd
}

// newImportCmd creates the import subcommand.
func newImportCmd() *cobra.Command {
	var (
		from   string
		driver string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a lead JSON file into a sqlite or postgres table",
		Example: `  lead-engine-cli import --from data/leads.json --driver sqlite --dsn leads.db
  DATABASE_URL=postgres://... lead-engine-cli import --from data/leads.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if from == "" {
				from = cfg.Dataset.Path
			}
			if driver == "" && cfg.Dataset.Driver != "file" {
				driver, dsn = cfg.Dataset.Driver, cfg.Dataset.DSN
			}
			if driver == "" || dsn == "" {
				return fmt.Errorf("import needs a database: set --driver and --dsn or DATABASE_URL")
			}

			start := time.Now()
			all, err := leads.NewFileProvider(from, logger).Load(ctx)
			if err != nil {
				return err
			}

			db, err := leads.OpenSQL(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			stop := ui.Spinner(fmt.Sprintf("Importing %d leads...", len(all)))
			err = leads.Import(ctx, db, driver, all)
			stop()
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"driver": driver, "leads": len(all)})
			}
			ui.Success("Imported %d leads into %s in %s", len(all), driver, FormatDuration(time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "lead JSON file or directory (default: dataset path)")
	cmd.Flags().StringVar(&driver, "driver", "", "sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database connection string")
	return cmd
}

// loadLeads reads the configured dataset without building the assistant.
func loadLeads(ctx context.Context) ([]leads.Lead, error) {
	provider, closer, err := engine.OpenProvider(cfg.Dataset, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	return provider.Load(ctx)
}

// selectForExport applies at most one filter, checked in flag order.
func selectForExport(index *retrieval.Index, city, segment, query string) []leads.Lead {
	switch {
	case strings.TrimSpace(city) != "":
		return index.ByCity(city)
	case strings.TrimSpace(segment) != "":
		return index.BySegment(segment)
	case strings.TrimSpace(query) != "":
		return index.General(query)
	default:
		return index.All()
	}
}

// saveFile decodes an export payload and writes it under dir.
func saveFile(file *export.File, dir string) (string, int64, error) {
	data, err := file.Bytes()
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	return path, int64(len(data)), nil
}

var leadHeaders = []string{"Nome", "Empresa", "Cidade", "Email", "Telefone"}

func leadRows(all []leads.Lead) [][]string {
	rows := make([][]string, 0, len(all))
	for i := range all {
		l := &all[i]
		rows = append(rows, []string{l.DisplayName(), l.Company(), l.City(), l.PrimaryEmail(), l.PrimaryPhone()})
	}
	return rows
}

func printStats(s leads.Stats) {
	ui.Section("Lead directory")
	ui.KeyValue("Total", s.Total)
	ui.KeyValue("With email", s.WithEmail)
	ui.KeyValue("With phone", s.WithPhone)
	ui.KeyValue("With LinkedIn", s.WithLinkedIn)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
