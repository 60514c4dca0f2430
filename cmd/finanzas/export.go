package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/config"
	"github.com/Veraticus/finanzas/internal/export"
	"github.com/Veraticus/finanzas/internal/finance"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportPageSize is the page size used when walking the full history.
const exportPageSize = 100

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export movements to a PDF or Google Sheets",
	}

	cmd.AddCommand(exportPDFCmd())
	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportPDFCmd() *cobra.Command {
	var (
		ff     filterFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write the movement history to a PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				filters, err := ff.filters()
				if err != nil {
					return err
				}

				movements, err := collectMovements(cmd.Context(), a.svc.Movements, filters, a.errOut)
				if err != nil {
					return err
				}

				now := time.Now()
				report := export.NewReport(model.ToTransactions(movements), now)

				if output == "" {
					output = export.FileName(now)
				}
				if err := writePDF(output, report); err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Exported %d movements to %s", len(movements), output)))
				return nil
			})
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default transacciones_YYYY-MM-DD.pdf)")

	return cmd
}

func writePDF(path string, report export.Report) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	return export.NewPDFWriter().Write(f, report)
}

func exportSheetsCmd() *cobra.Command {
	var (
		ff        filterFlags
		authorize bool
	)

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the movement history to a Google Sheet",
		Long: `Replace the contents of the configured Google Sheet with the movement
history. Configure credentials under 'sheets' in the config file or with the
GOOGLE_SHEETS_* environment variables.

Use --authorize once to run the browser consent flow and store a token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}

			if authorize {
				if _, err := export.AuthorizeInteractive(ctx, *sheetsCfg, func(url string) {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Open this URL in your browser to authorize access:"))
					fmt.Fprintln(cmd.OutOrStdout(), url)
				}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authorization saved to "+sheetsCfg.TokenFile))
			}

			return withSession(cmd, func(a *app) error {
				filters, err := ff.filters()
				if err != nil {
					return err
				}

				movements, err := collectMovements(ctx, a.svc.Movements, filters, a.errOut)
				if err != nil {
					return err
				}
				report := export.NewReport(model.ToTransactions(movements), time.Now())

				writer, err := export.NewSheetsWriter(ctx, *sheetsCfg)
				if err != nil {
					return err
				}

				var bar *progressbar.ProgressBar
				writer.OnBatch = func(written, total int) {
					if bar == nil {
						bar = cli.NewProgressBar(a.errOut, total, "Writing rows...")
					}
					_ = bar.Set(written)
				}

				id, err := writer.Write(ctx, report)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Exported %d movements", len(movements))))
				fmt.Fprintln(a.out, "https://docs.google.com/spreadsheets/d/"+id)
				return nil
			})
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().BoolVar(&authorize, "authorize", false, "run the OAuth consent flow before exporting")

	return cmd
}

// collectMovements walks every page of the listing, reporting progress on w.
func collectMovements(ctx context.Context, movements *finance.Movements, filters *model.MovementFilters, w io.Writer) ([]model.Movement, error) {
	size := exportPageSize
	filters.Size = &size

	var (
		all []model.Movement
		bar *progressbar.ProgressBar
	)
	for page := 0; ; page++ {
		p := page
		filters.Page = &p

		result, err := movements.ListPage(ctx, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Movements...)

		if bar == nil {
			bar = cli.NewProgressBar(w, max(result.TotalPages, 1), "Fetching movements...")
		}
		_ = bar.Add(1)

		if !result.HasNext() {
			return all, nil
		}
	}
}
