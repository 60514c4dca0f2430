package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/Veraticus/finanzas/internal/ofx"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import movements from bank statements",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		categoryID int64
		currency   string
		rate       float64
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import movements from OFX/QFX files",
		Long: `Create a movement for every line of one or more OFX or QFX statements.

Credits become income and debits become expenses. Every movement is filed
under --category; recategorize afterwards with 'finanzas movements update'.

Examples:
  # Import a single statement
  finanzas import ofx ~/Downloads/galicia_oct.ofx --category 3

  # Preview every statement in a directory
  finanzas import ofx ~/Downloads/*.qfx --category 3 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("rate") {
				rate = appConfig.Import.Rate
			}
			if !cmd.Flags().Changed("category") {
				categoryID = appConfig.Import.CategoryID
			}

			parser := ofx.NewParser(ofx.Options{
				DefaultCurrency: model.Currency(strings.ToUpper(currency)),
				CategoryID:      categoryID,
			})

			var drafts []ofx.Draft
			for _, path := range files {
				fileDrafts, err := parseStatement(cmd, parser, path)
				if err != nil {
					return err
				}
				slog.Info("Parsed statement", "file", filepath.Base(path), "movements", len(fileDrafts))
				drafts = append(drafts, fileDrafts...)
			}

			if len(drafts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No movements found in the given files."))
				return nil
			}

			if dryRun {
				preview := make([]model.Movement, 0, len(drafts))
				for _, d := range drafts {
					preview = append(preview, draftPreview(d))
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderMovements(preview))
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Dry run: %d movements would be imported", len(drafts))))
				return nil
			}

			return withSession(cmd, func(a *app) error {
				handler := cli.NewInterruptHandler(a.errOut, "Import")
				ctx := handler.HandleInterrupts(cmd.Context(), "Movements created before the interrupt were kept.")

				bar := cli.NewProgressBar(a.errOut, len(drafts), "Importing movements...")
				importer := ofx.NewImporter(a.svc.Movements, rate)
				importer.OnProgress = func(int, int) {
					_ = bar.Add(1)
				}

				result, err := importer.Import(ctx, drafts)

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d movements", len(result.Created), len(drafts))))
				for _, f := range result.Failures {
					fmt.Fprintln(a.out, cli.FormatWarning(fmt.Sprintf("%s %s: %s",
						f.Draft.Input.Date, f.Draft.Input.Description, describeError(f.Err))))
				}

				if err != nil && !handler.WasInterrupted() {
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category ID for imported movements (default import.category_id)")
	cmd.Flags().StringVar(&currency, "currency", string(model.CurrencyARS), "currency when the statement's is not ARS or USD")
	cmd.Flags().Float64Var(&rate, "rate", 0, "create requests per second (default import.rate)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")

	return cmd
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Draft, error) {
	f, err := os.Open(path) //nolint:gosec // user-specified statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close statement", "file", path, "error", closeErr)
		}
	}()

	drafts, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return drafts, nil
}

// expandFiles resolves globs; a pattern that matches nothing is kept when it
// names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func draftPreview(d ofx.Draft) model.Movement {
	return model.Movement{
		Amount:       d.Input.Amount,
		Description:  d.Input.Description,
		MovementType: d.Input.MovementType,
		Currency:     d.Input.Currency,
		Reference:    d.Input.Reference,
		Date:         d.Input.Date,
		Category:     model.MovementCategory{ID: d.Input.CategoryID},
	}
}
