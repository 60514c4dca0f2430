package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func movementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movements",
		Aliases: []string{"mov"},
		Short:   "List and record income and expenses",
	}

	cmd.AddCommand(listMovementsCmd())
	cmd.AddCommand(addMovementCmd())
	cmd.AddCommand(updateMovementCmd())
	cmd.AddCommand(summaryMovementsCmd())

	return cmd
}

// filterFlags are the listing filters shared by movements list, summary and export.
type filterFlags struct {
	start      string
	end        string
	kind       string
	categoryID int64
}

func (f *filterFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.start, "start", "", "first date to include (YYYY-MM-DD)")
	flags.StringVar(&f.end, "end", "", "last date to include (YYYY-MM-DD)")
	flags.StringVar(&f.kind, "type", "", "only income or expense movements")
	flags.Int64Var(&f.categoryID, "category", 0, "only movements in this category ID")
}

func (f *filterFlags) filters() (*model.MovementFilters, error) {
	filters := &model.MovementFilters{
		StartDate:  f.start,
		EndDate:    f.end,
		CategoryID: f.categoryID,
	}
	for name, date := range map[string]string{"start": f.start, "end": f.end} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, &common.ValidationError{Fields: map[string]string{name: "must be a YYYY-MM-DD date"}}
		}
	}
	if f.kind != "" {
		t, err := parseMovementType(f.kind)
		if err != nil {
			return nil, err
		}
		filters.Type = t
	}
	return filters, nil
}

func listMovementsCmd() *cobra.Command {
	var (
		ff   filterFlags
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				filters, err := ff.filters()
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("page") {
					filters.Page = &page
				}
				if cmd.Flags().Changed("size") {
					filters.Size = &size
				}

				result, err := a.svc.Movements.ListPage(cmd.Context(), filters)
				if err != nil {
					return err
				}

				if len(result.Movements) == 0 {
					fmt.Fprintln(a.out, cli.InfoStyle.Render("No movements found. Use 'finanzas movements add' to record one."))
					return nil
				}

				fmt.Fprintln(a.out, cli.RenderMovements(result.Movements))
				fmt.Fprintln(a.out, cli.RenderPageFooter(result))
				return nil
			})
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 20, "movements per page")

	return cmd
}

func summaryMovementsCmd() *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals per month and expenses per category",
		Long: `Fetch every movement matching the filters and show income and expense
totals per month, followed by expenses per category. Amounts in different
currencies are added together.`,
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
				if len(movements) == 0 {
					fmt.Fprintln(a.out, cli.InfoStyle.Render("No movements found."))
					return nil
				}

				txs := model.ToTransactions(movements)
				fmt.Fprintln(a.out, cli.TitleStyle.Render("Por mes"))
				fmt.Fprintln(a.out, cli.RenderMonthlyTotals(model.MonthlyTotals(txs)))

				byCategory := model.ExpensesByCategory(txs)
				if len(byCategory) > 0 {
					fmt.Fprintln(a.out, cli.TitleStyle.Render("Egresos por categoría"))
					fmt.Fprintln(a.out, cli.RenderCategoryTotals(byCategory))
				}

				sum := model.Summarize(txs)
				fmt.Fprintln(a.out, cli.SubtleStyle.Render(fmt.Sprintf("%d movements", sum.Count)))
				return nil
			})
		},
	}

	ff.register(cmd.Flags())

	return cmd
}

// movementFlags holds the fields of a movement payload.
type movementFlags struct {
	amount      string
	description string
	kind        string
	currency    string
	date        string
	reference   string
	categoryID  int64
}

func (f *movementFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.amount, "amount", "a", "", "amount, always positive (e.g. 1234.56)")
	flags.StringVarP(&f.description, "description", "d", "", "what the movement was")
	flags.StringVarP(&f.kind, "type", "t", "expense", "income or expense")
	flags.StringVar(&f.currency, "currency", string(model.CurrencyARS), "ARS or USD")
	flags.StringVar(&f.date, "date", "", "date (YYYY-MM-DD, default today)")
	flags.StringVar(&f.reference, "reference", "", "optional external reference")
	flags.Int64VarP(&f.categoryID, "category", "c", 0, "category ID")
}

func (f *movementFlags) input() (model.MovementInput, error) {
	fields := map[string]string{}

	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		fields["amount"] = "must be a number"
	}

	movementType, err := parseMovementType(f.kind)
	if err != nil {
		fields["type"] = "must be income or expense"
	}

	date := f.date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	if len(fields) > 0 {
		return model.MovementInput{}, &common.ValidationError{Fields: fields}
	}

	// Everything else is checked by the movements client before sending.
	return model.MovementInput{
		Amount:       amount,
		Description:  f.description,
		MovementType: movementType,
		Currency:     model.Currency(strings.ToUpper(f.currency)),
		Date:         date,
		Reference:    f.reference,
		CategoryID:   f.categoryID,
	}, nil
}

func addMovementCmd() *cobra.Command {
	var mf movementFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new movement",
		Example: `  finanzas movements add -a 1500 -d "Supermercado" -c 1
  finanzas movements add -a 850000 -d "Sueldo" -t income -c 2 --date 2024-10-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				in, err := mf.input()
				if err != nil {
					return err
				}

				mv, err := a.svc.Movements.Create(cmd.Context(), in)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Movement %d recorded", mv.ID)))
				fmt.Fprintln(a.out, cli.RenderMovements([]model.Movement{mv}))
				return nil
			})
		},
	}

	mf.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func updateMovementCmd() *cobra.Command {
	var mf movementFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a movement",
		Long: `Replace every field of a movement. The backend expects the full
payload, so all fields must be given again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				in, err := mf.input()
				if err != nil {
					return err
				}

				mv, err := a.svc.Movements.Update(cmd.Context(), id, in)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Movement %d updated", mv.ID)))
				fmt.Fprintln(a.out, cli.RenderMovements([]model.Movement{mv}))
				return nil
			})
		},
	}

	mf.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func parseMovementType(s string) (model.MovementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "ingreso", "in":
		return model.MovementIncome, nil
	case "expense", "egreso", "out":
		return model.MovementExpense, nil
	default:
		return "", &common.ValidationError{Fields: map[string]string{"type": "must be income or expense"}}
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &common.ValidationError{Fields: map[string]string{"id": "must be a positive number"}}
	}
	return id, nil
}
