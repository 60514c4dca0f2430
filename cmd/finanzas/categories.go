package main

import (
	"fmt"

	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage movement categories",
		Long:    `List, add, update, and delete the categories movements are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				categories, err := a.svc.Categories.List(cmd.Context())
				if err != nil {
					return err
				}

				if len(categories) == 0 {
					fmt.Fprintln(a.out, cli.InfoStyle.Render("No categories found. Use 'finanzas categories add' to create one."))
					return nil
				}

				fmt.Fprintln(a.out, cli.RenderCategories(categories))
				return nil
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var in model.CategoryInput

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app) error {
				in.Name = args[0]

				created, err := a.svc.Categories.Create(cmd.Context(), in)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Created category %q with ID %d", created.Label(), created.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Emoji, "emoji", "e", "", "emoji shown next to the name")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "category description")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name        string
		emoji       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long: `Update a category. Fields not given keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				current, err := findCategory(cmd, a, id)
				if err != nil {
					return err
				}

				in := model.CategoryInput{Name: current.Name, Emoji: current.Emoji, Description: current.Description}
				if cmd.Flags().Changed("name") {
					in.Name = name
				}
				if cmd.Flags().Changed("emoji") {
					in.Emoji = emoji
				}
				if cmd.Flags().Changed("description") {
					in.Description = description
				}

				updated, err := a.svc.Categories.Update(cmd.Context(), id, in)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Updated category %d: %s", updated.ID, updated.Label())))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&emoji, "emoji", "e", "", "new emoji")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. The backend decides what happens to movements
filed under it and may refuse the deletion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				if !force {
					current, err := findCategory(cmd, a, id)
					if err != nil {
						return err
					}
					prompter := cli.NewPrompter(cmd.InOrStdin(), a.out)
					ok, err := prompter.Confirm(cmd.Context(), fmt.Sprintf("Delete category %q?", current.Label()), false)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(a.out, cli.InfoStyle.Render("Canceled"))
						return nil
					}
				}

				if err := a.svc.Categories.Delete(cmd.Context(), id); err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func findCategory(cmd *cobra.Command, a *app, id int64) (model.Category, error) {
	categories, err := a.svc.Categories.List(cmd.Context())
	if err != nil {
		return model.Category{}, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("category %d not found", id)
}
