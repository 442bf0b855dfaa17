package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/frontdeskhq/frontdesk/internal/catalog"
	"github.com/spf13/cobra"
)

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Product catalog commands",
	}

	cmd.AddCommand(newProductAddCmd())
	cmd.AddCommand(newProductListCmd())
	cmd.AddCommand(newProductRmCmd())
	return cmd
}

func newProductAddCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		price       float64
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			p, err := catalog.Create(gormDB, catalog.CreateOpts{
				Name:        name,
				Price:       price,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product %d: %s ($%.2f)\n", p.ID, p.Name, p.Price)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "frontdesk.yaml", "path to Frontdesk config file")
	cmd.Flags().StringVarP(&name, "name", "n", "", "product name (required)")
	cmd.Flags().Float64VarP(&price, "price", "p", 0, "product price")
	cmd.Flags().StringVarP(&description, "description", "d", "", "product description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProductListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			products, err := catalog.List(gormDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "No products in the catalog.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tDESCRIPTION")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t$%.2f\t%s\n", p.ID, p.Name, p.Price, truncate(p.Description, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "frontdesk.yaml", "path to Frontdesk config file")
	return cmd
}

func newProductRmCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a product from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := catalog.Delete(gormDB, uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "frontdesk.yaml", "path to Frontdesk config file")
	return cmd
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
