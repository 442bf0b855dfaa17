package main

import (
	"fmt"
	"os"

	"github.com/frontdeskhq/frontdesk/internal/db"
	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var (
		configPath string
		seedPath   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Frontdesk database",
		Long:  "Migrates all tables and optionally seeds the product catalog from a YAML file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath, seedPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "frontdesk.yaml", "path to Frontdesk config file")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML file of products to seed")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath, seedPath string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if seedPath == "" {
		return nil
	}

	products, err := loadSeedProducts(seedPath)
	if err != nil {
		return err
	}
	if err := db.SeedProducts(gormDB, products); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d products from %s\n", len(products), seedPath)
	return nil
}

// loadSeedProducts parses a YAML list of {name, price, description} entries.
func loadSeedProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var entries []struct {
		Name        string  `yaml:"name"`
		Price       float64 `yaml:"price"`
		Description string  `yaml:"description"`
	}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	products := make([]models.Product, len(entries))
	for i, e := range entries {
		products[i] = models.Product{Name: e.Name, Price: e.Price, Description: e.Description}
	}
	return products, nil
}
