// Package catalog manages the product catalog and exposes it to the
// assistant as a lookup tool.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frontdeskhq/frontdesk/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// CreateOpts holds fields for creating a product.
type CreateOpts struct {
	Name        string
	Price       float64
	Description string
}

// Create inserts a new product after validation.
func Create(db *gorm.DB, opts CreateOpts) (*models.Product, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("catalog: name is required")
	}
	if opts.Price < 0 {
		return nil, fmt.Errorf("catalog: price must be non-negative, got %v", opts.Price)
	}
	p := models.Product{
		Name:        strings.TrimSpace(opts.Name),
		Price:       opts.Price,
		Description: opts.Description,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	return &p, nil
}

// Get fetches one product by ID.
func Get(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get product %d: %w", id, err)
	}
	return &p, nil
}

// List returns all products, newest first.
func List(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := db.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

// UpdateOpts holds optional fields for updating a product. Nil fields are
// left unchanged.
type UpdateOpts struct {
	Name        *string
	Price       *float64
	Description *string
}

// Update applies non-nil fields to an existing product.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Product, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if opts.Name != nil {
		if strings.TrimSpace(*opts.Name) == "" {
			return nil, fmt.Errorf("catalog: name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*opts.Name)
	}
	if opts.Price != nil {
		if *opts.Price < 0 {
			return nil, fmt.Errorf("catalog: price must be non-negative, got %v", *opts.Price)
		}
		updates["price"] = *opts.Price
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := db.Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("catalog: update product %d: %w", id, err)
	}
	return Get(db, id)
}

// Delete removes a product.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("catalog: delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns products whose name or description contains query,
// case-insensitive. An empty query returns the full catalog.
func Search(db *gorm.DB, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return List(db)
	}
	pattern := "%" + strings.ToLower(query) + "%"
	var products []models.Product
	if err := db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("catalog: search %q: %w", query, err)
	}
	return products, nil
}
