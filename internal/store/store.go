package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// ListProducts retrieves the full product collection. Views always work on
// a complete reload, there is no incremental sync.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product, assigning its ID and creation
// timestamp
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = uuid.New().String()

	query := `
		INSERT INTO products (id, name, description, price, has_discount, discount_price, images, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return s.db.GetContext(ctx, &product.CreatedAt, query,
		product.ID, product.Name, product.Description, product.Price,
		product.HasDiscount, product.DiscountPrice, product.Images, product.IsAvailable)
}

// ProductUpdate is a partial update; nil fields keep their current value.
type ProductUpdate struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price"`
	HasDiscount   *bool     `json:"hasDiscount"`
	DiscountPrice *float64  `json:"discountPrice"`
	Images        *[]string `json:"images"`
	IsAvailable   *bool     `json:"isAvailable"`
}

// UpdateProduct applies a partial update and returns the updated row
func (s *Store) UpdateProduct(ctx context.Context, id string, update ProductUpdate) (*models.Product, error) {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.HasDiscount != nil {
		add("has_discount", *update.HasDiscount)
	}
	if update.DiscountPrice != nil {
		add("discount_price", *update.DiscountPrice)
	}
	if update.Images != nil {
		add("images", pq.StringArray(*update.Images))
	}
	if update.IsAvailable != nil {
		add("is_available", *update.IsAvailable)
	}

	if len(sets) == 0 {
		return s.GetProductByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING *",
		strings.Join(sets, ", "), len(args))

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, args...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a product by ID
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// SeedProducts inserts the given products, skipping any whose name already
// exists, and returns how many were inserted
func (s *Store) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}

	query, args, err := sqlx.In("SELECT name FROM products WHERE name IN (?)", names)
	if err != nil {
		return 0, err
	}
	query = s.db.Rebind(query)

	var existing []string
	if err := s.db.SelectContext(ctx, &existing, query, args...); err != nil {
		return 0, fmt.Errorf("failed to check existing products: %w", err)
	}

	existingNames := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingNames[name] = true
	}

	inserted := 0
	for _, p := range products {
		if existingNames[p.Name] {
			continue
		}
		if err := s.CreateProduct(ctx, &p); err != nil {
			return inserted, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
