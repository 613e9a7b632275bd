package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

// Querier is the read side of the product catalog used by the storefront.
type Querier interface {
	ListProducts(ctx context.Context, categoryKey string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// ListProducts returns the products of one category, or all of them when
// categoryKey is empty, "all" or domain.AllCategories.
func (r *Repository) ListProducts(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, category
		FROM products
	`
	var args []any
	if !domain.IsAllCategories(categoryKey) {
		query += ` WHERE category = ?`
		args = append(args, categoryKey)
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	images, err := r.imagesByProduct(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Images = images[products[i].ID]
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, category
		FROM products
		WHERE id = ?
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	images, err := r.productImages(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Images = images

	return &p, nil
}

func (r *Repository) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, is_allergen FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]domain.Ingredient, 0)
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.Name, &ing.IsAllergen); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ingredients, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p     domain.Product
		price decimal.NullDecimal
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	if price.Valid {
		p.Price = price.Decimal
	}
	return p, nil
}

func (r *Repository) imagesByProduct(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product_id, url FROM product_images ORDER BY product_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := make(map[string][]string)
	for rows.Next() {
		var productID, url string
		if err := rows.Scan(&productID, &url); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images[productID] = append(images[productID], url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return images, nil
}

func (r *Repository) productImages(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT url FROM product_images WHERE product_id = ? ORDER BY position`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	var images []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return images, nil
}
