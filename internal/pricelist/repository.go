package pricelist

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pricedesk/pricedesk/internal/platform/db"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName indicates a unique name collision.
	ErrDuplicateName = errors.New("name already exists")
)

// Repository is the persistence boundary for price-list records.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ReorderCategories(ctx context.Context, positions []CategoryPosition) error
	ListProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error
	DeleteProduct(ctx context.Context, id int64) error
	GetRate(ctx context.Context) (float64, error)
	SetRate(ctx context.Context, rate float64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(sort_order, 0) FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("pricelist: list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) ReorderCategories(ctx context.Context, positions []CategoryPosition) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, pos := range positions {
			tag, err := tx.Exec(ctx,
				`UPDATE categories SET sort_order = $1 WHERE id = $2`, pos.SortOrder, pos.ID)
			if err != nil {
				return fmt.Errorf("pricelist: reorder category %d: %w", pos.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("pricelist: reorder category %d: %w", pos.ID, ErrNotFound)
			}
		}
		return nil
	})
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.category_id, p.name,
		       COALESCE(p.cost_usd, 0), COALESCE(p.profit, 0),
		       COALESCE(p.wholesale_profit, 0), COALESCE(p.wholesale_usd, 0),
		       COALESCE(p.carton_cost, 0), COALESCE(p.hidden, FALSE),
		       COALESCE(c.name, ''), COALESCE(c.sort_order, 0)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY c.sort_order, p.name`)
	if err != nil {
		return nil, fmt.Errorf("pricelist: list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name,
			&p.CostUSD, &p.Profit, &p.WholesaleProfit, &p.WholesaleUSD,
			&p.CartonCost, &p.Hidden, &p.CategoryName, &p.CategorySort); err != nil {
			return nil, err
		}
		if p.CategoryName == "" {
			// Orphaned rows resolve to the default bucket.
			p.CategoryID = DefaultCategoryID
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) CreateProduct(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (category_id, name, cost_usd, profit, wholesale_profit, wholesale_usd, carton_cost, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.CategoryID, p.Name, p.CostUSD, p.Profit, p.WholesaleProfit, p.WholesaleUSD, p.CartonCost, p.Hidden,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError("pricelist: create product", err)
	}
	return id, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error {
	patch = syncLegacyCost(patch)
	sets := []string{}
	args := []interface{}{}
	add := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.CostUSD != nil {
		add("cost_usd", *patch.CostUSD)
	}
	if patch.Profit != nil {
		add("profit", *patch.Profit)
	}
	if patch.WholesaleProfit != nil {
		add("wholesale_profit", *patch.WholesaleProfit)
	}
	if patch.WholesaleUSD != nil {
		add("wholesale_usd", *patch.WholesaleUSD)
	}
	if patch.CartonCost != nil {
		add("carton_cost", *patch.CartonCost)
	}
	if patch.Hidden != nil {
		add("hidden", *patch.Hidden)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := "UPDATE products SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE id = $" + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError("pricelist: update product", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pricelist: delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GetRate(ctx context.Context) (float64, error) {
	var rate float64
	err := r.pool.QueryRow(ctx,
		`SELECT value::float8 FROM settings WHERE key = $1`, RateSettingKey).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pricelist: get rate: %w", err)
	}
	return rate, nil
}

func (r *repository) SetRate(ctx context.Context, rate float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2::text)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		RateSettingKey, rate)
	if err != nil {
		return fmt.Errorf("pricelist: set rate: %w", err)
	}
	return nil
}

// syncLegacyCost mirrors the primary cost into the legacy carton cost
// field (and vice versa) when only one side of the pair is patched.
func syncLegacyCost(patch ProductPatch) ProductPatch {
	if patch.CostUSD != nil && patch.CartonCost == nil {
		v := *patch.CostUSD
		patch.CartonCost = &v
	}
	if patch.CartonCost != nil && patch.CostUSD == nil {
		v := *patch.CartonCost
		patch.CostUSD = &v
	}
	return patch
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, ErrDuplicateName)
	}
	return fmt.Errorf("%s: %w", op, err)
}
