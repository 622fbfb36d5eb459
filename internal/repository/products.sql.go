package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, title, price, description, image, category, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Price,
		&i.Description,
		&i.Image,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertProduct = `
INSERT INTO products (id, title, price, description, image, category)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

type InsertProductParams struct {
	ID          uuid.UUID
	Title       string
	Price       pgtype.Numeric
	Description string
	Image       string
	Category    string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.ID,
		arg.Title,
		arg.Price,
		arg.Description,
		arg.Image,
		arg.Category,
	)
	return scanProduct(row)
}

const findProductById = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(c, findProductById, id))
}

const findProducts = `SELECT ` + productColumns + ` FROM products ORDER BY title, id`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const findProductsByCategory = `
SELECT ` + productColumns + `
FROM products
WHERE category = $1
ORDER BY title, id
`

func (q *Queries) FindProductsByCategory(c context.Context, category string) ([]Product, error) {
	rows, err := q.db.Query(c, findProductsByCategory, category)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const countProducts = `SELECT COUNT(*) FROM products`

func (q *Queries) CountProducts(c context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(c, countProducts).Scan(&count)
	return count, err
}

const deleteProduct = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

func (q *Queries) DeleteProduct(c context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(c, deleteProduct, id))
}
