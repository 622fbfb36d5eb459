package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartLineColumns = `user_id, product_id, quantity, created_at, updated_at`

func scanCartLine(row pgx.Row) (CartLine, error) {
	var i CartLine
	err := row.Scan(&i.UserID, &i.ProductID, &i.Quantity, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

type CartLineKey struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// The SELECT yields no row for an unknown product, so nothing is written and
// pgx.ErrNoRows is returned.
const upsertCartLine = `
INSERT INTO cart_lines (user_id, product_id, quantity)
SELECT $1, p.id, 1
FROM products p
WHERE p.id = $2
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_lines.quantity + 1, updated_at = CLOCK_TIMESTAMP()
RETURNING ` + cartLineColumns

func (q *Queries) UpsertCartLine(c context.Context, arg CartLineKey) (CartLine, error) {
	return scanCartLine(q.db.QueryRow(c, upsertCartLine, arg.UserID, arg.ProductID))
}

const findCartLineForUpdate = `
SELECT ` + cartLineColumns + `
FROM cart_lines
WHERE user_id = $1 AND product_id = $2
FOR UPDATE
`

func (q *Queries) FindCartLineForUpdate(c context.Context, arg CartLineKey) (CartLine, error) {
	return scanCartLine(q.db.QueryRow(c, findCartLineForUpdate, arg.UserID, arg.ProductID))
}

const decrementCartLine = `
UPDATE cart_lines
SET quantity = quantity - 1, updated_at = CLOCK_TIMESTAMP()
WHERE user_id = $1 AND product_id = $2 AND quantity > 1
RETURNING ` + cartLineColumns

func (q *Queries) DecrementCartLine(c context.Context, arg CartLineKey) (CartLine, error) {
	return scanCartLine(q.db.QueryRow(c, decrementCartLine, arg.UserID, arg.ProductID))
}

const deleteCartLine = `DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`

func (q *Queries) DeleteCartLine(c context.Context, arg CartLineKey) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartLine, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type FindCartLinesByUserIdRow struct {
	ProductID   uuid.UUID          `json:"product_id"`
	Quantity    int32              `json:"quantity"`
	Title       string             `json:"title"`
	Price       pgtype.Numeric     `json:"price"`
	Image       string             `json:"image"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

const cartLinesJoinProducts = `
SELECT cl.product_id, cl.quantity, p.title, p.price, p.image, p.description, p.category, cl.created_at
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.user_id = $1
ORDER BY cl.created_at, cl.product_id
`

func collectCartLines(rows pgx.Rows) ([]FindCartLinesByUserIdRow, error) {
	defer rows.Close()
	items := []FindCartLinesByUserIdRow{}
	for rows.Next() {
		var i FindCartLinesByUserIdRow
		if err := rows.Scan(
			&i.ProductID,
			&i.Quantity,
			&i.Title,
			&i.Price,
			&i.Image,
			&i.Description,
			&i.Category,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// FindCartLinesByUserId skips lines whose product no longer exists.
func (q *Queries) FindCartLinesByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]FindCartLinesByUserIdRow, error) {
	rows, err := q.db.Query(c, cartLinesJoinProducts, userID)
	if err != nil {
		return nil, err
	}
	return collectCartLines(rows)
}

const findCartLinesByUserIdForUpdate = cartLinesJoinProducts + `FOR UPDATE OF cl`

// FindCartLinesByUserIdForUpdate locks the returned lines until the transaction ends.
func (q *Queries) FindCartLinesByUserIdForUpdate(
	c context.Context,
	userID uuid.UUID,
) ([]FindCartLinesByUserIdRow, error) {
	rows, err := q.db.Query(c, findCartLinesByUserIdForUpdate, userID)
	if err != nil {
		return nil, err
	}
	return collectCartLines(rows)
}

const deleteCartLinesByProductIds = `
DELETE FROM cart_lines
WHERE user_id = $1 AND product_id = ANY($2::uuid[])
`

type DeleteCartLinesByProductIdsParams struct {
	UserID     uuid.UUID
	ProductIDs []uuid.UUID
}

func (q *Queries) DeleteCartLinesByProductIds(
	c context.Context,
	arg DeleteCartLinesByProductIdsParams,
) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartLinesByProductIds, arg.UserID, arg.ProductIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countCartLinesByUserId = `SELECT COUNT(*) FROM cart_lines WHERE user_id = $1`

// CountCartLinesByUserId counts every line, including ones whose product is gone.
func (q *Queries) CountCartLinesByUserId(c context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(c, countCartLinesByUserId, userID).Scan(&count)
	return count, err
}
