package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, total_price, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(&i.ID, &i.UserID, &i.TotalPrice, &i.CreatedAt)
	return i, err
}

const insertOrder = `
INSERT INTO orders (id, user_id, total_price)
VALUES ($1, $2, $3)
RETURNING ` + orderColumns

type InsertOrderParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TotalPrice pgtype.Numeric
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(c, insertOrder, arg.ID, arg.UserID, arg.TotalPrice))
}

type InsertOrderItemsParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Title     string
	Price     pgtype.Numeric
	Quantity  int32
}

type iteratorForInsertOrderItems struct {
	rows                 []InsertOrderItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertOrderItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertOrderItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ID,
		r.rows[0].OrderID,
		r.rows[0].ProductID,
		r.rows[0].Title,
		r.rows[0].Price,
		r.rows[0].Quantity,
	}, nil
}

func (r iteratorForInsertOrderItems) Err() error {
	return nil
}

func (q *Queries) InsertOrderItems(c context.Context, arg []InsertOrderItemsParams) (int64, error) {
	return q.db.CopyFrom(
		c,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "product_id", "title", "price", "quantity"},
		&iteratorForInsertOrderItems{rows: arg},
	)
}

const findOrdersByUserId = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) FindOrdersByUserId(c context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(c, findOrdersByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findOrderById = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

type FindOrderByIdParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) FindOrderById(c context.Context, arg FindOrderByIdParams) (Order, error) {
	return scanOrder(q.db.QueryRow(c, findOrderById, arg.ID, arg.UserID))
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, title, price, quantity
FROM order_items
WHERE order_id = $1
ORDER BY title, product_id
`

func (q *Queries) FindOrderItemsByOrderId(c context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(c, findOrderItemsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Title,
			&i.Price,
			&i.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
