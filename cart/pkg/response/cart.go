package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	UserID     uuid.UUID       `json:"user_id"`
	Lines      []CartLine      `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CartLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func NewCart(userID uuid.UUID, lines []CartLine) Cart {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return Cart{UserID: userID, Lines: lines, TotalPrice: total}
}

// Item is the state of one cart line after a mutation. Quantity 0 means the line is gone.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}
