package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/shop/cart/pkg/response"
	orderResponse "github.com/Alturino/shop/order/pkg/response"
	productResponse "github.com/Alturino/shop/product/pkg/response"
	userResponse "github.com/Alturino/shop/user/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		NaN:              false,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Time,
	}
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       DecimalFromNumeric(p.Price),
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (f FindCartLinesByUserIdRow) Response() cartResponse.CartLine {
	price := DecimalFromNumeric(f.Price)
	return cartResponse.CartLine{
		ProductID:   f.ProductID,
		Title:       f.Title,
		Description: f.Description,
		Image:       f.Image,
		Category:    f.Category,
		Price:       price,
		Quantity:    f.Quantity,
		Subtotal:    price.Mul(decimal.NewFromInt32(f.Quantity)),
	}
}

func (o Order) Response() orderResponse.Order {
	return orderResponse.Order{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalPrice: DecimalFromNumeric(o.TotalPrice),
		CreatedAt:  o.CreatedAt.Time,
	}
}

func (o OrderItem) Response() orderResponse.OrderItem {
	return orderResponse.OrderItem{
		ID:        o.ID,
		OrderID:   o.OrderID,
		ProductID: o.ProductID,
		Title:     o.Title,
		Price:     DecimalFromNumeric(o.Price),
		Quantity:  o.Quantity,
	}
}

func (l CartLine) Response() cartResponse.Item {
	return cartResponse.Item{ProductID: l.ProductID, Quantity: l.Quantity}
}
