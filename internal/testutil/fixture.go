package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Alturino/shop/internal/repository"
)

func InsertUser(t *testing.T, c context.Context, pool *pgxpool.Pool) repository.User {
	t.Helper()
	id := uuid.New()
	user, err := repository.New(pool).InsertUser(c, repository.InsertUserParams{
		ID:       id,
		Username: "user-" + id.String()[:8],
		Email:    fmt.Sprintf("%s@example.com", id.String()),
		Password: "$2a$04$notarealhashbutlongenoughforthecolumn",
	})
	if err != nil {
		t.Fatalf("failed inserting user with error: %s", err)
	}
	return user
}

func InsertProduct(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	title string,
	price string,
) repository.Product {
	t.Helper()
	product, err := repository.New(pool).InsertProduct(c, repository.InsertProductParams{
		ID:       uuid.New(),
		Title:    title,
		Price:    repository.NumericFromDecimal(decimal.RequireFromString(price)),
		Category: "other",
	})
	if err != nil {
		t.Fatalf("failed inserting product with error: %s", err)
	}
	return product
}
