package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/internal/testutil"
	"github.com/Alturino/shop/product/pkg/request"
)

func TestProductService(t *testing.T) {
	testutil.SkipIfShort(t)

	c := testutil.Context(t)
	pool := testutil.StartPostgres(t, c)
	cache := testutil.StartRedis(t, c)
	svc := NewProductService(repository.NewStore(pool, 5*time.Second), cache, time.Minute)

	t.Run("given unknown id should return ErrProductNotFound", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		_, err := svc.FindProductById(c, uuid.New())
		assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
		assert.ErrorIs(t, err, commonErrors.ErrNotFound)
	})

	t.Run("given inserted product should find it and fill the cache", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		inserted, err := svc.InsertProduct(c, request.InsertProduct{
			Title:    "Backpack",
			Price:    "109.95",
			Category: "men's clothing",
		})
		require.NoError(t, err)

		actual, err := svc.FindProductById(c, inserted.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backpack", actual.Title)
		assert.True(t, decimal.RequireFromString("109.95").Equal(actual.Price))

		cacheKey := fmt.Sprintf(constants.CacheKeyProduct, inserted.ID)
		assert.EqualValues(t, 1, cache.Exists(c, cacheKey).Val())

		_, err = svc.RemoveProduct(c, inserted.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, cache.Exists(c, cacheKey).Val())

		_, err = svc.FindProductById(c, inserted.ID)
		assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
	})

	t.Run("given category should only return products of that category", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		for _, p := range []request.InsertProduct{
			{Title: "Ring", Price: "9.99", Category: "jewelery"},
			{Title: "Monitor", Price: "599", Category: "electronics"},
			{Title: "Bracelet", Price: "10.99", Category: "jewelery"},
			{Title: "Mystery", Price: "1"},
		} {
			_, err := svc.InsertProduct(c, p)
			require.NoError(t, err)
		}

		all, err := svc.FindProducts(c, request.FindProducts{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "Bracelet", all[0].Title)

		jewelery, err := svc.FindProducts(c, request.FindProducts{Category: "jewelery"})
		require.NoError(t, err)
		require.Len(t, jewelery, 2)
		for _, p := range jewelery {
			assert.Equal(t, "jewelery", p.Category)
		}

		other, err := svc.FindProducts(c, request.FindProducts{Category: defaultCategory})
		require.NoError(t, err)
		require.Len(t, other, 1)
		assert.Equal(t, "Mystery", other[0].Title)
	})

	t.Run("given non empty catalog seed should skip unless forced", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		catalog := []request.InsertProduct{
			{Title: "A", Price: "100"},
			{Title: "B", Price: "50"},
		}

		inserted, err := svc.Seed(c, catalog, false)
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		inserted, err = svc.Seed(c, catalog, false)
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)

		inserted, err = svc.Seed(c, catalog, true)
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		all, err := svc.FindProducts(c, request.FindProducts{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("given invalid price seed should insert nothing", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		_, err := svc.Seed(c, []request.InsertProduct{
			{Title: "A", Price: "100"},
			{Title: "B", Price: "fifty"},
		}, false)
		assert.ErrorIs(t, err, commonErrors.ErrInvalidRequest)

		all, err := svc.FindProducts(c, request.FindProducts{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
