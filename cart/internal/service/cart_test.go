package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/internal/testutil"
)

func TestCartService(t *testing.T) {
	testutil.SkipIfShort(t)

	c := testutil.Context(t)
	pool := testutil.StartPostgres(t, c)
	store := repository.NewStore(pool, 5*time.Second)
	svc := NewCartService(store)

	t.Run("given unknown product addItem should return ErrProductNotFound and write nothing", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)

		_, err := svc.AddItem(c, user.ID, uuid.New())
		assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)

		count, err := store.CountCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("given repeated addItem should increment a single line", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")

		item, err := svc.AddItem(c, user.ID, product.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, item.Quantity)

		item, err = svc.AddItem(c, user.ID, product.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, item.Quantity)

		cart, err := svc.ListCart(c, user.ID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 1)
		assert.EqualValues(t, 2, cart.Lines[0].Quantity)
		assert.True(t, decimal.NewFromInt(200).Equal(cart.TotalPrice))
	})

	t.Run("given concurrent addItem should not lose an increment", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.AddItem(c, user.ID, product.ID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		cart, err := svc.ListCart(c, user.ID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 1)
		assert.EqualValues(t, workers, cart.Lines[0].Quantity)
	})

	t.Run("given quantity 2 decrement should leave 1 then delete the line", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")
		for range 2 {
			_, err := svc.AddItem(c, user.ID, product.ID)
			require.NoError(t, err)
		}

		item, err := svc.DecrementItem(c, user.ID, product.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, item.Quantity)

		item, err = svc.DecrementItem(c, user.ID, product.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, item.Quantity)

		count, err := store.CountCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("given absent line decrement and remove should be no-ops", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)

		item, err := svc.DecrementItem(c, user.ID, uuid.New())
		require.NoError(t, err)
		assert.EqualValues(t, 0, item.Quantity)

		require.NoError(t, svc.RemoveItem(c, user.ID, uuid.New()))
	})

	t.Run("given line with quantity 3 remove should delete it", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")
		for range 3 {
			_, err := svc.AddItem(c, user.ID, product.ID)
			require.NoError(t, err)
		}

		require.NoError(t, svc.RemoveItem(c, user.ID, product.ID))

		cart, err := svc.ListCart(c, user.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Lines)
		assert.True(t, decimal.Zero.Equal(cart.TotalPrice))
	})

	t.Run("given removed product listCart should skip the dangling line", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		user := testutil.InsertUser(t, c, pool)
		kept := testutil.InsertProduct(t, c, pool, "A", "100")
		removed := testutil.InsertProduct(t, c, pool, "B", "50")
		for _, id := range []uuid.UUID{kept.ID, removed.ID} {
			_, err := svc.AddItem(c, user.ID, id)
			require.NoError(t, err)
		}
		_, err := store.DeleteProduct(c, removed.ID)
		require.NoError(t, err)

		cart, err := svc.ListCart(c, user.ID)
		require.NoError(t, err)
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, kept.ID, cart.Lines[0].ProductID)

		count, err := store.CountCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("given two users carts should stay separate", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		alice := testutil.InsertUser(t, c, pool)
		bob := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")

		_, err := svc.AddItem(c, alice.ID, product.ID)
		require.NoError(t, err)

		cart, err := svc.ListCart(c, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Lines)
	})
}
