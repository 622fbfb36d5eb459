package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/repository"
	"github.com/Alturino/shop/internal/testutil"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []event.Envelope
}

func (p *fakePublisher) Publish(_ context.Context, _ string, e event.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) Events() []event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Envelope(nil), p.events...)
}

func TestOrderService(t *testing.T) {
	testutil.SkipIfShort(t)

	c := testutil.Context(t)
	pool := testutil.StartPostgres(t, c)
	cache := testutil.StartRedis(t, c)
	store := repository.NewStore(pool, 5*time.Second)

	addItem := func(t *testing.T, userID uuid.UUID, productID uuid.UUID, times int) {
		t.Helper()
		for range times {
			_, err := store.UpsertCartLine(c, repository.CartLineKey{UserID: userID, ProductID: productID})
			require.NoError(t, err)
		}
	}

	t.Run("given cart with two products checkout should total at current price and empty the cart", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		publisher := &fakePublisher{}
		svc := NewOrderService(store, cache, time.Minute, publisher)
		user := testutil.InsertUser(t, c, pool)
		a := testutil.InsertProduct(t, c, pool, "A", "100")
		b := testutil.InsertProduct(t, c, pool, "B", "50")
		addItem(t, user.ID, a.ID, 2)
		addItem(t, user.ID, b.ID, 1)

		order, err := svc.Checkout(c, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, order.UserID)
		assert.True(t, decimal.NewFromInt(250).Equal(order.TotalPrice), "got %s", order.TotalPrice)
		assert.Len(t, order.OrderItems, 2)
		assert.EqualValues(t, 7, order.ID.Version())

		count, err := store.CountCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		events := publisher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "order.created", events[0].Type)
		created := event.OrderCreated{}
		require.NoError(t, events[0].Decode(&created))
		assert.Equal(t, order.ID, created.OrderID)
		assert.Equal(t, 2, created.ItemCount)
	})

	t.Run("given empty cart checkout should return ErrEmptyCart and create no order", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		publisher := &fakePublisher{}
		svc := NewOrderService(store, cache, time.Minute, publisher)
		user := testutil.InsertUser(t, c, pool)

		_, err := svc.Checkout(c, user.ID)
		assert.ErrorIs(t, err, commonErrors.ErrEmptyCart)

		orders, err := store.FindOrdersByUserId(c, user.ID)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Empty(t, publisher.Events())
	})

	t.Run("given dangling line checkout should exclude it and leave it in the cart", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		svc := NewOrderService(store, cache, time.Minute, &fakePublisher{})
		user := testutil.InsertUser(t, c, pool)
		kept := testutil.InsertProduct(t, c, pool, "A", "100")
		removed := testutil.InsertProduct(t, c, pool, "B", "50")
		addItem(t, user.ID, kept.ID, 1)
		addItem(t, user.ID, removed.ID, 1)
		_, err := store.DeleteProduct(c, removed.ID)
		require.NoError(t, err)

		order, err := svc.Checkout(c, user.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(order.TotalPrice))
		require.Len(t, order.OrderItems, 1)
		assert.Equal(t, kept.ID, order.OrderItems[0].ProductID)

		count, err := store.CountCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("given only dangling lines checkout should return ErrEmptyCart", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		svc := NewOrderService(store, cache, time.Minute, &fakePublisher{})
		user := testutil.InsertUser(t, c, pool)
		removed := testutil.InsertProduct(t, c, pool, "A", "100")
		addItem(t, user.ID, removed.ID, 1)
		_, err := store.DeleteProduct(c, removed.ID)
		require.NoError(t, err)

		_, err = svc.Checkout(c, user.ID)
		assert.ErrorIs(t, err, commonErrors.ErrEmptyCart)
	})

	t.Run("given order history checkout should invalidate the cached list", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		svc := NewOrderService(store, cache, time.Minute, &fakePublisher{})
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")

		addItem(t, user.ID, product.ID, 1)
		first, err := svc.Checkout(c, user.ID)
		require.NoError(t, err)

		orders, err := svc.FindOrders(c, user.ID)
		require.NoError(t, err)
		require.Len(t, orders, 1)

		addItem(t, user.ID, product.ID, 3)
		second, err := svc.Checkout(c, user.ID)
		require.NoError(t, err)

		orders, err = svc.FindOrders(c, user.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		assert.True(t, decimal.NewFromInt(300).Equal(orders[0].TotalPrice))
	})

	t.Run("given another user's order findOrderById should return ErrOrderNotFound", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		svc := NewOrderService(store, cache, time.Minute, &fakePublisher{})
		alice := testutil.InsertUser(t, c, pool)
		bob := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "100")
		addItem(t, alice.ID, product.ID, 2)

		order, err := svc.Checkout(c, alice.ID)
		require.NoError(t, err)

		found, err := svc.FindOrderById(c, alice.ID, order.ID)
		require.NoError(t, err)
		require.Len(t, found.OrderItems, 1)
		assert.EqualValues(t, 2, found.OrderItems[0].Quantity)
		assert.True(t, decimal.NewFromInt(100).Equal(found.OrderItems[0].Price))

		_, err = svc.FindOrderById(c, bob.ID, order.ID)
		assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)

		orders, err := svc.FindOrders(c, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("given concurrent addItem during checkout no increment should be lost", func(t *testing.T) {
		testutil.Truncate(t, c, pool)
		svc := NewOrderService(store, cache, time.Minute, &fakePublisher{})
		user := testutil.InsertUser(t, c, pool)
		product := testutil.InsertProduct(t, c, pool, "A", "10")

		const adds = 20
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range adds {
				err := store.Run(c, func(c context.Context) error {
					_, err := store.UpsertCartLine(
						c,
						repository.CartLineKey{UserID: user.ID, ProductID: product.ID},
					)
					return err
				})
				assert.NoError(t, err)
			}
		}()
		var checkedOut int32
		go func() {
			defer wg.Done()
			for range 5 {
				order, err := svc.Checkout(c, user.ID)
				if err != nil {
					assert.ErrorIs(t, err, commonErrors.ErrEmptyCart)
					continue
				}
				for _, i := range order.OrderItems {
					checkedOut += i.Quantity
				}
			}
		}()
		wg.Wait()

		var remaining int32
		lines, err := store.FindCartLinesByUserId(c, user.ID)
		require.NoError(t, err)
		for _, l := range lines {
			remaining += l.Quantity
		}
		assert.EqualValues(t, adds, checkedOut+remaining)
	})
}
