package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuantity(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want int
	}{
		{"positive integer", 3, 3},
		{"fraction floors", 2.9, 2},
		{"below one", 0.99, 0},
		{"zero", 0, 0},
		{"negative", -5, 0},
		{"negative fraction", -0.5, 0},
		{"nan", math.NaN(), 0},
		{"+inf", math.Inf(1), 0},
		{"-inf", math.Inf(-1), 0},
		{"huge clamps", 1e18, usecase.MaxQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, usecase.NormalizeQuantity(tc.in))
		})
	}
}

func TestSetQuantity_LastCallWins(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo(), "s1")

	require.NoError(t, s.SetQuantity(ctx, "A", 4))
	require.NoError(t, s.SetQuantity(ctx, "B", 1))
	require.NoError(t, s.SetQuantity(ctx, "A", 2.5))
	require.NoError(t, s.SetQuantity(ctx, "B", 0))

	assert.Equal(t, 2, s.Quantity("A"))
	assert.Equal(t, 0, s.Quantity("B"))
	assert.Equal(t, usecase.Quantities{"A": 2}, s.Snapshot())
}

func TestSetQuantity_InvalidBehavesLikeZero(t *testing.T) {
	ctx := context.Background()
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, -5.5} {
		s := openStore(t, newMemRepo(), "s")
		require.NoError(t, s.SetQuantity(ctx, "A", 3))
		require.NoError(t, s.SetQuantity(ctx, "A", bad))

		assert.Equal(t, 0, s.Quantity("A"))
		assert.Equal(t, 0, s.Len(), "entry must be removed for %v", bad)
	}
}

func TestSetQuantity_NegativeOnEmptyCartLeavesNoEntry(t *testing.T) {
	s := openStore(t, newMemRepo(), "s")
	require.NoError(t, s.SetQuantity(context.Background(), "X", -5))

	assert.Equal(t, 0, s.Quantity("X"))
	_, ok := s.Snapshot()["X"]
	assert.False(t, ok)
}

func TestSetQuantity_FloorNotRound(t *testing.T) {
	s := openStore(t, newMemRepo(), "s")
	require.NoError(t, s.SetQuantity(context.Background(), "X", 2.9))
	assert.Equal(t, 2, s.Quantity("X"))
}

func TestIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo(), "s")

	require.NoError(t, s.Increment(ctx, "A"))
	require.NoError(t, s.Increment(ctx, "A"))
	assert.Equal(t, 2, s.Quantity("A"))

	require.NoError(t, s.Decrement(ctx, "A"))
	require.NoError(t, s.Decrement(ctx, "A"))
	require.NoError(t, s.Decrement(ctx, "A"))
	assert.Equal(t, 0, s.Quantity("A"))
	assert.Equal(t, 0, s.Len())
}

func TestPersistAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := openStore(t, repo, "s")

	require.NoError(t, s.SetQuantity(ctx, "A", 1))
	require.NoError(t, s.SetQuantity(ctx, "B", 2))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, 3, repo.saves)
	assert.JSONEq(t, `{}`, string(repo.entries["s"]))
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := openStore(t, repo, "s")
	require.NoError(t, s.SetQuantity(ctx, "A", 3))
	require.NoError(t, s.SetQuantity(ctx, "B", 7))
	assert.JSONEq(t, `{"A":3,"B":7}`, string(repo.entries["s"]))

	// a fresh registry reloads from the same repo
	reloaded := openStore(t, repo, "s")
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

func TestOpen_MalformedStateIsEmpty(t *testing.T) {
	for _, raw := range []string{`not json`, `[1,2]`, `null`, `"A"`, `{"A":`} {
		repo := newMemRepo()
		repo.entries["s"] = []byte(raw)

		s := openStore(t, repo, "s")
		assert.Equal(t, 0, s.Len(), "input %q", raw)
	}
}

func TestDecodeCart_DropsInvalidEntries(t *testing.T) {
	items, ok := usecase.DecodeCart([]byte(`{"A":2,"B":"3","C":-1,"D":1.7,"E":null}`))
	assert.True(t, ok)
	assert.Equal(t, usecase.Quantities{"A": 2, "D": 1}, items)
}

func TestSetQuantity_PersistFailure(t *testing.T) {
	repo := newMemRepo()
	s := openStore(t, repo, "s")
	repo.failErr = errBoom

	err := s.SetQuantity(context.Background(), "A", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrPersist)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, s.Quantity("A"))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemRepo(), "s")

	var order []string
	var events []usecase.CartEvent
	s.Subscribe(func(ev usecase.CartEvent) {
		order = append(order, "first")
		events = append(events, ev)
	})
	cancel := s.Subscribe(func(usecase.CartEvent) { order = append(order, "second") })

	require.NoError(t, s.SetQuantity(ctx, "A", 2))
	cancel()
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []string{"first", "second", "first"}, order)
	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].ProductID)
	assert.Equal(t, usecase.Quantities{"A": 2}, events[0].Items)
	assert.True(t, events[1].Cleared)
	assert.Empty(t, events[1].Items)
}

func TestCarts_OnChangeReachesLaterStores(t *testing.T) {
	ctx := context.Background()
	carts := usecase.NewCarts(newMemRepo(), nil, quietLogger())

	var sessions []string
	carts.OnChange(func(ev usecase.CartEvent) { sessions = append(sessions, ev.Session) })

	a, err := carts.Open(ctx, "a")
	require.NoError(t, err)
	b, err := carts.Open(ctx, "b")
	require.NoError(t, err)

	again, err := carts.Open(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	require.NoError(t, a.SetQuantity(ctx, "A", 1))
	require.NoError(t, b.SetQuantity(ctx, "A", 1))
	assert.Equal(t, []string{"a", "b"}, sessions)
}

func TestCarts_SessionRequired(t *testing.T) {
	carts := usecase.NewCarts(newMemRepo(), nil, quietLogger())
	_, err := carts.Open(context.Background(), "")
	assert.ErrorIs(t, err, usecase.ErrSessionRequired)
}
