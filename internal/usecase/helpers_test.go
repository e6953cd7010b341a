package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	saves   int
	failErr error
}

func newMemRepo() *memRepo { return &memRepo{entries: map[string][]byte{}} }

func (r *memRepo) Load(_ context.Context, session string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[session], nil
}

func (r *memRepo) Save(_ context.Context, session string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.saves++
	r.entries[session] = append([]byte(nil), data...)
	return nil
}

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, repo usecase.CartStateRepo, session string) *usecase.CartStore {
	t.Helper()
	carts := usecase.NewCarts(repo, nil, quietLogger())
	s, err := carts.Open(context.Background(), session)
	require.NoError(t, err)
	return s
}

// testCatalog: A 20000, B 1500, C 0.
func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Product{
		{ID: "A", Name: "Smoked Beef", Price: 20000, Unit: "kg", Image: "a.jpg"},
		{ID: "B", Name: "Bread", Price: 1500, Unit: "loaf", Image: "b.jpg"},
		{ID: "C", Name: "Free Bag", Price: 0, Unit: "bag"},
	})
}

func testBuilder() usecase.MessageBuilder {
	return usecase.MessageBuilder{
		Shop:   "Beavertail Mini-Mart",
		Money:  usecase.NewMoney("UGX"),
		Policy: usecase.Policy{Threshold: 50000},
	}
}

func testFront() usecase.Storefront {
	return usecase.Storefront{
		Catalog: testCatalog(),
		Builder: testBuilder(),
		Handoff: usecase.Handoff{
			ChatContact:  "256700000000",
			EmailTo:      "orders@example.com",
			EmailSubject: "Beavertail Mini-mart Order",
		},
	}
}
