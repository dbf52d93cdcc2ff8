package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eino_chat_bridge/pkg"
)

func sampleOrder(mode string) pkg.Order {
	return pkg.Order{
		Name:    "Asha",
		Phone:   "9999999999",
		Address: "MG Road, Kochi",
		Items: []pkg.OrderItem{
			{ProductName: "Carrot Seed Oil", Quantity: 1, Amount: 420},
		},
		TotalAmount: 420,
		PaymentMode: mode,
	}
}

func TestJSONOrderLedgerRecordAndList(t *testing.T) {
	ctx := context.Background()
	ledger := NewJSONOrderLedger(t.TempDir())
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	empty, err := ledger.List(ctx, "user/1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := NewOrderEntry("user/1", "ex-1", sampleOrder("cod"), 450, at)
	second := NewOrderEntry("user/1", "ex-2", sampleOrder("upi"), 420, at.Add(time.Hour))
	require.NoError(t, ledger.Record(ctx, first))
	require.NoError(t, ledger.Record(ctx, second))
	require.NoError(t, ledger.Record(ctx, NewOrderEntry("other", "ex-3", sampleOrder("cod"), 450, at)))

	entries, err := ledger.List(ctx, "user/1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "ex-2", entries[1].ExchangeID)
	assert.Equal(t, "Carrot Seed Oil", entries[0].Order.Items[0].ProductName)
	assert.True(t, at.Equal(entries[0].Timestamp))
	assert.NotEqual(t, first.ID, second.ID)

	stats, err := ledger.Stats("user/1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 870.0, stats.TotalAmount)
	assert.True(t, stats.NewestOrder.After(stats.OldestOrder))
	assert.Positive(t, stats.FileSizeBytes)
}

func TestJSONOrderLedgerKeepsSimilarIDsApart(t *testing.T) {
	ctx := context.Background()
	ledger := NewJSONOrderLedger(t.TempDir())
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	slash := NewOrderEntry("a/b", "ex-1", sampleOrder("cod"), 450, at)
	underscore := NewOrderEntry("a_b", "ex-2", sampleOrder("upi"), 420, at)
	require.NoError(t, ledger.Record(ctx, slash))
	require.NoError(t, ledger.Record(ctx, underscore))

	assert.NotEqual(t, ledger.path("a/b"), ledger.path("a_b"))

	entries, err := ledger.List(ctx, "a/b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, slash.ID, entries[0].ID)

	entries, err = ledger.List(ctx, "a_b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, underscore.ID, entries[0].ID)
}

func TestJSONOrderLedgerPrune(t *testing.T) {
	ctx := context.Background()
	ledger := NewJSONOrderLedger(t.TempDir())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Record(ctx, NewOrderEntry("u", "old", sampleOrder("cod"), 450, now.Add(-48*time.Hour))))
	require.NoError(t, ledger.Record(ctx, NewOrderEntry("u", "new", sampleOrder("cod"), 450, now.Add(-time.Hour))))

	removed, err := ledger.Prune("u", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := ledger.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].ExchangeID)
}

func TestRedisOrderLedger(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	ledger, err := NewRedisOrderLedger(ctx, redisURL, time.Minute)
	require.NoError(t, err)
	defer ledger.Close()

	customer := "ledger-test-" + NewOrderEntry("", "", pkg.Order{}, 0, time.Now()).ID
	entry := NewOrderEntry(customer, "ex-1", sampleOrder("cod"), 450, time.Now().UTC())
	require.NoError(t, ledger.Record(ctx, entry))

	entries, err := ledger.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, 450.0, entries[0].FinalAmount)

	require.NoError(t, ledger.Delete(ctx, customer, entry.ID))
	entries, err = ledger.List(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNopLedger(t *testing.T) {
	var ledger OrderLedger = NopLedger{}
	assert.NoError(t, ledger.Record(context.Background(), pkg.OrderEntry{}))
	entries, err := ledger.List(context.Background(), "x")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
