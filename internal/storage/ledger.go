package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eino_chat_bridge/pkg"
)

// OrderLedger records orders confirmed in replies
type OrderLedger interface {
	Record(ctx context.Context, entry pkg.OrderEntry) error
	List(ctx context.Context, customerID string) ([]pkg.OrderEntry, error)
}

// NewOrderEntry builds a ledger entry with a fresh ID
func NewOrderEntry(customerID, exchangeID string, order pkg.Order, finalAmount float64, at time.Time) pkg.OrderEntry {
	return pkg.OrderEntry{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		ExchangeID:  exchangeID,
		Timestamp:   at,
		Order:       order,
		FinalAmount: finalAmount,
	}
}

// NopLedger discards every order
type NopLedger struct{}

func (NopLedger) Record(context.Context, pkg.OrderEntry) error { return nil }

func (NopLedger) List(context.Context, string) ([]pkg.OrderEntry, error) { return nil, nil }
