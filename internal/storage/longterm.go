package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"eino_chat_bridge/pkg"
	"eino_chat_bridge/src/logger"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// JSONOrderLedger keeps one JSON file of orders per customer
type JSONOrderLedger struct {
	baseDir string
	mu      sync.Mutex
}

// NewJSONOrderLedger creates a file-based order ledger under baseDir
func NewJSONOrderLedger(baseDir string) *JSONOrderLedger {
	return &JSONOrderLedger{
		baseDir: baseDir,
	}
}

// List loads all ledger entries for a customer
func (j *JSONOrderLedger) List(_ context.Context, customerID string) ([]pkg.OrderEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.load(customerID)
}

// Record appends an entry to the customer's ledger file
func (j *JSONOrderLedger) Record(_ context.Context, entry pkg.OrderEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(j.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// Load existing entries
	entries, err := j.load(entry.CustomerID)
	if err != nil {
		logger.Warn().Err(err).
			Str("customer_id", entry.CustomerID).
			Msg("Failed to load existing order ledger, starting fresh")
		entries = []pkg.OrderEntry{}
	}

	entries = append(entries, entry)
	if err := j.write(entry.CustomerID, entries); err != nil {
		return err
	}

	logger.Info().
		Str("customer_id", entry.CustomerID).
		Str("order_id", entry.ID).
		Float64("final_amount", entry.FinalAmount).
		Msg("Order recorded in ledger")
	return nil
}

// LedgerStats summarizes a customer's orders
type LedgerStats struct {
	CustomerID    string    `json:"customer_id"`
	TotalOrders   int       `json:"total_orders"`
	TotalAmount   float64   `json:"total_amount"`
	OldestOrder   time.Time `json:"oldest_order"`
	NewestOrder   time.Time `json:"newest_order"`
	FileSizeBytes int64     `json:"file_size_bytes"`
}

// Stats returns statistics about a customer's ledger
func (j *JSONOrderLedger) Stats(customerID string) (*LedgerStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load(customerID)
	if err != nil {
		return nil, err
	}

	stats := &LedgerStats{CustomerID: customerID}
	if len(entries) == 0 {
		return stats, nil
	}

	stats.TotalOrders = len(entries)
	stats.OldestOrder = entries[0].Timestamp
	stats.NewestOrder = entries[0].Timestamp
	for _, entry := range entries {
		stats.TotalAmount += entry.FinalAmount
		if entry.Timestamp.Before(stats.OldestOrder) {
			stats.OldestOrder = entry.Timestamp
		}
		if entry.Timestamp.After(stats.NewestOrder) {
			stats.NewestOrder = entry.Timestamp
		}
	}

	if info, err := os.Stat(j.path(customerID)); err == nil {
		stats.FileSizeBytes = info.Size()
	}
	return stats, nil
}

// Prune removes entries older than maxAge and returns how many were dropped
func (j *JSONOrderLedger) Prune(customerID string, maxAge time.Duration, now time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load(customerID)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	kept := make([]pkg.OrderEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		}
	}

	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := j.write(customerID, kept); err != nil {
		return 0, err
	}

	logger.Info().
		Str("customer_id", customerID).
		Int("removed", removed).
		Msg("Pruned old ledger entries")
	return removed, nil
}

// path keeps the ID readable and appends a short hash of the raw ID, since
// sanitizing alone maps "a/b" and "a_b" to the same name
func (j *JSONOrderLedger) path(customerID string) string {
	sum := sha256.Sum256([]byte(customerID))
	name := unsafeFileChars.ReplaceAllString(customerID, "_") + "-" + hex.EncodeToString(sum[:4])
	return filepath.Join(j.baseDir, name+".json")
}

func (j *JSONOrderLedger) load(customerID string) ([]pkg.OrderEntry, error) {
	data, err := os.ReadFile(j.path(customerID))
	if os.IsNotExist(err) {
		return []pkg.OrderEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order ledger file: %w", err)
	}

	var entries []pkg.OrderEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse order ledger file: %w", err)
	}
	return entries, nil
}

func (j *JSONOrderLedger) write(customerID string, entries []pkg.OrderEntry) error {
	data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal order ledger: %w", err)
	}

	if err := os.WriteFile(j.path(customerID), data, 0644); err != nil {
		return fmt.Errorf("failed to write order ledger file: %w", err)
	}
	return nil
}
