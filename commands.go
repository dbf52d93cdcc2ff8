package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"eino_chat_bridge/internal/services"
	"eino_chat_bridge/internal/storage"
)

var errNoLedger = errors.New("order ledger is disabled, set LEDGER_BACKEND to file or redis")

func newOrdersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders recorded from confirmed ORDER_CONFIRM replies",
	}

	list := &cobra.Command{
		Use:   "list <customer-id>",
		Short: "Print a customer's recorded orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), opts.envFile, func(ledger storage.OrderLedger) error {
				entries, err := ledger.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entries)
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats <customer-id>",
		Short: "Summarize a customer's orders (file ledger only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), opts.envFile, func(ledger storage.OrderLedger) error {
				file, ok := ledger.(*storage.JSONOrderLedger)
				if !ok {
					return errors.New("stats needs LEDGER_BACKEND=file")
				}
				st, err := file.Stats(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			})
		},
	}

	var maxAge time.Duration
	prune := &cobra.Command{
		Use:   "prune <customer-id>",
		Short: "Drop a customer's orders older than --max-age (file ledger only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), opts.envFile, func(ledger storage.OrderLedger) error {
				file, ok := ledger.(*storage.JSONOrderLedger)
				if !ok {
					return errors.New("prune needs LEDGER_BACKEND=file")
				}
				removed, err := file.Prune(args[0], maxAge, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d orders\n", removed)
				return nil
			})
		},
	}
	prune.Flags().DurationVar(&maxAge, "max-age", storage.DefaultOrderTTL, "keep orders newer than this")

	cmd.AddCommand(list, stats, prune)
	return cmd
}

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products [query]",
		Short: "Search the product catalog, or print it all without a query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			products := services.NewProductService().SearchProducts(query)
			if len(products) == 0 {
				return fmt.Errorf("no products match %q", query)
			}
			return printJSON(cmd.OutOrStdout(), products)
		},
	}
}

func withLedger(ctx context.Context, envFile string, fn func(storage.OrderLedger) error) error {
	cfg, _, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if cfg.LedgerConfig.Backend == "none" {
		return errNoLedger
	}

	ledger, closeLedger, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()
	return fn(ledger)
}

func printJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

