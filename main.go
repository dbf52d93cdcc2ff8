package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"eino_chat_bridge/internal/config"
	"eino_chat_bridge/internal/core"
	"eino_chat_bridge/internal/nodes"
	"eino_chat_bridge/internal/placeholder"
	"eino_chat_bridge/internal/provider"
	"eino_chat_bridge/internal/services"
	"eino_chat_bridge/internal/storage"
	"eino_chat_bridge/internal/templates"
	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/internal/transport/console"
	"eino_chat_bridge/internal/transport/discord"
	"eino_chat_bridge/internal/transport/telegram"
	"eino_chat_bridge/src"
	"eino_chat_bridge/src/conversation"
	"eino_chat_bridge/src/logger"
)

type options struct {
	envFile     string
	provider    string
	askProvider bool
	transport   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "chat-bridge",
		Short:         "Relay chat messages between a messaging platform and an LLM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "backend profile (openai, gemini, ollama, deepseek, ark); overrides LLM_PROVIDER")
	cmd.Flags().BoolVar(&opts.askProvider, "ask-provider", false, "prompt for the backend profile on startup")
	cmd.Flags().StringVar(&opts.transport, "transport", "", "chat transport (telegram, discord, console); overrides CHAT_TRANSPORT")
	cmd.AddCommand(newOrdersCmd(&opts), newProductsCmd())
	return cmd
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	cfg, envMissing, err := loadConfig(opts.envFile)
	if err != nil {
		return err
	}

	in := bufio.NewReader(stdin)
	if opts.askProvider {
		choice, err := askProvider(in, stdout)
		if err != nil {
			return err
		}
		if choice != "" {
			opts.provider = choice
		}
	}
	if opts.provider != "" {
		cfg.ProviderConfig.Name = strings.ToLower(strings.TrimSpace(opts.provider))
	}
	if opts.transport != "" {
		cfg.TransportConfig.Kind = strings.ToLower(strings.TrimSpace(opts.transport))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer logger.Close()
	if envMissing {
		logger.Warn().Str("path", opts.envFile).Msg("Env file not found, using process environment only")
	}

	// Content
	catalog := templates.New(templates.Options{
		ProductList:   services.NewProductService().ProductList(),
		DefaultName:   cfg.CatalogConfig.DefaultName,
		CODCharge:     cfg.CatalogConfig.CODCharge,
		PaymentHandle: cfg.CatalogConfig.PaymentHandle,
	})
	renderer, err := nodes.NewRenderer(ctx, placeholder.NewResolver(catalog))
	if err != nil {
		return fmt.Errorf("error building renderer: %w", err)
	}
	prompt, err := config.LoadSystemPrompt(cfg.PromptConfig.Path, cfg.PromptConfig.NamePlaceholder)
	if err != nil {
		return err
	}

	// Backend
	profileCfg, err := src.ActiveProfile(cfg.ProviderConfig)
	if err != nil {
		return err
	}
	profile, err := provider.NewProfile(cfg.ProviderConfig.Name, profileCfg)
	if err != nil {
		return err
	}
	gateway, err := provider.New(ctx, profile, conversation.NewWindowStrategy(cfg.SessionConfig.MaxTurns))
	if err != nil {
		return err
	}

	// Sessions
	store := storage.NewSessionStore()
	sweeper, err := storage.NewSweeper(store, cfg.SessionConfig.SweepInterval, cfg.SessionConfig.IdleThreshold)
	if err != nil {
		return err
	}
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sweeper.Stop(stopCtx)
	}()

	ledger, closeLedger, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	chat, err := newTransport(cfg, in, stdout)
	if err != nil {
		return err
	}

	dispatcher := core.NewDispatcher(core.Dependencies{
		Store:    store,
		Gateway:  gateway,
		Renderer: renderer,
		Catalog:  catalog,
		Prompt:   prompt,
		Ledger:   ledger,
	})
	queue := core.NewConversationQueue(dispatcher.Handle)
	defer queue.Close()

	logger.Info().
		Str("transport", chat.Name()).
		Str("provider", profile.Name).
		Bool("configured", gateway.Configured()).
		Msg("Chat bridge started")

	// queued messages finish even after shutdown is requested
	workCtx := context.WithoutCancel(ctx)
	err = chat.Run(ctx, func(_ context.Context, msg transport.Message) {
		if err := queue.Submit(workCtx, msg); err != nil {
			logger.Error().Err(err).Str("user_id", msg.From()).Msg("Failed to enqueue message")
		}
	})
	if err != nil {
		return fmt.Errorf("%s transport stopped: %w", chat.Name(), err)
	}

	logger.Info().Msg("Shutting down")
	return nil
}

// loadConfig overloads the process environment with envFile, when present,
// and reads the configuration
func loadConfig(envFile string) (*src.Config, bool, error) {
	envMissing := false
	if err := godotenv.Overload(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("error loading %s: %w", envFile, err)
		}
		envMissing = true
	}

	cfg, err := src.LoadConfig()
	if err != nil {
		return nil, envMissing, err
	}
	return cfg, envMissing, nil
}

// askProvider reads a profile name. An empty or unknown answer selects openai.
func askProvider(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Which API to use? (openai/ollama/gemini/deepseek/ark) [default: openai]: ")
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading provider choice: %w", err)
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	if !src.KnownProvider(choice) {
		if choice != "" {
			fmt.Fprintf(out, "Unknown provider %q, using %s\n", choice, src.ProviderOpenAI)
		}
		choice = src.ProviderOpenAI
	}
	return choice, nil
}

func newLedger(ctx context.Context, cfg *src.Config) (storage.OrderLedger, func(), error) {
	nop := func() {}
	switch cfg.LedgerConfig.Backend {
	case "file":
		return storage.NewJSONOrderLedger(cfg.LedgerConfig.Dir), nop, nil
	case "redis":
		ledger, err := storage.NewRedisOrderLedger(ctx, cfg.LedgerConfig.RedisURL, cfg.LedgerConfig.TTL)
		if err != nil {
			return nil, nil, err
		}
		return ledger, func() {
			if err := ledger.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close redis ledger")
			}
		}, nil
	default:
		return storage.NopLedger{}, nop, nil
	}
}

func newTransport(cfg *src.Config, in io.Reader, out io.Writer) (transport.Transport, error) {
	switch cfg.TransportConfig.Kind {
	case "telegram":
		t, err := telegram.New(cfg.TelegramConfig)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "discord":
		t, err := discord.New(cfg.DiscordConfig)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return console.New(in, out), nil
	}
}
