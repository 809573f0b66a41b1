package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go-currency-swap/config"
	"go-currency-swap/convert"
	"go-currency-swap/domain"
	"go-currency-swap/exchange"
	"go-currency-swap/http"
	"go-currency-swap/session"
)

// app carries what the subcommands share once the root command has loaded it
type app struct {
	cfg    config.Config
	logger log.Logger
	debug  bool
}

// Execute builds and runs the swapd command tree
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "swapd",
		Short:        "Two-way currency swap service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			w := log.NewSyncWriter(os.Stderr)
			logger := log.NewLogfmtLogger(w)
			logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
			if a.debug {
				logger = level.NewFilter(logger, level.AllowAll())
			} else {
				logger = level.NewFilter(logger, level.AllowInfo())
			}
			a.logger = logger

			if err := godotenv.Load(); err != nil {
				level.Debug(logger).Log("msg", "no .env file, using environment")
			}

			cfg, err := config.Load()
			if err != nil {
				level.Error(logger).Log("msg", "loading config", "err", err)
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log debug messages")

	root.AddCommand(a.serveCmd(), a.quoteCmd(), a.ratesCmd())
	return root
}

func (a *app) serveCmd() *cobra.Command {
	var (
		addr       string
		publicURL  string
		debounce   time.Duration
		sessionTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the swap API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("public-url") {
				a.cfg.PublicURL = publicURL
			}
			if cmd.Flags().Changed("debounce") {
				a.cfg.Debounce = debounce
			}
			if cmd.Flags().Changed("session-ttl") {
				a.cfg.SessionTTL = sessionTTL
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from SWAP_HTTP_ADDR or :8080)")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "base of shareable links")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before amounts are recomputed")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 0, "idle time before a session is closed")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen [%v]: %w", a.cfg.HTTPAddr, err)
	}
	return a.run(ctx, ln, a.handler())
}

// handler wires the services behind the HTTP transport
func (a *app) handler() *http.Server {
	swapConfig := a.cfg.Swap()
	swapConfig.Logger = log.With(a.logger, "component", "swap")

	exchangeService := exchange.NewService(a.cfg.Rates, a.cfg.FeePercent)
	exchangeService = exchange.NewLoggingService(log.With(a.logger, "component", "exchange"), exchangeService)

	sessionService := session.NewService(swapConfig, a.cfg.PublicURL, a.cfg.SessionTTL, log.With(a.logger, "component", "session"))
	sessionService = session.NewLoggingService(log.With(a.logger, "component", "session"), sessionService)

	return http.NewServer(exchangeService, sessionService, a.cfg, log.With(a.logger, "component", "http"))
}

// run serves handler on ln until ctx is done, then closes every session and
// shuts the listener down
func (a *app) run(ctx context.Context, ln net.Listener, handler *http.Server) error {
	srv := &nhttp.Server{Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Log("msg", "listening", "addr", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		a.logger.Log("msg", "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		handler.Shutdown(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, nhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

func (a *app) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote AMOUNT FROM TO",
		Short: "Convert an amount once and print the fee and amount received",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := exchange.NewService(a.cfg.Rates, a.cfg.FeePercent)
			s = exchange.NewLoggingService(level.Debug(log.With(a.logger, "component", "exchange")), s)

			from := domain.Currency(strings.ToUpper(args[1]))
			to := domain.Currency(strings.ToUpper(args[2]))
			result, err := s.Convert(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rate=%s amount=%s fee=%s receive=%s\n",
				convert.FormatRate(result.Rate, true),
				orZero(result.Amount),
				orZero(result.Fee),
				orZero(result.Receive))
			return nil
		},
	}
}

func (a *app) ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List configured currencies and their rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, c := range a.cfg.CurrencyOptions {
				rate, ok := a.cfg.Rates[c]
				fmt.Fprintf(out, "%-4s %s\n", c, convert.FormatRate(rate, ok))
			}
			return nil
		},
	}
}

func orZero(amount string) string {
	if amount == "" {
		return "0"
	}
	return convert.FormatWithCommas(amount)
}
