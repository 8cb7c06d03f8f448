// fleetdesk is the terminal client of the fleet investment platform.
// Investors, operators, drivers and admins sign in, land on the dashboard
// view of their role and receive status notifications in a shared tray.
//
// Alongside the TUI, fleetdesk can serve a loopback HTTP bridge exposing
// the notification bus, the session and Prometheus metrics, and relay bus
// traffic to a Redis channel for other local tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/fleetpool/fleetdesk/internal/api"
	"github.com/fleetpool/fleetdesk/internal/api/metrics"
	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/clipboard"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/config"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/download"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/platform"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/probe"
	"github.com/fleetpool/fleetdesk/internal/infrastructure/relay"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
	"github.com/fleetpool/fleetdesk/internal/tui"
	"github.com/fleetpool/fleetdesk/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("fleetdesk", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Platform.URL, "platform-url", cfg.Platform.URL, "base URL of the fleet platform")
	flagSet.StringVar(&cfg.Bridge.Addr, "bridge-addr", cfg.Bridge.Addr, "address of the local HTTP bridge (empty disables it)")
	flagSet.StringVar(&cfg.Relay.Addr, "redis-addr", cfg.Relay.Addr, "Redis address for the notification relay (empty disables it)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error")
	flagSet.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file receiving log records")
	flagSet.StringVar(&cfg.SuggestedRole, "role", cfg.SuggestedRole, "role pre-selected in the sign-in dialogs")
	flagSet.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "directory receiving saved wallet keys")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	var suggested domain.Role
	if cfg.SuggestedRole != "" {
		if suggested, err = domain.ParseRole(cfg.SuggestedRole); err != nil {
			return fmt.Errorf("--role: %w", err)
		}
	}

	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Output: logFile,
		App:    "fleetdesk",
		Env:    cfg.Env,
	})

	clk := clock.Real()
	bus := service.NewNotificationBus(clk, log)
	bus.SetDefaultTTL(cfg.Notifications.TTL)
	defer bus.Close()

	client, err := platform.NewClient(platform.Config{
		BaseURL: cfg.Platform.URL,
		Timeout: cfg.Platform.Timeout,
		Clock:   clk,
	}, log)
	if err != nil {
		return err
	}

	monitor := service.NewConnectivityMonitor(log)
	session := service.NewSessionStore(client, log)
	gate := service.NewRoleGate(bus)

	defer metrics.ObserveBus(bus)()
	defer metrics.ObserveConnectivity(monitor)()

	// Background workers stop before the Redis client is closed.
	var rdb *redis.Client
	defer func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}()
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	prober := probe.New(client, clk, cfg.Platform.ProbeInterval, log)
	monitor.Mount(prober)
	defer monitor.Unmount()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = prober.Run(ctx)
	}()

	deps := api.Deps{
		Bus:          bus,
		Monitor:      monitor,
		Session:      session,
		Gate:         gate,
		Capabilities: client,
	}

	if cfg.Relay.Addr != "" {
		rdb, err = relay.Connect(ctx, relay.Config{Addr: cfg.Relay.Addr, DB: cfg.Relay.DB, Channel: cfg.Relay.Channel})
		if err != nil {
			return err
		}
		deps.Redis = rdb

		rl := relay.New(rdb, cfg.Relay.Channel, log)
		defer rl.Attach(bus)()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rl.Run(ctx)
		}()
		log.Info().Str("addr", cfg.Relay.Addr).Str("channel", cfg.Relay.Channel).Msg("relay enabled")
	}

	if cfg.Bridge.Addr != "" {
		e := api.NewRouter(deps, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := api.Serve(ctx, e, cfg.Bridge.Addr, log); err != nil {
				log.Error().Err(err).Msg("bridge failed")
				bus.Publish(service.Warning("Bridge unavailable", err.Error()))
			}
		}()
	}

	model := tui.NewModel(tui.Deps{
		Context:       ctx,
		Auth:          client,
		Capabilities:  client,
		Wallets:       client,
		Clipboard:     clipboard.New(log),
		Files:         download.NewDir(cfg.DownloadDir, log),
		Bus:           bus,
		Monitor:       monitor,
		Session:       session,
		Gate:          gate,
		SuggestedRole: suggested,
		Log:           log,
	})
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	log.Info().Msg("fleetdesk exiting")
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `fleetdesk: terminal client for the fleet investment platform.

Settings are read from the environment and an optional .env file in the
working directory; flags override them.

Usage:
  fleetdesk [flags]

Examples:
  # Connect to a staging platform and pre-select the operator role
  fleetdesk --platform-url https://staging.fleet.example --role operator

  # Relay notifications to a local Redis and disable the HTTP bridge
  fleetdesk --redis-addr localhost:6379 --bridge-addr ""

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
