package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"pokedex-mcp/internal/config"
	"pokedex-mcp/internal/favorites"
	"pokedex-mcp/internal/fetch"
	"pokedex-mcp/internal/logger"
	"pokedex-mcp/internal/pokedex"
	"pokedex-mcp/internal/server"
	"pokedex-mcp/internal/validate"
)

// app holds the objects built once per process.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	svc       *pokedex.Service
	favorites *favorites.Store
	tools     *server.Tools
	closers   []func()
}

func buildApp(flags *rootFlags) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	log := logger.New(cfg.Log.Level)

	client := fetch.NewClient(fetch.Options{
		BaseURL:   cfg.PokeAPI.BaseURL,
		UserAgent: cfg.PokeAPI.UserAgent,
		Timeout:   cfg.PokeAPI.Timeout,
		Logger:    log,
	})
	svc := pokedex.NewService(client, pokedex.Options{
		TTL:         cfg.Cache.TTL,
		CheckPeriod: cfg.Cache.CheckPeriod,
		Limits: validate.Limits{
			MaxNameLength: cfg.Limits.MaxNameLength,
			MinStat:       cfg.Limits.MinStat,
			MaxStat:       cfg.Limits.MaxStat,
		},
		ListLimit: cfg.PokeAPI.ListLimit,
		Logger:    log,
	})

	a := &app{cfg: cfg, logger: log, svc: svc}
	backend, err := a.favoritesBackend()
	if err != nil {
		return nil, err
	}
	a.favorites = favorites.New(backend, favorites.Options{Logger: log})
	a.tools = server.NewTools(svc, a.favorites, log)
	return a, nil
}

func (a *app) favoritesBackend() (favorites.Backend, error) {
	fc := a.cfg.Favorites
	switch fc.Backend {
	case "memory":
		return favorites.NewMemoryBackend(), nil
	case "valkey":
		opt, err := valkeyOptions(fc.Valkey.Addr)
		if err != nil {
			return nil, fmt.Errorf("valkey options: %w", err)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			return nil, fmt.Errorf("valkey client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			return nil, fmt.Errorf("valkey ping: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("favorites valkey backend enabled", "addr", fc.Valkey.Addr)
		return favorites.NewValkeyBackend(client, fc.Valkey.Prefix), nil
	default:
		if err := os.MkdirAll(fc.Path, 0o755); err != nil {
			return nil, fmt.Errorf("favorites dir: %w", err)
		}
		b := favorites.NewFileBackend(fc.Path)
		a.logger.Debug("favorites file backend enabled", "path", b.Path())
		return b, nil
	}
}

func valkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func (a *app) Close() {
	a.svc.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
