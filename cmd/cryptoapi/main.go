package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/cryptotracker/internal/infra/cache"
	"github.com/mkrupp/cryptotracker/internal/infra/config"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/infra/transport/http"
	"github.com/mkrupp/cryptotracker/internal/repo/favorite"
	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
	"github.com/mkrupp/cryptotracker/internal/repo/user"
	"github.com/mkrupp/cryptotracker/internal/svc/apisvc"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc"
	"github.com/mkrupp/cryptotracker/internal/svc/favoritesvc"
	"github.com/mkrupp/cryptotracker/internal/svc/marketsvc"
)

const (
	appName = "cryptotracker"
	svcName = "api"
)

type Config struct {
	config.EnvConfig

	Log    logging.LoggerConfig       `envPrefix:"LOG_"`
	HTTP   apisvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	Auth   authsvc.AuthConfig         `envPrefix:"AUTH_"`
	DB     sqlite.Config              `envPrefix:"DB_"`
	Cache  cache.Config               `envPrefix:"CACHE_"`
	Market marketsvc.MarketConfig     `envPrefix:"MARKET_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.cryptoapi")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	db, err := sqlite.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.ErrorContext(ctx, "close database", "err", cerr)
		}
	}()

	authSvc, err := authsvc.NewAuthService(ctx, user.NewSQLiteUserRepository(db), cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	responses := cache.New[[]byte](cfg.Cache)
	marketSvc := marketsvc.NewMarketService(cfg.Market, responses)
	favoriteSvc := favoritesvc.NewFavoriteService(favorite.NewSQLiteFavoriteRepository(db))

	if cfg.Market.CMCAPIKey == "" {
		log.WarnContext(ctx, "no provider API key configured, listings, quotes and info will fail")
	}

	go clearCacheOnHangup(ctx, marketSvc)

	httpTransport := apisvc.NewHTTPTransport(authSvc, marketSvc, favoriteSvc, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// clearCacheOnHangup drops all cached market data whenever the process receives SIGHUP.
func clearCacheOnHangup(ctx context.Context, marketSvc *marketsvc.MarketService) {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)

	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			marketSvc.ClearCache(ctx)
		}
	}
}
