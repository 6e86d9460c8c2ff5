package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eaglebank/ledger-service/internal/command"
	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/handler"
	"github.com/eaglebank/ledger-service/internal/query"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/events"
	sharedredis "github.com/eaglebank/ledger-service/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// services holds everything built from one storage backend.
type services struct {
	store    repository.Store
	accounts *command.AccountCommandService
	ledger   *command.LedgerCommandService
	admin    *command.AdminCommandService
	closers  []func() error
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// openStore connects the configured backend. Domain events always go to
// Redis; with the postgres backend a dedicated client is opened for them.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*services, error) {
	s := &services{}
	var eventsClient *sharedredis.Client

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		pg := repository.NewPostgresStore(db)
		s.store = pg
		s.closers = append(s.closers, pg.Close)

		if cfg.EventsEnabled {
			client, err := sharedredis.NewClient(ctx, cfg.RedisOptions())
			if err != nil {
				logger.WithError(err).Warn("event stream unavailable, domain events disabled")
			} else {
				eventsClient = client
				s.closers = append(s.closers, client.Close)
			}
		}
	default:
		client, err := sharedredis.NewClient(ctx, cfg.RedisOptions())
		if err != nil {
			return nil, err
		}
		rs := repository.NewRedisStore(client.Client)
		s.store = rs
		s.closers = append(s.closers, rs.Close)
		if cfg.EventsEnabled {
			eventsClient = client
		}
	}

	var publisher command.EventPublisher = events.Nop{}
	if eventsClient != nil {
		publisher = events.NewPublisher(eventsClient.Client, cfg.EventsMaxLen)
	}

	s.accounts = command.NewAccountCommandService(s.store, publisher, logger)
	s.ledger = command.NewLedgerCommandService(s.store, publisher, logger)
	s.admin = command.NewAdminCommandService(s.store, s.accounts, s.ledger, cfg.AdminPassword, logger)

	logger.WithFields(logrus.Fields{
		"backend": cfg.StorageBackend,
		"events":  eventsClient != nil,
	}).Info("storage ready")
	return s, nil
}

func newRouter(cfg *config.Config, logger *logrus.Logger, s *services) *gin.Engine {
	secret := []byte(cfg.JWTSecret)

	accountQueries := query.NewAccountQueryService(s.store)
	authQueries := query.NewAuthQueryService(s.store, s.admin, secret, cfg.TokenTTL, logger)

	return handler.NewRouter(handler.RouterConfig{
		Accounts: handler.NewAccountHandler(s.accounts, accountQueries),
		Ledger:   handler.NewLedgerHandler(s.ledger),
		Auth:     handler.NewAuthHandler(authQueries, cfg.TokenTTL, cfg.SecureCookie),
		Admin: handler.NewAdminHandler(
			s.admin,
			query.NewStatisticsQueryService(s.store),
			query.NewActivityQueryService(s.store),
		),
		JWTSecret:      secret,
		LoginRateLimit: cfg.LoginRateLimit,
		LoginBurst:     cfg.LoginBurst,
		Logger:         logger,
	})
}
