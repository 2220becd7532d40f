// Package app wires configuration, stores and services into the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/api"
	"github.com/ksalp/portal/internal/api/cookie"
	"github.com/ksalp/portal/internal/core/ports"
	"github.com/ksalp/portal/internal/core/service"
	"github.com/ksalp/portal/internal/infrastructure/db/mongo"
	"github.com/ksalp/portal/internal/infrastructure/db/postgres"
	"github.com/ksalp/portal/internal/infrastructure/db/redis"
	"github.com/ksalp/portal/internal/infrastructure/http/handlers"
	"github.com/ksalp/portal/internal/infrastructure/mail"
	"github.com/ksalp/portal/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// repositories is one store backend behind the repository ports.
type repositories struct {
	users  ports.UserRepository
	logins ports.LoginRepository
	checks ports.MailCheckRepository
	ids    ports.IDRegistry
	scores ports.IPScoreRepository

	name  string
	ping  handlers.Check
	close func(ctx context.Context) error
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, log, access zerolog.Logger) error {
	repos, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			log.Error().Err(err).Str("store", repos.name).Msg("close store")
		}
	}()

	checks := map[string]handlers.Check{repos.name: repos.ping}

	var limiter ports.AttemptLimiter
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = redis.NewAttemptLimiter(rdb, cfg.Session.MaxAttempts, cfg.Session.Window)
		checks["redis"] = redis.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sign-in limiter enabled")
	}

	mailer, err := mail.New(mail.Config{
		Provider:             cfg.Mail.Provider,
		From:                 cfg.Mail.From,
		ReplyTo:              cfg.Mail.ReplyTo,
		SMTPHost:             cfg.Mail.SMTPHost,
		SMTPPort:             cfg.Mail.SMTPPort,
		SMTPUsername:         cfg.Mail.SMTPUsername,
		SMTPPassword:         cfg.Mail.SMTPPassword,
		SMTPTLSMode:          cfg.Mail.SMTPTLSMode,
		PostmarkServerToken:  cfg.Mail.PostmarkServerToken,
		PostmarkAccountToken: cfg.Mail.PostmarkAccountToken,
	}, log.With().Str("component", "mail").Logger())
	if err != nil {
		return err
	}

	pepper1, pepper2, err := cfg.Hash.Peppers()
	if err != nil {
		return err
	}
	hasher, err := service.NewPasswordHasher(pepper1, pepper2, cfg.Hash.Iterations)
	if err != nil {
		return err
	}

	// --- Services ---
	ids := service.NewIDGenerator(repos.ids)
	delay := service.RandomDelay(cfg.Session.DelayMin, cfg.Session.DelayMax)
	accounts := service.NewAccountService(repos.users, ids, hasher)
	sessions := service.NewSessionService(repos.users, repos.logins, ids, hasher, service.SessionConfig{
		TTL:     cfg.Session.TTL,
		Delay:   delay,
		Limiter: limiter,
	}, log.With().Str("component", "session").Logger())
	registration := service.NewRegistrationService(repos.checks, accounts, ids, hasher, mailer, service.RegistrationConfig{
		AllowedDomains: cfg.Registration.AllowedDomains,
		TTL:            cfg.Registration.TTL,
		BaseURL:        cfg.BaseURL,
		Delay:          delay,
	}, log.With().Str("component", "registration").Logger())
	gate := service.NewGateService(repos.scores, service.GateConfig{
		InitialScore: cfg.Gate.InitialScore,
		MaxBodyBytes: cfg.Gate.MaxBodyBytes,
	}, access)

	e := api.NewRouter(api.Dependencies{
		Accounts:     accounts,
		Sessions:     sessions,
		Registration: registration,
		Gate:         gate,
		Cookies: cookie.New(cookie.Config{
			Secret: []byte(cfg.Session.Secret),
			Secure: cfg.IsProduction(),
			MaxAge: cfg.Session.CookieMaxAge,
		}),
		Checks:       checks,
		TrustProxy:   cfg.TrustProxy,
		MaxBodyBytes: cfg.Gate.MaxBodyBytes,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", repos.name).Str("mail", cfg.Mail.Provider).Msg("server starting")
		errCh <- e.StartServer(srv)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &repositories{
			users:  mongo.NewUserRepository(db),
			logins: mongo.NewLoginRepository(db),
			checks: mongo.NewMailCheckRepository(db),
			ids:    mongo.NewIDRegistry(db),
			scores: mongo.NewIPScoreRepository(db),
			name:   "mongodb",
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil

	default:
		db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxOpenConns: cfg.Postgres.MaxOpenConns})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres store ready")
		return &repositories{
			users:  postgres.NewUserRepository(db),
			logins: postgres.NewLoginRepository(db),
			checks: postgres.NewMailCheckRepository(db),
			ids:    postgres.NewIDRegistry(db),
			scores: postgres.NewIPScoreRepository(db),
			name:   "postgres",
			ping:   db.PingContext,
			close:  func(context.Context) error { return db.Close() },
		}, nil
	}
}
