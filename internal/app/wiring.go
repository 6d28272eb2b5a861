package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"session-auth/internal/audit"
	"session-auth/internal/auth"
	"session-auth/internal/config"
	"session-auth/internal/directory/ldap"
	"session-auth/internal/hooks"
	httpserver "session-auth/internal/http"
	"session-auth/internal/metrics"
	"session-auth/internal/rbac"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/repository/postgres"
	"session-auth/internal/session"
	"session-auth/pkg/logger"
	"session-auth/pkg/mailer"
	"session-auth/pkg/mailer/providers"
	"session-auth/pkg/mailer/strategies"

	"github.com/labstack/gommon/log"
)

const (
	loggerPrefix          = "auth"
	sessionKeyPrefix      = "session-auth:session:"
	healthCheckDatabase   = "database"
	healthCheckRedis      = "redis"
	redisPingTimeout      = 3 * time.Second
	errConnectDatabaseFmt = "failed to connect to database: %w"
	errSessionStoreFmt    = "failed to create session store: %w"
	errRoleCatalogFmt     = "failed to load role catalog: %w"
	errMailerFmt          = "failed to create mailer: %w"
	msgDirectoryUnusable  = "ldap enabled but unusable, falling back to local accounts: %v"
	errEngineFmt          = "failed to create auth engine: %w"
	errMailStrategyFmt    = "unsupported mail strategy %q"
)

var errNoMailProviders = errors.New("no mail provider API key configured")

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config) (*Service, error) {
	appLogger := newLogger()

	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf(errConnectDatabaseFmt, err)
	}

	store, redisStore, err := buildSessionStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	closeAll := func() {
		db.Close()
		if redisStore != nil {
			_ = redisStore.Close()
		}
	}

	roleCfg, err := roleCatalog(cfg.Auth.RoleCatalogFile)
	if err != nil {
		closeAll()
		return nil, err
	}
	roles, err := rbac.New(roleCfg)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf(errRoleCatalogFmt, err)
	}
	roles = roles.WithLogger(appLogger)

	sender, err := buildMailer(cfg.Mail)
	if err != nil {
		closeAll()
		return nil, err
	}

	registry := hooks.New(appLogger)
	auditLog := audit.NewLogger(db.Pool, appLogger)
	auditLog.Register(registry)
	m := metrics.New()
	m.Register(registry)

	users := postgres.NewUserRepository(db, postgres.UserRepositoryOptions{
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	deps := auth.Dependencies{
		Roles:  roles,
		Store:  users,
		Mailer: sender,
		Hooks:  registry,
		Logger: appLogger,
	}
	dir, directorySupported := buildDirectory(cfg.LDAP, appLogger)
	deps.Directory = dir

	engine, err := auth.NewEngine(engineConfig(cfg, directorySupported), deps)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf(errEngineFmt, err)
	}

	checks := map[string]httpserver.Pinger{healthCheckDatabase: db}
	if redisStore != nil {
		checks[healthCheckRedis] = redisStore
	}

	server := httpserver.NewServer(&httpserver.ServerDependencies{
		Config:       cfg,
		Engine:       engine,
		Sessions:     session.NewManager(store, cfg.Session.TTL),
		Metrics:      m,
		Accounts:     users,
		Audit:        auditLog,
		HealthChecks: checks,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	return &Service{
		config:      cfg,
		db:          db,
		redisStore:  redisStore,
		engine:      engine,
		server:      server,
		logger:      appLogger,
		sweepCtx:    sweepCtx,
		stopSweeper: stopSweeper,
	}, nil
}

func newLogger() *logger.Sanitized {
	l := log.New(loggerPrefix)
	l.SetLevel(log.INFO)
	return logger.NewSanitized(l, true)
}

// buildSessionStore returns the configured store, plus the Redis store
// separately when one was opened so the caller can ping and close it.
func buildSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *session.RedisStore, error) {
	if cfg.Session.Store == config.SessionStoreMemory {
		return session.NewMemoryStore(), nil, nil
	}

	rs, err := session.NewRedisStore(session.RedisOptions{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: sessionKeyPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf(errSessionStoreFmt, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		_ = rs.Close()
		return nil, nil, fmt.Errorf(errSessionStoreFmt, err)
	}
	return rs, rs, nil
}

func roleCatalog(path string) (rbac.Config, error) {
	if path == "" {
		return presets.Workspace(), nil
	}
	cfg, err := rbac.LoadConfigFile(path)
	if err != nil {
		return rbac.Config{}, fmt.Errorf(errRoleCatalogFmt, err)
	}
	return cfg, nil
}

func mailProviders(cfg config.MailConfig) []providers.Provider {
	var list []providers.Provider
	if cfg.ResendAPIKey != "" {
		list = append(list, providers.NewResend(providers.Config{APIKey: cfg.ResendAPIKey}))
	}
	if cfg.SendGridAPIKey != "" {
		list = append(list, providers.NewSendGrid(providers.Config{APIKey: cfg.SendGridAPIKey}))
	}
	return list
}

func mailStrategy(name string) (strategies.Strategy, error) {
	switch name {
	case config.MailStrategySingle:
		return &strategies.SingleProviderStrategy{}, nil
	case config.MailStrategyFailover, "":
		return &strategies.FailoverStrategy{}, nil
	case config.MailStrategyPriority:
		return strategies.NewPriorityStrategy(nil), nil
	case config.MailStrategyRoundRobin:
		return &strategies.RoundRobinStrategy{}, nil
	default:
		return nil, fmt.Errorf(errMailStrategyFmt, name)
	}
}

func buildMailer(cfg config.MailConfig) (*mailer.Sender, error) {
	list := mailProviders(cfg)
	if len(list) == 0 {
		return nil, fmt.Errorf(errMailerFmt, errNoMailProviders)
	}

	strategy, err := mailStrategy(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf(errMailerFmt, err)
	}

	service, err := mailer.NewEmailService(mailer.EmailServiceConfig{
		Providers:   list,
		Strategy:    strategy,
		DefaultFrom: cfg.From,
	})
	if err != nil {
		return nil, fmt.Errorf(errMailerFmt, err)
	}

	sender, err := mailer.NewSender(service)
	if err != nil {
		return nil, fmt.Errorf(errMailerFmt, err)
	}
	return sender, nil
}

// buildDirectory reports false when LDAP is off or its client cannot be
// built. An enabled but unusable directory is not fatal.
func buildDirectory(cfg config.LDAPConfig, logger interface {
	Warnf(format string, args ...interface{})
}) (auth.DirectoryProvider, bool) {
	if !cfg.Enabled {
		return nil, false
	}
	dir, err := ldap.New(cfg)
	if err != nil {
		logger.Warnf(msgDirectoryUnusable, err)
		return nil, false
	}
	return dir, true
}

func engineConfig(cfg *config.Config, directorySupported bool) auth.Config {
	expiryHours := int(cfg.Auth.ResetTokenTTL / time.Hour)
	if expiryHours < 1 {
		expiryHours = 1
	}
	return auth.Config{
		UseDirectory:       cfg.LDAP.Enabled,
		DirectorySupported: directorySupported,
		PwResetLimit:       cfg.Auth.PwResetLimit,
		ResetTokenRetries:  cfg.Auth.ResetTokenRetries,
		ResetExpiryHours:   expiryHours,
		BaseURL:            cfg.Auth.BaseURL,
		Company:            cfg.Auth.Company,
		TOTPIssuer:         cfg.Auth.TOTPIssuer,
		TOTPSkew:           cfg.Auth.TOTPSkew,
	}
}
