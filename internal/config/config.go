package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envSessionStore          = "SESSION_STORE"
	envSessionSecret         = "SESSION_SECRET"
	envSessionCookieName     = "SESSION_COOKIE_NAME"
	envSessionTTL            = "SESSION_TTL"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envLDAPEnabled           = "LDAP_ENABLED"
	envLDAPURL               = "LDAP_URL"
	envLDAPStartTLS          = "LDAP_START_TLS"
	envLDAPDomain            = "LDAP_DOMAIN"
	envLDAPBaseDN            = "LDAP_BASE_DN"
	envLDAPBindDN            = "LDAP_BIND_DN"
	envLDAPBindPassword      = "LDAP_BIND_PASSWORD"
	envLDAPUserFilter        = "LDAP_USER_FILTER"
	envLDAPTimeout           = "LDAP_TIMEOUT"
	envLDAPRoleGroups        = "LDAP_ROLE_GROUPS"
	envLDAPDefaultRole       = "LDAP_DEFAULT_ROLE"
	envMailFrom              = "MAIL_FROM"
	envMailStrategy          = "MAIL_STRATEGY"
	envResendAPIKey          = "RESEND_API_KEY"
	envSendGridAPIKey        = "SENDGRID_API_KEY"
	envBaseURL               = "BASE_URL"
	envCompanyName           = "COMPANY_NAME"
	envPwResetLimit          = "PW_RESET_LIMIT"
	envResetTokenTTL         = "RESET_TOKEN_TTL"
	envResetTokenRetries     = "RESET_TOKEN_RETRIES"
	envBcryptCost            = "BCRYPT_COST"
	envTOTPIssuer            = "TOTP_ISSUER"
	envTOTPSkew              = "TOTP_SKEW"
	envRoleCatalogFile       = "ROLE_CATALOG_FILE"
	envLoginRateLimit        = "LOGIN_RATE_LIMIT"
	envLoginRateBurst        = "LOGIN_RATE_BURST"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	MailStrategySingle     = "single"
	MailStrategyFailover   = "failover"
	MailStrategyPriority   = "priority"
	MailStrategyRoundRobin = "roundrobin"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "sessionauth"
	defaultDBUser             = "sessionauth_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultRedisAddr          = "localhost:6379"
	defaultSessionCookieName  = "sid"
	defaultSessionTTL         = 8 * time.Hour
	defaultLDAPTimeout        = 5 * time.Second
	defaultLDAPUserFilter     = "(&(objectClass=person)(sAMAccountName=%s))"
	defaultLDAPDefaultRole    = 20
	defaultMailStrategy       = MailStrategyFailover
	defaultCompanyName        = "session-auth"
	defaultPwResetLimit       = 5
	defaultResetTokenTTL      = time.Hour
	defaultResetTokenRetries  = 3
	defaultBcryptCost         = 12
	defaultTOTPIssuer         = "session-auth"
	defaultTOTPSkew           = 1
	defaultLoginRateLimit     = 10
	defaultLoginRateBurst     = 5
	minSessionSecretLength    = 32
	minUniqueCharsInSecret    = 16
	minRepeatedCharThreshold  = 4
	maxRepeatedChars          = 2
	roleGroupSeparator        = ";"
	roleGroupAssign           = "="
)

const (
	errPortRequiredFmt           = "PORT must be set"
	errDBPasswordRequiredFmt     = "DB_PASSWORD must be set"
	errSessionSecretRequiredFmt  = "SESSION_SECRET must be set"
	errSessionSecretMinLengthFmt = "SESSION_SECRET must be at least %d characters"
	errSessionSecretEntropyFmt   = "SESSION_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errSessionStoreUnknownFmt    = "SESSION_STORE must be %q or %q, got %q"
	errBaseURLRequiredFmt        = "BASE_URL must be an absolute http(s) URL"
	errLDAPURLRequiredFmt        = "LDAP_URL must be set when LDAP_ENABLED is true"
	errLDAPDomainRequiredFmt     = "LDAP_DOMAIN must be set when LDAP_ENABLED is true"
	errLDAPRoleGroupFmt          = "LDAP_ROLE_GROUPS entry %q must look like <group-dn>=<role-level>"
	errMailProviderRequiredFmt   = "at least one of RESEND_API_KEY or SENDGRID_API_KEY must be set"
	errMailFromRequiredFmt       = "MAIL_FROM must be set"
	errMailStrategyUnknownFmt    = "MAIL_STRATEGY %q is not supported"
	errInvalidConfigurationFmt   = "invalid configuration: %w"
	errRequiredEnvNotSetFmt      = "required environment variables not set: %s"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	LDAP     LDAPConfig
	Mail     MailConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// EnableProfiling mounts pprof under /debug for admins.
	EnableProfiling bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Store        string
	Secret       string
	CookieName   string
	TTL          time.Duration
	CookieSecure bool
}

type LDAPConfig struct {
	Enabled      bool
	URL          string
	StartTLS     bool
	Domain       string
	BaseDN       string
	BindDN       string
	BindPassword string
	UserFilter   string
	Timeout      time.Duration
	// RoleGroups maps a group DN to the numeric role granted to its members.
	RoleGroups  map[string]int
	DefaultRole int
}

type MailConfig struct {
	From           string
	Strategy       string
	ResendAPIKey   string
	SendGridAPIKey string
}

type AuthConfig struct {
	BaseURL           string
	Company           string
	PwResetLimit      int
	ResetTokenTTL     time.Duration
	ResetTokenRetries int
	BcryptCost        int
	TOTPIssuer        string
	TOTPSkew          uint
	RoleCatalogFile   string
	LoginRateLimit    int
	LoginRateBurst    int
}

func Load() (*Config, error) {
	roleGroups, err := parseRoleGroups(getEnv(envLDAPRoleGroups, ""))
	if err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	var missing []string
	requireEnv := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			EnableProfiling: getBoolEnv(envEnableProfiling, false),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: requireEnv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		Redis: RedisConfig{
			Addr:     getEnv(envRedisAddr, defaultRedisAddr),
			Password: getEnv(envRedisPassword, ""),
			DB:       getIntEnv(envRedisDB, 0),
		},
		Session: SessionConfig{
			Store:        getEnv(envSessionStore, SessionStoreRedis),
			Secret:       requireEnv(envSessionSecret),
			CookieName:   getEnv(envSessionCookieName, defaultSessionCookieName),
			TTL:          getDurationEnv(envSessionTTL, defaultSessionTTL),
			CookieSecure: getBoolEnv(envSessionCookieSecure, true),
		},
		LDAP: LDAPConfig{
			Enabled:      getBoolEnv(envLDAPEnabled, false),
			URL:          getEnv(envLDAPURL, ""),
			StartTLS:     getBoolEnv(envLDAPStartTLS, false),
			Domain:       getEnv(envLDAPDomain, ""),
			BaseDN:       getEnv(envLDAPBaseDN, ""),
			BindDN:       getEnv(envLDAPBindDN, ""),
			BindPassword: getEnv(envLDAPBindPassword, ""),
			UserFilter:   getEnv(envLDAPUserFilter, defaultLDAPUserFilter),
			Timeout:      getDurationEnv(envLDAPTimeout, defaultLDAPTimeout),
			RoleGroups:   roleGroups,
			DefaultRole:  getIntEnv(envLDAPDefaultRole, defaultLDAPDefaultRole),
		},
		Mail: MailConfig{
			From:           requireEnv(envMailFrom),
			Strategy:       getEnv(envMailStrategy, defaultMailStrategy),
			ResendAPIKey:   getEnv(envResendAPIKey, ""),
			SendGridAPIKey: getEnv(envSendGridAPIKey, ""),
		},
		Auth: AuthConfig{
			BaseURL:           requireEnv(envBaseURL),
			Company:           getEnv(envCompanyName, defaultCompanyName),
			PwResetLimit:      getIntEnv(envPwResetLimit, defaultPwResetLimit),
			ResetTokenTTL:     getDurationEnv(envResetTokenTTL, defaultResetTokenTTL),
			ResetTokenRetries: getIntEnv(envResetTokenRetries, defaultResetTokenRetries),
			BcryptCost:        getIntEnv(envBcryptCost, defaultBcryptCost),
			TOTPIssuer:        getEnv(envTOTPIssuer, defaultTOTPIssuer),
			TOTPSkew:          uint(getIntEnv(envTOTPSkew, defaultTOTPSkew)),
			RoleCatalogFile:   getEnv(envRoleCatalogFile, ""),
			LoginRateLimit:    getIntEnv(envLoginRateLimit, defaultLoginRateLimit),
			LoginRateBurst:    getIntEnv(envLoginRateBurst, defaultLoginRateBurst),
		},
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(errRequiredEnvNotSetFmt, strings.Join(missing, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if err := c.Session.validate(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Auth.BaseURL, "http://") && !strings.HasPrefix(c.Auth.BaseURL, "https://") {
		return fmt.Errorf(errBaseURLRequiredFmt)
	}

	if c.LDAP.Enabled {
		if c.LDAP.URL == "" {
			return fmt.Errorf(errLDAPURLRequiredFmt)
		}
		if c.LDAP.Domain == "" {
			return fmt.Errorf(errLDAPDomainRequiredFmt)
		}
	}

	return c.Mail.validate()
}

func (s *SessionConfig) validate() error {
	if s.Store != SessionStoreMemory && s.Store != SessionStoreRedis {
		return fmt.Errorf(errSessionStoreUnknownFmt, SessionStoreMemory, SessionStoreRedis, s.Store)
	}

	if s.Secret == "" {
		return fmt.Errorf(errSessionSecretRequiredFmt)
	}

	if len(s.Secret) < minSessionSecretLength {
		return fmt.Errorf(errSessionSecretMinLengthFmt, minSessionSecretLength)
	}

	if !hasMinimumEntropy(s.Secret) {
		return fmt.Errorf(errSessionSecretEntropyFmt)
	}

	return nil
}

func (m *MailConfig) validate() error {
	if m.From == "" {
		return fmt.Errorf(errMailFromRequiredFmt)
	}

	if m.ResendAPIKey == "" && m.SendGridAPIKey == "" {
		return fmt.Errorf(errMailProviderRequiredFmt)
	}

	switch m.Strategy {
	case MailStrategySingle, MailStrategyFailover, MailStrategyPriority, MailStrategyRoundRobin:
		return nil
	default:
		return fmt.Errorf(errMailStrategyUnknownFmt, m.Strategy)
	}
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minSessionSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

// parseRoleGroups reads "cn=admins,dc=corp=40;cn=staff,dc=corp=20".
// The last "=" of each entry separates the DN from the role level.
func parseRoleGroups(raw string) (map[string]int, error) {
	groups := make(map[string]int)
	for _, entry := range strings.Split(raw, roleGroupSeparator) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idx := strings.LastIndex(entry, roleGroupAssign)
		if idx <= 0 {
			return nil, fmt.Errorf(errLDAPRoleGroupFmt, entry)
		}
		level, err := strconv.Atoi(strings.TrimSpace(entry[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf(errLDAPRoleGroupFmt, entry)
		}
		groups[strings.ToLower(strings.TrimSpace(entry[:idx]))] = level
	}
	return groups, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
