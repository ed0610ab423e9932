// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for the ledger engine, its storage backends,
// credential hashing and logging.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage backend identifiers
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds the complete application configuration with settings for all components.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Ledger      LedgerConfig
	Journal     JournalConfig
	Bank        BankConfig
	Security    SecurityConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// LedgerConfig selects where the account table lives
type LedgerConfig struct {
	Backend      string // csv or postgres
	AccountsFile string // Used by the csv backend
}

// JournalConfig selects where the transaction journal lives
type JournalConfig struct {
	Backend string // csv or mongo
	File    string // Used by the csv backend
}

// BankConfig contains the registry limits
type BankConfig struct {
	MaxAccounts       int
	MaxOverdraftLimit int64
}

// SecurityConfig contains credential hashing settings
type SecurityConfig struct {
	BcryptCost int
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// validate checks every configuration value and reports all problems at once.
// Connection settings are only checked for the backends that are selected.
func (c *Config) validate() error {
	var validationErrors []string

	switch c.Ledger.Backend {
	case BackendCSV:
		if c.Ledger.AccountsFile == "" {
			validationErrors = append(validationErrors, "LEDGER_ACCOUNTS_FILE is required for the csv backend")
		}
	case BackendPostgres:
		validationErrors = append(validationErrors, c.Postgres.validate()...)
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("LEDGER_BACKEND must be %q or %q", BackendCSV, BackendPostgres))
	}

	switch c.Journal.Backend {
	case BackendCSV:
		if c.Journal.File == "" {
			validationErrors = append(validationErrors, "JOURNAL_FILE is required for the csv backend")
		}
	case BackendMongo:
		validationErrors = append(validationErrors, c.MongoDB.validate()...)
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("JOURNAL_BACKEND must be %q or %q", BackendCSV, BackendMongo))
	}

	if c.Bank.MaxAccounts <= 0 {
		validationErrors = append(validationErrors, "BANK_MAX_ACCOUNTS must be greater than 0")
	}
	if c.Bank.MaxOverdraftLimit <= 0 {
		validationErrors = append(validationErrors, "BANK_MAX_OVERDRAFT_LIMIT must be greater than 0")
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		validationErrors = append(validationErrors, fmt.Sprintf("SECURITY_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (c *PostgresConfig) validate() []string {
	var errs []string
	if c.URL == "" {
		errs = append(errs, "POSTGRES_URL is required")
	}
	if c.MaxConns <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.MinConns <= 0 {
		errs = append(errs, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.ConnMaxLifetime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.ConnMaxIdleTime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}

func (c *MongoDBConfig) validate() []string {
	var errs []string
	if c.URI == "" {
		errs = append(errs, "MONGO_URI is required")
	}
	if c.Database == "" {
		errs = append(errs, "MONGO_DATABASE is required")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MaxPoolSize <= 0 {
		errs = append(errs, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MinPoolSize <= 0 {
		errs = append(errs, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MaxConnIdleTime <= 0 {
		errs = append(errs, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}
