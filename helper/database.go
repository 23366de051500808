package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for a postgres
// database.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from the
// environment (loading a .env file when present). Host, port, database,
// username and password are required; schema defaults to public and
// sslmode to disable.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// A missing .env file is fine, envs can be set directly.
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	if config.Host == "" {
		return nil, NewError("read configuration", fmt.Errorf("DB_HOST is not set"))
	}
	if config.Port == "" {
		return nil, NewError("read configuration", fmt.Errorf("DB_PORT is not set"))
	}
	if config.Database == "" {
		return nil, NewError("read configuration", fmt.Errorf("DB_DATABASE is not set"))
	}
	if config.Username == "" {
		return nil, NewError("read configuration", fmt.Errorf("DB_USERNAME is not set"))
	}
	if config.Password == "" {
		return nil, NewError("read configuration", fmt.Errorf("DB_PASSWORD is not set"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// Database wraps an open postgres connection with a name and a logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a postgres connection for the given configuration
// and verifies it with a ping. It panics when the database is not
// reachable.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if config == nil {
		log.Panicf("error creating database %v: configuration is nil", name)
	}
	if logger == nil {
		logger = slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{}))
	}

	dsn := fmt.Sprintf(
		"host=%v port=%v dbname=%v user=%v password=%v search_path=%v sslmode=%v",
		config.Host,
		config.Port,
		config.Database,
		config.Username,
		config.Password,
		config.Schema,
		config.SSLMode,
	)

	instance, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Panicf("error opening database %v: %v", name, err)
	}

	err = instance.Ping()
	if err != nil {
		log.Panicf("error pinging database %v: %v", name, err)
	}

	database := &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}

	database.Logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return database
}

// NewTestDatabase opens a database connection for tests.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, nil)
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
