package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/dannynerezov/motor-mutual-sub001/internal/config"
)

var DBStatus bool

// Handle is a shared reference to the live database connection. Components
// are wired with the handle at startup, so a connection established later
// by the background retry is visible to all of them.
type Handle struct {
	ptr atomic.Pointer[sqlx.DB]
}

func NewHandle(db *sqlx.DB) *Handle {
	h := &Handle{}
	if db != nil {
		h.ptr.Store(db)
	}
	return h
}

func (h *Handle) Set(db *sqlx.DB) {
	h.ptr.Store(db)
}

// Get returns the live connection, or nil while none is established.
func (h *Handle) Get() *sqlx.DB {
	return h.ptr.Load()
}

// ConnectAndCreateDB connects to PostgreSQL, creating the motor-quote
// database and applying schema.sql on first run.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		if _, err = defaultDB.Exec(createQuery); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		slog.Info("Database created", "dbname", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	if !exists {
		if err := executeSchema(db); err != nil {
			// Log only; manual schema setup is still possible.
			slog.Warn("Failed to execute schema.sql", "error", err)
		}
	}

	DBStatus = true
	return db, nil
}

// RetryConnectOnFailed keeps retrying the connection in the background until
// it succeeds, publishing the connection through the shared handle.
func RetryConnectOnFailed(interval time.Duration, handle *Handle, cfg config.PostgresConfig) {
	for {
		time.Sleep(interval)
		conn, err := ConnectAndCreateDB(cfg)
		if err != nil {
			slog.Error("Retrying PostgreSQL connection failed", "error", err)
			continue
		}
		handle.Set(conn)
		slog.Info("PostgreSQL connection established after retry")
		return
	}
}

// executeSchema reads and executes the schema.sql file.
func executeSchema(db *sqlx.DB) error {
	schemaLocations := []string{
		"schema.sql",
		"./schema.sql",
		"/app/schema.sql",
	}

	var schemaPath string
	for _, location := range schemaLocations {
		if _, err := os.Stat(location); err == nil {
			schemaPath = location
			break
		}
	}
	if schemaPath == "" {
		return fmt.Errorf("schema.sql not found in any expected locations: %v", schemaLocations)
	}

	schemaContent, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema.sql from %s: %w", schemaPath, err)
	}

	log.Printf("Executing schema from: %s", schemaPath)

	statements := strings.Split(string(schemaContent), ";")
	successCount := 0
	for i, statement := range statements {
		statement = strings.TrimSpace(statement)
		if statement == "" || strings.HasPrefix(statement, "--") {
			continue
		}
		if _, err := db.Exec(statement); err != nil {
			slog.Warn("Failed to execute schema statement", "index", i+1, "error", err)
			continue
		}
		successCount++
	}

	slog.Info("Schema execution completed", "statements", successCount)
	return nil
}
