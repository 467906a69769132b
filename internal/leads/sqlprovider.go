package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

// DefaultQuery selects one JSON document per lead, in insertion order.
const DefaultQuery = "SELECT data FROM leads ORDER BY id"

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SQLProvider loads leads stored as JSON documents in a SQL table.
type SQLProvider struct {
	db     DB
	query  string
	logger *observability.Logger
}

// NewSQLProvider creates a provider running query against db. The query
// must return a single text/JSON column.
func NewSQLProvider(db DB, query string, logger *observability.Logger) *SQLProvider {
	if query == "" {
		query = DefaultQuery
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &SQLProvider{db: db, query: query, logger: logger}
}

// OpenSQL opens a database for the sqlite or postgres dataset driver.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	name := driver
	if driver == "sqlite" {
		name = "sqlite3"
	}
	if name != "sqlite3" && name != "postgres" {
		return nil, fmt.Errorf("unsupported dataset driver: %s", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if name == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Load runs the query and decodes each row.
func (p *SQLProvider) Load(ctx context.Context) ([]Lead, error) {
	rows, err := p.db.QueryContext(ctx, p.query)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	skipped := 0
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		if !isObject(doc) {
			skipped++
			continue
		}
		var lead Lead
		if err := json.Unmarshal(doc, &lead); err != nil {
			skipped++
			continue
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead rows: %w", err)
	}

	if skipped > 0 {
		p.logger.Warn().Int("skipped", skipped).Msg("Skipped malformed lead rows")
	}
	if len(out) == 0 {
		return nil, ErrNoLeads
	}

	p.logger.Info().Int("leads", len(out)).Msg("Dataset loaded from database")
	return out, nil
}

// Schema is the table layout SQLProvider expects by default. Placeholders
// differ per driver, so Import builds its insert from the driver name.
const Schema = `CREATE TABLE IF NOT EXISTS leads (
	id   INTEGER PRIMARY KEY,
	data TEXT NOT NULL
)`

// Import writes leads into the default table, replacing its contents.
func Import(ctx context.Context, db DB, driver string, all []Lead) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create leads table: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM leads"); err != nil {
		return fmt.Errorf("clear leads table: %w", err)
	}

	insert := "INSERT INTO leads (id, data) VALUES (?, ?)"
	if driver == "postgres" {
		insert = "INSERT INTO leads (id, data) VALUES ($1, $2)"
	}

	for i := range all {
		doc, err := json.Marshal(all[i])
		if err != nil {
			return fmt.Errorf("encode lead %d: %w", i, err)
		}
		if _, err := db.ExecContext(ctx, insert, i+1, string(doc)); err != nil {
			return fmt.Errorf("insert lead %d: %w", i, err)
		}
	}
	return nil
}
