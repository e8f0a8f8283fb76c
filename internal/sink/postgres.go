package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvandessel/navigator/internal/tables"
)

// DefaultPostgresSchema is the schema holding the bronze tables.
const DefaultPostgresSchema = "bronze"

// CopyConn is the subset of a pgx pool the Postgres sink uses.
type CopyConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresSink replaces bronze tables in Postgres using COPY. Each Write
// recreates its table, so repeated runs never append duplicates.
type PostgresSink struct {
	conn   CopyConn
	schema string
	pool   *pgxpool.Pool

	mu          sync.Mutex
	schemaReady bool
}

// ConnectPostgres opens a pool for dsn and returns a sink writing to schema.
// Close releases the pool.
func ConnectPostgres(ctx context.Context, dsn, schema string) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPostgresSink(pool, schema)
	s.pool = pool
	return s, nil
}

// NewPostgresSink creates a sink over an existing connection.
func NewPostgresSink(conn CopyConn, schema string) *PostgresSink {
	if schema == "" {
		schema = DefaultPostgresSchema
	}
	return &PostgresSink{conn: conn, schema: schema}
}

// Close releases the pool opened by ConnectPostgres.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Format implements Sink.
func (s *PostgresSink) Format() string { return FormatPostgres }

// Write implements Sink.
func (s *PostgresSink) Write(ctx context.Context, t *tables.Table) (Output, error) {
	ddl, err := CreateTableSQL(s.schema, t)
	if err != nil {
		return Output{}, err
	}

	if err := s.ensureSchema(ctx); err != nil {
		return Output{}, err
	}

	ident := pgx.Identifier{s.schema, t.Name}
	stmts := []string{
		"DROP TABLE IF EXISTS " + ident.Sanitize(),
		ddl,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return Output{}, fmt.Errorf("exec %q: %w", firstWords(stmt), err)
		}
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
	}
	n, err := s.conn.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(t.Rows))
	if err != nil {
		return Output{}, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}
	if int(n) != t.Len() {
		return Output{}, fmt.Errorf("copy into %s: wrote %d of %d rows", ident.Sanitize(), n, t.Len())
	}
	return Output{Table: t.Name, Format: FormatPostgres, Rows: int(n)}, nil
}

// ensureSchema creates the target schema once. Concurrent CREATE SCHEMA IF
// NOT EXISTS statements can conflict in Postgres, so tables wait on it.
func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schemaReady {
		return nil
	}
	if _, err := s.conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{s.schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema %s: %w", s.schema, err)
	}
	s.schemaReady = true
	return nil
}

// CreateTableSQL returns the DDL for a bronze table.
func CreateTableSQL(schema string, t *tables.Table) (string, error) {
	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		typ, err := postgresType(col.Type)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", t.Name, col.Name, err)
		}
		def := pgx.Identifier{col.Name}.Sanitize() + " " + typ
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		pgx.Identifier{schema, t.Name}.Sanitize(), strings.Join(defs, ",\n\t")), nil
}

func postgresType(t tables.Type) (string, error) {
	switch t {
	case tables.String:
		return "text", nil
	case tables.Int64:
		return "bigint", nil
	case tables.Float64:
		return "double precision", nil
	case tables.Bool:
		return "boolean", nil
	case tables.Timestamp:
		return "timestamptz", nil
	case tables.Date:
		return "date", nil
	case tables.JSON:
		return "jsonb", nil
	default:
		return "", fmt.Errorf("unsupported column type %s", t)
	}
}

func firstWords(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}
