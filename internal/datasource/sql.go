package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Dialect is the SQL family a connection URL resolved to.
type Dialect int

const (
	DialectSQLite Dialect = iota + 1
	DialectPostgres
	DialectMySQL
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	default:
		return "unknown"
	}
}

// UnsupportedSchemeError is returned for connection URLs no bundled driver
// can serve.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported database scheme %q", e.Scheme)
}

// Connection is an open database handle and the dialect used to query it.
type Connection struct {
	DB      *sql.DB
	Dialect Dialect
}

// SplitScheme returns the dialect part of a SQLAlchemy-style URL, dropping
// any "+driver" suffix ("postgresql+psycopg2" becomes "postgresql").
func SplitScheme(raw string) (string, string, bool) {
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return "", "", false
	}
	scheme := strings.ToLower(raw[:idx])
	if plus := strings.IndexByte(scheme, '+'); plus >= 0 {
		scheme = scheme[:plus]
	}
	return scheme, raw[idx+3:], true
}

// OpenSQL opens a handle for a SQLAlchemy-style connection URL. No
// connection is made until the handle is used.
func OpenSQL(raw string) (*Connection, error) {
	scheme, rest, ok := SplitScheme(raw)
	if !ok {
		return nil, fmt.Errorf("connection URL must look like dialect://...")
	}

	switch scheme {
	case "sqlite":
		db, err := sql.Open("sqlite", sqlitePath(rest))
		if err != nil {
			return nil, err
		}
		return &Connection{DB: db, Dialect: DialectSQLite}, nil

	case "postgres", "postgresql", "redshift":
		cfg, err := pgxConfig(scheme, rest)
		if err != nil {
			return nil, err
		}
		return &Connection{DB: stdlib.OpenDB(*cfg), Dialect: DialectPostgres}, nil

	case "mysql", "mariadb":
		cfg, err := mysqlConfig(rest)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return &Connection{DB: sql.OpenDB(connector), Dialect: DialectMySQL}, nil

	default:
		return nil, &UnsupportedSchemeError{Scheme: scheme}
	}
}

// sqlitePath maps the part after "sqlite://" to a file name: an empty rest
// is an in-memory database, "/rel.db" is relative and "//abs.db" absolute.
func sqlitePath(rest string) string {
	if rest == "" || rest == "/" || rest == "/:memory:" {
		return ":memory:"
	}
	return strings.TrimPrefix(rest, "/")
}

func pgxConfig(scheme, rest string) (*pgx.ConnConfig, error) {
	u, err := url.Parse("postgres://" + rest)
	if err != nil {
		return nil, fmt.Errorf("parsing connection URL: %w", err)
	}
	if scheme == "redshift" && u.Port() == "" && u.Hostname() != "" {
		u.Host = net.JoinHostPort(u.Hostname(), "5439")
	}
	cfg, err := pgx.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("parsing connection URL: %w", err)
	}
	return cfg, nil
}

func mysqlConfig(rest string) (*mysql.Config, error) {
	u, err := url.Parse("mysql://" + rest)
	if err != nil {
		return nil, fmt.Errorf("parsing connection URL: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params[key] = values[len(values)-1]
	}
	return cfg, nil
}

// Close releases the handle.
func (c *Connection) Close() error {
	return c.DB.Close()
}

// Ping verifies the database answers a trivial query.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return err
	}
	var one int
	return c.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// ListTables returns the user tables, schema qualified, sorted.
func (c *Connection) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch c.Dialect {
	case DialectSQLite:
		query = `SELECT 'main', name FROM sqlite_master
			WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	case DialectPostgres:
		query = `SELECT table_schema, table_name FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`
	case DialectMySQL:
		query = `SELECT table_schema, table_name FROM information_schema.tables
			WHERE table_schema = DATABASE()
			ORDER BY table_schema, table_name`
	default:
		return nil, fmt.Errorf("listing tables: unsupported dialect %s", c.Dialect)
	}

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		tables = append(tables, schema+"."+name)
	}
	return tables, rows.Err()
}

// QuoteQualified quotes a possibly schema-qualified table name.
func (c *Connection) QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if c.Dialect == DialectMySQL {
			parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		} else {
			parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}

// RedactURL hides the password of a connection URL for logging.
func RedactURL(raw string) string {
	scheme, rest, ok := SplitScheme(raw)
	if !ok {
		return "<invalid url>"
	}
	u, err := url.Parse("x://" + rest)
	if err != nil {
		return scheme + "://<redacted>"
	}
	return scheme + "://" + strings.TrimPrefix(u.Redacted(), "x://")
}
