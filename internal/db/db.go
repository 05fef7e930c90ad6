package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Options selects and tunes the credential database.
type Options struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite file

	Host, Port, Name, User, Password string

	MaxOpenConns int
	MaxIdleConns int
}

// Connect opens and pings the database described by opts and returns it
// together with its dialect.
func Connect(ctx context.Context, opts Options) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(opts.Driver)
	if err != nil {
		return nil, 0, err
	}

	var dsn string
	switch dialect {
	case Postgres:
		dsn = fmt.Sprintf(
			"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
			opts.Host, opts.Port, opts.Name, opts.User, opts.Password,
		)
	default:
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", opts.Path)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, 0, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, 0, err
	}

	return db, dialect, nil
}
