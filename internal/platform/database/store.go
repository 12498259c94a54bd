package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Store is an open database for one of the supported dialects. Pool is
// only set for Postgres; SQL is always set and is what goose runs on.
type Store struct {
	Dialect string
	Pool    *pgxpool.Pool
	SQL     *sql.DB
}

// Open connects to the store selected by dialect.
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	switch dialect {
	case DialectPostgres:
		pool, err := NewPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Store{Dialect: dialect, Pool: pool, SQL: stdlib.OpenDBFromPool(pool)}, nil
	case DialectSQLite:
		db, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Store{Dialect: dialect, SQL: db}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.Pool != nil {
		return s.Pool.Ping(ctx)
	}
	return s.SQL.PingContext(ctx)
}

func (s *Store) Close() {
	_ = s.SQL.Close()
	if s.Pool != nil {
		s.Pool.Close()
	}
}
