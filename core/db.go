package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor runs queries on either the connection pool or an open
	// transaction. Repositories take a variadic override so a service can
	// group several writes under one transaction.
	DBExecutor interface {
		sqlx.ExtContext
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}

	// DB is a store that can open transactions. Stores without them
	// (in-memory) pass nil and services fall back to loose writes.
	DB interface {
		DBExecutor

		Transactor(ctx context.Context) (DBTransactor, error)
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
