package database

import (
	"context"
)

// Client is the remote database capability used by the migration runner and
// the seed loader. Every call blocks until the remote side answers; there
// are no retries.
type Client interface {
	// ExecuteBatch runs a whole SQL script in one call
	ExecuteBatch(ctx context.Context, sql string) error
	// ExecuteStatement runs a single SQL statement
	ExecuteStatement(ctx context.Context, sql string) error
	// InsertRow inserts one row into table
	InsertRow(ctx context.Context, table string, row any) error
}

var (
	_ Client = (*SupabaseClient)(nil)
	_ Client = (*Database)(nil)
)
