package database

import (
	"context"
	"strings"
)

type clientCall struct {
	Method string
	SQL    string
	Table  string
}

// fakeClient records every call and fails those its hooks reject
type fakeClient struct {
	calls     []clientCall
	batchErr  func(sql string) error
	stmtErr   func(sql string) error
	insertErr func(table string, row any) error
}

func (f *fakeClient) ExecuteBatch(ctx context.Context, sql string) error {
	f.calls = append(f.calls, clientCall{Method: "batch", SQL: sql})
	if f.batchErr != nil {
		return f.batchErr(sql)
	}
	return nil
}

func (f *fakeClient) ExecuteStatement(ctx context.Context, sql string) error {
	f.calls = append(f.calls, clientCall{Method: "statement", SQL: sql})
	if f.stmtErr != nil {
		return f.stmtErr(sql)
	}
	return nil
}

func (f *fakeClient) InsertRow(ctx context.Context, table string, row any) error {
	f.calls = append(f.calls, clientCall{Method: "insert", Table: table})
	if f.insertErr != nil {
		return f.insertErr(table, row)
	}
	return nil
}

// migrationCalls drops the bookkeeping statements on schema_migrations
func (f *fakeClient) migrationCalls() []clientCall {
	var out []clientCall
	for _, c := range f.calls {
		if strings.Contains(c.SQL, "schema_migrations") {
			continue
		}
		out = append(out, c)
	}
	return out
}
