package database

import (
	"strings"
)

// SplitStatements breaks a script into statements for the fallback path.
//
// It splits on every ';' without looking at quoting, so semicolons inside
// string literals, dollar-quoted function bodies or comments produce broken
// fragments. Fragments that are blank or begin with "--" are dropped, which
// also drops a statement preceded by a comment line. Callers must treat the
// fallback as best effort.
func SplitStatements(sql string) []string {
	var statements []string
	for _, part := range strings.Split(sql, ";") {
		stmt := strings.TrimSpace(part)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
