// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"fmt"
	"strings"
)

// Placeholder is the neutral positional parameter marker used in all
// statement text handed to a Store.
const Placeholder = '?'

// rewritePlaceholders walks stmt left to right, invoking rewrite with the
// 1-based ordinal of each neutral placeholder and substituting its result.
// Placeholder characters inside single-quoted string literals are left
// untouched and not counted; a doubled quote inside a literal is the SQL
// escape for a quote, not a terminator. Returns the rewritten statement
// and the number of placeholders found.
//
// Counting positionally here matters: deriving a placeholder's index from a
// substring search over the statement miscounts as soon as a literal
// contains the placeholder character.
func rewritePlaceholders(stmt string, rewrite func(ordinal int) string) (string, int) {
	var b strings.Builder
	b.Grow(len(stmt) + 16)

	inLiteral := false
	count := 0
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case c == '\'':
			if inLiteral && i+1 < len(stmt) && stmt[i+1] == '\'' {
				b.WriteString("''")
				i++
				continue
			}
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == Placeholder && !inLiteral:
			count++
			b.WriteString(rewrite(count))
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), count
}

// countPlaceholders counts neutral placeholders without rewriting.
func countPlaceholders(stmt string) int {
	_, n := rewritePlaceholders(stmt, func(int) string { return string(Placeholder) })
	return n
}

// translatePostgres rewrites neutral `?` markers into Postgres $N syntax.
func translatePostgres(stmt string) (string, int) {
	return rewritePlaceholders(stmt, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})
}

// checkArgCount validates that the statement's placeholder count matches the
// supplied arguments. A mismatch is a programmer error and fails loudly.
func checkArgCount(op, stmt string, placeholders, args int) error {
	if placeholders != args {
		return newError(KindTranslation, op,
			fmt.Errorf("statement has %d placeholders but %d arguments were given: %s", placeholders, args, stmt))
	}
	return nil
}

// isValuesInsert reports whether stmt is a plain VALUES-form insertion, the
// only mutation shape for which a generated id is retrievable. INSERT ...
// SELECT (used by the migrator to bulk-copy rows) is excluded.
func isValuesInsert(stmt string) bool {
	upper := strings.ToUpper(stmt)
	if !strings.HasPrefix(strings.TrimSpace(upper), "INSERT") {
		return false
	}
	values := strings.Index(upper, "VALUES")
	if values < 0 {
		return false
	}
	if sel := strings.Index(upper, "SELECT"); sel >= 0 && sel < values {
		return false
	}
	return !strings.Contains(upper, "RETURNING")
}
