package database

import (
	"fmt"
	"strings"

	"github.com/zzoohub/idea-fork-sub001/internal/cursor"
)

// Page carries keyset-pagination metadata for one page of list results.
type Page struct {
	HasNext    bool
	NextCursor string
}

// keysetFilter builds the seek predicate for cursor values decoded from a
// token. Both fields must be present; otherwise the page starts from the
// beginning, same as no cursor.
func keysetFilter(col string, cur map[string]any) (string, []any) {
	v, okV := cur["v"]
	id, okID := cursor.Int64(cur, "id")
	if !okV || !okID {
		return "", nil
	}

	// The id tie-breaker lives on the same table as the sort column, so it
	// inherits the alias when one is present.
	idCol := "id"
	if dot := strings.LastIndex(col, "."); dot >= 0 {
		idCol = col[:dot+1] + "id"
	}
	clause := fmt.Sprintf("(%s < ? OR (%s = ? AND %s < ?))", col, col, idCol)
	return clause, []any{v, v, id}
}

// trimPage applies the limit+1 convention: rows were fetched with one extra
// row, and the extra row's presence means another page exists. The next
// cursor is built from the last returned row.
func trimPage[T any](rows []T, limit int, lastCursor func(T) map[string]any) ([]T, Page) {
	if len(rows) <= limit {
		return rows, Page{}
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, Page{
		HasNext:    true,
		NextCursor: cursor.Encode(lastCursor(last)),
	}
}

// qualify prefixes every column in a comma-separated list with a table alias.
func qualify(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	s := "?"
	for i := 1; i < n; i++ {
		s += ",?"
	}
	return s
}
