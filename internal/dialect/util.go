package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders is a helper function to create a slice of placeholder strings.
// It takes the number of placeholders needed and a function that returns the placeholder for a given index.
// It returns a comma-separated string of the generated placeholders.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// quoteWith wraps name in open/close, doubling any embedded close character.
func quoteWith(open, close, name string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

func quoteAll(d Dialect, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.QuoteIdent(n)
	}
	return out
}

// whereEquals renders "a = ? AND b = ?" starting at placeholder index start.
func whereEquals(d Dialect, cols []string, start int) string {
	if len(cols) == 0 {
		return ""
	}
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = fmt.Sprintf("%s = %s", d.QuoteIdent(c), d.Placeholder(start+i))
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func defaultInsertQuery(d Dialect, table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.QuoteIdent(table), strings.Join(quoteAll(d, cols), ", "), vals)
}

func defaultSelectQuery(d Dialect, table string, cols, filterCols []string, orderBy string) string {
	q := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(quoteAll(d, cols), ", "), d.QuoteIdent(table), whereEquals(d, filterCols, 0))
	if orderBy != "" {
		q += " ORDER BY " + d.QuoteIdent(orderBy)
	}
	return q
}

func defaultDeleteQuery(d Dialect, table string, filterCols []string) string {
	return fmt.Sprintf("DELETE FROM %s%s", d.QuoteIdent(table), whereEquals(d, filterCols, 0))
}
