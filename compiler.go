package selq

import (
	"fmt"
	"strconv"
	"strings"
)

// compile renders c into a SELECT statement. Each clause with no entries is left out entirely.
// The order of "?" in the output is the order of c.params.
//
//	SELECT <columns|*> FROM <table> [JOIN ...] [WHERE ... AND ...] [ORDER BY ...] [LIMIT n]
func compile(c *clauses) (string, []any, error) {
	if c.from.isZero() {
		return "", nil, &CompilationError{Reason: "no source table"}
	}

	sb := strings.Builder{}

	sb.WriteString("SELECT ")
	if len(c.columns) == 0 {
		sb.WriteByte('*')
	} else {
		sb.WriteString(strings.Join(c.columns, ", "))
	}

	sb.WriteString(" FROM ")
	sb.WriteString(c.from.String())

	for _, j := range c.joins {
		fmt.Fprintf(&sb, " %s %s ON %s %s %s", j.Kind.keyword(), j.Table, j.Left, j.Operator, j.Right)
	}

	placeholders := 0
	for _, column := range c.columns {
		placeholders += countPlaceholders(column)
	}
	for i, p := range c.where {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		n := len(p.bindValues())
		p.render(&sb, n)
		placeholders += n
	}
	if placeholders != c.params.Len() {
		return "", nil, &CompilationError{
			Reason: fmt.Sprintf("%d placeholders but %d bound values", placeholders, c.params.Len()),
		}
	}

	for i, o := range c.orderBy {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.Column)
		sb.WriteByte(' ')
		sb.WriteString(string(o.Direction))
	}

	if c.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.FormatUint(*c.limit, 10))
	}

	return sb.String(), c.params.Args(), nil
}
