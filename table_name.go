package selq

import (
	"strings"
	"unicode"
)

type tableName struct {
	schema    string
	tableName string
	alias     string
}

func newTableNameFromString(s string) (*tableName, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyTableName
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, ErrInvalidTableName{s}
	}
	for _, part := range parts {
		if !isIdentifier(part) {
			return nil, ErrInvalidTableName{s}
		}
	}

	var t tableName
	if len(parts) > 1 {
		// Schema was provided in tableName, it comes before the actual table name.
		t.schema = parts[0]
	}

	// Whether a schema is provided or not, the table name is always the last part.
	t.tableName = parts[len(parts)-1]

	return &t, nil
}

func (t tableName) isZero() bool {
	return t.tableName == ""
}

// String renders the table the way it appears after FROM, including the alias.
func (t tableName) String() string {
	s := t.tableName
	if t.schema != "" {
		s = t.schema + "." + s
	}
	if t.alias != "" {
		s += " " + t.alias
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case unicode.IsDigit(r) || r == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// isColumnRef accepts "col" and "table.col".
func isColumnRef(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	for _, part := range parts {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}
