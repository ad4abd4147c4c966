package selq

import (
	"reflect"
	"strings"
)

type Operator uint8

const (
	OperatorEqual Operator = iota + 1
	OperatorNotEqual
	OperatorLessThan
	OperatorLessThanOrEqual
	OperatorGreaterThan
	OperatorGreaterThanOrEqual
	OperatorLike
	OperatorIn
)

var operatorText = map[Operator]string{
	OperatorEqual:              "=",
	OperatorNotEqual:           "!=",
	OperatorLessThan:           "<",
	OperatorLessThanOrEqual:    "<=",
	OperatorGreaterThan:        ">",
	OperatorGreaterThanOrEqual: ">=",
	OperatorLike:               "LIKE",
	OperatorIn:                 "IN",
}

func (o Operator) String() string {
	return operatorText[o]
}

// ParseOperator looks s up in the comparison safelist. Keyword operators match case-insensitively.
func ParseOperator(s string) (Operator, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for op, text := range operatorText {
		if text == s {
			return op, nil
		}
	}
	return 0, ErrUnknownOperator
}

// Predicate is a single WHERE condition. The value never reaches the SQL text.
type Predicate struct {
	Column   string
	Operator Operator
	Value    any
}

func Equal(column string, v any) Predicate {
	return Predicate{column, OperatorEqual, v}
}

func NotEqual(column string, v any) Predicate {
	return Predicate{column, OperatorNotEqual, v}
}

func LessThan(column string, v any) Predicate {
	return Predicate{column, OperatorLessThan, v}
}

func LessThanOrEqual(column string, v any) Predicate {
	return Predicate{column, OperatorLessThanOrEqual, v}
}

func GreaterThan(column string, v any) Predicate {
	return Predicate{column, OperatorGreaterThan, v}
}

func GreaterThanOrEqual(column string, v any) Predicate {
	return Predicate{column, OperatorGreaterThanOrEqual, v}
}

func Like(column string, pattern string) Predicate {
	return Predicate{column, OperatorLike, pattern}
}

func In(column string, values ...any) Predicate {
	return Predicate{column, OperatorIn, values}
}

// bindValues returns the values this predicate contributes to the parameter list, one per
// placeholder.
func (p Predicate) bindValues() []any {
	if p.Operator != OperatorIn {
		return []any{p.Value}
	}

	if values, ok := p.Value.([]any); ok {
		return values
	}

	rv := reflect.ValueOf(p.Value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array || rv.Type().Elem().Kind() == reflect.Uint8 {
		// A scalar (or []byte) on the right of IN is a one element list.
		return []any{p.Value}
	}

	values := make([]any, rv.Len())
	for i := range rv.Len() {
		values[i] = rv.Index(i).Interface()
	}
	return values
}

// render writes `column op ?` for a predicate binding n values.
func (p Predicate) render(sb *strings.Builder, n int) {
	sb.WriteString(p.Column)
	sb.WriteByte(' ')
	sb.WriteString(p.Operator.String())
	sb.WriteByte(' ')

	if p.Operator != OperatorIn {
		sb.WriteByte('?')
		return
	}

	// (?, ?, ?)
	sb.WriteByte('(')
	sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", n), ", "))
	sb.WriteByte(')')
}
