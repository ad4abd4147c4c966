package selq

import (
	"slices"
	"strings"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	}
	return "", ErrInvalidDirection
}

type JoinKind uint8

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
)

// keyword is what precedes the joined table. INNER is the default and is rendered as plain JOIN.
func (k JoinKind) keyword() string {
	switch k {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	default:
		return "JOIN"
	}
}

type JoinSpec struct {
	Kind     JoinKind
	Table    string
	Left     string
	Operator Operator
	Right    string
}

type OrderSpec struct {
	Column    string
	Direction Direction
}

// clauses is everything a SELECT is rendered from. Every slice is clipped on copy, so appending
// to one builder value never writes into another's backing array.
type clauses struct {
	columns []string
	from    tableName
	joins   []JoinSpec
	where   []Predicate
	params  Binder
	orderBy []OrderSpec
	limit   *uint64
}

func (c clauses) clone() clauses {
	c.columns = slices.Clip(c.columns)
	c.joins = slices.Clip(c.joins)
	c.where = slices.Clip(c.where)
	c.params = c.params.clone()
	c.orderBy = slices.Clip(c.orderBy)
	return c
}

// addPredicate appends p and its values together; the two lists only ever grow in lockstep.
func (c *clauses) addPredicate(p Predicate) {
	c.where = append(c.where, p)
	c.params.Append(p.bindValues()...)
}
