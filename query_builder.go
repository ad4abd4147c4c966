package selq

import (
	"context"
	"slices"

	"github.com/zoobzio/dbml"
)

// QueryBuilder describes a single SELECT statement and runs it through an Executor.
//
// Every setter returns a new QueryBuilder and leaves the receiver untouched, so a partially
// built query can be kept as a template and extended in several directions.
// A setter given bad input records a *ValidationError, visible straight away through Err,
// and the clause is not applied. BuildQuery and Fetch return that error before generating SQL.
type QueryBuilder struct {
	exec    Executor
	schema  *schema
	clauses clauses

	err error
}

// New will construct a QueryBuilder selecting from table and running on exec.
func New(exec Executor, table string) QueryBuilder {
	return QueryBuilder{exec: exec}.From(table)
}

// Err returns the first validation error recorded by a setter, if any.
func (b QueryBuilder) Err() error {
	return b.err
}

func (b QueryBuilder) fail(err *ValidationError) QueryBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithExecutor returns a copy of the query that runs on exec.
func (b QueryBuilder) WithExecutor(exec Executor) QueryBuilder {
	b.exec = exec
	return b
}

// WithSchema restricts table and column names to those declared in project. The current
// source table is checked immediately. A nil project removes the restriction.
func (b QueryBuilder) WithSchema(project *dbml.Project) QueryBuilder {
	if project == nil {
		b.schema = nil
		return b
	}
	b.schema = newSchema(project)
	if !b.clauses.from.isZero() {
		if err := b.schema.checkTable(b.clauses.from); err != nil {
			return b.fail(invalid("FROM", b.clauses.from.tableName, err))
		}
	}
	return b
}

// Select replaces the select list. No columns means every column, rendered as *. Values are
// only bound in WHERE, so an unquoted "?" in an expression is rejected.
func (b QueryBuilder) Select(columns ...string) QueryBuilder {
	for _, column := range columns {
		if column == "" {
			return b.fail(invalid("SELECT", column, ErrEmptyColumn))
		}
		if countPlaceholders(column) > 0 {
			return b.fail(invalid("SELECT", column, ErrSelectParam))
		}
		if b.schema != nil {
			if err := b.schema.checkColumn(column, b.clauses.from); err != nil {
				return b.fail(invalid("SELECT", column, err))
			}
		}
	}

	b.clauses = b.clauses.clone()
	b.clauses.columns = slices.Clone(columns)
	return b
}

// From sets the base table, either "table" or "schema.table". Any alias is cleared.
func (b QueryBuilder) From(table string) QueryBuilder {
	t, err := newTableNameFromString(table)
	if err != nil {
		return b.fail(invalid("FROM", table, err))
	}
	if b.schema != nil {
		if err := b.schema.checkTable(*t); err != nil {
			return b.fail(invalid("FROM", table, err))
		}
	}

	b.clauses.from = *t
	return b
}

// As gives the base table an alias, rendered as FROM table alias.
func (b QueryBuilder) As(alias string) QueryBuilder {
	if !isIdentifier(alias) {
		return b.fail(invalid("FROM", alias, ErrInvalidAlias))
	}

	b.clauses.from.alias = alias
	return b
}

// Join appends an inner join, rendered as JOIN table ON left op right.
func (b QueryBuilder) Join(table, left, op, right string) QueryBuilder {
	return b.JoinKind(JoinInner, table, left, op, right)
}

func (b QueryBuilder) LeftJoin(table, left, op, right string) QueryBuilder {
	return b.JoinKind(JoinLeft, table, left, op, right)
}

func (b QueryBuilder) RightJoin(table, left, op, right string) QueryBuilder {
	return b.JoinKind(JoinRight, table, left, op, right)
}

// JoinKind appends a join of the given kind. Joins render in the order they were added.
// Both sides are column references; IN cannot compare two columns and is rejected.
func (b QueryBuilder) JoinKind(kind JoinKind, table, left, op, right string) QueryBuilder {
	t, err := newTableNameFromString(table)
	if err != nil {
		return b.fail(invalid("JOIN", table, err))
	}

	operator, err := ParseOperator(op)
	if err != nil || operator == OperatorIn {
		return b.fail(invalid("JOIN", op, ErrUnknownOperator))
	}

	for _, column := range []string{left, right} {
		if err := b.checkColumnRef(column); err != nil {
			return b.fail(invalid("JOIN", column, err))
		}
	}
	if b.schema != nil {
		if err := b.schema.checkTable(*t); err != nil {
			return b.fail(invalid("JOIN", table, err))
		}
	}

	b.clauses = b.clauses.clone()
	b.clauses.joins = append(b.clauses.joins, JoinSpec{
		Kind:     kind,
		Table:    t.String(),
		Left:     left,
		Operator: operator,
		Right:    right,
	})
	return b
}

// Where appends `column op ?` to the WHERE clause and value to the bound parameters.
// Conditions are joined with AND. For IN, value is a slice and each element gets a placeholder.
func (b QueryBuilder) Where(column, op string, value any) QueryBuilder {
	operator, err := ParseOperator(op)
	if err != nil {
		return b.fail(invalid("WHERE", op, err))
	}
	return b.Filter(Predicate{Column: column, Operator: operator, Value: value})
}

// Filter appends a prepared Predicate, such as one made with Equal or In, to the WHERE clause.
func (b QueryBuilder) Filter(p Predicate) QueryBuilder {
	if p.Operator.String() == "" {
		return b.fail(invalid("WHERE", p.Operator, ErrUnknownOperator))
	}
	if err := b.checkColumnRef(p.Column); err != nil {
		return b.fail(invalid("WHERE", p.Column, err))
	}
	if p.Operator == OperatorIn && len(p.bindValues()) == 0 {
		return b.fail(invalid("WHERE", p.Column, ErrEmptyInList))
	}

	b.clauses = b.clauses.clone()
	b.clauses.addPredicate(p)
	return b
}

// OrderBy appends a sort column. The direction defaults to ASC.
func (b QueryBuilder) OrderBy(column string, direction ...Direction) QueryBuilder {
	if err := b.checkColumnRef(column); err != nil {
		return b.fail(invalid("ORDER BY", column, err))
	}

	d := Asc
	if len(direction) > 0 {
		var err error
		if d, err = ParseDirection(string(direction[0])); err != nil {
			return b.fail(invalid("ORDER BY", direction[0], err))
		}
	}

	b.clauses = b.clauses.clone()
	b.clauses.orderBy = append(b.clauses.orderBy, OrderSpec{Column: column, Direction: d})
	return b
}

// Limit caps the number of rows. Calling it again replaces the previous limit.
func (b QueryBuilder) Limit(n int) QueryBuilder {
	if n < 0 {
		return b.fail(invalid("LIMIT", n, ErrNegativeLimit))
	}

	limit := uint64(n)
	b.clauses.limit = &limit
	return b
}

func (b QueryBuilder) checkColumnRef(column string) error {
	if column == "" {
		return ErrEmptyColumn
	}
	if !isColumnRef(column) {
		return ErrInvalidColumn
	}
	if b.schema != nil {
		return b.schema.checkColumn(column, b.clauses.from)
	}
	return nil
}

// BuildQuery will construct the SQL query QueryBuilder is currently representing.
// User input will utilize placeholders, and the values of the input will be in the 2nd return
// value, args, in placeholder order. Building twice without changes gives identical output.
//
// The resulting query should look something like:
//
//	SELECT * FROM users WHERE age > ? ORDER BY name ASC LIMIT 10
func (b QueryBuilder) BuildQuery() (query string, args []any, err error) {
	if b.err != nil {
		return "", nil, b.err
	}
	return compile(&b.clauses)
}

// Fetch compiles the current clauses and runs the statement once. Nothing is reset afterwards,
// calling Fetch again runs the same statement again.
func (b QueryBuilder) Fetch(ctx context.Context) ([]Row, error) {
	query, args, err := b.BuildQuery()
	if err != nil {
		return nil, err
	}
	if b.exec == nil {
		return nil, &ExecutionError{Query: query, Args: args, Err: ErrNoExecutor}
	}

	rows, err := b.exec.Execute(ctx, query, args)
	if err != nil {
		return nil, asExecutionError(err, query, args)
	}
	return rows, nil
}

// FetchOne runs the query limited to one row. ErrNoRows is returned when nothing matched.
func (b QueryBuilder) FetchOne(ctx context.Context) (Row, error) {
	rows, err := b.Limit(1).Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// FetchInto runs the query and maps each row onto a T. When no columns were selected, the
// select list is taken from T's fields.
func FetchInto[T any](ctx context.Context, b QueryBuilder) ([]T, error) {
	if len(b.clauses.columns) == 0 {
		b = b.Select(columnsFor[T]()...)
	}

	rows, err := b.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ScanRows[T](rows)
}
