package selq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an Executor that remembers every call and answers with fixed rows.
type recorder struct {
	queries [][2]any
	rows    []Row
	err     error
}

func (r *recorder) Execute(_ context.Context, query string, args []any) ([]Row, error) {
	r.queries = append(r.queries, [2]any{query, args})
	return r.rows, r.err
}

func TestSelectAll(t *testing.T) {
	query, args, err := New(nil, "users").
		Select().
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users`, query)
	assert.Empty(t, args)
}

func TestSelectColumns(t *testing.T) {
	query, _, err := New(nil, "bunny_land.bunnies").
		Select("name", "ear_length", "COUNT(*) AS total").
		As("b").
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT name, ear_length, COUNT(*) AS total FROM bunny_land.bunnies b`, query)
}

func TestSelectWithFilterOrderAndLimit(t *testing.T) {
	query, args, err := New(nil, "users").
		Where("age", ">", 18).
		OrderBy("name").
		Limit(10).
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE age > ? ORDER BY name ASC LIMIT 10`, query)
	assert.Equal(t, []any{18}, args)
}

func TestSelectJoin(t *testing.T) {
	query, args, err := New(nil, "users").
		Join("orders", "users.id", "=", "orders.user_id").
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users JOIN orders ON users.id = orders.user_id`, query)
	assert.Empty(t, args)
}

func TestSelectJoinKinds(t *testing.T) {
	query, _, err := New(nil, "users").
		LeftJoin("orders", "users.id", "=", "orders.user_id").
		RightJoin("shop.refunds", "orders.id", "=", "refunds.order_id").
		Join("notes", "notes.user_id", ">=", "users.id").
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users LEFT JOIN orders ON users.id = orders.user_id`+
		` RIGHT JOIN shop.refunds ON orders.id = refunds.order_id`+
		` JOIN notes ON notes.user_id >= users.id`, query)
}

func TestSelectWherePreservesOrder(t *testing.T) {
	query, args, err := New(nil, "users").
		Where("age", ">", 18).
		Where("name", "=", "Bob").
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE age > ? AND name = ?`, query)
	assert.Equal(t, []any{18, "Bob"}, args)
}

func TestSelectEveryClause(t *testing.T) {
	query, args, err := New(nil, "users").
		Select("users.name", "orders.total").
		As("u").
		Join("orders", "u.id", "=", "orders.user_id").
		Where("orders.total", ">=", 100).
		Filter(In("users.country", "NZ", "AU")).
		Where("users.name", "like", "O%").
		OrderBy("orders.total", Desc).
		OrderBy("users.name", "asc").
		Limit(5).
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT users.name, orders.total FROM users u`+
		` JOIN orders ON u.id = orders.user_id`+
		` WHERE orders.total >= ? AND users.country IN (?, ?) AND users.name LIKE ?`+
		` ORDER BY orders.total DESC, users.name ASC LIMIT 5`, query)
	assert.Equal(t, []any{100, "NZ", "AU", "O%"}, args)
}

func TestSelectWhereInAcceptsTypedSlices(t *testing.T) {
	query, args, err := New(nil, "donuts").
		Where("id", "IN", []int{4, 8, 15}).
		BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM donuts WHERE id IN (?, ?, ?)`, query)
	assert.Equal(t, []any{4, 8, 15}, args)
}

func TestSelectLimitZeroAndReplace(t *testing.T) {
	query, _, err := New(nil, "donuts").Limit(2938910).Limit(0).BuildQuery()

	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM donuts LIMIT 0`, query)
}

func TestSelectBuildIsIdempotent(t *testing.T) {
	b := New(nil, "users").Where("age", ">", 18).Where("name", "!=", "").OrderBy("age", Desc).Limit(3)

	q1, a1, err1 := b.BuildQuery()
	q2, a2, err2 := b.BuildQuery()

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
}

func TestSelectTemplateIsNotShared(t *testing.T) {
	base := New(nil, "users").Where("active", "=", true)

	adults := base.Where("age", ">=", 18)
	named := base.Where("name", "=", "Bob")

	query, args, err := base.BuildQuery()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE active = ?`, query)
	assert.Equal(t, []any{true}, args)

	query, args, err = adults.BuildQuery()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE active = ? AND age >= ?`, query)
	assert.Equal(t, []any{true, 18}, args)

	query, args, err = named.BuildQuery()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE active = ? AND name = ?`, query)
	assert.Equal(t, []any{true, "Bob"}, args)
}

func TestSelectCallerSliceIsCopied(t *testing.T) {
	columns := []string{"id", "name"}
	b := New(nil, "users").Select(columns...)
	columns[0] = "password"

	query, _, err := b.BuildQuery()
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, name FROM users`, query)
}

func TestSelectValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() QueryBuilder
		wantErr error
	}{
		{
			name:    "empty table",
			build:   func() QueryBuilder { return New(nil, "") },
			wantErr: ErrEmptyTableName,
		},
		{
			name:    "too many table parts",
			build:   func() QueryBuilder { return New(nil, "a.b.c") },
			wantErr: ErrInvalidTableName{"a.b.c"},
		},
		{
			name:    "table with injection",
			build:   func() QueryBuilder { return New(nil, "users; DROP TABLE users") },
			wantErr: ErrInvalidTableName{"users; DROP TABLE users"},
		},
		{
			name:    "unknown operator",
			build:   func() QueryBuilder { return New(nil, "users").Where("age", "<>", 1) },
			wantErr: ErrUnknownOperator,
		},
		{
			name:    "zero operator",
			build:   func() QueryBuilder { return New(nil, "users").Filter(Predicate{Column: "age", Value: 1}) },
			wantErr: ErrUnknownOperator,
		},
		{
			name:    "join with IN",
			build:   func() QueryBuilder { return New(nil, "users").Join("orders", "users.id", "IN", "orders.id") },
			wantErr: ErrUnknownOperator,
		},
		{
			name:    "join with expression column",
			build:   func() QueryBuilder { return New(nil, "users").Join("orders", "1=1 OR users.id", "=", "orders.id") },
			wantErr: ErrInvalidColumn,
		},
		{
			name:    "where with empty column",
			build:   func() QueryBuilder { return New(nil, "users").Where("", "=", 1) },
			wantErr: ErrEmptyColumn,
		},
		{
			name:    "empty IN list",
			build:   func() QueryBuilder { return New(nil, "users").Filter(In("id")) },
			wantErr: ErrEmptyInList,
		},
		{
			name:    "bad direction",
			build:   func() QueryBuilder { return New(nil, "users").OrderBy("name", "SIDEWAYS") },
			wantErr: ErrInvalidDirection,
		},
		{
			name:    "negative limit",
			build:   func() QueryBuilder { return New(nil, "users").Limit(-1) },
			wantErr: ErrNegativeLimit,
		},
		{
			name:    "bad alias",
			build:   func() QueryBuilder { return New(nil, "users").As("u u") },
			wantErr: ErrInvalidAlias,
		},
		{
			name:    "empty select column",
			build:   func() QueryBuilder { return New(nil, "users").Select("id", "") },
			wantErr: ErrEmptyColumn,
		},
		{
			name: "placeholder in select expression",
			build: func() QueryBuilder {
				return New(nil, "users").Select("COALESCE(nick, ?)").Where("age", ">", 1)
			},
			wantErr: ErrSelectParam,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()

			var validationErr *ValidationError
			require.ErrorAs(t, b.Err(), &validationErr)
			assert.ErrorIs(t, b.Err(), tt.wantErr)

			query, args, err := b.BuildQuery()
			assert.Equal(t, b.Err(), err)
			assert.Empty(t, query)
			assert.Nil(t, args)
		})
	}
}

func TestSelectQuotedQuestionMark(t *testing.T) {
	query, args, err := New(nil, "users").Select("'?' AS mark", "name").Where("age", ">", 1).BuildQuery()

	require.NoError(t, err)
	assert.Equal(t, "SELECT '?' AS mark, name FROM users WHERE age > ?", query)
	assert.Equal(t, []any{1}, args)
}

func TestSelectNegativeLimitFailsBeforeExecution(t *testing.T) {
	exec := &recorder{}

	rows, err := New(exec, "users").Limit(-1).Fetch(context.Background())

	assert.ErrorIs(t, err, ErrNegativeLimit)
	assert.Nil(t, rows)
	assert.Empty(t, exec.queries)
}

func TestSelectFirstValidationErrorWins(t *testing.T) {
	b := New(nil, "users").Limit(-1).OrderBy("name", "UP")

	assert.ErrorIs(t, b.Err(), ErrNegativeLimit)
}

func TestSelectZeroValueHasNoSource(t *testing.T) {
	_, _, err := QueryBuilder{}.Join("orders", "users.id", "=", "orders.user_id").BuildQuery()

	var compileErr *CompilationError
	assert.ErrorAs(t, err, &compileErr)
}

func TestFetch(t *testing.T) {
	exec := &recorder{rows: []Row{{"name": "ollie"}, {"name": "oliver"}}}

	rows, err := New(exec, "bunnies").
		Select("name").
		Where("ear_length", ">", 10).
		Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "ollie"}, {"name": "oliver"}}, rows)
	require.Len(t, exec.queries, 1)
	assert.Equal(t, "SELECT name FROM bunnies WHERE ear_length > ?", exec.queries[0][0])
	assert.Equal(t, []any{10}, exec.queries[0][1])
}

func TestFetchTwiceRunsTheSameStatement(t *testing.T) {
	exec := &recorder{}
	b := New(exec, "bunnies").Where("name", "=", "ollie")

	_, err := b.Fetch(context.Background())
	require.NoError(t, err)
	_, err = b.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.queries, 2)
	assert.Equal(t, exec.queries[0], exec.queries[1])
}

func TestFetchWrapsExecutorErrors(t *testing.T) {
	cause := errors.New("connection reset")
	exec := ExecutorFunc(func(context.Context, string, []any) ([]Row, error) {
		return []Row{{"partial": true}}, cause
	})

	rows, err := New(exec, "users").Where("id", "=", 7).Fetch(context.Background())

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, cause)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", execErr.Query)
	assert.Equal(t, []any{7}, execErr.Args)
	assert.Same(t, cause, execErr.Unwrap())
}

func TestFetchKeepsExecutionErrors(t *testing.T) {
	original := &ExecutionError{Query: "SELECT 1", Err: errors.New("boom")}
	exec := ExecutorFunc(func(context.Context, string, []any) ([]Row, error) {
		return nil, original
	})

	_, err := New(exec, "users").Fetch(context.Background())

	assert.Same(t, original, err)
}

func TestFetchWithoutExecutor(t *testing.T) {
	_, err := New(nil, "users").Fetch(context.Background())

	assert.ErrorIs(t, err, ErrNoExecutor)
}

func TestFetchOne(t *testing.T) {
	exec := &recorder{rows: []Row{{"id": int64(1)}}}

	row, err := New(exec, "users").OrderBy("id").FetchOne(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(1)}, row)
	assert.Equal(t, "SELECT * FROM users ORDER BY id ASC LIMIT 1", exec.queries[0][0])
}

func TestFetchOneNoRows(t *testing.T) {
	_, err := New(&recorder{}, "users").FetchOne(context.Background())

	assert.ErrorIs(t, err, ErrNoRows)
}

func TestWithExecutor(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	template := New(first, "users").Where("id", "=", 1)

	_, err := template.WithExecutor(second).Fetch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, first.queries)
	assert.Len(t, second.queries, 1)
}
