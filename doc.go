// Package selq builds SELECT statements with a fluent API and runs them through an Executor.
//
// Values given to Where never appear in the SQL text. They are collected in placeholder order
// and passed to the Executor alongside the query:
//
//	rows, err := selq.New(exec, "users").
//		Where("age", ">", 18).
//		OrderBy("name").
//		Limit(10).
//		Fetch(ctx)
//	// SELECT * FROM users WHERE age > ? ORDER BY name ASC LIMIT 10  [18]
//
// Table, column and operator names are emitted verbatim once they pass validation, so they
// must come from the program and not from user input.
package selq
