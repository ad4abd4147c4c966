package selq

import (
	"strings"

	"github.com/zoobzio/dbml"
)

// schema is a safelist of table and column names built from a DBML project.
type schema struct {
	tables map[string]map[string]struct{} // table -> columns
}

func newSchema(project *dbml.Project) *schema {
	s := &schema{tables: make(map[string]map[string]struct{})}
	for _, table := range project.Tables {
		columns := make(map[string]struct{}, len(table.Columns))
		for _, col := range table.Columns {
			columns[col.Name] = struct{}{}
		}
		s.tables[table.Name] = columns
	}
	return s
}

func (s *schema) checkTable(t tableName) error {
	if _, ok := s.tables[t.tableName]; !ok {
		return ErrUnknownTable
	}
	return nil
}

// checkColumn accepts "col", "t.col", "t.*", "*" and "col AS alias" forms. A qualified column
// must belong to the table it names, where from's alias stands for from's table. An
// unqualified column must exist in at least one table.
func (s *schema) checkColumn(column string, from tableName) error {
	if i := strings.Index(strings.ToUpper(column), " AS "); i != -1 {
		column = column[:i]
	}
	column = strings.TrimSpace(column)

	i := strings.LastIndexByte(column, '.')
	if i == -1 {
		if column == "*" {
			return nil
		}
		for _, columns := range s.tables {
			if _, ok := columns[column]; ok {
				return nil
			}
		}
		return ErrUnknownColumn
	}

	table, name := column[:i], column[i+1:]
	if j := strings.LastIndexByte(table, '.'); j != -1 {
		table = table[j+1:]
	}
	if from.alias != "" && table == from.alias {
		table = from.tableName
	}

	columns, ok := s.tables[table]
	if !ok {
		return ErrUnknownTable
	}
	if name == "*" {
		return nil
	}
	if _, ok := columns[name]; !ok {
		return ErrUnknownColumn
	}
	return nil
}
