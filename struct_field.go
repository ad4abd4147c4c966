package selq

import (
	"math"
	"reflect"
)

func structFieldName(field reflect.StructField) string {
	if dbName, ok := field.Tag.Lookup("db"); ok {
		return dbName
	}
	return field.Name
}

// structFields maps column names to the exported fields of t. Fields tagged db:"-" are skipped.
func structFields(t reflect.Type) map[string]int {
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := structFieldName(f)
		if name == "-" {
			continue
		}
		fields[name] = i
	}
	return fields
}

// columnsFor lists the column of every exported field of T in declaration order.
func columnsFor[T any]() []string {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil
	}

	var columns []string
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := structFieldName(f); name != "-" {
			columns = append(columns, name)
		}
	}
	return columns
}

// ScanRows maps each row onto a new T, column by column. Columns without a matching field are
// ignored; a value that cannot be converted to its field's type is a ScanError.
func ScanRows[T any](rows []Row) ([]T, error) {
	t := reflect.TypeFor[T]()
	fields := structFields(t)

	mapped := make([]T, 0, len(rows))
	for _, row := range rows {
		mappedValue := reflect.ValueOf(new(T)).Elem()

		for column, value := range row {
			i, ok := fields[column]
			if !ok || value == nil {
				// NULL leaves the zero value in place.
				continue
			}

			field := mappedValue.Field(i)
			v := reflect.ValueOf(value)
			switch {
			case v.Type().AssignableTo(field.Type()):
				field.Set(v)
			case v.Type().ConvertibleTo(field.Type()) && convertible(v.Kind(), field.Kind()) && fits(v, field):
				field.Set(v.Convert(field.Type()))
			default:
				return nil, ScanError{Column: column, Field: t.Field(i).Name, Value: value}
			}
		}

		mapped = append(mapped, mappedValue.Interface().(T))
	}

	return mapped, nil
}

// convertible rules out conversions reflect allows but that change meaning, such as an
// integer becoming a one rune string.
func convertible(from, to reflect.Kind) bool {
	isNumber := func(k reflect.Kind) bool {
		return k >= reflect.Int && k <= reflect.Float64
	}
	switch {
	case isNumber(from) && isNumber(to):
		return true
	case from == reflect.String || from == reflect.Slice:
		return to == reflect.String || to == reflect.Slice
	case from == reflect.Bool:
		return to == reflect.Bool
	}
	return false
}

// fits reports whether the number v can be stored in field without losing anything: floats
// must be whole to become integers, and every value must be within the range of field's type.
func fits(v, field reflect.Value) bool {
	switch {
	case v.CanInt():
		i := v.Int()
		switch {
		case field.CanInt():
			return !field.OverflowInt(i)
		case field.CanUint():
			return i >= 0 && !field.OverflowUint(uint64(i))
		}
	case v.CanUint():
		u := v.Uint()
		switch {
		case field.CanInt():
			return u <= math.MaxInt64 && !field.OverflowInt(int64(u))
		case field.CanUint():
			return !field.OverflowUint(u)
		}
	case v.CanFloat():
		f := v.Float()
		switch {
		case field.CanFloat():
			return !field.OverflowFloat(f)
		case f != math.Trunc(f):
			// Fractions, NaN.
			return false
		case field.CanInt():
			return f >= math.MinInt64 && f < math.MaxInt64 && !field.OverflowInt(int64(f))
		case field.CanUint():
			return f >= 0 && f < math.MaxUint64 && !field.OverflowUint(uint64(f))
		}
	}
	return true
}
