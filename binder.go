package selq

import "slices"

// Binder holds bound parameter values in the order their placeholders appear in the WHERE
// clause. It is append-only; a builder that rebuilds its predicates starts from Reset.
type Binder struct {
	args []any
}

func (b *Binder) Append(values ...any) {
	b.args = append(b.args, values...)
}

func (b *Binder) Len() int {
	return len(b.args)
}

// Args returns a copy, so executors cannot reorder the builder's parameters.
func (b *Binder) Args() []any {
	if len(b.args) == 0 {
		return nil
	}
	return slices.Clone(b.args)
}

func (b *Binder) Reset() {
	b.args = nil
}

func (b Binder) clone() Binder {
	return Binder{args: slices.Clip(b.args)}
}
