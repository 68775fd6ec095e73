package domain

// Lookup is the result of a keyed read: either Found or Absent.
// Callers switch on the concrete type instead of checking for nil.
type Lookup[T any] interface {
	lookup() T
}

// Found carries the record that was read.
type Found[T any] struct {
	Record T
}

func (f Found[T]) lookup() T { return f.Record }

// Absent means no record exists for the key. It is not an error.
type Absent[T any] struct{}

func (Absent[T]) lookup() T {
	var zero T
	return zero
}

// Get unwraps a lookup. A nil lookup is treated as Absent.
func Get[T any](l Lookup[T]) (T, bool) {
	if f, ok := l.(Found[T]); ok {
		return f.Record, true
	}
	var zero T
	return zero, false
}

// FoundOrAbsent builds a lookup from a value/ok pair.
func FoundOrAbsent[T any](v T, ok bool) Lookup[T] {
	if ok {
		return Found[T]{Record: v}
	}
	return Absent[T]{}
}
