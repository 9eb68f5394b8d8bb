package nmt

import "github.com/kolkov/nmt/internal/nmt/cloner"

// Cloner produces an independent copy of a value of type T. Every
// Handle and SlcHandle constructor takes one, since Go has no Clone
// trait bound it could require implicitly: a T containing a pointer,
// slice, or map needs a Cloner that performs a real deep copy, or
// distinct handles can end up aliasing the same backing storage.
type Cloner[T any] = cloner.Cloner[T]

// CloneFunc adapts a plain function to the Cloner interface.
type CloneFunc[T any] = cloner.Func[T]

// Identity returns a Cloner for types where a plain Go assignment is
// already an independent copy: numbers, strings, arrays of such, and
// structs composed only of such.
func Identity[T any]() Cloner[T] {
	return cloner.Identity[T]()
}
