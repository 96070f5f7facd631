package resolver

import (
	"encoding/json"

	"github.com/mknind/backoffice/pkg/types"
)

// Ref is a resolved reference. It encodes as the referenced value, as an
// {"error": ...} marker when the reference dangles, or as null when there
// was nothing to resolve.
type Ref[T any] struct {
	Value  *T
	Marker string
}

func Found[T any](v T) Ref[T] { return Ref[T]{Value: &v} }

func Dangling[T any](marker string) Ref[T] { return Ref[T]{Marker: marker} }

// OK reports whether the reference points at a value.
func (r Ref[T]) OK() bool { return r.Marker == "" && r.Value != nil }

func (r Ref[T]) IsNull() bool { return r.Marker == "" && r.Value == nil }

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	switch {
	case r.Marker != "":
		return json.Marshal(types.ErrorMarker{Error: r.Marker})
	case r.Value == nil:
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}
