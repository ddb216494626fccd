package remote

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNoValue is returned when the directory binds nothing usable (nil or
	// a nil pointer, map, slice, func, chan or interface) to a resource.
	ErrNoValue = errors.New("remote: no value found")

	// ErrIncompatibleType is returned when the resolved value is not
	// assignable to the field's declared type.
	ErrIncompatibleType = errors.New("remote: incompatible value type")

	// ErrInvalidTag is returned for malformed `remote` struct tags.
	ErrInvalidTag = errors.New("remote: invalid tag")

	// ErrInvalidResource is returned for a Resource missing a name.
	ErrInvalidResource = errors.New("remote: invalid resource")

	// ErrUnexportedField is returned when a `remote` tag sits on an
	// unexported field. Declare such fields with Bind or remotegen.
	ErrUnexportedField = errors.New("remote: tagged field is unexported")

	// ErrDuplicateDeclaration is returned when a type or field is declared
	// twice.
	ErrDuplicateDeclaration = errors.New("remote: duplicate declaration")
)

// FieldError ties a resolution, validation or assignment failure to the
// declared field it happened on.
type FieldError struct {
	Owner    reflect.Type
	Field    string
	Resource Resource
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("remote: field %s.%s (%s): %v", e.Owner, e.Field, e.Resource, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
