// Package naming defines the directory service contract used to resolve
// remote resources: a Directory opens named contexts, and a Namespace looks
// up named objects inside one context.
//
// Implementations live in this package (MapDirectory, in memory) and in the
// filedir, sqldir and httpdir subpackages. All of them are safe for
// concurrent use and honor context cancellation.
package naming

import (
	"context"
	"errors"
	"reflect"
	"strconv"
)

// Directory resolves named contexts.
type Directory interface {
	// OpenContext returns the context registered under name, or an error
	// matching ErrNotFound or ErrUnavailable.
	OpenContext(ctx context.Context, name string) (Namespace, error)
}

// Namespace is an opened naming context.
type Namespace interface {
	// Lookup returns the object bound to name, or an error matching
	// ErrNotFound or ErrUnavailable. A bound nil is returned as (nil, nil).
	Lookup(ctx context.Context, name string) (any, error)
}

var (
	// ErrNotFound reports a context or name with no binding.
	ErrNotFound = errors.New("naming: name not found")

	// ErrUnavailable reports a communication failure with the directory.
	ErrUnavailable = errors.New("naming: directory unavailable")

	// ErrNamespacePanic is returned when a namespace implementation panics
	// during Lookup.
	ErrNamespacePanic = errors.New("naming: panic during Lookup")
)

// NotFoundError is the detailed form of ErrNotFound. Name is empty when the
// context itself is missing.
type NotFoundError struct {
	Context string
	Name    string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "naming: context " + strconv.Quote(e.Context) + " not found"
	}
	return "naming: name " + strconv.Quote(e.Name) + " not found in context " + strconv.Quote(e.Context)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Resolve opens context ctxName in dir and looks up name inside it.
func Resolve(ctx context.Context, dir Directory, ctxName, name string) (any, error) {
	if dir == nil {
		return nil, errors.New("naming: nil directory")
	}
	ns, err := dir.OpenContext(ctx, ctxName)
	if err != nil {
		return nil, err
	}
	if isNil(ns) {
		return nil, &NotFoundError{Context: ctxName}
	}
	return ns.Lookup(ctx, name)
}

// isNil also catches a typed nil Namespace, such as a nil *MapNamespace.
func isNil(ns Namespace) bool {
	if ns == nil {
		return true
	}
	v := reflect.ValueOf(ns)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
