package di

import (
	"errors"
	"reflect"
	"strconv"
)

var (
	// ErrNilTarget is returned when an injector is applied to a nil service,
	// a service with a nil Val, or when a constructor produces nil.
	ErrNilTarget = errors.New("di: nil target service")

	// ErrNilDep is returned when an injector is applied with a nil dependency
	// service. Injecting returns the keyed NilDependencyServiceError instead.
	ErrNilDep = errors.New("di: nil dependency service")

	// ErrNilBind is returned when an injector is created with a nil bind
	// function. Injecting returns the keyed NilBindError instead.
	ErrNilBind = errors.New("di: nil bind function")
)

// DependencyKey identifies a dependency recorded in a Service's Deps bag and
// names the matching InjectionPoint of a Target.
//
// Keys are typically package-level constants:
//
//	const (
//	  KeyDB     di.DependencyKey = "db"
//	  KeyLogger di.DependencyKey = "logger"
//	)
type DependencyKey string

// Key converts a string into a DependencyKey.
func Key(name string) DependencyKey { return DependencyKey(name) }

// DuplicateKeyError is returned when an injector attempts to record a
// dependency under a key that already exists in the target Service.
type DuplicateKeyError struct{ Key DependencyKey }

// Error implements the error interface.
func (e DuplicateKeyError) Error() string {
	// Example: di: duplicate dependency key "db"
	return "di: duplicate dependency key " + strconv.Quote(string(e.Key))
}

// MissingDependencyError is returned by TryGetAs when a key is not present.
type MissingDependencyError struct{ Key DependencyKey }

// Error implements the error interface.
func (e MissingDependencyError) Error() string {
	return "di: dependency " + strconv.Quote(string(e.Key)) + " missing"
}

// WrongTypeDependencyError is returned by TryGetAs when a key is present but
// holds a different type than requested.
type WrongTypeDependencyError struct {
	Key DependencyKey
	// GotType is reflect.TypeOf(raw).String() for the stored value.
	GotType string
}

// Error implements the error interface.
func (e WrongTypeDependencyError) Error() string {
	return "di: dependency " + strconv.Quote(string(e.Key)) + " has wrong type (" + e.GotType + ")"
}

// NilDependencyServiceError indicates a nil dependency service for a key.
type NilDependencyServiceError struct{ Key DependencyKey }

// Error implements the error interface.
func (e NilDependencyServiceError) Error() string {
	return "di: nil dependency service for key " + strconv.Quote(string(e.Key))
}

// Is lets errors.Is(err, ErrNilDep) match the keyed variant.
func (e NilDependencyServiceError) Is(target error) bool { return target == ErrNilDep }

// NilBindError indicates a nil bind function for a key.
type NilBindError struct{ Key DependencyKey }

// Error implements the error interface.
func (e NilBindError) Error() string {
	return "di: nil bind function for key " + strconv.Quote(string(e.Key))
}

// Is lets errors.Is(err, ErrNilBind) match the keyed variant.
func (e NilBindError) Is(target error) bool { return target == ErrNilBind }

// Service pairs a managed instance with the dependencies the container wired
// into it. Targets build one Service per Inject call, so Deps describes the
// container-managed injections of exactly one instance.
type Service[T any] struct {
	Val  *T
	Deps map[DependencyKey]any
}

// Init constructs a Service by calling ctor and initializing the dependency bag.
func Init[T any](ctor func() *T) *Service[T] {
	return &Service[T]{Val: ctor(), Deps: make(map[DependencyKey]any)}
}

// Wrap returns a Service around an already constructed instance.
func Wrap[T any](val *T) *Service[T] {
	return &Service[T]{Val: val, Deps: make(map[DependencyKey]any)}
}

// Value returns the managed instance.
func (s *Service[T]) Value() *T { return s.Val }

// Injector mutates a Service in place and reports wiring failures.
type Injector[T any] func(*Service[T]) error

// With applies a single injector. A nil injector is a no-op.
func (s *Service[T]) With(inj Injector[T]) (*Service[T], error) {
	if inj == nil {
		return s, nil
	}
	if err := inj(s); err != nil {
		return s, err
	}
	return s, nil
}

// WithAll applies injectors in order and stops at the first error.
func (s *Service[T]) WithAll(deps ...Injector[T]) (*Service[T], error) {
	for _, inj := range deps {
		if _, err := s.With(inj); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Injecting builds an Injector that records dep under key and hands it to
// bind for assignment onto the target instance.
//
// The injector fails with ErrNilTarget, NilDependencyServiceError,
// NilBindError or DuplicateKeyError.
func Injecting[T any, D any](
	key DependencyKey,
	dep *Service[D],
	bind func(target *T, dependency *D),
) Injector[T] {
	return func(s *Service[T]) error {
		if s == nil || s.Val == nil {
			return ErrNilTarget
		}
		if dep == nil || dep.Val == nil {
			return NilDependencyServiceError{Key: key}
		}
		if bind == nil {
			return NilBindError{Key: key}
		}
		if s.Deps == nil {
			s.Deps = make(map[DependencyKey]any)
		}
		if _, exists := s.Deps[key]; exists {
			return DuplicateKeyError{Key: key}
		}

		s.Deps[key] = dep.Val
		bind(s.Val, dep.Val)
		return nil
	}
}

// Has reports whether a dependency exists for the key.
func (s *Service[T]) Has(key DependencyKey) bool {
	if s == nil || s.Deps == nil {
		return false
	}
	_, ok := s.Deps[key]
	return ok
}

// GetAny returns the raw stored dependency.
func (s *Service[T]) GetAny(key DependencyKey) (any, bool) {
	if s == nil || s.Deps == nil {
		return nil, false
	}
	v, ok := s.Deps[key]
	return v, ok
}

// TryGetAs returns the dependency typed as *D, or MissingDependencyError /
// WrongTypeDependencyError.
func TryGetAs[T any, D any](s *Service[T], key DependencyKey) (*D, error) {
	if s == nil || s.Deps == nil {
		return nil, MissingDependencyError{Key: key}
	}
	raw, ok := s.Deps[key]
	if !ok || raw == nil {
		return nil, MissingDependencyError{Key: key}
	}
	d, ok := raw.(*D)
	if !ok {
		return nil, WrongTypeDependencyError{
			Key:     key,
			GotType: reflect.TypeOf(raw).String(),
		}
	}
	return d, nil
}
