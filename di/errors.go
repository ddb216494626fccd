package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrAlreadyBuilt is returned when Register, Use or Build is called after
	// a successful Build.
	ErrAlreadyBuilt = errors.New("di: container already built")

	// ErrNotBuilt is returned when instances are requested before Build.
	ErrNotBuilt = errors.New("di: container not built")

	// ErrUnknownType is returned when no target is registered for a type.
	ErrUnknownType = errors.New("di: unknown managed type")

	// ErrDuplicateType is returned when a type is registered twice.
	ErrDuplicateType = errors.New("di: duplicate managed type")

	// ErrNilConstructor is returned when a target has no constructor.
	ErrNilConstructor = errors.New("di: nil constructor")

	// ErrWrongInstance is returned when a target receives an instance of a
	// type it does not manage.
	ErrWrongInstance = errors.New("di: wrong instance type")
)

// DefinitionError is a deployment-blocking problem recorded against a managed
// type while the container is built.
type DefinitionError struct {
	Type reflect.Type
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("di: definition error on %s: %v", e.Type, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// DeploymentError aggregates every DefinitionError reported during Build.
type DeploymentError struct {
	Errors []*DefinitionError
}

func (e *DeploymentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "di: deployment failed with %d definition error(s)", len(e.Errors))
	for _, de := range e.Errors {
		b.WriteString("\n\t")
		b.WriteString(de.Error())
	}
	return b.String()
}

// Unwrap exposes the individual definition errors to errors.Is and errors.As.
func (e *DeploymentError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, de := range e.Errors {
		errs[i] = de
	}
	return errs
}

// InjectionError reports a failure while creating or destroying one instance.
// It never affects other instances or the container itself.
type InjectionError struct {
	Type reflect.Type
	Op   string
	Err  error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("di: %s %s: %v", e.Op, e.Type, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }
