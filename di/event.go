package di

import (
	"errors"
	"reflect"
)

// Extension observes the container bootstrap. ProcessInjectionTarget is
// called once per managed type during Build, on the goroutine calling Build.
type Extension interface {
	ProcessInjectionTarget(ev *ProcessInjectionTarget)
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(ev *ProcessInjectionTarget)

func (f ExtensionFunc) ProcessInjectionTarget(ev *ProcessInjectionTarget) { f(ev) }

// ProcessInjectionTarget is the bootstrap event fired for a managed type about
// to become an injection target. It is only valid during the call that
// receives it.
type ProcessInjectionTarget struct {
	typ    reflect.Type
	target InjectionTarget
	errs   []error
}

// Type returns the managed struct type. Instances are *Type.
func (ev *ProcessInjectionTarget) Type() reflect.Type { return ev.typ }

// InjectionTarget returns the current target, including replacements made by
// earlier extensions.
func (ev *ProcessInjectionTarget) InjectionTarget() InjectionTarget { return ev.target }

// SetInjectionTarget replaces the type's target. A nil target is recorded as
// a definition error and the current target is kept.
func (ev *ProcessInjectionTarget) SetInjectionTarget(t InjectionTarget) {
	if t == nil {
		ev.AddDefinitionError(errors.New("extension set a nil injection target"))
		return
	}
	ev.target = t
}

// AddDefinitionError records a problem that aborts deployment once Build has
// visited every type.
func (ev *ProcessInjectionTarget) AddDefinitionError(err error) {
	if err == nil {
		return
	}
	ev.errs = append(ev.errs, err)
}
