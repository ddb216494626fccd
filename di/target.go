package di

import (
	"context"
	"fmt"
	"reflect"
)

// InjectionPoint describes one container-managed dependency of a managed type.
type InjectionPoint struct {
	Key  DependencyKey
	Type reflect.Type
}

// InjectionTarget constructs and populates instances of one managed type over
// their lifecycle. Instances are passed as pointers (*T) boxed in any.
//
// Extensions may replace a type's target during Build; a replacement usually
// decorates the original and forwards every method it does not augment.
type InjectionTarget interface {
	// Produce creates a new, not yet injected instance.
	Produce(ctx context.Context) (any, error)

	// Inject performs the container-managed injections on instance.
	Inject(ctx context.Context, instance any) error

	// PostConstruct runs after Inject succeeded.
	PostConstruct(instance any) error

	// PreDestroy runs before the instance is disposed.
	PreDestroy(instance any) error

	// Dispose releases the instance.
	Dispose(instance any) error

	// InjectionPoints lists the dependencies Inject wires.
	InjectionPoints() []InjectionPoint
}

// Wiring is one container-managed injection for *T: the point it satisfies
// and the Injector that performs it.
type Wiring[T any] struct {
	Point  InjectionPoint
	Inject Injector[T]
}

// Wire builds a Wiring that injects dep under key through bind.
//
//	di.Wire(KeyDB, db, func(s *UserService, d *DB) { s.DB = d })
func Wire[T any, D any](key DependencyKey, dep *Service[D], bind func(target *T, dependency *D)) Wiring[T] {
	return Wiring[T]{
		Point:  InjectionPoint{Key: key, Type: reflect.TypeFor[*D]()},
		Inject: Injecting(key, dep, bind),
	}
}

// Target is the default InjectionTarget for *T.
type Target[T any] struct {
	ctor          func() *T
	wiring        []Wiring[T]
	postConstruct func(*T) error
	preDestroy    func(*T) error
	dispose       func(*T) error
}

var _ InjectionTarget = (*Target[struct{}])(nil)

// TargetOption configures a Target.
type TargetOption[T any] func(*Target[T])

// WithWiring appends container-managed injections, applied in order.
func WithWiring[T any](w ...Wiring[T]) TargetOption[T] {
	return func(t *Target[T]) {
		t.wiring = append(t.wiring, w...)
	}
}

// OnPostConstruct sets the hook run after injection.
func OnPostConstruct[T any](fn func(*T) error) TargetOption[T] {
	return func(t *Target[T]) { t.postConstruct = fn }
}

// OnPreDestroy sets the hook run before disposal.
func OnPreDestroy[T any](fn func(*T) error) TargetOption[T] {
	return func(t *Target[T]) { t.preDestroy = fn }
}

// OnDispose sets the hook that releases the instance.
func OnDispose[T any](fn func(*T) error) TargetOption[T] {
	return func(t *Target[T]) { t.dispose = fn }
}

// NewTarget returns a Target producing instances with ctor.
func NewTarget[T any](ctor func() *T, opts ...TargetOption[T]) *Target[T] {
	t := &Target[T]{ctor: ctor}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Produce calls the constructor. It fails with ErrNilConstructor, the
// context error, or ErrNilTarget when the constructor returns nil.
func (t *Target[T]) Produce(ctx context.Context) (any, error) {
	if t.ctor == nil {
		return nil, ErrNilConstructor
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := t.ctor()
	if v == nil {
		return nil, ErrNilTarget
	}
	return v, nil
}

// Inject applies the wiring to instance in order and stops at the first
// error.
func (t *Target[T]) Inject(_ context.Context, instance any) error {
	v, err := t.instance(instance)
	if err != nil {
		return err
	}

	injectors := make([]Injector[T], len(t.wiring))
	for i, w := range t.wiring {
		injectors[i] = w.Inject
	}
	_, err = Wrap(v).WithAll(injectors...)
	return err
}

// PostConstruct runs the OnPostConstruct hook, if any.
func (t *Target[T]) PostConstruct(instance any) error {
	return t.run(t.postConstruct, instance)
}

// PreDestroy runs the OnPreDestroy hook, if any.
func (t *Target[T]) PreDestroy(instance any) error {
	return t.run(t.preDestroy, instance)
}

// Dispose runs the OnDispose hook, if any.
func (t *Target[T]) Dispose(instance any) error {
	return t.run(t.dispose, instance)
}

// InjectionPoints returns one point per Wiring, in declaration order.
func (t *Target[T]) InjectionPoints() []InjectionPoint {
	points := make([]InjectionPoint, len(t.wiring))
	for i, w := range t.wiring {
		points[i] = w.Point
	}
	return points
}

func (t *Target[T]) run(hook func(*T) error, instance any) error {
	v, err := t.instance(instance)
	if err != nil {
		return err
	}
	if hook == nil {
		return nil
	}
	return hook(v)
}

func (t *Target[T]) instance(instance any) (*T, error) {
	v, ok := instance.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: got %T, want %s", ErrWrongInstance, instance, reflect.TypeFor[*T]())
	}
	if v == nil {
		return nil, ErrNilTarget
	}
	return v, nil
}
