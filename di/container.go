package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

type managedType struct {
	typ reflect.Type
	// registered is the target as registered; active is the target after
	// extensions ran during the last successful Build.
	registered InjectionTarget
	active     InjectionTarget
}

// Container manages injection targets and runs extensions over them at
// bootstrap.
//
// Registration and Build are expected to happen on one goroutine; Create,
// Destroy and InjectionTarget are safe for concurrent use after Build.
type Container struct {
	mu sync.RWMutex

	types      []*managedType
	byType     map[reflect.Type]*managedType
	extensions []Extension

	built bool
	log   *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for bootstrap diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		byType: make(map[reflect.Type]*managedType),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Use appends extensions. They observe types in the order they were added.
func (c *Container) Use(exts ...Extension) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return ErrAlreadyBuilt
	}
	for _, ext := range exts {
		if ext == nil {
			return errors.New("di: nil extension")
		}
		c.extensions = append(c.extensions, ext)
	}
	return nil
}

// Register adds a managed struct type with its injection target. Instances
// of t are handled as *t.
func (c *Container) Register(t reflect.Type, target InjectionTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return ErrAlreadyBuilt
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("di: managed type must be a struct, got %v", t)
	}
	if target == nil {
		return fmt.Errorf("di: nil injection target for %s", t)
	}
	if _, exists := c.byType[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}

	mt := &managedType{typ: t, registered: target}
	c.types = append(c.types, mt)
	c.byType[t] = mt
	return nil
}

// Provide registers T with a default Target built from ctor and opts.
func Provide[T any](c *Container, ctor func() *T, opts ...TargetOption[T]) error {
	if ctor == nil {
		return ErrNilConstructor
	}
	return c.Register(reflect.TypeFor[T](), NewTarget(ctor, opts...))
}

// Build runs every extension over every registered type and, when no
// definition error was reported, makes the container ready for Create.
//
// All types are processed even after a failure so the returned
// *DeploymentError lists every problem. A failed Build leaves the container
// unbuilt with its registered targets untouched; it may be retried.
func (c *Container) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return ErrAlreadyBuilt
	}

	active := make([]InjectionTarget, len(c.types))
	var defErrs []*DefinitionError

	for i, mt := range c.types {
		ev := &ProcessInjectionTarget{typ: mt.typ, target: mt.registered}
		for _, ext := range c.extensions {
			ext.ProcessInjectionTarget(ev)
		}
		for _, err := range ev.errs {
			c.log.Warn("definition error",
				zap.Stringer("type", mt.typ),
				zap.Error(err),
			)
			defErrs = append(defErrs, &DefinitionError{Type: mt.typ, Err: err})
		}
		active[i] = ev.target
	}

	if len(defErrs) > 0 {
		return &DeploymentError{Errors: defErrs}
	}

	for i, mt := range c.types {
		mt.active = active[i]
	}
	c.built = true
	c.log.Info("container built",
		zap.Int("types", len(c.types)),
		zap.Int("extensions", len(c.extensions)),
	)
	return nil
}

// InjectionTarget returns the active target of t after Build.
func (c *Container) InjectionTarget(t reflect.Type) (InjectionTarget, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.built {
		return nil, ErrNotBuilt
	}
	mt, ok := c.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return mt.active, nil
}

// Create produces, injects and post-constructs a new *T. Failures are
// returned as *InjectionError.
//
//	svc, err := di.Create[UserService](ctx, c)
func Create[T any](ctx context.Context, c *Container) (*T, error) {
	t := reflect.TypeFor[T]()
	target, err := c.InjectionTarget(t)
	if err != nil {
		return nil, err
	}

	raw, err := target.Produce(ctx)
	if err != nil {
		return nil, &InjectionError{Type: t, Op: "produce", Err: err}
	}
	instance, ok := raw.(*T)
	if !ok {
		return nil, &InjectionError{
			Type: t,
			Op:   "produce",
			Err:  fmt.Errorf("%w: got %T", ErrWrongInstance, raw),
		}
	}
	if err := target.Inject(ctx, instance); err != nil {
		return nil, &InjectionError{Type: t, Op: "inject", Err: err}
	}
	if err := target.PostConstruct(instance); err != nil {
		return nil, &InjectionError{Type: t, Op: "post-construct", Err: err}
	}
	return instance, nil
}

// Destroy runs the pre-destroy and dispose phases for instance.
func Destroy[T any](c *Container, instance *T) error {
	t := reflect.TypeFor[T]()
	target, err := c.InjectionTarget(t)
	if err != nil {
		return err
	}
	if err := target.PreDestroy(instance); err != nil {
		return &InjectionError{Type: t, Op: "pre-destroy", Err: err}
	}
	if err := target.Dispose(instance); err != nil {
		return &InjectionError{Type: t, Op: "dispose", Err: err}
	}
	return nil
}
