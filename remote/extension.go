package remote

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/sghaida/remoteresource/di"
	"github.com/sghaida/remoteresource/naming"
)

// Extension populates remote resource fields of managed types. Add it to a
// container with Use before Build.
type Extension struct {
	dir     naming.Directory
	cache   *Cache
	log     *zap.Logger
	bootCtx context.Context

	mu    sync.RWMutex
	decls map[reflect.Type][]binding
}

var _ di.Extension = (*Extension)(nil)

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(x *Extension) {
		if l != nil {
			x.log = l
		}
	}
}

// WithCache makes the Extension use c instead of a private cache.
func WithCache(c *Cache) Option {
	return func(x *Extension) {
		if c != nil {
			x.cache = c
		}
	}
}

// WithBootstrapContext sets the context used for lookups made while the
// container is built. The default is context.Background.
func WithBootstrapContext(ctx context.Context) Option {
	return func(x *Extension) {
		if ctx != nil {
			x.bootCtx = ctx
		}
	}
}

// NewExtension returns an Extension resolving resources in dir.
func NewExtension(dir naming.Directory, opts ...Option) *Extension {
	x := &Extension{
		dir:     dir,
		cache:   NewCache(),
		log:     zap.NewNop(),
		bootCtx: context.Background(),
		decls:   make(map[reflect.Type][]binding),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Cache returns the cache shared by every field the Extension handles.
func (x *Extension) Cache() *Cache { return x.cache }

// Declare registers the remote resource fields of T. Types without a
// declaration fall back to their `remote` struct tags.
func Declare[T any](x *Extension, fields ...Field[T]) error {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("remote: %s is not a struct type", t)
	}

	seen := make(map[string]bool, len(fields))
	bs := make([]binding, 0, len(fields))
	for _, f := range fields {
		if err := f.b.res.Validate(); err != nil {
			return fmt.Errorf("field %s.%s: %w", t, f.b.name, err)
		}
		if f.b.field == nil {
			return fmt.Errorf("remote: field %s.%s has no accessor", t, f.b.name)
		}
		if seen[f.b.name] {
			return fmt.Errorf("%w: field %s.%s", ErrDuplicateDeclaration, t, f.b.name)
		}
		seen[f.b.name] = true
		bs = append(bs, f.b)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, exists := x.decls[t]; exists {
		return fmt.Errorf("%w: type %s", ErrDuplicateDeclaration, t)
	}
	x.decls[t] = bs
	return nil
}

// fieldsFor returns the declared fields of t, scanning struct tags once when
// nothing was declared explicitly.
func (x *Extension) fieldsFor(t reflect.Type) ([]binding, error) {
	x.mu.RLock()
	bs, ok := x.decls[t]
	x.mu.RUnlock()
	if ok {
		return bs, nil
	}

	bs, err := scanTags(t)
	if err != nil {
		return nil, err
	}
	x.mu.Lock()
	x.decls[t] = bs
	x.mu.Unlock()
	return bs, nil
}

// ProcessInjectionTarget implements di.Extension.
func (x *Extension) ProcessInjectionTarget(ev *di.ProcessInjectionTarget) {
	fields, err := x.fieldsFor(ev.Type())
	if err != nil {
		ev.AddDefinitionError(err)
		return
	}
	if len(fields) == 0 {
		return
	}
	if x.dir == nil {
		ev.AddDefinitionError(errors.New("remote: extension has no directory"))
		return
	}

	validated := 0
	for _, f := range fields {
		if !f.res.ValidateOnDeployment {
			continue
		}
		if _, err := x.value(x.bootCtx, f); err != nil {
			ev.AddDefinitionError(err)
			continue
		}
		validated++
	}

	x.log.Info("remote resources declared",
		zap.Stringer("type", ev.Type()),
		zap.Int("fields", len(fields)),
		zap.Int("validated", validated),
	)

	ev.SetInjectionTarget(&injectionTarget{
		delegate: ev.InjectionTarget(),
		fields:   fields,
		x:        x,
	})
}

// value runs the lookup protocol for f: cache, then directory, then
// validation against the field type.
func (x *Extension) value(ctx context.Context, f binding) (any, error) {
	key := f.res.Key()

	if f.res.Cache {
		if v, ok := x.cache.Load(key); ok {
			if err := f.check(v); err != nil {
				return nil, f.fail(err)
			}
			x.log.Debug("remote resource cache hit", zap.Stringer("key", key))
			return v, nil
		}
	}

	x.log.Debug("resolving remote resource",
		zap.Stringer("key", key),
		zap.Bool("cache", f.res.Cache),
	)
	v, err := naming.Resolve(ctx, x.dir, f.res.ExternalContextLookup, f.res.Lookup)
	if err != nil {
		return nil, f.fail(err)
	}
	if err := f.check(v); err != nil {
		return nil, f.fail(err)
	}

	if f.res.Cache {
		x.cache.Store(key, v)
	}
	return v, nil
}
