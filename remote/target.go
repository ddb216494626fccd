package remote

import (
	"context"

	"github.com/sghaida/remoteresource/di"
)

// injectionTarget decorates a type's target: the container's own injection
// runs first, then every declared field is resolved and assigned.
type injectionTarget struct {
	delegate di.InjectionTarget
	fields   []binding
	x        *Extension
}

var _ di.InjectionTarget = (*injectionTarget)(nil)

func (t *injectionTarget) Produce(ctx context.Context) (any, error) {
	return t.delegate.Produce(ctx)
}

func (t *injectionTarget) Inject(ctx context.Context, instance any) error {
	if err := t.delegate.Inject(ctx, instance); err != nil {
		return err
	}
	for _, f := range t.fields {
		v, err := t.x.value(ctx, f)
		if err != nil {
			return err
		}
		if err := f.assign(instance, v); err != nil {
			return f.fail(err)
		}
	}
	return nil
}

func (t *injectionTarget) PostConstruct(instance any) error {
	return t.delegate.PostConstruct(instance)
}

func (t *injectionTarget) PreDestroy(instance any) error {
	return t.delegate.PreDestroy(instance)
}

func (t *injectionTarget) Dispose(instance any) error {
	return t.delegate.Dispose(instance)
}

func (t *injectionTarget) InjectionPoints() []di.InjectionPoint {
	return t.delegate.InjectionPoints()
}
