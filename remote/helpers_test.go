package remote_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sghaida/remoteresource/di"
	"github.com/sghaida/remoteresource/naming"
	"github.com/sghaida/remoteresource/remote"
)

// Shared test types.

type Conn struct{ Addr string }

type Greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type DB struct{ DSN string }

// countingDirectory counts directory resolutions (one per Namespace.Lookup).
type countingDirectory struct {
	inner   naming.Directory
	opens   atomic.Int64
	lookups atomic.Int64
}

func newCountingDirectory(inner naming.Directory) *countingDirectory {
	return &countingDirectory{inner: inner}
}

func (d *countingDirectory) OpenContext(ctx context.Context, name string) (naming.Namespace, error) {
	d.opens.Add(1)
	ns, err := d.inner.OpenContext(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingNamespace{inner: ns, dir: d}, nil
}

func (d *countingDirectory) resolutions() int64 { return d.lookups.Load() }

type countingNamespace struct {
	inner naming.Namespace
	dir   *countingDirectory
}

func (n *countingNamespace) Lookup(ctx context.Context, name string) (any, error) {
	n.dir.lookups.Add(1)
	return n.inner.Lookup(ctx, name)
}

// newContainer returns a container with x installed.
func newContainer(t *testing.T, x *remote.Extension) *di.Container {
	t.Helper()
	c := di.New()
	require.NoError(t, c.Use(x))
	return c
}

// mustProvide registers T with a zero-value constructor.
func mustProvide[T any](t *testing.T, c *di.Container, opts ...di.TargetOption[T]) {
	t.Helper()
	require.NoError(t, di.Provide(c, func() *T { return new(T) }, opts...))
}

// deploymentErrors unpacks a Build error into its definition errors.
func deploymentErrors(t *testing.T, err error) []*di.DefinitionError {
	t.Helper()
	require.Error(t, err)
	var dep *di.DeploymentError
	require.ErrorAs(t, err, &dep)
	return dep.Errors
}
