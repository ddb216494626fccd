package di_test

import (
	"context"
	"testing"

	"github.com/sghaida/remoteresource/di"
)

/*
   Service benchmarks
*/

func BenchmarkInit(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = newOrders()
	}
}

func BenchmarkWith_SingleDependency(b *testing.B) {
	injStore := di.Injecting(storeKey, newStore(), bindStore)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		orders := newOrders()
		_, _ = orders.With(injStore)
	}
}

func BenchmarkWithAll_TwoDependencies(b *testing.B) {
	injStore := di.Injecting(storeKey, newStore(), bindStore)
	injLogger := di.Injecting(loggerKey, newLogger(), bindLogger)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		orders := newOrders()
		_, _ = orders.WithAll(injStore, injLogger)
	}
}

func BenchmarkTryGetAs_Success(b *testing.B) {
	orders := newOrders()
	_, _ = orders.With(di.Injecting(storeKey, newStore(), bindStore))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = di.TryGetAs[Orders, Store](orders, storeKey)
	}
}

func BenchmarkInjecting_DuplicateKey(b *testing.B) {
	orders := newOrders()
	inj := di.Injecting(storeKey, newStore(), bindStore)
	_, _ = orders.With(inj)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = orders.With(inj) // duplicate path (error)
	}
}

/*
   Container benchmarks
*/

func BenchmarkCreate_TwoDependencies(b *testing.B) {
	c := di.New()
	if err := di.Provide(c, func() *Orders { return &Orders{} },
		di.WithWiring(
			di.Wire(storeKey, newStore(), bindStore),
			di.Wire(loggerKey, newLogger(), bindLogger),
		),
	); err != nil {
		b.Fatal(err)
	}
	if err := c.Build(); err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := di.Create[Orders](ctx, c); err != nil {
			b.Fatal(err)
		}
	}
}
