// Package di is a small dependency injection container built around explicit
// wiring and a lifecycle SPI that extensions can hook into.
//
// Managed types are registered with an InjectionTarget that knows how to
// produce, inject, post-construct, pre-destroy and dispose instances. The
// default Target wires dependencies through Service[T] and Injector[T]:
//
//	c := di.New()
//	_ = di.Provide(c, NewUserService,
//	  di.WithWiring(di.Wire(KeyDB, db, func(s *UserService, d *DB) { s.DB = d })),
//	)
//
// Build is the bootstrap phase. Every Extension added with Use receives one
// ProcessInjectionTarget event per managed type; it may replace the target
// with a decorator or record definition errors, which abort deployment:
//
//	_ = c.Use(di.ExtensionFunc(func(ev *di.ProcessInjectionTarget) {
//	  ev.SetInjectionTarget(&tracing{InjectionTarget: ev.InjectionTarget()})
//	}))
//	if err := c.Build(); err != nil {
//	  var dep *di.DeploymentError
//	  errors.As(err, &dep) // every definition error, in registration order
//	}
//
// After Build, Create and Destroy drive single instances through their
// lifecycle. Injection failures abort only the instance being created.
package di
