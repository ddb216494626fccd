// Package remoteresource injects objects held in a naming directory into
// fields of container-managed types.
//
// The repository is split into small packages:
//
//   - di: the container, its InjectionTarget SPI and the extension hook run
//     for every registered type at Build
//   - naming: the Directory and Namespace abstractions plus an in-memory
//     implementation
//   - naming/filedir, naming/sqldir, naming/httpdir: directories backed by a
//     TOML or YAML file, a SQLite database and a remote HTTP server
//   - remote: the extension that resolves `remote` tagged fields, validates
//     them at deployment and caches them per (context, name)
//   - cmd/remotegen: a generator turning tags into explicit declarations
//   - cmd/remotectl: a CLI to serve, query and edit directories
//   - examples/remote: a runnable end-to-end example
//
// A minimal wiring:
//
//	dir := naming.FromMap(map[string]map[string]any{
//		"externalCtx": {"payments": gateway},
//	})
//	c := di.New()
//	_ = c.Use(remote.NewExtension(dir))
//	_ = di.Provide(c, func() *Billing { return &Billing{} })
//	if err := c.Build(); err != nil {
//		// a validated resource is missing or has the wrong type
//	}
//	b, err := di.Create[Billing](ctx, c)
package remoteresource
