// Package remote injects values looked up in a naming.Directory into fields
// of container-managed types.
//
// A field is declared with a Resource: the context to open, the name to look
// up inside it, whether the value is cached for every instance, and whether
// it is resolved and type-checked while the container is built. Declare
// fields with struct tags:
//
//	type Billing struct {
//	  Gateway PaymentGateway `remote:"externalContextLookup=externalCtx,lookup=payments"`
//	  Rates   RateTable      `remote:"externalContextLookup=externalCtx,lookup=rates,cache=false"`
//	}
//
// or explicitly, which also works for unexported fields (cmd/remotegen writes
// these declarations from tags):
//
//	remote.Declare(x, remote.Bind("gateway",
//	  func(b *Billing) *PaymentGateway { return &b.gateway },
//	  remote.NewResource("externalCtx", "payments")))
//
// The Extension plugs into a di.Container:
//
//	x := remote.NewExtension(dir)
//	_ = c.Use(x)
//	if err := c.Build(); err != nil { ... } // failed deployment validation
//	b, err := di.Create[Billing](ctx, c)
//
// Cached values are keyed by the (context, lookup) pair and live as long as
// the Extension.
package remote
