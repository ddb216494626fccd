// Command remotegen writes explicit remote resource declarations for the
// tagged struct fields of one package.
//
// A remote.Extension reads `remote` struct tags through reflection, which
// only reaches exported fields. remotegen turns the same tags into
// remote.Declare calls with accessor closures, so unexported fields work
// too and tag mistakes fail at generation time instead of at Build.
//
// Usage
//
//	remotegen -out <file.gen.go> [-func Name]
//
// The package scanned is the directory of -out. Files ending in _test.go or
// .gen.go are skipped. -func defaults to DeclareRemoteResources.
//
// Typical go:generate usage
//
//	//go:generate go run github.com/sghaida/remoteresource/cmd/remotegen -out remote_resources.gen.go
//
//	type Billing struct {
//		gateway PaymentGateway `remote:"externalContextLookup=externalCtx,lookup=payments"`
//	}
//
// generates
//
//	func DeclareRemoteResources(x *remote.Extension) error {
//		if err := remote.Declare(x,
//			remote.Bind("gateway", func(v *Billing) *PaymentGateway { return &v.gateway }, remote.Resource{
//				ExternalContextLookup: "externalCtx",
//				Lookup:                "payments",
//				Cache:                 true,
//				ValidateOnDeployment:  true,
//			}),
//		); err != nil {
//			return err
//		}
//		return nil
//	}
//
// Call the generated function on the Extension before installing it in the
// container.
//
// Exit codes
//
//   - 0: the file was written
//   - 1: scanning, validation or writing failed
//   - 2: bad command line
package main
