// Command remotectl serves and queries remote resource directories.
package main

import (
	"os"

	"github.com/sghaida/remoteresource/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
