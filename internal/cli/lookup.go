package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sghaida/remoteresource/naming"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <context> <name>",
	Short: "Resolve a name and print its value as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	_, log, b, err := open()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best effort
	defer b.Close()

	v, err := naming.Resolve(cmd.Context(), b.Directory, args[0], args[1])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
