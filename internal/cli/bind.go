package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var bindCmd = &cobra.Command{
	Use:   "bind <context> <name> <json>",
	Short: "Store a JSON value in the SQLite directory",
	Long: `Stores a JSON value under name in the given context, creating the context if
needed. Only the sqlite backend accepts writes.`,
	Example: `  remotectl bind externalCtx myResource '"postgres://db:5432/orders"'
  remotectl bind externalCtx limits '{"rps": 50}'`,
	Args: cobra.ExactArgs(3),
	RunE: runBind,
}

func init() {
	rootCmd.AddCommand(bindCmd)
}

func runBind(cmd *cobra.Command, args []string) error {
	_, log, b, err := open()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best effort
	defer b.Close()

	store := b.Store()
	if store == nil {
		return errors.New("bind requires the sqlite backend (REMOTE_DIRECTORY_KIND=sqlite)")
	}
	if err := store.BindJSON(cmd.Context(), args[0], args[1], json.RawMessage(args[2])); err != nil {
		return fmt.Errorf("bind failed: %w", err)
	}
	cmd.Printf("bound %s/%s\n", args[0], args[1])
	return nil
}
