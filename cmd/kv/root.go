package kv

import (
	"github.com/hrishi045/segstore/api/client"
	"github.com/hrishi045/segstore/cmd/util"
	"github.com/hrishi045/segstore/lib/store"
	"github.com/spf13/cobra"
)

var (
	remoteStore store.ISegmentedStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform storage operations against a running server",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the KV command
	util.SetupClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(rangeCmd)
	KeyValueCommands.AddCommand(rangeDelCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the remote store client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Create the remote store client
	var err error
	remoteStore, err = client.New(*util.GetClientConfig())
	return err
}
