package kv

import (
	"github.com/spf13/cobra"
	"github.com/tabstore/tabstore/cmd/util"
	"github.com/tabstore/tabstore/lib/manager"
)

var (
	mgr *manager.Manager

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value operations",
		PersistentPreRunE: setupManager,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(metaCmd)
	KeyValueCommands.AddCommand(cleanupCmd)
	KeyValueCommands.AddCommand(infoCmd)

	// Add Flags for set command
	setCmd.Flags().Duration("ttl", 0, util.WrapString("time to live for the entry (e.g. 30s, 5m) - zero means no expiration"))
}

// setupManager assembles the storage manager from flags and environment
func setupManager(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	mgr, err = util.GetManager()
	return err
}
