package backup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabstore/tabstore/cmd/util"
	"github.com/tabstore/tabstore/lib/rawstore"
	"github.com/tabstore/tabstore/lib/storeutil"
)

var (
	raw rawstore.Store

	// BackupCommands represents the backup command group
	BackupCommands = &cobra.Command{
		Use:               "backup",
		Short:             "Export and import the raw storage contents",
		PersistentPreRunE: setupStore,
	}

	exportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Exports all entries to a JSON file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := storeutil.Export(raw)
			if err != nil {
				return err
			}
			if args[0] == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Printf("exported %d entr(y/ies) to %s\n", raw.Len(), args[0])
			return nil
		},
	}

	importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Imports entries from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			n, err := storeutil.Import(raw, data)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d entr(y/ies) from %s\n", n, args[0])
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands
	BackupCommands.AddCommand(exportCmd)
	BackupCommands.AddCommand(importCmd)
}

// setupStore opens the raw storage backend from flags and environment
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	raw, err = util.GetStore()
	return err
}
