package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabstore/tabstore/cmd/backup"
	"github.com/tabstore/tabstore/cmd/kv"
	"github.com/tabstore/tabstore/cmd/util"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tabstore",
		Short: "local key-value persistence layer",
		Long: fmt.Sprintf(`tabstore (v%s)

A local key-value persistence layer with TTL expiration, optional
AES-GCM encryption, change notification and pluggable backends.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tabstore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tabstore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(backup.BackupCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "store"
	RootCmd.PersistentFlags().String(key, "file", util.WrapString("storage backend to use (memory, file, sqlite)"))
	key = "path"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("path of the backing file or database (defaults to tabstore.json / tabstore.db)"))
	key = "prefix"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("key prefix for managed entries (defaults to tabstore:)"))
	key = "codec"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("value codec to use (json, gob)"))
	key = "secret"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("secret key - when set, values are encrypted with AES-GCM"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
