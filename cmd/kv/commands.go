package kv

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tabstore/tabstore/cmd/util"
	"github.com/tabstore/tabstore/lib/manager"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			opts, err := util.GetOptions(viper.GetDuration("ttl"))
			if err != nil {
				return err
			}
			switch mgr.SetItem(key, value, opts) {
			case manager.WriteStored:
				fmt.Println("set successfully")
			case manager.WriteFailed:
				return fmt.Errorf("write failed for key %s", key)
			case manager.WriteUnavailable:
				return fmt.Errorf("storage backend unavailable")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			opts, err := util.GetOptions(0)
			if err != nil {
				return err
			}
			value, ok := manager.GetItem[string](mgr, key, opts)
			fmt.Printf("key=%s, found=%v, value=%s\n", key, ok, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr.RemoveItem(args[0])
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if an unexpired value exists for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			opts, err := util.GetOptions(0)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v\n", key, mgr.HasItem(key, opts))
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all managed keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := mgr.AllKeys()
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("(%d key(s))\n", len(keys))
			return nil
		},
	}
	metaCmd = &cobra.Command{
		Use:   "meta [key]",
		Short: "Shows the metadata of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			md, ok := mgr.ItemMetadata(key)
			if !ok {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			expires := "never"
			if md.ExpiresAt != nil {
				expires = time.UnixMilli(*md.ExpiresAt).Format(time.RFC3339)
			}
			fmt.Printf("key=%s, created=%s, expires=%s, version=%s\n",
				key,
				time.UnixMilli(md.CreatedAt).Format(time.RFC3339),
				expires,
				md.Version,
			)
			return nil
		},
	}
	cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Removes all expired entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("removed %d expired entr(y/ies)\n", mgr.CleanupExpired())
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Shows storage usage information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := mgr.GetStorageInfo()
			fmt.Printf("used=%d, remaining=%d, total=%d\n", info.Used, info.Remaining, info.Total)
			return nil
		},
	}
)
