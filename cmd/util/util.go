package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tabstore/tabstore/lib/codec"
	"github.com/tabstore/tabstore/lib/manager"
	"github.com/tabstore/tabstore/lib/rawstore"
	"github.com/tabstore/tabstore/lib/rawstore/filestore"
	"github.com/tabstore/tabstore/lib/rawstore/memstore"
	"github.com/tabstore/tabstore/lib/rawstore/sqlitestore"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tabstore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStore creates the raw storage backend based on configuration
func GetStore() (rawstore.Store, error) {
	path := viper.GetString("path")
	switch viper.GetString("store") {
	case "memory":
		return memstore.NewMemStore(nil), nil
	case "file":
		if path == "" {
			path = "tabstore.json"
		}
		return filestore.NewFileStore(path)
	case "sqlite":
		if path == "" {
			path = "tabstore.db"
		}
		return sqlitestore.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("invalid store %s", viper.GetString("store"))
	}
}

// GetCodec creates a value codec based on configuration
func GetCodec() (codec.Codec, error) {
	switch viper.GetString("codec") {
	case "json":
		return codec.NewJSONCodec(), nil
	case "gob":
		return codec.NewGOBCodec(), nil
	default:
		return nil, fmt.Errorf("invalid codec %s", viper.GetString("codec"))
	}
}

// GetManager assembles the storage manager from configuration
func GetManager() (*manager.Manager, error) {
	raw, err := GetStore()
	if err != nil {
		return nil, err
	}

	var opts []manager.ManagerOption
	if prefix := viper.GetString("prefix"); prefix != "" {
		opts = append(opts, manager.WithPrefix(prefix))
	}
	return manager.New(raw, opts...), nil
}

// GetOptions builds the per-operation options from configuration
func GetOptions(ttl time.Duration) (manager.Options, error) {
	c, err := GetCodec()
	if err != nil {
		return manager.Options{}, err
	}
	opts := manager.Options{
		TTL:   ttl,
		Codec: c,
	}
	if secret := viper.GetString("secret"); secret != "" {
		opts.AutoEncrypt = true
		opts.SecretKey = secret
	}
	return opts, nil
}
