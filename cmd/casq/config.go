package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/odvcencio/casq/pkg/store"
)

// userConfig holds CLI-level defaults from ~/.casq.toml. The store's
// own config file is separate and owned by the store engine.
type userConfig struct {
	Root string `toml:"root"`
	JSON bool   `toml:"json"`
}

// loadUserConfig reads ~/.casq.toml. A missing file yields the zero
// config; a malformed one is ignored rather than blocking every
// command.
func loadUserConfig() userConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		return userConfig{}
	}
	var cfg userConfig
	if _, err := toml.DecodeFile(filepath.Join(home, ".casq.toml"), &cfg); err != nil {
		return userConfig{}
	}
	return cfg
}

// resolveRoot picks the store root: --root flag, then $CASQ_ROOT, then
// the user config, then ./casq-store.
func resolveRoot(cmd *cobra.Command) string {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		return root
	}
	if root := os.Getenv("CASQ_ROOT"); root != "" {
		return root
	}
	if cfg := loadUserConfig(); cfg.Root != "" {
		return cfg.Root
	}
	return "./casq-store"
}

// jsonMode reports whether output should be JSON: --json flag or the
// user config default.
func jsonMode(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("json") {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}
	return loadUserConfig().JSON
}

// openStore opens the store resolved from the command's flags.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	return store.Open(resolveRoot(cmd))
}
