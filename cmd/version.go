package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and, with --verbose, the resolved tutor and database settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "coacha %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		provider := cfg.LLM.Provider
		if m := cfg.LLM.Model(); m != "" {
			provider += " (" + m + ")"
		}
		if !cfg.LLM.HasCredential() {
			provider += ", no credential"
		}
		fmt.Fprintf(w, "tutor provider: %s\n", provider)

		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		fmt.Fprintf(w, "database:       %s\n", dbPath)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Also print the configured tutor provider and database path")
}
