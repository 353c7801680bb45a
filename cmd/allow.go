package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var allowCmd = &cobra.Command{
	Use:   "allow",
	Short: "Manage the sign-in allowlist",
}

var allowAddCmd = &cobra.Command{
	Use:   "add <email>...",
	Short: "Allow addresses to sign in",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, email := range args {
			if err := st.Allow(ctx, email); err != nil {
				return err
			}
			fmt.Println("allowed", email)
		}
		return nil
	},
}

var allowRemoveCmd = &cobra.Command{
	Use:     "remove <email>...",
	Aliases: []string{"rm"},
	Short:   "Revoke sign-in for addresses",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, email := range args {
			if err := st.Revoke(ctx, email); err != nil {
				return err
			}
			fmt.Println("revoked", email)
		}
		return nil
	},
}

var allowListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List allowed addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.Allowlist(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("The allowlist is empty.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tADDED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Email, e.AddedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	allowCmd.AddCommand(allowAddCmd, allowRemoveCmd, allowListCmd)
}
