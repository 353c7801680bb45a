package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <email>",
	Short: "Erase a learner's progress",
	Long:  "Reset deletes the learner's progress, completed steps and badges. The allowlist entry is kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		email, err := identity.NormalizeEmail(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		uid := identity.UIDFor(email)
		u, err := st.UserByEmail(ctx, email)
		switch {
		case err == nil:
			uid = u.UID
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := st.ClearProgress(ctx, uid); err != nil {
			return err
		}
		fmt.Printf("Progress cleared for %s.\n", email)
		return nil
	},
}
