package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"greenhome/db"
	"greenhome/internal/workflow"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the built-in test accounts if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := workflow.NewService(db.NewStorage(conn))
			if err := svc.SeedFixtures(cmd.Context()); err != nil {
				return err
			}
			for _, u := range workflow.FixtureUsers() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-8s %s\n", u.ID, u.Role, u.Email)
			}
			return nil
		},
	}
}

const (
	userFlag = "user"
	roleFlag = "role"
)

var setRoleFlags = map[string]cobraflags.Flag{
	userFlag: &cobraflags.StringFlag{
		Name:  userFlag,
		Value: "",
		Usage: "User id whose role changes (required)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: "",
		Usage: "New role: legal_entity, auditor or admin (required)",
	},
}

func newSetRoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role stored in a user's profile",
		Args:  cobra.NoArgs,
		RunE:  setRoleCommand,
	}
	cobraflags.RegisterMap(cmd, setRoleFlags)
	return cmd
}

func setRoleCommand(cmd *cobra.Command, _ []string) error {
	userID := setRoleFlags[userFlag].GetString()
	role, err := workflow.ParseRole(setRoleFlags[roleFlag].GetString())
	if userID == "" {
		return fmt.Errorf("--%s is required", userFlag)
	}
	if err != nil {
		return err
	}

	conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := workflow.NewService(db.NewStorage(conn))
	if err := svc.SetRole(cmd.Context(), userID, role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", userID, role)
	return nil
}
