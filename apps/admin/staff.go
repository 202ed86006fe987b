package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/vidtrack/apps/api/echo"
	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

func (cli *commandLine) addStaffCommand() *cobra.Command {
	var (
		ns      staff.NewStaff
		approve bool
	)
	cmd := &cobra.Command{
		Use:   "addstaff",
		Short: "Create or update a staff member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns.IsApproved = approve
			s, err := cli.addStaff(cmd.Context(), ns)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %v approved=%t\n", s.Name, s.Email, s.Roles, s.IsApproved)
			return nil
		},
	}
	cmd.Flags().StringVar(&ns.ID, "id", "", "token subject of the staff member, generated when empty")
	cmd.Flags().StringVar(&ns.Email, "email", "", "email address")
	cmd.Flags().StringVar(&ns.Name, "name", "", "full name")
	cmd.Flags().StringSliceVar(&ns.Roles, "role", nil, "role, repeatable (eg. manager: or editor:)")
	cmd.Flags().BoolVar(&approve, "approve", false, "approve the staff member")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// addStaff updates or creates a staff.Staff
func (cli *commandLine) addStaff(ctx context.Context, ns staff.NewStaff) (staff.Staff, error) {
	orig, err := cli.staffSvc.GetByEmail(ctx, ns.Email)
	if err != nil {
		if !core.IsNotFound(err) {
			return staff.Staff{}, err
		}
		return cli.staffSvc.Create(ctx, ns)
	}

	us := staff.UpdateStaff{Name: ns.Name}
	if ns.Roles != nil {
		us.Roles = ns.Roles
	}
	if ns.IsApproved {
		us.IsApproved = &ns.IsApproved
	}
	return cli.staffSvc.Update(ctx, orig, us)
}

func (cli *commandLine) approveCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a pending staff member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cli.approve(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> approved\n", s.Name, s.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (cli *commandLine) approve(ctx context.Context, email string) (staff.Staff, error) {
	s, err := cli.staffSvc.GetByEmail(ctx, email)
	if err != nil {
		return staff.Staff{}, err
	}
	return cli.staffSvc.Approve(ctx, s.ID)
}

func (cli *commandLine) tokenCommand() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT for a staff member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cli.token(cmd.Context(), email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().DurationVar(&ttl, "ttl", cli.conf.Auth.DevTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (cli *commandLine) token(ctx context.Context, email string, ttl time.Duration) (string, error) {
	s, err := cli.staffSvc.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, s.ID, s.Email, s.Name, ttl))
}
