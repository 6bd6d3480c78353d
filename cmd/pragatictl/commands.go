package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pragatipath-be/models"
	"pragatipath-be/utils"

	"github.com/spf13/cobra"
)

// AdminStore is the subset of the store the admin commands write through.
type AdminStore interface {
	AddRole(ctx context.Context, mobile, role string) error
	RemoveRole(ctx context.Context, mobile, role string) error
	SetActive(ctx context.Context, mobile string, active bool) error
	CreateDepartment(ctx context.Context, dept *models.Department) error
}

type session struct {
	Store         AdminStore
	EnsureIndexes func(ctx context.Context) error
	Close         func() error
}

type opener func(ctx context.Context) (*session, error)

var knownRoles = map[string]bool{
	models.RoleCitizen:   true,
	models.RoleAdmin:     true,
	models.RoleDeptStaff: true,
}

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pragatictl",
		Short:         "Pragati Path administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(ensureIndexesCmd(open))
	rootCmd.AddCommand(roleCmd(open, "grant-role", "Grant a role to a user", true))
	rootCmd.AddCommand(roleCmd(open, "revoke-role", "Revoke a role from a user", false))
	rootCmd.AddCommand(setActiveCmd(open))
	rootCmd.AddCommand(createDepartmentCmd(open))
	return rootCmd
}

// withSession opens the store for the duration of one command.
func withSession(cmd *cobra.Command, open opener, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if s.Close != nil {
			_ = s.Close()
		}
	}()
	return fn(ctx, s)
}

func mobileFlag(cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("mobile")
	mobile := utils.NormalizeMobile(raw)
	if !utils.ValidMobile(mobile) {
		return "", fmt.Errorf("invalid mobile number %q", raw)
	}
	return mobile, nil
}

func ensureIndexesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the unique and query indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				if err := s.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("ensure indexes: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
				return nil
			})
		},
	}
}

func roleCmd(open opener, use, short string, grant bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mobile, err := mobileFlag(cmd)
			if err != nil {
				return err
			}
			role, _ := cmd.Flags().GetString("role")
			if !knownRoles[role] {
				return fmt.Errorf("unknown role %q", role)
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				if grant {
					err = s.Store.AddRole(ctx, mobile, role)
				} else {
					err = s.Store.RemoveRole(ctx, mobile, role)
				}
				if err != nil {
					return fmt.Errorf("%s %s: %w", use, mobile, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", use, mobile, role)
				return nil
			})
		},
	}
	cmd.Flags().String("mobile", "", "mobile number of the user")
	cmd.Flags().String("role", "", "one of citizen, admin, dept_staff")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func setActiveCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-active",
		Short: "Suspend or reactivate a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mobile, err := mobileFlag(cmd)
			if err != nil {
				return err
			}
			active, _ := cmd.Flags().GetBool("active")

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				if err := s.Store.SetActive(ctx, mobile, active); err != nil {
					return fmt.Errorf("set-active %s: %w", mobile, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "set-active: %s active=%t\n", mobile, active)
				return nil
			})
		},
	}
	cmd.Flags().String("mobile", "", "mobile number of the user")
	cmd.Flags().Bool("active", true, "whether the account may log in")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func createDepartmentCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-department",
		Short: "Create a department issues can be assigned to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			code, _ := cmd.Flags().GetString("code")
			name, code = strings.TrimSpace(name), strings.ToUpper(strings.TrimSpace(code))
			if name == "" || code == "" {
				return fmt.Errorf("--name and --code are required")
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				dept := &models.Department{Name: name, Code: code, CreatedAt: time.Now()}
				if err := s.Store.CreateDepartment(ctx, dept); err != nil {
					return fmt.Errorf("create-department: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "department %s created with id %s\n", code, dept.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().String("name", "", "department name")
	cmd.Flags().String("code", "", "short department code")
	return cmd
}
