package main

import (
	"fmt"
	"time"

	"property-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newTokenCmd signs a bearer token with the configured key, for local testing
// against a running server without the auth service.
func newTokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}

			token, err := jwtutil.NewJWTUtil(&cfg.JWT).GenerateToken(userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "LANDLORD", "role claim to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
