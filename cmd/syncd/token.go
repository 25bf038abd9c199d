package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	var (
		subject string
		venues  []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator JWT for the /api/v1 endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}
			if subject == "" {
				return errors.New("--subject is required")
			}

			venueIDs := make([]uuid.UUID, 0, len(venues))
			for _, v := range venues {
				id, err := uuid.Parse(v)
				if err != nil {
					return fmt.Errorf("invalid --venue %q: %w", v, err)
				}
				venueIDs = append(venueIDs, id)
			}

			tokenSvc := service.NewJWTTokenService(rt.cfg.JWT.Secret, rt.cfg.JWT.Expiry, rt.cfg.JWT.Issuer)
			token, exp, err := tokenSvc.Generate(subject, venueIDs)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.TokenResponse{Token: token, Expiry: exp.Unix()})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator identifier recorded in audit logs")
	cmd.Flags().StringSliceVar(&venues, "venue", nil, "venue id the token is scoped to (repeatable; omit for all venues)")
	return cmd
}
