package cmd

import (
	"fmt"
	"time"

	"infrasense-be/config"
	"infrasense-be/models"
	"infrasense-be/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development identity token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := models.Role(role)
			switch r {
			case models.RoleCitizen, models.RoleGovernment, models.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q (want citizen, government or admin)", role)
			}

			tok, err := utils.GenerateToken(config.Load(v).JWTSecret, userID, r, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject user id")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCitizen), "citizen, government or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", utils.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
