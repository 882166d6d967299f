package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	srv "github.com/mohammad-safakhou/oratriage/internal/server"
)

func tokenCMD(cfgPath *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	token := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBase(*cfgPath)
			if err != nil {
				return err
			}
			if b.cfg.Server.JWTSecret == "" {
				return errors.New("server.jwt_secret is not configured")
			}
			signed, err := srv.SignJWT(subject, []byte(b.cfg.Server.JWTSecret), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}
	token.Flags().StringVar(&subject, "subject", "operator", "token subject")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return token
}
