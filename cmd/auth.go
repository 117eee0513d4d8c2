package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Obtain or refresh the Google OAuth token",
		Long: `Run the credential lifecycle from the terminal: reuse the persisted token,
refresh it when expired, or start the interactive consent flow when neither
works. The token is written to --token-file for later use by "serve".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			store := newCredentialStore(cfg, logger, nil)
			tok, err := store.Token(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Token stored in %s\n", store.TokenPath())
			if !tok.Expiry.IsZero() {
				fmt.Fprintf(out, "Access token expires at %s\n", tok.Expiry.Local().Format(time.RFC1123))
			}
			if tok.RefreshToken == "" {
				fmt.Fprintln(out, "Warning: no refresh token was issued; you will need to authenticate again when it expires.")
			}
			return nil
		},
	}
}
