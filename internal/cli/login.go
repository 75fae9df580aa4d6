package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/api"
	"fintrack/internal/config"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("username", "u", "", "Account username")
	loginCmd.Flags().StringP("password", "p", "", "Account password (default: $FINTRACK_PASSWORD)")
	loginCmd.Flags().Bool("register", false, "Create the account first")
	_ = loginCmd.MarkFlagRequired("username")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a bearer token from the finance service",
	Long: `Authenticate against the finance service and print the bearer token.
Export it as FINTRACK_API_TOKEN for the other commands.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	if app.cfg.Backend != config.BackendAPI {
		return fmt.Errorf("login needs the api backend, not %q", app.cfg.Backend)
	}
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("FINTRACK_PASSWORD")
	}
	if password == "" {
		return errors.New("password required: use --password or FINTRACK_PASSWORD")
	}

	client := api.New(app.cfg.APIURL, api.WithTimeout(app.cfg.APITimeout), api.WithLogger(app.logger))
	var (
		token string
		err   error
	)
	if register, _ := cmd.Flags().GetBool("register"); register {
		token, err = client.Register(cmd.Context(), username, password)
	} else {
		token, err = client.Login(cmd.Context(), username, password)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
