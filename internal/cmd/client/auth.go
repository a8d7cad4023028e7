package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAuthCommand constructs the `auth` command group and subcommands.
func NewAuthCommand(baseURL BaseURLFunc) *cobra.Command {
	authCmd := &cobra.Command{Use: "auth", Short: "Account operations"}

	authCmd.AddCommand(
		newAuthRegisterCommand(baseURL),
		newAuthLoginCommand(baseURL),
	)

	return authCmd
}

// newAuthRegisterCommand constructs the `auth register` subcommand.
func newAuthRegisterCommand(baseURL BaseURLFunc) *cobra.Command {
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			country, _ := cmd.Flags().GetString("country")

			if username == "" || email == "" || password == "" {
				return fmt.Errorf("--username, --email and --password are required")
			}
			var out json.RawMessage
			if err := postJSON(baseURL()+"/v1/auth/register", "", map[string]string{
				"username": username,
				"email":    email,
				"password": password,
				"country":  country,
			}, &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	registerCmd.Flags().String("username", "", "Username")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("password", "", "Password")
	registerCmd.Flags().String("country", "", "Country code (optional)")
	return registerCmd
}

// newAuthLoginCommand constructs the `auth login` subcommand. It prints the
// bare token so shells can capture it directly.
func newAuthLoginCommand(baseURL BaseURLFunc) *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			login, _ := cmd.Flags().GetString("login")
			password, _ := cmd.Flags().GetString("password")

			if login == "" || password == "" {
				return fmt.Errorf("--login and --password are required")
			}
			var out struct {
				Token string `json:"token"`
			}
			if err := postJSON(baseURL()+"/v1/auth/login", "", map[string]string{
				"login":    login,
				"password": password,
			}, &out); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Token)
			return nil
		},
	}
	loginCmd.Flags().String("login", "", "Username or email")
	loginCmd.Flags().String("password", "", "Password")
	return loginCmd
}
