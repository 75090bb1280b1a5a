// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/presenter"
	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/oauth2core"
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage OAuth2 authentication",
	Long: `Run the authorization-code + PKCE flow against an account's
provider, check token status, and force a proactive refresh.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login <provider>",
	Short: "Authenticate a new account via the browser-based OAuth2 flow",
	Example: `  comunicado auth login google
  comunicado auth login outlook`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status [account-id]",
	Short: "Show token status for one account, or all accounts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh <account-id>",
	Short: "Force a refresh of an account's access token",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRefresh,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	rootCmd.AddCommand(authCmd)
}

func providerCredentials(providerName string) (clientID, clientSecret string, err error) {
	prefix := "COMUNICADO_" + strings.ToUpper(providerName)
	clientID = os.Getenv(prefix + "_CLIENT_ID")
	if clientID == "" {
		return "", "", fmt.Errorf("set %s_CLIENT_ID to authenticate with %s", prefix, providerName)
	}
	clientSecret = os.Getenv(prefix + "_CLIENT_SECRET")
	return clientID, clientSecret, nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	p, ok := oauth2core.Lookup(providerName)
	if !ok {
		return fmt.Errorf("unknown provider %q", providerName)
	}

	clientID, clientSecret, err := providerCredentials(providerName)
	if err != nil {
		return err
	}

	flow, err := oauth2core.NewFlow(oauth2core.FlowConfig{
		Provider:     p,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		OpenBrowser:  true,
	})
	if err != nil {
		return fmt.Errorf("configure oauth2 flow: %w", err)
	}

	cmd.Println("Opening browser to complete authentication...")
	result, err := flow.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("oauth2 flow: %w", err)
	}

	d, err := GetDependencies()
	if err != nil {
		return err
	}

	acct := account.NewConfig(providerName, result.Identity.Email)
	if err := d.Tokens.Store(acct.AccountID, providerName, result.Token); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	if err := d.Accounts.Save(acct); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	pr := presenter.New(formatFlag)
	cmd.Println(pr.RenderSuccess(fmt.Sprintf("authenticated %s as %s", acct.AccountID, result.Identity.Email)))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}

	var ids []string
	if len(args) == 1 {
		ids = []string{args[0]}
	} else {
		ids = d.Tokens.ListAccounts()
	}

	for _, id := range ids {
		diag := d.Tokens.Diagnose(id)
		cmd.Printf("%s\t%s\t%s\n", diag.AccountID, diag.Status, diag.Suggestion)
	}
	return nil
}

func runAuthRefresh(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := d.Tokens.Refresh(ctx, args[0]); err != nil {
		return fmt.Errorf("refresh %s: %w", args[0], err)
	}
	pr := presenter.New(formatFlag)
	cmd.Println(pr.RenderSuccess(fmt.Sprintf("refreshed access token for %s", args[0])))
	return nil
}
