// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/presenter"
)

// accountCmd represents the account command group.
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage configured accounts",
	Long: `Manage the accounts comunicado has credentials for.

The account commands list, inspect, and remove accounts whose OAuth2
credentials were obtained via "comunicado auth login".`,
}

// accountListCmd lists all accounts.
var accountListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all configured accounts",
	Aliases: []string{"ls"},
	RunE:    runAccountList,
}

// accountShowCmd shows one account's details.
var accountShowCmd = &cobra.Command{
	Use:     "show <account-id>",
	Short:   "Show details of one account",
	Aliases: []string{"info"},
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountShow,
}

// accountRemoveCmd removes an account and its stored credentials.
var accountRemoveCmd = &cobra.Command{
	Use:     "remove <account-id>",
	Short:   "Remove an account and its stored credentials",
	Aliases: []string{"rm", "delete"},
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountRemove,
}

// accountSwitchCmd sets the default account.
var accountSwitchCmd = &cobra.Command{
	Use:     "switch <account-id>",
	Short:   "Set the default account",
	Aliases: []string{"use", "default"},
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountSwitch,
}

func init() {
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountShowCmd)
	accountCmd.AddCommand(accountRemoveCmd)
	accountCmd.AddCommand(accountSwitchCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountList(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	accts, err := d.Accounts.List()
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderAccounts(accts))
	return nil
}

func runAccountShow(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	acct, err := d.Accounts.Get(args[0])
	if err != nil {
		return fmt.Errorf("get account %s: %w", args[0], err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderAccount(acct))
	return nil
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.Accounts.Delete(args[0]); err != nil {
		return fmt.Errorf("remove account %s: %w", args[0], err)
	}
	if err := d.Tokens.Remove(args[0]); err != nil {
		return fmt.Errorf("remove tokens for %s: %w", args[0], err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("removed account %s", args[0])))
	return nil
}

func runAccountSwitch(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.Accounts.SetDefault(args[0]); err != nil {
		return fmt.Errorf("switch to account %s: %w", args[0], err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("default account is now %s", args[0])))
	return nil
}
