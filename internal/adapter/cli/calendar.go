// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/presenter"
	"github.com/olafkfreund/comunicado-sub004/internal/calendarsync"
)

// calCmd represents the calendar sync command group.
var calCmd = &cobra.Command{
	Use:   "cal",
	Short: "Manage calendar synchronization",
}

var calStatusCmd = &cobra.Command{
	Use:     "status [calendar-id]",
	Short:   "Show sync status for one calendar, or all tracked calendars",
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCalStatus,
}

var calSyncCmd = &cobra.Command{
	Use:   "sync <calendar-id>",
	Short: "Force an immediate sync pass for one calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalSync,
}

var calSyncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Force an immediate sync pass for every tracked calendar",
	RunE:  runCalSyncAll,
}

var calDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List remote calendars available on the default account, not yet registered for sync",
	Args:  cobra.NoArgs,
	RunE:  runCalDiscover,
}

func init() {
	calCmd.AddCommand(calStatusCmd)
	calCmd.AddCommand(calSyncCmd)
	calCmd.AddCommand(calSyncAllCmd)
	calCmd.AddCommand(calDiscoverCmd)
	rootCmd.AddCommand(calCmd)
}

func runCalStatus(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}

	p := presenter.New(formatFlag)

	if len(args) == 1 {
		status, err := d.CalendarSync.GetStatus(args[0])
		if err != nil {
			return fmt.Errorf("get status for %s: %w", args[0], err)
		}
		cmd.Println(p.RenderSyncEntry(presenter.SyncEntry{
			Meta:   calendarsync.CalendarMeta{ID: args[0]},
			Status: status,
		}))
		return nil
	}

	statuses := d.CalendarSync.GetAllStatus()
	entries := make([]presenter.SyncEntry, 0, len(statuses))
	for id, status := range statuses {
		entries = append(entries, presenter.SyncEntry{
			Meta:   calendarsync.CalendarMeta{ID: id},
			Status: status,
		})
	}
	cmd.Println(p.RenderSyncEntries(entries))
	return nil
}

func runCalSync(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.CalendarSync.ForceSync(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("sync %s: %w", args[0], err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("synced calendar %s", args[0])))
	return nil
}

func runCalDiscover(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if d.GoogleCalendars == nil {
		return fmt.Errorf("no Google account configured as default; run 'comunicado auth login google' first")
	}

	remote, err := d.GoogleCalendars.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list remote calendars: %w", err)
	}
	if len(remote) == 0 {
		cmd.Println("No remote calendars found.")
		return nil
	}
	for _, cal := range remote {
		cmd.Printf("%s\t%s\t%s\n", cal.ID, cal.Title, cal.AccessRole)
	}
	return nil
}

func runCalSyncAll(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	errs := d.CalendarSync.ForceSyncAll(cmd.Context())
	p := presenter.New(formatFlag)
	if len(errs) == 0 {
		cmd.Println(p.RenderSuccess("synced all calendars"))
		return nil
	}
	for id, syncErr := range errs {
		cmd.Println(p.RenderError(fmt.Errorf("%s: %w", id, syncErr)))
	}
	return fmt.Errorf("%d calendar(s) failed to sync", len(errs))
}
