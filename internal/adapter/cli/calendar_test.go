// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

func TestCalCmd_Help(t *testing.T) {
	cmd := &cobra.Command{Use: "comunicado"}
	cmd.AddCommand(calCmd)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"cal", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"status", "sync", "sync-all", "discover"} {
		if !contains(output, want) {
			t.Errorf("expected output to contain %q: %s", want, output)
		}
	}
}

func TestCalStatusCmd_AllowsZeroOrOneArg(t *testing.T) {
	if err := calStatusCmd.Args(calStatusCmd, []string{}); err != nil {
		t.Errorf("expected status to allow zero arguments: %v", err)
	}
	if err := calStatusCmd.Args(calStatusCmd, []string{"a", "b"}); err == nil {
		t.Error("expected status to reject two arguments")
	}
}

func TestCalSyncCmd_RequiresOneArg(t *testing.T) {
	if err := calSyncCmd.Args(calSyncCmd, []string{}); err == nil {
		t.Error("expected sync to require exactly one argument")
	}
}

func TestCalDiscoverCmd_RejectsArgs(t *testing.T) {
	if err := calDiscoverCmd.Args(calDiscoverCmd, []string{"extra"}); err == nil {
		t.Error("expected discover to reject arguments")
	}
}

func TestRunCalDiscover_RequiresGoogleAccount(t *testing.T) {
	SetDependencies(&Dependencies{})
	defer ResetDependencies()

	if err := runCalDiscover(calDiscoverCmd, nil); err == nil {
		t.Error("expected an error when no Google account is configured")
	}
}
