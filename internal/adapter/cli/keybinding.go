// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/presenter"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
)

// keybindingCmd represents the keyboard binding command group.
var keybindingCmd = &cobra.Command{
	Use:     "keybinding",
	Short:   "Manage keyboard bindings",
	Aliases: []string{"keybindings", "keys"},
}

var keybindingListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all keyboard bindings",
	Aliases: []string{"ls"},
	RunE:    runKeybindingList,
}

var keybindingSetCmd = &cobra.Command{
	Use:   "set <action-id> <key-combo>",
	Short: "Bind a key combo to an action in the global context",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeybindingSet,
}

var keybindingResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all bindings to their defaults",
	RunE:  runKeybindingReset,
}

var keybindingExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the current bindings to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeybindingExport,
}

var keybindingImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import bindings from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeybindingImport,
}

var keybindingImportMerge bool

func init() {
	keybindingImportCmd.Flags().BoolVar(&keybindingImportMerge, "merge", false, "layer the import on top of existing bindings instead of replacing them")

	keybindingCmd.AddCommand(keybindingListCmd)
	keybindingCmd.AddCommand(keybindingSetCmd)
	keybindingCmd.AddCommand(keybindingResetCmd)
	keybindingCmd.AddCommand(keybindingExportCmd)
	keybindingCmd.AddCommand(keybindingImportCmd)
	rootCmd.AddCommand(keybindingCmd)
}

func actionsByID(t *keyboard.Table) map[string]keyboard.Action {
	actions := t.Actions()
	byID := make(map[string]keyboard.Action, len(actions))
	for _, a := range actions {
		byID[a.ID] = a
	}
	return byID
}

func runKeybindingList(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderBindings(actionsByID(d.Keybindings), d.Keybindings.Bindings()))
	return nil
}

func runKeybindingSet(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	binding, err := d.Keybindings.AddBinding(args[0], args[1], keyboard.Global, keyboard.PriorityUser)
	if err != nil {
		return fmt.Errorf("bind %s to %s: %w", args[1], args[0], err)
	}
	if err := d.Keybindings.Save(); err != nil {
		return fmt.Errorf("save keybindings: %w", err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("bound %s to %s", binding.KeyCombo, binding.ActionID)))
	return nil
}

func runKeybindingReset(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.Keybindings.ResetToDefaults(); err != nil {
		return fmt.Errorf("reset keybindings: %w", err)
	}
	if err := d.Keybindings.Save(); err != nil {
		return fmt.Errorf("save keybindings: %w", err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess("reset all bindings to their defaults"))
	return nil
}

func runKeybindingExport(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.Keybindings.Export(args[0]); err != nil {
		return fmt.Errorf("export to %s: %w", args[0], err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("exported bindings to %s", args[0])))
	return nil
}

func runKeybindingImport(cmd *cobra.Command, args []string) error {
	d, err := GetDependencies()
	if err != nil {
		return err
	}
	if err := d.Keybindings.Import(args[0], keybindingImportMerge); err != nil {
		return fmt.Errorf("import from %s: %w", args[0], err)
	}
	if err := d.Keybindings.Save(); err != nil {
		return fmt.Errorf("save keybindings: %w", err)
	}
	p := presenter.New(formatFlag)
	cmd.Println(p.RenderSuccess(fmt.Sprintf("imported bindings from %s", args[0])))
	return nil
}
