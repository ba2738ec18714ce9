package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dronefly-project/dronefly/parser"
)

// MacrosCmd lists query macros
var MacrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "List query macros",
	Long: `List the shorthand keywords a query may use and what each expands to.
Macros from parser.macros in the configuration are included.`,
	RunE: runMacros,
}

var macrosBuiltin bool

func init() {
	MacrosCmd.Flags().BoolVar(&macrosBuiltin, "builtin", false, "Show only the built-in macros")
}

func runMacros(cmd *cobra.Command, args []string) error {
	table := parser.DefaultMacros
	if !macrosBuiltin {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		p, err := loadPlugin(ctx)
		if err != nil {
			return err
		}
		defer p.Shutdown(ctx)
		table = p.Macros()
	}

	rows := pterm.TableData{{"Macro", "Expands to"}}
	for _, name := range table.Names() {
		macro, _ := table.Expand(name)
		rows = append(rows, []string{name, macro.String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(cmd.OutOrStdout()).Render()
}
