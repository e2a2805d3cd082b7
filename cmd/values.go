/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/allbin/go-serialsession"
	"github.com/allbin/go-serialsession/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// valuesCmd represents the values command
var valuesCmd = &cobra.Command{
	Use:   "values [setting]",
	Short: "List the accepted line setting values",
	Long: `List every value accepted for the line settings, in order, together
with the native code handed to the configurator.

Settings: baud, stop-bits, data-bits, parity, flow-control (default: all).

Examples:
  serialsession values
  serialsession values baud --plain`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"baud", "stop-bits", "data-bits", "parity", "flow-control"},
	Run: func(cmd *cobra.Command, args []string) {
		setting := ""
		if len(args) == 1 {
			setting = args[0]
		}
		plain, _ := cmd.Flags().GetBool("plain")

		rows, err := settingValues(setting)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if plain {
			renderSimple(rows)
		} else {
			renderTable(rows)
		}
	},
}

func init() {
	rootCmd.AddCommand(valuesCmd)

	valuesCmd.Flags().Bool("plain", false, "Print one value per line instead of a table")
}

type settingValue struct {
	setting string
	name    string
	code    int
}

// settingValues returns the values of one setting, or of all of them when
// setting is empty
func settingValues(setting string) ([]settingValue, error) {
	var rows []settingValue
	setting = strings.ToLower(setting)
	all := setting == ""

	switch setting {
	case "", "baud", "stop-bits", "data-bits", "parity", "flow-control":
	default:
		return nil, fmt.Errorf("unknown setting %q", setting)
	}

	if all || setting == "baud" {
		for _, b := range serial.BaudRates() {
			name := b.String()
			if b == serial.B0 {
				name += " (hang up)"
			}
			rows = append(rows, settingValue{"baud", name, b.Code()})
		}
	}
	if all || setting == "stop-bits" {
		for _, s := range serial.StopBitsValues() {
			rows = append(rows, settingValue{"stop-bits", s.String(), s.Code()})
		}
	}
	if all || setting == "data-bits" {
		for _, d := range serial.DataBitsValues() {
			rows = append(rows, settingValue{"data-bits", d.String(), d.Code()})
		}
	}
	if all || setting == "parity" {
		for _, p := range serial.Parities() {
			rows = append(rows, settingValue{"parity", p.String(), p.Code()})
		}
	}
	if all || setting == "flow-control" {
		for _, f := range serial.FlowControls() {
			rows = append(rows, settingValue{"flow-control", f.String(), f.Code()})
		}
	}
	return rows, nil
}

// renderTable renders the values in a styled table
func renderTable(values []settingValue) {
	columns := []table.Column{
		table.NewColumn("setting", "Setting", 14),
		table.NewColumn("value", "Value", 14),
		table.NewColumn("code", "Native code", 13),
	}

	rows := make([]table.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, table.NewRow(table.RowData{
			"setting": table.NewStyledCell(v.setting, lipgloss.NewStyle().Foreground(styles.Mauve)),
			"value":   v.name,
			"code":    v.code,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(styles.Blue)).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left).BorderForeground(styles.Surface2))

	fmt.Println(t.View())
}

// renderSimple renders the values in simple text format
func renderSimple(values []settingValue) {
	for _, v := range values {
		fmt.Printf("%s\t%s\t%d\n", v.setting, v.name, v.code)
	}
}
