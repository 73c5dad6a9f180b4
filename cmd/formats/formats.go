// Package formats lists the transaction file formats the dashboard accepts.
package formats

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/spend-dashboard/cmd/root"
	"fjacquet/spend-dashboard/internal/container"

	"github.com/spf13/cobra"
)

var writePath string

// Cmd is the formats command
var Cmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported transaction file formats",
	Long: `List every registered format with its column layout. With --write, the
formats are saved as YAML so they can be edited and loaded back through
format.presets_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.AppContainer, writePath, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&writePath, "write", "w", "", "Save the formats to this YAML file")
}

// Run prints the formats, or saves them when path is set.
func Run(c *container.Container, path string, w io.Writer) error {
	if c == nil {
		return errors.New("application not initialized")
	}
	reg := c.GetFormats()

	if path != "" {
		if err := c.GetStore().SaveFormats(path, reg.List()); err != nil {
			return err
		}
		fmt.Fprintf(w, "Saved %d formats to %s\n", len(reg.List()), path)
		return nil
	}

	for _, f := range reg.List() {
		name := f.Name
		if name == reg.Default() {
			name += " (default)"
		}
		fmt.Fprintln(w, name)
		if f.Description != "" {
			fmt.Fprintf(w, "  %s\n", f.Description)
		}
		fmt.Fprintf(w, "  columns: %s\n", f.Usage())
		if len(f.DefaultExcludedCategories) > 0 {
			fmt.Fprintf(w, "  hidden by default: %s\n", strings.Join(f.DefaultExcludedCategories, ", "))
		}
	}
	return nil
}
