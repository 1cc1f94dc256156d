package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rowkit/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every band in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := bands.All(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tGENRE\tFORMED\tSTATUS\tMEMBERS")
		for _, b := range all {
			status := ui.RenderAccent("active")
			if b.Defunct {
				status = ui.RenderAlert("defunct")
			}
			formed := ""
			if b.Formed != 0 {
				formed = fmt.Sprintf("%d", b.Formed)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				b.Name,
				ui.RenderMuted(b.Genre),
				formed,
				status,
				strings.Join(b.Members, ", "),
			)
		}
		return w.Flush()
	},
}
