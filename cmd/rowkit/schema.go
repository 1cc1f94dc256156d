package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rowkit/internal/row"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the table schema derived from the Band row type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(row.Schema(NewBand()))
		return nil
	},
}
