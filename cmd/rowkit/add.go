package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addGenre   string
	addFormed  int64
	addDefunct bool
	addMembers []string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a band to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := &Band{
			Name:    args[0],
			Genre:   addGenre,
			Formed:  addFormed,
			Defunct: addDefunct,
			Members: addMembers,
		}
		if _, err := bands.Create(cmd.Context(), b); err != nil {
			return err
		}
		fmt.Printf("added %s\n", b.Name)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addGenre, "genre", "", "genre label")
	addCmd.Flags().Int64Var(&addFormed, "formed", 0, "year formed")
	addCmd.Flags().BoolVar(&addDefunct, "defunct", false, "band is no longer active")
	addCmd.Flags().StringSliceVar(&addMembers, "member", nil, "member name (repeatable)")
}
