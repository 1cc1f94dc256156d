package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	setGenre   string
	setFormed  int64
	setDefunct bool
	setMembers []string
)

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Update fields of an existing band",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := bands.All(cmd.Context())
		if err != nil {
			return err
		}
		var target *Band
		for _, b := range all {
			if b.Name == args[0] {
				target = b
				break
			}
		}
		if target == nil {
			return fmt.Errorf("no band named %q", args[0])
		}

		if cmd.Flags().Changed("genre") {
			target.Genre = setGenre
		}
		if cmd.Flags().Changed("formed") {
			target.Formed = setFormed
		}
		if cmd.Flags().Changed("defunct") {
			target.Defunct = setDefunct
		}
		if cmd.Flags().Changed("member") {
			target.Members = setMembers
		}

		if _, err := bands.Update(cmd.Context(), target); err != nil {
			return err
		}
		fmt.Printf("updated %s\n", target.Name)
		return nil
	},
}

func init() {
	setCmd.Flags().StringVar(&setGenre, "genre", "", "genre label")
	setCmd.Flags().Int64Var(&setFormed, "formed", 0, "year formed")
	setCmd.Flags().BoolVar(&setDefunct, "defunct", false, "band is no longer active")
	setCmd.Flags().StringSliceVar(&setMembers, "member", nil, "member name (repeatable, replaces the list)")
}
