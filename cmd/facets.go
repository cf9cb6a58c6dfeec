package cmd

import (
	"os"

	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/spf13/cobra"
)

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the countries, states, types and severities you can filter by",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		incidents, err := client.Incidents(cmd.Context(), pollLimit())
		if err != nil {
			return err
		}

		f := filters.Derive(incidents)
		if ok, err := encode(os.Stdout, format, f); ok {
			return err
		}
		printFacets(os.Stdout, f)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(facetsCmd)
	addOutputFlag(facetsCmd)
}
