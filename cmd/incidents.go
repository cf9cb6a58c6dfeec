package cmd

import (
	"os"

	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/spf13/cobra"
)

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Fetch recent incidents and print the ones matching the filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = pollLimit()
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		all, err := client.Incidents(cmd.Context(), limit)
		if err != nil {
			return err
		}

		sel := selectionFromFlags(cmd)
		matched := filters.Apply(all, sel)
		utils.Log.Debugf("%d of %d incidents match %+v", len(matched), len(all), sel)

		if ok, err := encode(os.Stdout, format, matched); ok {
			return err
		}
		if len(matched) == 0 {
			printEmpty(os.Stdout, sel)
			return nil
		}
		printIncidents(os.Stdout, matched)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(incidentsCmd)
	addFilterFlags(incidentsCmd)
	addOutputFlag(incidentsCmd)
	incidentsCmd.Flags().Int("limit", 0, "Number of incidents to request (default: poll.limit)")
}
