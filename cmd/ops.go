package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/ops"
	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/state"
	"github.com/spf13/cobra"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Operational controls: scheduler, ingestion, AI analysis, database stats",
}

var schedulerCmd = &cobra.Command{
	Use:       "scheduler start|stop|status",
	Short:     "Start, stop or inspect the backend ingestion scheduler",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"start", "stop", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "start":
			return runOperation(cmd, osnit.OpStartScheduler)
		case "stop":
			return runOperation(cmd, osnit.OpStopScheduler)
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		st, err := client.SchedulerStatus(cmd.Context())
		if err != nil {
			return err
		}
		printSchedulerStatus(os.Stdout, st)
		return nil
	},
}

func operationCmd(use, short string, op osnit.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, op)
		},
	}
}

// runOperation sends op and prints the backend's answer. Starting or stopping
// the scheduler re-reads its status afterwards.
func runOperation(cmd *cobra.Command, op osnit.Operation) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	client, err := newOpsClient(cmd)
	if err != nil {
		return err
	}

	store := state.New()
	agg, err := newAggregator(client, store, nil, nil)
	if err != nil {
		return err
	}
	runner := &ops.Runner{
		Backend:   client,
		Store:     store,
		Refresher: agg,
		Log:       utils.Log,
	}

	entry, err := runner.Run(cmd.Context(), op)
	if err != nil {
		return err
	}

	if ok, err := encode(os.Stdout, format, entry); ok {
		return err
	}
	printOperationResult(os.Stdout, entry.Result)
	if st, ok := store.SchedulerStatus(); ok {
		printSchedulerStatus(os.Stdout, st)
	}
	return nil
}

func printSchedulerStatus(w io.Writer, st osnit.SchedulerStatus) {
	if st.Running {
		fmt.Fprintln(w, "Scheduler: running")
	} else {
		fmt.Fprintln(w, "Scheduler: stopped")
	}
}

func init() {
	rootCmd.AddCommand(opsCmd)
	opsCmd.PersistentFlags().StringP("output", "o", outputTable, "Output format. Available: table, json, yaml")

	opsCmd.AddCommand(schedulerCmd)
	opsCmd.AddCommand(operationCmd("ingest", "Run one ingestion pass on the backend", osnit.OpRunIngestion))
	opsCmd.AddCommand(operationCmd("ai", "Run the AI analysis job on the backend", osnit.OpRunAI))
	opsCmd.AddCommand(operationCmd("dbstats", "Print backend database statistics", osnit.OpDBStats))
}
