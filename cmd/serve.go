package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/osnit-shield/osnit/internal/metrics"
	"github.com/osnit-shield/osnit/internal/server"
	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/ops"
	"github.com/osnit-shield/osnit/pkg/state"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the backend in the background and serve the dashboard state as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = viper.GetString("server.listen")
		}

		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		opsClient, err := newOpsClient(cmd)
		if err != nil {
			return err
		}

		store := state.New()
		m := metrics.New()
		agg, err := newAggregator(client, store, m, nil)
		if err != nil {
			return err
		}
		runner := &ops.Runner{
			Backend:   opsClient,
			Store:     store,
			Refresher: agg,
			Metrics:   m,
			Log:       utils.Log,
		}

		srv := server.New(store, agg, runner, m)
		srv.BorderCountries = viper.GetStringSlice("border_countries")
		srv.Username = viper.GetString("server.username")
		srv.Password = viper.GetString("server.password")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := agg.Start(); err != nil {
			return err
		}
		defer agg.Stop()

		utils.Log.Infof("Polling %s every %s", client.BaseURL(), agg.Interval())
		return srv.Start(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default: server.listen)")
}
