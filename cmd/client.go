package cmd

import (
	"github.com/osnit-shield/osnit/internal/metrics"
	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/polling"
	"github.com/osnit-shield/osnit/pkg/state"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newClient(cmd *cobra.Command) (*osnit.Client, error) {
	return clientWithRetries(cmd, 0)
}

// newOpsClient is the only client allowed to retry.
func newOpsClient(cmd *cobra.Command) (*osnit.Client, error) {
	return clientWithRetries(cmd, viper.GetInt("api.retry_max"))
}

func clientWithRetries(cmd *cobra.Command, retryMax int) (*osnit.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	baseURL, _ := cmd.Flags().GetString("api")
	if baseURL == "" {
		baseURL = viper.GetString("api.base_url")
	}

	return osnit.NewClient(osnit.Config{
		BaseURL:  baseURL,
		Variant:  viper.GetString("api.variant"),
		Routes:   viper.GetStringMapString("api.routes"),
		Proxy:    proxy,
		Timeout:  viper.GetDuration("api.timeout"),
		RetryMax: retryMax,
	})
}

// pollLimit falls back to the page size of the configured variant.
func pollLimit() int {
	if n := viper.GetInt("poll.limit"); n > 0 {
		return n
	}
	return osnit.DefaultLimit(viper.GetString("api.variant"))
}

func newAggregator(client *osnit.Client, store *state.Store, m *metrics.Metrics, onCycle func([]polling.Result)) (*polling.Aggregator, error) {
	cfg := polling.Config{
		Endpoints: polling.Endpoints(client, pollLimit(), viper.GetBool("poll.extended")),
		Store:     store,
		Interval:  viper.GetDuration("poll.interval"),
		Log:       utils.Log,
		OnCycle:   onCycle,
	}
	if m != nil {
		cfg.Metrics = m
	}
	return polling.New(cfg)
}
