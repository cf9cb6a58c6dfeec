package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/polling"
	"github.com/osnit-shield/osnit/pkg/state"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchTabs = []string{"overview", "incidents", "alerts", "risk", "ops"}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend and redraw the dashboard after every refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, _ := cmd.Flags().GetString("tab")
		tab = strings.ToLower(tab)
		if !validTab(tab) {
			return fmt.Errorf("unknown tab: %s. Available: %s", tab, strings.Join(watchTabs, ", "))
		}
		once, _ := cmd.Flags().GetBool("once")

		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		store := state.New()
		sel := selectionFromFlags(cmd)
		store.UpdateSelection(func(filters.Selection) filters.Selection { return sel })

		d := &dashboard{
			out:    os.Stdout,
			store:  store,
			tab:    tab,
			border: viper.GetStringSlice("border_countries"),
			clear:  !once,
		}

		agg, err := newAggregator(client, store, nil, d.draw)
		if err != nil {
			return err
		}

		if once {
			d.draw(agg.RefreshAll(cmd.Context()))
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := agg.Start(); err != nil {
			return err
		}
		utils.Log.Debugf("Watching %s every %s", client.BaseURL(), agg.Interval())
		<-ctx.Done()
		agg.Stop()
		return nil
	},
}

func validTab(tab string) bool {
	for _, t := range watchTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// dashboard renders one tab of the store to a terminal.
type dashboard struct {
	mu     sync.Mutex
	out    io.Writer
	store  *state.Store
	tab    string
	border []string
	clear  bool
}

func (d *dashboard) draw(results []polling.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.clear {
		fmt.Fprint(d.out, "\033[H\033[2J")
	}

	updated := "never"
	if t := d.store.LastUpdated(); !t.IsZero() {
		updated = t.Local().Format(time.TimeOnly)
	}
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	fmt.Fprintf(d.out, "osnit  [%s]  last updated %s", d.tab, updated)
	if failed > 0 {
		fmt.Fprintf(d.out, "  (%d of %d resources stale)", failed, len(results))
	}
	fmt.Fprintln(d.out)
	if sel := d.store.Selection(); sel.Active() {
		fmt.Fprintf(d.out, "filters: country=%q state=%q type=%q severity=%q\n", sel.Country, sel.State, sel.IncidentType, sel.Severity)
	}
	fmt.Fprintln(d.out)

	working := d.store.FilteredIncidents()
	switch d.tab {
	case "overview":
		sum, _ := d.store.Summary()
		printSummary(d.out, sum)
		fmt.Fprintln(d.out)
		printSeverityBuckets(d.out, filters.SeverityBuckets(d.store.Incidents()))
		fmt.Fprintln(d.out)
		printTrend(d.out, d.store.Trend())
	case "incidents":
		if len(working) == 0 {
			printEmpty(d.out, d.store.Selection())
			return
		}
		printIncidents(d.out, working)
	case "alerts":
		printAlerts(d.out, d.store.Alerts())
		if spikes := d.store.Spikes(); len(spikes) > 0 {
			fmt.Fprintln(d.out)
			printSpikes(d.out, spikes)
		}
	case "risk":
		printRiskScores(d.out, d.store.RiskScores())
		if threats := d.store.TopThreats(); len(threats) > 0 {
			fmt.Fprintln(d.out)
			printTopThreats(d.out, threats)
		}
		if located := d.store.MapIncidents(); len(located) > 0 {
			fmt.Fprintf(d.out, "\n%d incidents with coordinates\n", len(located))
		}
		fmt.Fprintln(d.out)
		fmt.Fprintln(d.out, "Border incidents")
		border := d.border
		if len(border) == 0 {
			border = filters.DefaultBorderCountries
		}
		printIncidents(d.out, filters.BorderIncidents(d.store.Incidents(), border))
	case "ops":
		if st, ok := d.store.SchedulerStatus(); ok {
			printSchedulerStatus(d.out, st)
		} else {
			fmt.Fprintln(d.out, "Scheduler: unknown")
		}
		fmt.Fprintln(d.out)
		printOpLog(d.out, d.store.OpLog())
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addFilterFlags(watchCmd)
	watchCmd.Flags().String("tab", "overview", "Tab to show. Available: overview, incidents, alerts, risk, ops")
	watchCmd.Flags().Bool("once", false, "Refresh once, print and exit")
}
