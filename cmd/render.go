package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/osnit-shield/osnit/internal/utils"
	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/osnit"
	"github.com/osnit-shield/osnit/pkg/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputTable, "Output format. Available: table, json, yaml")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format = strings.ToLower(format); format {
	case outputTable, outputJSON, outputYAML:
		return format, nil
	}
	return "", fmt.Errorf("unknown output format: %s", format)
}

// encode writes v as JSON or YAML. It returns false for the table format.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	}
	return false, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("country", "", "Only incidents whose country contains this text")
	cmd.Flags().String("state", "", "Only incidents whose state contains this text")
	cmd.Flags().String("type", "", "Only incidents of this type")
	cmd.Flags().String("severity", "", "Only incidents of this severity (critical, high, medium, low)")
}

func selectionFromFlags(cmd *cobra.Command) filters.Selection {
	country, _ := cmd.Flags().GetString("country")
	st, _ := cmd.Flags().GetString("state")
	incidentType, _ := cmd.Flags().GetString("type")
	severity, _ := cmd.Flags().GetString("severity")

	return filters.Selection{}.
		WithCountry(country).
		WithState(st).
		WithIncidentType(incidentType).
		WithSeverity(severity)
}

func fmtRisk(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *r)
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printIncidents(w io.Writer, incidents []osnit.Incident) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tRISK\tTYPE\tCOUNTRY\tSTATE\tCOLLECTED\tSUMMARY\t")
	for _, inc := range incidents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			orDash(inc.Severity),
			fmtRisk(inc.RiskScore),
			orDash(inc.IncidentType),
			orDash(inc.Country),
			orDash(inc.State),
			fmtTime(inc.CollectedAt),
			utils.Truncate(utils.FirstNonEmpty(inc.Summary, inc.Content), 60),
		)
	}
	tw.Flush()
}

// printEmpty explains an empty working set: nothing matched the filters, or
// there is nothing to filter yet.
func printEmpty(w io.Writer, sel filters.Selection) {
	if sel.Active() {
		fmt.Fprintln(w, "No incidents match the current filters.")
		return
	}
	fmt.Fprintln(w, "No incidents yet. Run an ingestion with 'osnit ops ingest'.")
}

func printFacets(w io.Writer, f filters.Facets) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "COUNTRIES\t%d\t%s\t\n", len(f.Countries), strings.Join(f.Countries, ", "))
	fmt.Fprintf(tw, "STATES\t%d\t%s\t\n", len(f.States), strings.Join(f.States, ", "))
	fmt.Fprintf(tw, "TYPES\t%d\t%s\t\n", len(f.IncidentTypes), strings.Join(f.IncidentTypes, ", "))
	fmt.Fprintf(tw, "SEVERITIES\t%d\t%s\t\n", len(f.Severities), strings.Join(f.Severities, ", "))
	tw.Flush()
}

func printSummary(w io.Writer, s osnit.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TOTAL\tLAST 24H\tALERTS\tAVG RISK\t")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t\n", s.TotalIncidents, s.IncidentsLast24h, s.TotalAlerts, s.AverageRiskScore)
	tw.Flush()

	if len(s.CategoryBreakdown) == 0 {
		return
	}
	categories := make([]string, 0, len(s.CategoryBreakdown))
	for c := range s.CategoryBreakdown {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\t")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%d\t\n", orDash(c), s.CategoryBreakdown[c])
	}
	tw.Flush()
}

func printTopThreats(w io.Writer, threats []osnit.TopThreat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOP THREAT\tTYPE\tRISK\tCLUSTER\t")
	for _, t := range threats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", orDash(t.ID), orDash(t.IncidentType), fmtRisk(t.RiskScore), orDash(t.ClusterID))
	}
	tw.Flush()
}

func printSeverityBuckets(w io.Writer, buckets []filters.SeverityBucket) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tCOUNT\tTOP RISK\tTOP INCIDENT\t")
	for _, b := range buckets {
		top, risk := "-", "-"
		if b.Top != nil {
			top = utils.Truncate(utils.FirstNonEmpty(b.Top.Summary, b.Top.Content, b.Top.IncidentType), 50)
			risk = fmtRisk(b.Top.RiskScore)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", b.Severity, b.Count, risk, top)
	}
	tw.Flush()
}

func printTrend(w io.Writer, points []osnit.TrendPoint) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUCKET\tCOUNT\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", orDash(p.Bucket), p.Count, strings.Repeat("#", min(p.Count, 40)))
	}
	tw.Flush()
}

func printAlerts(w io.Writer, alerts []osnit.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No active alerts.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tKEYWORD\tSTATE\tSPIKE\tPROBABILITY\tCONFIDENCE\tSOURCES\tCREATED\t")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1fx\t%.0f%%\t%.0f%%\t%d\t%s\t\n",
			orDash(a.AlertType), orDash(a.Keyword), orDash(utils.FirstNonEmpty(a.State, a.Country)),
			a.SpikeRatio, a.ThreatProbability*100, a.Confidence*100, a.SourceCount, fmtTime(a.CreatedAt))
	}
	tw.Flush()
}

func printRiskScores(w io.Writer, scores []osnit.RiskScore) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tAVG RISK\tMAX RISK\tINCIDENTS\t")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t\n", orDash(s.Region), s.AvgRisk, s.MaxRisk, s.TotalIncidents)
	}
	tw.Flush()
}

func printSpikes(w io.Writer, spikes []osnit.Spike) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPREVIOUS\tCURRENT\tGROWTH\t")
	for _, s := range spikes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\t\n", orDash(s.Category), s.PreviousCount, s.CurrentCount, s.GrowthRate*100)
	}
	tw.Flush()
}

func printOpLog(w io.Writer, entries []state.OpLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No operations run yet.")
		return
	}
	for _, e := range entries {
		outcome := "ok"
		if e.Error != "" {
			outcome = "error: " + e.Error
		}
		fmt.Fprintf(w, "%s  %-16s  %s\n", e.Time.Local().Format("15:04:05"), e.Operation, outcome)
	}
}

func printOperationResult(w io.Writer, res osnit.OperationResult) {
	if len(res) == 0 {
		fmt.Fprintln(w, "(empty response)")
		return
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintln(w, res)
		return
	}
	fmt.Fprintln(w, string(b))
}
