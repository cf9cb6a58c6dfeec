package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/osnit-shield/osnit/pkg/filters"
	"github.com/osnit-shield/osnit/pkg/osnit"
)

func main() {
	// Usage: go run *.go -api "http://127.0.0.1:8000" -country india -severity high

	apiFlag := flag.String("api", "http://127.0.0.1:8000", "OSNIT Shield backend URL")
	countryFlag := flag.String("country", "", "Country filter")
	severityFlag := flag.String("severity", "", "Severity filter")

	// Parse the command-line flags
	flag.Parse()

	client, err := osnit.NewClient(osnit.Config{BaseURL: *apiFlag})
	if err != nil {
		fmt.Println(err)
		return
	}

	incidents, err := client.Incidents(context.Background(), 200)
	if err != nil {
		fmt.Println(err)
		return
	}

	facets := filters.Derive(incidents)
	fmt.Println("Countries:", facets.Countries)
	fmt.Println("Types:", facets.IncidentTypes)

	sel := filters.Selection{}.WithCountry(*countryFlag).WithSeverity(*severityFlag)
	for _, inc := range filters.Apply(incidents, sel) {
		fmt.Println(inc.ID, inc.Severity, inc.IncidentType, inc.Country, inc.State)
	}
}
