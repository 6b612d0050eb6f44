package setup

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/n8nkit/n8nctl/pkg/cli/format"
)

// printSummary reports what the run actually did. The health outcome is
// reported truthfully: an exhausted verify window is named as such, never
// papered over as success.
func (d *Driver) printSummary() {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, format.Header("Setup summary"))

	rows := pterm.TableData{
		{"SETTING", "VALUE"},
		{"run id", d.RunID},
		{"domain", orDash(d.domain)},
		{"timezone", d.timezone},
		{"tls proxy", strconv.FormatBool(d.opts.ProxyTLS)},
		{"tools service", strconv.FormatBool(d.opts.IncludeTools)},
		{"bot service", strconv.FormatBool(d.opts.IncludeBot)},
		{"env keys added", strconv.Itoa(d.report.Added())},
		{"assets written", strconv.Itoa(len(d.written))},
	}
	if d.snapshot != nil {
		rows = append(rows, []string{"backup snapshot", d.snapshot.Dir})
	}

	table, err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Srender()
	if err == nil {
		fmt.Fprintln(d.out, table)
	}

	warnings := 0
	for _, r := range d.results {
		if r.result.Status == Warning {
			warnings++
		}
	}
	if warnings > 0 {
		fmt.Fprintln(d.out, format.Warning("%d stage(s) finished with warnings", warnings))
	}

	if d.healthOK {
		fmt.Fprintln(d.out, format.Success("n8n is up and answering health checks"))
	} else {
		fmt.Fprintln(d.out, format.Warning("n8n did not answer the health check; inspect `docker compose logs n8n`"))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
