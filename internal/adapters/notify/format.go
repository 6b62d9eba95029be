package notify

import (
	"fmt"
	"strings"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

// Subject builds the alert subject line carrying the total change count.
func Subject(result *domain.CheckResult) string {
	return fmt.Sprintf("SurfaceMinder: %d changes tenant=%s", result.Report.Total(), result.Tenant)
}

// FormatReport renders a check result as a deterministic, host-sorted text
// body suitable for mail and CLI output.
func FormatReport(result *domain.CheckResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SurfaceMinder: changes vs baseline (tenant=%s)\n", result.Tenant)
	if len(result.Artifacts) == 0 {
		b.WriteString("Compared artifacts: none\n")
	} else {
		b.WriteString("Compared artifacts:\n")
		for _, a := range result.Artifacts {
			fmt.Fprintf(&b, "  - %s (%s)\n", a.Name, a.Kind)
		}
	}

	for _, host := range result.Report.Hosts() {
		delta := result.Report[host]
		fmt.Fprintf(&b, "\nHost: %s\n", host)
		if len(delta.Added) > 0 {
			b.WriteString("  Added ports:\n")
			for _, e := range delta.Added {
				fmt.Fprintf(&b, "    - %s   state=%s   svc=%s\n", e.Key, e.Value.State, e.Value.Service)
			}
		}
		if len(delta.Removed) > 0 {
			b.WriteString("  Removed ports:\n")
			for _, e := range delta.Removed {
				fmt.Fprintf(&b, "    - %s   state=%s   svc=%s\n", e.Key, e.Value.State, e.Value.Service)
			}
		}
		if len(delta.Changed) > 0 {
			b.WriteString("  Changed ports:\n")
			for _, c := range delta.Changed {
				fmt.Fprintf(&b, "    - %s   %s/%s  ->  %s/%s\n", c.Key, c.Old.State, c.Old.Service, c.New.State, c.New.Service)
			}
		}
	}

	return b.String()
}
