package commands

import (
	"fmt"

	"github.com/ravencare/ravencare/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(doctors, specialties, port int) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ║        RavenCare - Medical Triage System          ║\n")
	fmt.Printf("   ║        AI-Powered Multi-Stage Assessment          ║\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ RavenCare Info ────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:     %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:       %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Doctors:     %d across %d specialties\n", green, reset, doctors, specialties)
	if port > 0 {
		fmt.Printf("%s│%s Listening:   http://localhost:%d\n", green, reset, port)
	}
	fmt.Printf("%s└─────────────────────────────────────────────────────┘%s\n", green, reset)

	if port > 0 {
		fmt.Printf("\n%s%s✨ POST /start_triage to begin a run%s\n", yellow, bold, reset)
		fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
	}
}
