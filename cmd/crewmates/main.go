package main

import (
	"os"
	"strings"

	"crewmates/internal/cli"

	"github.com/google/uuid"
)

// isCrewmateID accepts the two id shapes the backends hand out: SQL serials
// and UUIDs.
func isCrewmateID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.Trim(s, "0123456789") == "" {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// rewriteDirectLookupArgs turns `crewmates <id>` into `crewmates show <id>`.
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first.
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--backend":   true,
		"--url":       true,
		"--db":        true,
		"--timeout":   true,
		"--log-level": true,
		"--format":    true,
	}

	show := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isCrewmateID(argv[i+1]) {
				return show(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			// Unknown flags are skipped without their value so an id is never
			// swallowed.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isCrewmateID(a) {
			return show(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
