package backup

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the nightly backup at 03:00.
const DefaultSchedule = "0 3 * * *"

// ValidateSchedule parses a standard 5-field cron expression and rejects
// malformed ones before anything is written to the crontab.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// CronLine builds the crontab entry for the backup script.
func CronLine(schedule, scriptPath string) string {
	return fmt.Sprintf("%s %s >/dev/null 2>&1", schedule, scriptPath)
}

// InstallCron appends the backup line to the root crontab, replacing any
// previous line referencing the same script.
func InstallCron(schedule, scriptPath string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	current, err := exec.Command("crontab", "-l").Output()
	if err != nil {
		// No crontab yet is fine; start from empty.
		current = nil
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(current)), "\n") {
		if line == "" || strings.Contains(line, scriptPath) {
			continue
		}
		lines = append(lines, line)
	}
	lines = append(lines, CronLine(schedule, scriptPath))

	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("install crontab: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
