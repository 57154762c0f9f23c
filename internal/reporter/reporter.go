package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/awake/awake/internal/database"
	"github.com/awake/awake/internal/models"
	"github.com/awake/awake/pkg/utils"

	"github.com/pkg/errors"
)

// Reporter handles report generation over the tick journal
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// SQL does the per-backend counting
	summaries, err := r.repo.GetBackendSummarySince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get backend summary")
	}

	var totalTicks, totalFailures int64
	for i := range summaries {
		if summaries[i].Ticks > 0 {
			ok := summaries[i].Ticks - summaries[i].Failures
			summaries[i].SuccessRate = float64(ok) / float64(summaries[i].Ticks) * 100.0
		}
		totalTicks += summaries[i].Ticks
		totalFailures += summaries[i].Failures
	}

	events, err := r.repo.GetEventsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tick events")
	}
	sessions, active := sessionSpan(events)

	report := &models.Report{
		Period:        *period,
		Backends:      summaries,
		TotalTicks:    totalTicks,
		TotalFailures: totalFailures,
		Sessions:      sessions,
		ActiveSeconds: active,
		GeneratedAt:   r.now(),
	}

	return report, nil
}

// sessionSpan groups events by process and sums the time between each
// process's first and last tick.
func sessionSpan(events []*models.TickEvent) (int64, int64) {
	type span struct{ first, last time.Time }
	spans := make(map[int]*span)

	for _, e := range events {
		s, ok := spans[e.PID]
		if !ok {
			spans[e.PID] = &span{first: e.Timestamp, last: e.Timestamp}
			continue
		}
		if e.Timestamp.Before(s.first) {
			s.first = e.Timestamp
		}
		if e.Timestamp.After(s.last) {
			s.last = e.Timestamp
		}
	}

	var active int64
	for _, s := range spans {
		active += int64(s.last.Sub(s.first) / time.Second)
	}
	return int64(len(spans)), active
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Keepalive Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Sessions: %d, kept awake for %s\n", report.Sessions, utils.FormatSeconds(report.ActiveSeconds))
	fmt.Fprintf(&b, "Ticks: %d (%d failed)\n\n", report.TotalTicks, report.TotalFailures)

	if len(report.Backends) == 0 {
		b.WriteString("No ticks recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %10s %10s\n", "Backend", "Ticks", "Failures", "Success")
	b.WriteString(strings.Repeat("-", 63) + "\n")

	for _, s := range report.Backends {
		fmt.Fprintf(&b, "%-30s %10d %10d %9.1f%%\n",
			truncate(s.Backend, 30),
			s.Ticks,
			s.Failures,
			s.SuccessRate)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
