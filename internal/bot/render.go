package bot

import (
	"fmt"
	"html"
	"strings"

	"workout-reminder/internal/config"
	"workout-reminder/internal/model"
	"workout-reminder/internal/service"
)

func renderReminder(slot config.Slot, timeStr string, timeoutMinutes int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ %s workout reminder (<b>%s</b>)\n", timeStr, html.EscapeString(slot.Name)))
	sb.WriteString(fmt.Sprintf("Exercise: %s\n", html.EscapeString(slot.Exercise)))
	sb.WriteString(fmt.Sprintf("Target: %s\n\n", html.EscapeString(slot.Reps)))
	sb.WriteString(fmt.Sprintf("⏳ No check-in within %d minutes counts as missed", timeoutMinutes))
	return sb.String()
}

func renderReport(report *service.Report) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Weekly workout report</b>\n")
	sb.WriteString(fmt.Sprintf("🗓 %s … %s\n\n", report.DateStart, report.DateEnd))
	sb.WriteString(fmt.Sprintf("Completion rate: <b>%.0f%%</b>\n", report.CompletionRate*100))
	sb.WriteString(fmt.Sprintf("Done: %d\n", report.StatusCounts[model.StatusDone]))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", report.StatusCounts[model.StatusSkip]))
	sb.WriteString(fmt.Sprintf("Timed out: %d\n", report.StatusCounts[model.StatusTimeout]))
	sb.WriteString(fmt.Sprintf("Snoozed: %d\n", report.StatusCounts[model.StatusSnoozed]))
	sb.WriteString(fmt.Sprintf("Planned total: %d\n", report.Total))
	sb.WriteString(fmt.Sprintf("🔥 Streak: %d day(s)\n", report.Streak))

	if len(report.TimeSlots) > 0 {
		sb.WriteString("\n<b>By time of day</b>\n")
		for _, ts := range report.TimeSlots {
			sb.WriteString(fmt.Sprintf("%s · %d/%d (%.0f%%)\n", ts.Time, ts.Done, ts.Total, ts.Rate*100))
		}
	}
	if report.BestTime != "" {
		sb.WriteString(fmt.Sprintf("\nBest slot: %s · Worst slot: %s\n", report.BestTime, report.WorstTime))
	}

	sb.WriteString("\n💡 " + report.Suggestion)
	if report.Tip != "" {
		sb.WriteString("\n" + report.Tip)
	}
	return sb.String()
}

func renderSummary(summary *service.Summary) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Status summary</b>\n")
	sb.WriteString(fmt.Sprintf("Completion rate: <b>%.0f%%</b>\n", summary.CompletionRate*100))
	sb.WriteString(fmt.Sprintf("Done: %d\n", summary.Counts[model.StatusDone]))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", summary.Counts[model.StatusSkip]))
	sb.WriteString(fmt.Sprintf("Timed out: %d\n", summary.Counts[model.StatusTimeout]))
	sb.WriteString(fmt.Sprintf("Snoozed: %d\n", summary.Counts[model.StatusSnoozed]))
	sb.WriteString(fmt.Sprintf("Total tasks: %d", summary.Total))
	return sb.String()
}

func renderPlan(planned []service.PlannedSlot, catalog config.Catalog) string {
	if len(planned) == 0 {
		return "🗓 Nothing planned for the coming week."
	}
	var sb strings.Builder
	sb.WriteString("🗓 <b>Upcoming plan</b>\n")
	lastDate := ""
	for _, slot := range planned {
		if slot.Date != lastDate {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", slot.Date))
			lastDate = slot.Date
		}
		name := slot.SlotID
		if def, ok := catalog.Lookup(slot.SlotID); ok {
			name = def.Name
		}
		sb.WriteString(fmt.Sprintf("%s · %s\n", slot.Time, html.EscapeString(name)))
	}
	return strings.TrimSpace(sb.String())
}

const helpText = `ℹ️ <b>Commands</b>
/report - weekly completion report
/stats - quick status counts
/plan - upcoming planned slots
/mark &lt;date&gt; &lt;time&gt; &lt;slot&gt; &lt;status&gt; - record a slot retroactively
/help - this message`
