package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"workout-reminder/internal/model"
	"workout-reminder/internal/repository"
)

// Suggestion tiers by completion rate.
const (
	suggestionStrong  = "Strong week. Keep the current rhythm going."
	suggestionImprove = "Good progress. Push your completion rate toward 0.8."
	suggestionRebuild = "Time to rebuild the habit: any 2 completed slots a day counts."
)

// DayStats is the per-calendar-date breakdown of a report.
type DayStats struct {
	Date     string
	Total    int
	Done     int
	Skipped  int
	TimedOut int
}

// TimeSlotStats is the per-time-of-day breakdown of a report.
type TimeSlotStats struct {
	Time  string
	Total int
	Done  int
	Rate  float64
}

// Report is the aggregated view of a recipient's tasks over a date range.
// It is a pure data object; rendering and delivery happen elsewhere.
type Report struct {
	UserID         string
	DateStart      string
	DateEnd        string
	Total          int
	StatusCounts   map[string]int
	CompletionRate float64
	Days           []DayStats
	TimeSlots      []TimeSlotStats
	Streak         int
	BestTime       string
	WorstTime      string
	Suggestion     string
	Tip            string
}

// Summary is the simple status-count view used by the quick stats path.
type Summary struct {
	Counts         map[string]int
	Total          int
	CompletionRate float64
}

// ReportService reconciles the planner's expected slots against stored
// tasks and aggregates them into completion statistics.
type ReportService struct {
	repo    *repository.TaskRepository
	planner *Planner
}

func NewReportService(repo *repository.TaskRepository, planner *Planner) *ReportService {
	return &ReportService{repo: repo, planner: planner}
}

// BuildReport aggregates the inclusive date range for one recipient. A
// planned slot with no task row counts as pending, so slots the reminder
// trigger never fired for still show up in the totals.
func (s *ReportService) BuildReport(ctx context.Context, userID, dateStart, dateEnd string) (*Report, error) {
	planned, err := s.planner.Expand(dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.QueryRange(ctx, userID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	actual := make(map[string]string, len(tasks))
	for _, task := range tasks {
		actual[naturalKey(task.Date, task.Time, task.SlotID)] = task.Status
	}

	days, dayIndex, err := emptyDayStats(dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	statusCounts := make(map[string]int)
	timeIndex := make(map[string]*TimeSlotStats)

	for _, slot := range planned {
		status, ok := actual[naturalKey(slot.Date, slot.Time, slot.SlotID)]
		if !ok {
			status = model.StatusPending
		}
		statusCounts[status]++

		day := dayIndex[slot.Date]
		day.Total++
		ts, ok := timeIndex[slot.Time]
		if !ok {
			ts = &TimeSlotStats{Time: slot.Time}
			timeIndex[slot.Time] = ts
		}
		ts.Total++

		switch status {
		case model.StatusDone:
			day.Done++
			ts.Done++
		case model.StatusSkip:
			day.Skipped++
		case model.StatusTimeout:
			day.TimedOut++
		}
	}

	total := len(planned)
	done := statusCounts[model.StatusDone]

	timeSlots := make([]TimeSlotStats, 0, len(timeIndex))
	for _, ts := range timeIndex {
		ts.Rate = round2(rate(ts.Done, ts.Total))
		timeSlots = append(timeSlots, *ts)
	}
	sort.Slice(timeSlots, func(i, j int) bool { return timeSlots[i].Time < timeSlots[j].Time })

	report := &Report{
		UserID:         userID,
		DateStart:      dateStart,
		DateEnd:        dateEnd,
		Total:          total,
		StatusCounts:   statusCounts,
		CompletionRate: round2(rate(done, total)),
		Days:           days,
		TimeSlots:      timeSlots,
		Streak:         streak(days),
		Suggestion:     suggestion(round2(rate(done, total))),
	}
	report.BestTime, report.WorstTime = bestWorst(timeSlots)
	if report.WorstTime != "" {
		report.Tip = fmt.Sprintf("Weakest slot is %s. Consider moving it or lowering the target.", report.WorstTime)
	}
	return report, nil
}

// StatusSummary returns the plain status counts for the range, without
// reconciling against the plan.
func (s *ReportService) StatusSummary(ctx context.Context, userID, dateStart, dateEnd string) (*Summary, error) {
	counts, err := s.repo.AggregateStatusCounts(ctx, userID, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &Summary{
		Counts:         counts,
		Total:          total,
		CompletionRate: round2(rate(counts[model.StatusDone], total)),
	}, nil
}

func naturalKey(date, timeStr, slotID string) string {
	return date + "|" + timeStr + "|" + slotID
}

// emptyDayStats builds one DayStats per calendar day in the inclusive
// range, ascending, plus an index into the returned slice.
func emptyDayStats(dateStart, dateEnd string) ([]DayStats, map[string]*DayStats, error) {
	start, err := time.Parse(dateLayout, dateStart)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start date %q: %w", dateStart, err)
	}
	end, err := time.Parse(dateLayout, dateEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end date %q: %w", dateEnd, err)
	}

	var days []DayStats
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, DayStats{Date: day.Format(dateLayout)})
	}
	index := make(map[string]*DayStats, len(days))
	for i := range days {
		index[days[i].Date] = &days[i]
	}
	return days, index, nil
}

// streak counts consecutive days with at least one done task, walking
// backward from the end of the range. A range ending on a day with no done
// tasks has streak 0.
func streak(days []DayStats) int {
	count := 0
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Done == 0 {
			break
		}
		count++
	}
	return count
}

// bestWorst picks the times-of-day with the highest and lowest completion
// rates. Ties resolve to the earliest time; both are empty when nothing was
// planned.
func bestWorst(timeSlots []TimeSlotStats) (best, worst string) {
	bestRate, worstRate := -1.0, 2.0
	for _, ts := range timeSlots {
		if ts.Total == 0 {
			continue
		}
		if ts.Rate > bestRate {
			bestRate, best = ts.Rate, ts.Time
		}
		if ts.Rate < worstRate {
			worstRate, worst = ts.Rate, ts.Time
		}
	}
	return best, worst
}

func suggestion(completionRate float64) string {
	switch {
	case completionRate >= 0.8:
		return suggestionStrong
	case completionRate >= 0.5:
		return suggestionImprove
	default:
		return suggestionRebuild
	}
}

func rate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
