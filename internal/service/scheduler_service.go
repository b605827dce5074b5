package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronDays maps rotation weekday keys to cron day-of-week tokens.
var cronDays = map[string]string{
	"mon": "MON",
	"tue": "TUE",
	"wed": "WED",
	"thu": "THU",
	"fri": "FRI",
	"sat": "SAT",
	"sun": "SUN",
}

// SchedulerService wraps cron-based triggers: per-rotation reminder
// dispatch, the periodic timeout sweep and the weekly report.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleWeekly registers a job on the given weekday key (mon..sun) at the
// given HH:MM time. Used for both rotation occurrences and the weekly
// report.
func (s *SchedulerService) ScheduleWeekly(dayKey, timeStr string, job func()) (cron.EntryID, error) {
	dow, ok := cronDays[strings.ToLower(dayKey)]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", dayKey)
	}
	hour, minute, err := splitClockTime(timeStr)
	if err != nil {
		return 0, err
	}
	// cron format: second minute hour dom month dow
	spec := fmt.Sprintf("0 %d %d * * %s", minute, hour, dow)
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func splitClockTime(timeStr string) (hour, minute int, err error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", timeStr)
	}
	return hour, minute, nil
}
