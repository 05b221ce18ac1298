package service

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"storynest/internal/models"
	"storynest/internal/timeutil"
)

// Period selects the reporting window shape.
type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

// maxCustomRangeDays caps custom period queries; anything longer is a data
// export job, not an interactive report.
const maxCustomRangeDays = 366

// ChartSeries is the chart-ready projection of a report: parallel slices,
// one entry per day of the period.
type ChartSeries struct {
	Labels  []string `json:"labels"`
	Stories []int    `json:"stories"`
	Games   []int    `json:"games"`
	Time    []int    `json:"time"`
	Stars   []int    `json:"stars"`
}

// Report is the unified read model every period resolves to.
type Report struct {
	ChildID           int64               `json:"child_id"`
	Period            Period              `json:"period"`
	Start             time.Time           `json:"start"`
	End               time.Time           `json:"end"`
	StoriesRead       int                 `json:"stories_read"`
	GamesPlayed       int                 `json:"games_played"`
	TimeSpent         int                 `json:"time_spent"`
	StarsEarned       int                 `json:"stars_earned"`
	EmotionalFeedback map[string]int      `json:"emotional_feedback"`
	DailyBreakdown    []models.DaySummary `json:"daily_breakdown"`
	CurrentStreak     int                 `json:"current_streak"`
	LongestStreak     int                 `json:"longest_streak"`
	Chart             ChartSeries         `json:"chart"`
}

// ReportCache is the optional read-through cache in front of the facade.
// A miss is (nil, nil); cache failures are never fatal to a query.
type ReportCache interface {
	Get(key string) (*Report, error)
	Set(key string, report *Report) error
}

// ReportQueryFacade is the single entry point parents' report queries go
// through. It resolves any period to the same Report shape, computing
// missing daily aggregates on demand.
type ReportQueryFacade struct {
	aggregator *Aggregator
	rollup     *WeeklyRollup
	reports    ReportStore
	cache      ReportCache // nil disables caching
	loc        *time.Location
}

// NewReportQueryFacade creates a new report query facade. cache may be nil.
func NewReportQueryFacade(aggregator *Aggregator, rollup *WeeklyRollup, reports ReportStore, cache ReportCache, loc *time.Location) *ReportQueryFacade {
	return &ReportQueryFacade{
		aggregator: aggregator,
		rollup:     rollup,
		reports:    reports,
		cache:      cache,
		loc:        loc,
	}
}

// GetReport returns the child's report for the requested period. start and
// end select the window: day and week take start (zero means the period
// containing now), month takes any date within the month, custom requires
// both bounds. A period with zero activity returns (nil, nil) except for
// day, where a live zero report is still a meaningful answer. start after
// end, an unknown period, or an oversized custom range return
// ErrInvalidRange.
func (f *ReportQueryFacade) GetReport(childID int64, period Period, start, end time.Time, now time.Time) (*Report, error) {
	switch period {
	case PeriodDay:
		return f.dayReport(childID, start, now)
	case PeriodWeek:
		return f.weekReport(childID, start, now)
	case PeriodMonth:
		anchor := start
		if anchor.IsZero() {
			anchor = now
		}
		monthStart := timeutil.StartOfMonth(anchor, f.loc)
		monthEnd := timeutil.EndOfMonth(anchor, f.loc)
		return f.cachedRangeReport(childID, PeriodMonth, monthStart, monthEnd, now)
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return nil, ErrInvalidRange
		}
		rangeStart := timeutil.StartOfDay(start, f.loc)
		rangeEnd := timeutil.StartOfDay(end, f.loc)
		if rangeStart.After(rangeEnd) {
			return nil, ErrInvalidRange
		}
		if timeutil.DaysBetween(rangeStart, rangeEnd, f.loc) >= maxCustomRangeDays {
			return nil, ErrInvalidRange
		}
		return f.cachedRangeReport(childID, PeriodCustom, rangeStart, rangeEnd, now)
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidRange, period)
	}
}

// dayReport is always computed live and never cached: it is the one
// period whose numbers move while the child is using the app.
func (f *ReportQueryFacade) dayReport(childID int64, start, now time.Time) (*Report, error) {
	anchor := start
	if anchor.IsZero() {
		anchor = now
	}
	day := timeutil.StartOfDay(anchor, f.loc)

	daily, err := f.aggregator.ComputeDailyReport(childID, day, now)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ChildID:           childID,
		Period:            PeriodDay,
		Start:             day,
		End:               day,
		StoriesRead:       daily.StoriesRead,
		GamesPlayed:       daily.GamesPlayed,
		TimeSpent:         daily.TimeSpent,
		StarsEarned:       daily.StarsEarned,
		EmotionalFeedback: daily.EmotionalFeedback,
		DailyBreakdown: []models.DaySummary{{
			Date:        day,
			StoriesRead: daily.StoriesRead,
			GamesPlayed: daily.GamesPlayed,
			TimeSpent:   daily.TimeSpent,
			StarsEarned: daily.StarsEarned,
		}},
	}
	report.Chart = buildChart(report.DailyBreakdown, PeriodDay, now, f.loc)
	return report, nil
}

func (f *ReportQueryFacade) weekReport(childID int64, start, now time.Time) (*Report, error) {
	anchor := start
	if anchor.IsZero() {
		anchor = now
	}
	weekStart := timeutil.StartOfWeek(anchor, f.loc)

	key := f.cacheKey(childID, PeriodWeek, weekStart, weekStart.AddDate(0, 0, 6))
	if cached := f.cacheGet(key); cached != nil {
		return cached, nil
	}

	weekly, err := f.rollup.ComputeWeeklyReport(childID, weekStart, now)
	if err != nil {
		return nil, err
	}
	if weekly == nil {
		return nil, nil
	}

	report := &Report{
		ChildID:           childID,
		Period:            PeriodWeek,
		Start:             weekly.WeekStart,
		End:               weekly.WeekEnd,
		StoriesRead:       weekly.StoriesRead,
		GamesPlayed:       weekly.GamesPlayed,
		TimeSpent:         weekly.TimeSpent,
		StarsEarned:       weekly.StarsEarned,
		EmotionalFeedback: weekly.EmotionalFeedback,
		DailyBreakdown:    weekly.DailyBreakdown,
		CurrentStreak:     weekly.CurrentStreak,
		LongestStreak:     weekly.LongestStreak,
	}
	report.Chart = buildChart(report.DailyBreakdown, PeriodWeek, now, f.loc)

	f.cacheSet(key, report)
	return report, nil
}

// cachedRangeReport wraps rangeReport with the read-through cache; month
// and custom periods share the same day-by-day composition.
func (f *ReportQueryFacade) cachedRangeReport(childID int64, period Period, start, end time.Time, now time.Time) (*Report, error) {
	key := f.cacheKey(childID, period, start, end)
	if cached := f.cacheGet(key); cached != nil {
		return cached, nil
	}

	report, err := f.rangeReport(childID, period, start, end, now)
	if err != nil || report == nil {
		return report, err
	}

	f.cacheSet(key, report)
	return report, nil
}

// rangeReport composes [start, end] day by day, computing missing daily
// aggregates for days up to today and leaving future days as zero entries.
// All-zero ranges return (nil, nil).
func (f *ReportQueryFacade) rangeReport(childID int64, period Period, start, end time.Time, now time.Time) (*Report, error) {
	today := timeutil.StartOfDay(now, f.loc)

	report := &Report{
		ChildID:           childID,
		Period:            period,
		Start:             start,
		End:               end,
		EmotionalFeedback: map[string]int{},
	}

	hasActivity := false
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.After(today) {
			report.DailyBreakdown = append(report.DailyBreakdown, models.DaySummary{Date: day})
			continue
		}

		daily, err := f.reports.GetDaily(childID, day)
		if err != nil {
			return nil, dataUnavailable(err)
		}
		if daily == nil {
			daily, err = f.aggregator.ComputeDailyReport(childID, day, now)
			if err != nil {
				return nil, err
			}
		}

		if daily.HasActivity() {
			hasActivity = true
		}

		report.StoriesRead += daily.StoriesRead
		report.GamesPlayed += daily.GamesPlayed
		report.TimeSpent += daily.TimeSpent
		report.StarsEarned += daily.StarsEarned
		mergeFeedback(report.EmotionalFeedback, daily.EmotionalFeedback)
		report.DailyBreakdown = append(report.DailyBreakdown, models.DaySummary{
			Date:        day,
			StoriesRead: daily.StoriesRead,
			GamesPlayed: daily.GamesPlayed,
			TimeSpent:   daily.TimeSpent,
			StarsEarned: daily.StarsEarned,
		})
	}

	if !hasActivity {
		return nil, nil
	}

	activeDates, err := f.reports.ActiveDates(childID, end, streakLookbackDays)
	if err != nil {
		return nil, dataUnavailable(err)
	}
	report.CurrentStreak, report.LongestStreak = ComputeStreaks(activeDates, now, f.loc)

	report.Chart = buildChart(report.DailyBreakdown, period, now, f.loc)
	return report, nil
}

func (f *ReportQueryFacade) cacheKey(childID int64, period Period, start, end time.Time) string {
	return fmt.Sprintf("report:%d:%s:%s:%s", childID, period, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (f *ReportQueryFacade) cacheGet(key string) *Report {
	if f.cache == nil {
		return nil
	}
	report, err := f.cache.Get(key)
	if err != nil {
		log.Printf("report cache get failed for %s: %v", key, err)
		return nil
	}
	return report
}

func (f *ReportQueryFacade) cacheSet(key string, report *Report) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(key, report); err != nil {
		log.Printf("report cache set failed for %s: %v", key, err)
	}
}

// buildChart projects day summaries into parallel chart series with
// period-appropriate labels: "Today" for the day view, weekday names for
// weeks, day-of-month numbers for months and custom ranges.
func buildChart(days []models.DaySummary, period Period, now time.Time, loc *time.Location) ChartSeries {
	chart := ChartSeries{
		Labels:  make([]string, 0, len(days)),
		Stories: make([]int, 0, len(days)),
		Games:   make([]int, 0, len(days)),
		Time:    make([]int, 0, len(days)),
		Stars:   make([]int, 0, len(days)),
	}
	for _, d := range days {
		chart.Labels = append(chart.Labels, chartLabel(d.Date, period, now, loc))
		chart.Stories = append(chart.Stories, d.StoriesRead)
		chart.Games = append(chart.Games, d.GamesPlayed)
		chart.Time = append(chart.Time, d.TimeSpent)
		chart.Stars = append(chart.Stars, d.StarsEarned)
	}
	return chart
}

func chartLabel(day time.Time, period Period, now time.Time, loc *time.Location) string {
	switch period {
	case PeriodDay:
		if timeutil.IsToday(day, now, loc) {
			return "Today"
		}
		return day.Format("Jan 2")
	case PeriodWeek:
		return day.Format("Mon")
	case PeriodMonth, PeriodCustom:
		return strconv.Itoa(day.Day())
	default:
		return day.Format("Jan 2")
	}
}
