package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"storynest/internal/models"
)

func TestComputeDailyReportCountsDistinctCompletions(t *testing.T) {
	events := &fakeEventStore{}
	reports := newFakeReportStore()
	rewards := &fakeRewardStore{}
	agg := NewAggregator(events, reports, rewards, time.UTC)

	// The same story completed three times in one day counts once; a story
	// only opened counts in the breakdown but not in stories_read.
	for _, hour := range []int{9, 12, 15} {
		events.events = append(events.events, models.ActivityEvent{
			ChildID:     1,
			EventType:   models.EventTypeContentProgress,
			OccurredAt:  at(2026, time.March, 2, hour, 0),
			ContentType: models.ContentTypeStory,
			ContentID:   "story-dragon",
			Completed:   true,
		})
	}
	events.events = append(events.events,
		models.ActivityEvent{
			ChildID:     1,
			EventType:   models.EventTypeContentProgress,
			OccurredAt:  at(2026, time.March, 2, 16, 0),
			ContentType: models.ContentTypeStory,
			ContentID:   "story-castle",
		},
		models.ActivityEvent{
			ChildID:     1,
			EventType:   models.EventTypeContentProgress,
			OccurredAt:  at(2026, time.March, 2, 17, 0),
			ContentType: models.ContentTypeGame,
			ContentID:   "game-counting",
			Completed:   true,
			Score:       80,
		},
	)

	report, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), at(2026, time.March, 2, 20, 0))
	if err != nil {
		t.Fatalf("ComputeDailyReport() error = %v", err)
	}

	if report.StoriesRead != 1 {
		t.Errorf("StoriesRead = %d, want 1", report.StoriesRead)
	}
	if report.GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, want 1", report.GamesPlayed)
	}
	wantStories := []string{"story-castle", "story-dragon"}
	if !reflect.DeepEqual(report.Breakdown.Stories, wantStories) {
		t.Errorf("Breakdown.Stories = %v, want %v", report.Breakdown.Stories, wantStories)
	}
}

func TestComputeDailyReportSessions(t *testing.T) {
	closedEnd := at(2026, time.March, 2, 9, 30)
	events := &fakeEventStore{
		events: []models.ActivityEvent{
			{
				ChildID:    1,
				EventType:  models.EventTypeSession,
				OccurredAt: at(2026, time.March, 2, 9, 0),
				SessionEnd: &closedEnd,
			},
			{
				// Open session, measured against now
				ChildID:    1,
				EventType:  models.EventTypeSession,
				OccurredAt: at(2026, time.March, 2, 10, 0),
			},
		},
	}
	reports := newFakeReportStore()
	agg := NewAggregator(events, reports, &fakeRewardStore{}, time.UTC)

	report, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), at(2026, time.March, 2, 10, 45))
	if err != nil {
		t.Fatalf("ComputeDailyReport() error = %v", err)
	}

	if report.TimeSpent != 75 {
		t.Errorf("TimeSpent = %d, want 75", report.TimeSpent)
	}
	if len(report.Breakdown.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(report.Breakdown.Sessions))
	}
	if report.Breakdown.Sessions[1].EndedAt != nil {
		t.Error("open session should have nil end time")
	}
}

func TestComputeDailyReportFeedbackAndStars(t *testing.T) {
	events := &fakeEventStore{
		events: []models.ActivityEvent{
			{ChildID: 1, EventType: models.EventTypeEmotionalFeedback, OccurredAt: at(2026, time.March, 2, 9, 0), Emoji: "😀"},
			{ChildID: 1, EventType: models.EventTypeEmotionalFeedback, OccurredAt: at(2026, time.March, 2, 11, 0), Emoji: "😀"},
			{ChildID: 1, EventType: models.EventTypeEmotionalFeedback, OccurredAt: at(2026, time.March, 2, 12, 0), Emoji: "🤩"},
		},
	}
	rewards := &fakeRewardStore{now: at(2026, time.March, 2, 11, 0)}
	rewards.CreateIfAbsent(1, "milestone_first_story", "First Story", 10)
	reports := newFakeReportStore()
	agg := NewAggregator(events, reports, rewards, time.UTC)

	report, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), at(2026, time.March, 2, 20, 0))
	if err != nil {
		t.Fatalf("ComputeDailyReport() error = %v", err)
	}

	want := map[string]int{"😀": 2, "🤩": 1}
	if !reflect.DeepEqual(report.EmotionalFeedback, want) {
		t.Errorf("EmotionalFeedback = %v, want %v", report.EmotionalFeedback, want)
	}
	if report.StarsEarned != 10 {
		t.Errorf("StarsEarned = %d, want 10", report.StarsEarned)
	}
}

func TestComputeDailyReportIdempotent(t *testing.T) {
	events := &fakeEventStore{
		events: []models.ActivityEvent{
			{
				ChildID:     1,
				EventType:   models.EventTypeContentProgress,
				OccurredAt:  at(2026, time.March, 2, 9, 0),
				ContentType: models.ContentTypeStory,
				ContentID:   "story-dragon",
				Completed:   true,
			},
		},
	}
	reports := newFakeReportStore()
	agg := NewAggregator(events, reports, &fakeRewardStore{}, time.UTC)

	now := at(2026, time.March, 3, 8, 0)
	first, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), now)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), now)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if len(reports.daily) != 1 {
		t.Errorf("stored reports = %d, want 1", len(reports.daily))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-aggregation changed the report: %+v vs %+v", first, second)
	}
}

func TestComputeDailyReportStoreFailure(t *testing.T) {
	events := &fakeEventStore{err: errors.New("connection refused")}
	reports := newFakeReportStore()
	agg := NewAggregator(events, reports, &fakeRewardStore{}, time.UTC)

	_, err := agg.ComputeDailyReport(1, day(2026, time.March, 2), at(2026, time.March, 2, 20, 0))
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("error = %v, want ErrDataUnavailable", err)
	}
	if len(reports.daily) != 0 {
		t.Error("nothing should be written when a read fails")
	}
}
