package service

import (
	"time"

	"storynest/internal/models"
	"storynest/internal/timeutil"
)

// ChildStats is the live aggregate snapshot milestone rules are evaluated
// against. It is gathered once per evaluation call; a Progress update that
// lands mid-call is picked up by the next run.
type ChildStats struct {
	StoriesCompleted int // distinct completed story content ids
	GamesCompleted   int // distinct completed game content ids
	TotalMinutes     int // total time_spent across all content
	CurrentStreak    int // live any-activity streak in days
}

// MilestoneDef is one entry of the fixed milestone catalog. Each entry
// carries its own progress rule as a function over ChildStats rather than
// scattering per-type conditionals through the engine.
type MilestoneDef struct {
	ID     string
	Type   string
	Target int
	Title  string
	Points int
	Value  func(ChildStats) int
}

// BadgeID returns the deterministic badge identifier for this entry, so a
// retried evaluation can never double-award.
func (d MilestoneDef) BadgeID() string {
	return "milestone_" + d.ID
}

// Catalog returns the fixed milestone definitions. Loaded once at process
// start and never mutated at runtime; changing an entry means shipping a
// new catalog version.
func Catalog() []MilestoneDef {
	stories := func(s ChildStats) int { return s.StoriesCompleted }
	games := func(s ChildStats) int { return s.GamesCompleted }
	minutes := func(s ChildStats) int { return s.TotalMinutes }
	streak := func(s ChildStats) int { return s.CurrentStreak }

	return []MilestoneDef{
		{ID: "first_story", Type: models.MilestoneTypeCompletion, Target: 1, Title: "First Story", Points: 10, Value: stories},
		{ID: "read_5_stories", Type: models.MilestoneTypeCompletion, Target: 5, Title: "Bookworm", Points: 25, Value: stories},
		{ID: "read_25_stories", Type: models.MilestoneTypeCompletion, Target: 25, Title: "Story Master", Points: 100, Value: stories},
		{ID: "play_10_games", Type: models.MilestoneTypeCompletion, Target: 10, Title: "Game Explorer", Points: 50, Value: games},
		{ID: "time_300_minutes", Type: models.MilestoneTypeEngagement, Target: 300, Title: "Five Hours In", Points: 50, Value: minutes},
		{ID: "time_1000_minutes", Type: models.MilestoneTypeEngagement, Target: 1000, Title: "Dedicated Learner", Points: 150, Value: minutes},
		{ID: "streak_3", Type: models.MilestoneTypeStreak, Target: 3, Title: "Three in a Row", Points: 25, Value: streak},
		{ID: "streak_7", Type: models.MilestoneTypeStreak, Target: 7, Title: "Week of Wonder", Points: 75, Value: streak},
		{ID: "streak_30", Type: models.MilestoneTypeStreak, Target: 30, Title: "Monthly Marvel", Points: 300, Value: streak},
	}
}

// MilestoneEngine evaluates a child's cumulative statistics against the
// milestone catalog, creating and completing milestone rows and issuing
// the matching rewards exactly once.
type MilestoneEngine struct {
	progress   ProgressStore
	reports    ReportStore
	milestones MilestoneStore
	rewards    RewardStore
	catalog    []MilestoneDef
	loc        *time.Location
}

// NewMilestoneEngine creates a new milestone engine with the fixed catalog
func NewMilestoneEngine(progress ProgressStore, reports ReportStore, milestones MilestoneStore, rewards RewardStore, loc *time.Location) *MilestoneEngine {
	return &MilestoneEngine{
		progress:   progress,
		reports:    reports,
		milestones: milestones,
		rewards:    rewards,
		catalog:    Catalog(),
		loc:        loc,
	}
}

// EvaluateAndAward recomputes every catalog milestone for the child and
// returns the milestones that transitioned to completed during this call.
// Missing rows are created lazily; completion and engagement milestones
// whose live value already meets the target complete immediately (a
// returning user "catches up"), while streak milestones always start at
// zero and only count days tracked after their creation. Calling twice
// with no new activity in between yields no new completions or rewards.
func (e *MilestoneEngine) EvaluateAndAward(childID int64, now time.Time) ([]models.Milestone, error) {
	stats, err := e.gatherStats(childID, now)
	if err != nil {
		return nil, err
	}

	existing, err := e.milestones.ByChild(childID)
	if err != nil {
		return nil, dataUnavailable(err)
	}
	byID := make(map[string]*models.Milestone, len(existing))
	for i := range existing {
		byID[existing[i].MilestoneID] = &existing[i]
	}

	var completed []models.Milestone
	for _, def := range e.catalog {
		m, ok := byID[def.ID]
		if !ok {
			created, err := e.createMilestone(childID, def, stats, now)
			if err != nil {
				return nil, err
			}
			if created.Completed {
				completed = append(completed, *created)
			}
			continue
		}

		if m.Completed {
			// Completed milestones are immutable.
			continue
		}

		value := def.Value(stats)
		if def.Type == models.MilestoneTypeStreak {
			value = e.capStreakValue(value, m.CreatedAt, now)
		}
		if value > m.Progress {
			m.Progress = value
		}

		if m.Progress >= def.Target {
			m.Completed = true
			earnedAt := now
			m.EarnedAt = &earnedAt
			if err := e.award(childID, def); err != nil {
				return nil, err
			}
			completed = append(completed, *m)
		}

		if err := e.milestones.Update(m); err != nil {
			return nil, dataUnavailable(err)
		}
	}

	return completed, nil
}

// createMilestone inserts the row for a catalog entry the child does not
// have yet, retroactively completing completion/engagement entries the
// child already qualifies for.
func (e *MilestoneEngine) createMilestone(childID int64, def MilestoneDef, stats ChildStats, now time.Time) (*models.Milestone, error) {
	m := &models.Milestone{
		ChildID:       childID,
		MilestoneID:   def.ID,
		MilestoneType: def.Type,
		TargetValue:   def.Target,
		CreatedAt:     now,
	}

	if def.Type != models.MilestoneTypeStreak {
		m.Progress = def.Value(stats)
		if m.Progress >= def.Target {
			m.Completed = true
			earnedAt := now
			m.EarnedAt = &earnedAt
		}
	}

	if err := e.milestones.Create(m); err != nil {
		return nil, dataUnavailable(err)
	}

	if m.Completed {
		if err := e.award(childID, def); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// award issues the milestone's badge. The storage layer enforces the
// (child_id, badge_id) uniqueness, so a duplicate is silently treated as
// already awarded rather than surfaced as an error.
func (e *MilestoneEngine) award(childID int64, def MilestoneDef) error {
	_, err := e.rewards.CreateIfAbsent(childID, def.BadgeID(), def.Title, def.Points)
	if err != nil {
		return dataUnavailable(err)
	}
	return nil
}

// capStreakValue limits a streak milestone's progress to days that could
// have been tracked since the milestone row was created. A pre-existing
// streak never retroactively completes a streak milestone.
func (e *MilestoneEngine) capStreakValue(live int, createdAt, now time.Time) int {
	trackedDays := timeutil.DaysBetween(createdAt, now, e.loc) + 1
	if live > trackedDays {
		return trackedDays
	}
	return live
}

// gatherStats builds the live snapshot rules are evaluated against.
func (e *MilestoneEngine) gatherStats(childID int64, now time.Time) (ChildStats, error) {
	var stats ChildStats

	rows, err := e.progress.ByChild(childID)
	if err != nil {
		return stats, dataUnavailable(err)
	}
	for _, p := range rows {
		stats.TotalMinutes += p.TimeSpent
		if !p.Completed {
			continue
		}
		switch p.ContentType {
		case models.ContentTypeStory:
			stats.StoriesCompleted++
		case models.ContentTypeGame:
			stats.GamesCompleted++
		}
	}

	today := timeutil.StartOfDay(now, e.loc)
	activeDates, err := e.reports.ActiveDates(childID, today, streakLookbackDays)
	if err != nil {
		return stats, dataUnavailable(err)
	}
	stats.CurrentStreak, _ = ComputeStreaks(activeDates, now, e.loc)

	return stats, nil
}
