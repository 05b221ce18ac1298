package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"storynest/internal/service"
	"storynest/internal/timeutil"
)

// ChildSource tells the nightly run which children had activity to
// aggregate.
type ChildSource interface {
	ActiveChildIDs(since time.Time) ([]int64, error)
}

// Scheduler runs the nightly aggregation pipeline: finalize yesterday's
// daily reports, roll the affected week up and evaluate milestones for
// every child who was active.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	children   ChildSource
	aggregator *service.Aggregator
	rollup     *service.WeeklyRollup
	milestones *service.MilestoneEngine
	loc        *time.Location
	at         string // "HH:MM" in loc
}

// New creates a new scheduler instance. at is the local wall-clock time of
// the nightly run, e.g. "00:30".
func New(children ChildSource, aggregator *service.Aggregator, rollup *service.WeeklyRollup, milestones *service.MilestoneEngine, loc *time.Location, at string) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(loc),
		children:   children,
		aggregator: aggregator,
		rollup:     rollup,
		milestones: milestones,
		loc:        loc,
		at:         at,
	}
}

// Start begins running the nightly job without blocking
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.runNightly); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runNightly() {
	s.RunOnce(time.Now())
}

// RunOnce executes one aggregation pass for the day before now. A failure
// for one child is logged and does not stop the others; the next nightly
// run recomputes everything it reaches, so a missed child heals itself.
func (s *Scheduler) RunOnce(now time.Time) {
	day := timeutil.StartOfDay(now, s.loc).AddDate(0, 0, -1)

	ids, err := s.children.ActiveChildIDs(day)
	if err != nil {
		log.Printf("nightly aggregation: failed to list active children: %v", err)
		return
	}
	log.Printf("nightly aggregation: %d children active on %s", len(ids), day.Format("2006-01-02"))

	for _, childID := range ids {
		if _, err := s.aggregator.ComputeDailyReport(childID, day, now); err != nil {
			log.Printf("nightly aggregation: daily report for child %d failed: %v", childID, err)
			continue
		}

		if _, err := s.rollup.ComputeWeeklyReport(childID, day, now); err != nil {
			log.Printf("nightly aggregation: weekly rollup for child %d failed: %v", childID, err)
			continue
		}

		completed, err := s.milestones.EvaluateAndAward(childID, now)
		if err != nil {
			log.Printf("nightly aggregation: milestone evaluation for child %d failed: %v", childID, err)
			continue
		}
		for _, m := range completed {
			log.Printf("nightly aggregation: child %d completed milestone %s", childID, m.MilestoneID)
		}
	}
}
