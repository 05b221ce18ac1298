package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"storynest/internal/config"
	"storynest/internal/database"
	"storynest/internal/repository"
	"storynest/internal/scheduler"
	"storynest/internal/service"
)

func main() {
	once := flag.Bool("once", false, "Run one aggregation pass for yesterday and exit")
	flag.Parse()

	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	loc := cfg.Location()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	children := repository.NewChildRepository(db)
	events := repository.NewEventRepository(db)
	reports := repository.NewReportRepository(db, loc)
	progress := repository.NewProgressRepository(db, loc)
	milestones := repository.NewMilestoneRepository(db)
	rewards := repository.NewRewardRepository(db)

	aggregator := service.NewAggregator(events, reports, rewards, loc)
	rollup := service.NewWeeklyRollup(aggregator, reports, loc)
	engine := service.NewMilestoneEngine(progress, reports, milestones, rewards, loc)

	sched := scheduler.New(children, aggregator, rollup, engine, loc, cfg.AggregateAt)

	if *once {
		sched.RunOnce(time.Now())
		return
	}

	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Printf("Aggregation daemon started, nightly run at %s (%s)", cfg.AggregateAt, cfg.ReportTimezone)

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	sched.Stop()
}
