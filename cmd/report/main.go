package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"storynest/internal/cache"
	"storynest/internal/config"
	"storynest/internal/database"
	"storynest/internal/export"
	"storynest/internal/repository"
	"storynest/internal/service"
)

func main() {
	// Define subcommands
	getCmd := flag.NewFlagSet("get", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	childrenCmd := flag.NewFlagSet("children", flag.ExitOnError)
	addChildCmd := flag.NewFlagSet("add-child", flag.ExitOnError)
	deleteChildCmd := flag.NewFlagSet("delete-child", flag.ExitOnError)
	milestonesCmd := flag.NewFlagSet("milestones", flag.ExitOnError)
	trackCmd := flag.NewFlagSet("track", flag.ExitOnError)

	// Get flags
	getChild := getCmd.Int64("child", 0, "Child ID (required)")
	getPeriod := getCmd.String("period", "week", "Report period: day, week, month or custom")
	getStart := getCmd.String("start", "", "Period start date (YYYY-MM-DD)")
	getEnd := getCmd.String("end", "", "Period end date (YYYY-MM-DD, custom period only)")

	// Export flags
	exportChild := exportCmd.Int64("child", 0, "Child ID (required)")
	exportPeriod := exportCmd.String("period", "week", "Report period: day, week, month or custom")
	exportStart := exportCmd.String("start", "", "Period start date (YYYY-MM-DD)")
	exportEnd := exportCmd.String("end", "", "Period end date (YYYY-MM-DD, custom period only)")
	exportOutput := exportCmd.String("output", "", "Output file path (default: report_YYYYMMDD_HHMMSS.<format>)")
	exportFormat := exportCmd.String("format", "json", "Output format: json or xlsx")

	// Add-child flags
	addName := addChildCmd.String("name", "", "Child name (required)")
	addColor := addChildCmd.String("color", "blue", "Avatar color")

	// Delete-child flags
	deleteChild := deleteChildCmd.Int64("child", 0, "Child ID (required)")

	// Milestones flags
	milestonesChild := milestonesCmd.Int64("child", 0, "Child ID (required)")

	// Track flags
	trackChild := trackCmd.Int64("child", 0, "Child ID (required)")
	trackContentType := trackCmd.String("content-type", "story", "Content type: story or game")
	trackContent := trackCmd.String("content", "", "Content ID")
	trackCompleted := trackCmd.Bool("completed", false, "Mark the content completed")
	trackScore := trackCmd.Int("score", 0, "Score achieved")
	trackMinutes := trackCmd.Int("minutes", 0, "Minutes spent on the content")
	trackSession := trackCmd.Int("session-minutes", 0, "Record a session of this many minutes ending now")
	trackEmoji := trackCmd.String("emoji", "", "Record an emotional feedback emoji")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

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

	switch os.Args[1] {
	case "get":
		getCmd.Parse(os.Args[2:])
		report := queryReport(db, cfg, loc, *getChild, *getPeriod, *getStart, *getEnd)
		printReport(report)

	case "export":
		exportCmd.Parse(os.Args[2:])
		report := queryReport(db, cfg, loc, *exportChild, *exportPeriod, *exportStart, *exportEnd)
		handleExport(report, *exportOutput, *exportFormat)

	case "children":
		childrenCmd.Parse(os.Args[2:])
		handleChildren(db, loc)

	case "add-child":
		addChildCmd.Parse(os.Args[2:])
		if *addName == "" {
			fmt.Println("Error: -name flag is required")
			addChildCmd.PrintDefaults()
			os.Exit(1)
		}
		handleAddChild(db, *addName, *addColor)

	case "delete-child":
		deleteChildCmd.Parse(os.Args[2:])
		if *deleteChild == 0 {
			fmt.Println("Error: -child flag is required")
			deleteChildCmd.PrintDefaults()
			os.Exit(1)
		}
		handleDeleteChild(db, *deleteChild)

	case "milestones":
		milestonesCmd.Parse(os.Args[2:])
		if *milestonesChild == 0 {
			fmt.Println("Error: -child flag is required")
			milestonesCmd.PrintDefaults()
			os.Exit(1)
		}
		handleMilestones(db, loc, *milestonesChild)

	case "track":
		trackCmd.Parse(os.Args[2:])
		if *trackChild == 0 {
			fmt.Println("Error: -child flag is required")
			trackCmd.PrintDefaults()
			os.Exit(1)
		}
		handleTrack(db, loc, *trackChild, *trackContentType, *trackContent,
			*trackCompleted, *trackScore, *trackMinutes, *trackSession, *trackEmoji)

	default:
		printUsage()
		os.Exit(1)
	}
}

// queryReport wires the read path and runs one facade query.
func queryReport(db *database.DB, cfg *config.Config, loc *time.Location, childID int64, period, start, end string) *service.Report {
	if childID == 0 {
		fmt.Println("Error: -child flag is required")
		os.Exit(1)
	}

	events := repository.NewEventRepository(db)
	reports := repository.NewReportRepository(db, loc)
	rewards := repository.NewRewardRepository(db)
	aggregator := service.NewAggregator(events, reports, rewards, loc)
	rollup := service.NewWeeklyRollup(aggregator, reports, loc)

	var reportCache service.ReportCache
	if cfg.RedisAddr != "" {
		c, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ReportCacheTTL)
		if err != nil {
			log.Printf("Report cache unavailable, querying without it: %v", err)
		} else {
			defer c.Close()
			reportCache = c
		}
	}

	facade := service.NewReportQueryFacade(aggregator, rollup, reports, reportCache, loc)

	report, err := facade.GetReport(childID, service.Period(period), parseDate(start, loc), parseDate(end, loc), time.Now())
	if errors.Is(err, service.ErrInvalidRange) {
		log.Fatalf("Invalid report range: %v", err)
	}
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
	if report == nil {
		fmt.Println("No activity recorded for this period")
		os.Exit(0)
	}
	return report
}

func printReport(report *service.Report) {
	fmt.Printf("Report for child %d (%s, %s to %s)\n",
		report.ChildID, report.Period,
		report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"))
	fmt.Printf("  Stories read:   %d\n", report.StoriesRead)
	fmt.Printf("  Games played:   %d\n", report.GamesPlayed)
	fmt.Printf("  Minutes spent:  %d\n", report.TimeSpent)
	fmt.Printf("  Stars earned:   %d\n", report.StarsEarned)
	fmt.Printf("  Current streak: %d\n", report.CurrentStreak)
	fmt.Printf("  Longest streak: %d\n", report.LongestStreak)

	if len(report.EmotionalFeedback) > 0 {
		fmt.Println("  Feedback:")
		for emoji, count := range report.EmotionalFeedback {
			fmt.Printf("    %s x%d\n", emoji, count)
		}
	}

	fmt.Println("  Daily:")
	for i, label := range report.Chart.Labels {
		fmt.Printf("    %-10s stories=%d games=%d minutes=%d stars=%d\n",
			label, report.Chart.Stories[i], report.Chart.Games[i], report.Chart.Time[i], report.Chart.Stars[i])
	}
}

func handleExport(report *service.Report, outputPath, format string) {
	format = strings.ToLower(format)
	if format != "json" && format != "xlsx" {
		log.Fatalf("Unsupported format: %s", format)
	}

	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("report_%s.%s", timestamp, format)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	var err error
	if format == "xlsx" {
		err = export.WriteExcel(report, outputPath)
	} else {
		err = export.WriteJSON(report, outputPath)
	}
	if err != nil {
		log.Fatalf("Failed to export report: %v", err)
	}

	fmt.Printf("Report written to %s\n", outputPath)
}

func handleChildren(db *database.DB, loc *time.Location) {
	children, err := repository.NewChildRepository(db).GetChildrenWithStats()
	if err != nil {
		log.Fatalf("Failed to list children: %v", err)
	}
	if len(children) == 0 {
		fmt.Println("No children registered")
		return
	}

	reports := repository.NewReportRepository(db, loc)
	now := time.Now()
	for i := range children {
		dates, err := reports.ActiveDates(children[i].Child.ID, now, 366)
		if err != nil {
			log.Fatalf("Failed to load activity history: %v", err)
		}
		children[i].CurrentStreak, children[i].LongestStreak = service.ComputeStreaks(dates, now, loc)
	}

	fmt.Printf("%4s  %-20s %-8s %7s %6s %7s %6s %7s %7s\n",
		"ID", "Name", "Color", "Stories", "Games", "Minutes", "Stars", "Streak", "Badges")
	for _, cs := range children {
		fmt.Printf("%4d  %-20s %-8s %7d %6d %7d %6d %7d %7d\n",
			cs.Child.ID, cs.Child.Name, cs.Child.AvatarColor,
			cs.TotalStories, cs.TotalGames, cs.TotalMinutes, cs.TotalStars,
			cs.CurrentStreak, cs.MilestonesWon)
	}
}

func handleAddChild(db *database.DB, name, color string) {
	child, err := repository.NewChildRepository(db).CreateChild(name, color)
	if err != nil {
		log.Fatalf("Failed to create child: %v", err)
	}
	fmt.Printf("Created child %d (%s)\n", child.ID, child.Name)
}

func handleTrack(db *database.DB, loc *time.Location, childID int64, contentType, contentID string, completed bool, score, minutes, sessionMinutes int, emoji string) {
	events := repository.NewEventRepository(db)
	progress := repository.NewProgressRepository(db, loc)
	tracker := service.NewTracker(events, progress, loc)
	now := time.Now()

	switch {
	case emoji != "":
		if err := tracker.RecordEmotionalFeedback(childID, emoji, now); err != nil {
			log.Fatalf("Failed to record feedback: %v", err)
		}
		fmt.Printf("Recorded feedback %s\n", emoji)

	case sessionMinutes > 0:
		id, err := tracker.StartSession(childID, now.Add(-time.Duration(sessionMinutes)*time.Minute))
		if err != nil {
			log.Fatalf("Failed to record session: %v", err)
		}
		if err := tracker.EndSession(id, now); err != nil {
			log.Fatalf("Failed to close session: %v", err)
		}
		fmt.Printf("Recorded a %d minute session\n", sessionMinutes)

	case contentID != "":
		if err := tracker.RecordContentProgress(childID, contentType, contentID, completed, score, minutes, now); err != nil {
			log.Fatalf("Failed to record progress: %v", err)
		}
		fmt.Printf("Recorded progress for %s %s\n", contentType, contentID)

	default:
		fmt.Println("Error: one of -content, -session-minutes or -emoji is required")
		os.Exit(1)
	}
}

func handleDeleteChild(db *database.DB, childID int64) {
	children := repository.NewChildRepository(db)
	child, err := children.GetChildByID(childID)
	if err != nil {
		log.Fatalf("Failed to look up child: %v", err)
	}
	if child == nil {
		log.Fatalf("No child with id %d", childID)
	}
	if err := children.DeleteChild(childID); err != nil {
		log.Fatalf("Failed to delete child: %v", err)
	}
	fmt.Printf("Deleted child %d (%s) and all their reports\n", child.ID, child.Name)
}

func handleMilestones(db *database.DB, loc *time.Location, childID int64) {
	progress := repository.NewProgressRepository(db, loc)
	reports := repository.NewReportRepository(db, loc)
	milestones := repository.NewMilestoneRepository(db)
	rewards := repository.NewRewardRepository(db)

	engine := service.NewMilestoneEngine(progress, reports, milestones, rewards, loc)
	newlyCompleted, err := engine.EvaluateAndAward(childID, time.Now())
	if err != nil {
		log.Fatalf("Failed to evaluate milestones: %v", err)
	}
	for _, m := range newlyCompleted {
		fmt.Printf("Newly completed: %s\n", m.MilestoneID)
	}

	all, err := milestones.ByChild(childID)
	if err != nil {
		log.Fatalf("Failed to list milestones: %v", err)
	}
	for _, m := range all {
		status := fmt.Sprintf("%d/%d", m.Progress, m.TargetValue)
		if m.Completed {
			status = "earned " + m.EarnedAt.Format("2006-01-02")
		}
		fmt.Printf("%-20s %-12s %s\n", m.MilestoneID, m.MilestoneType, status)
	}

	badges, err := rewards.ByChild(childID)
	if err != nil {
		log.Fatalf("Failed to list badges: %v", err)
	}
	if len(badges) > 0 {
		fmt.Println("Badges:")
		for _, b := range badges {
			fmt.Printf("  %-28s %3d stars  %s\n", b.Title, b.Points, b.CreatedAt.Format("2006-01-02"))
		}
	}

	earned, err := milestones.CompletedCount(childID)
	if err != nil {
		log.Fatalf("Failed to count milestones: %v", err)
	}
	total, err := rewards.TotalPoints(childID)
	if err != nil {
		log.Fatalf("Failed to sum stars: %v", err)
	}
	fmt.Printf("Milestones earned: %d, total stars: %d\n", earned, total)
}

func parseDate(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		log.Fatalf("Invalid date %q, expected YYYY-MM-DD", s)
	}
	return t
}

func printUsage() {
	fmt.Println("Usage: report <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  get          Print a report for a child")
	fmt.Println("  export       Write a report to a JSON or Excel file")
	fmt.Println("  children     List children with their all-time totals")
	fmt.Println("  add-child    Register a child profile")
	fmt.Println("  delete-child Remove a child profile and all their reports")
	fmt.Println("  milestones   Evaluate and list a child's milestones")
	fmt.Println("  track        Record a session, content progress or feedback event")
}
