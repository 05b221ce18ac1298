package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"storynest/internal/service"
)

// WriteJSON writes a report to path as indented JSON.
func WriteJSON(report *service.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// WriteExcel writes a report to path as a workbook with a summary sheet
// and a day-by-day breakdown sheet.
func WriteExcel(report *service.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := writeDailySheet(f, report); err != nil {
		return err
	}

	// excelize always starts with a default "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *service.Report) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Period", string(report.Period)},
		{"From", report.Start.Format("2006-01-02")},
		{"To", report.End.Format("2006-01-02")},
		{"Stories read", report.StoriesRead},
		{"Games played", report.GamesPlayed},
		{"Minutes spent", report.TimeSpent},
		{"Stars earned", report.StarsEarned},
		{"Current streak", report.CurrentStreak},
		{"Longest streak", report.LongestStreak},
	}

	emojis := make([]string, 0, len(report.EmotionalFeedback))
	for emoji := range report.EmotionalFeedback {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)
	for _, emoji := range emojis {
		rows = append(rows, []interface{}{"Feedback " + emoji, report.EmotionalFeedback[emoji]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address summary cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeDailySheet(f *excelize.File, report *service.Report) error {
	const sheet = "Daily"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create daily sheet: %w", err)
	}

	header := []interface{}{"Date", "Stories", "Games", "Minutes", "Stars"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write daily header: %w", err)
	}

	for i, day := range report.DailyBreakdown {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address daily cell: %w", err)
		}
		row := []interface{}{
			day.Date.Format("2006-01-02"),
			day.StoriesRead,
			day.GamesPlayed,
			day.TimeSpent,
			day.StarsEarned,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write daily row: %w", err)
		}
	}
	return nil
}
