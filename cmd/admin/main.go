package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"roundtable/backend/internal/models"
)

// Admin CLI for the archived data in PostgreSQL. Operates on the
// archive tables directly, so it works without the HTTP service.
func main() {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: report <room_code> | reports | purge-report <room_code> | interview <session_id>")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "report":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin report <room_code>")
			os.Exit(1)
		}
		if err := printReport(db, os.Args[2]); err != nil {
			log.Fatalf("Error fetching report: %v", err)
		}
	case "reports":
		if err := listReports(db); err != nil {
			log.Fatalf("Error listing reports: %v", err)
		}
	case "purge-report":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin purge-report <room_code>")
			os.Exit(1)
		}
		if err := purgeReport(db, os.Args[2]); err != nil {
			log.Fatalf("Error purging report: %v", err)
		}
		fmt.Printf("Report for room %s has been purged.\n", os.Args[2])
	case "interview":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin interview <session_id>")
			os.Exit(1)
		}
		if err := printInterview(db, os.Args[2]); err != nil {
			log.Fatalf("Error fetching interview: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func printReport(db *gorm.DB, roomCode string) error {
	var rec models.ReportRecord
	if err := db.Where("room_code = ?", roomCode).First(&rec).Error; err != nil {
		return err
	}

	// Pretty-print the archived payload.
	var payload any
	if err := json.Unmarshal([]byte(rec.Payload), &payload); err != nil {
		return err
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func listReports(db *gorm.DB) error {
	var recs []models.ReportRecord
	if err := db.Order("created_at desc").Find(&recs).Error; err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Printf("%s\t%s\t%s\t%d rounds\t%s\n",
			rec.RoomCode, rec.Mode, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Rounds, rec.Topic)
	}
	return nil
}

func purgeReport(db *gorm.DB, roomCode string) error {
	res := db.Where("room_code = ?", roomCode).Delete(&models.ReportRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no report found for room %s", roomCode)
	}
	return nil
}

func printInterview(db *gorm.DB, sessionID string) error {
	var rec models.InterviewRecord
	if err := db.Where("session_id = ?", sessionID).First(&rec).Error; err != nil {
		return err
	}

	fmt.Printf("Session %s — %s (%s, %s), %d questions\n\n",
		rec.SessionID, rec.Role, rec.Focus, rec.Difficulty, rec.QuestionCount)

	var transcript []models.InterviewMessage
	if err := json.Unmarshal([]byte(rec.Transcript), &transcript); err != nil {
		return err
	}
	for _, m := range transcript {
		fmt.Printf("[%s] %s\n", m.Speaker, m.Text)
	}
	return nil
}
