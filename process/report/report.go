package report

import (
	"fmt"
	"log"
	"os"
	"time"

	"passmrz/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// RunReport prints a month-bounded scan report for username (month in
// YYYY-MM): totals, per-country breakdown, failed-upload count, and
// optionally the matching scan rows.
func RunReport(username, month string, list bool) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var cnt int64
	if err := gdb.Model(&models.PassportScan{}).
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", user.ID, start, end).
		Count(&cnt).Error; err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Printf("Scan report for user=%s month=%s (UTC):\n", user.Username, month)
	fmt.Printf("  scans=%d\n", cnt)

	type byCountry struct {
		Country string
		Total   int64
	}
	var countries []byCountry
	if err := gdb.Model(&models.PassportScan{}).
		Select("country, count(*) as total").
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", user.ID, start, end).
		Group("country").Order("total desc").Scan(&countries).Error; err != nil {
		log.Fatalf("country breakdown failed: %v", err)
	}
	for _, c := range countries {
		fmt.Printf("  %-4s %d\n", c.Country, c.Total)
	}

	var failed int64
	gdb.Model(&models.Upload{}).
		Joins("JOIN profiles ON profiles.id = uploads.profile_id").
		Where("profiles.user_id = ? AND uploads.failed = true", user.ID).
		Count(&failed)
	fmt.Printf("  failed_uploads=%d\n", failed)

	if list {
		var rows []models.PassportScan
		if err := gdb.Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", user.ID, start, end).Order("id").Find(&rows).Error; err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
		for _, r := range rows {
			fmt.Printf("%d|%s|%s|%s|%s|%.2f\n", r.ID, r.FileName, r.Number, r.FullName, r.ScannedAt.Format(time.RFC3339), r.Confidence)
		}
	}
}
