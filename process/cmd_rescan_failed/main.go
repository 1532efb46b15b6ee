package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"passmrz/pkg/mrz"
	"passmrz/pkg/ocr"

	_ "github.com/lib/pq"
)

// Re-runs the MRZ pipeline for uploads previously marked failed, e.g. after
// a Tesseract upgrade or better trained data.
func main() {
	profile := flag.String("profile", "admin", "username whose failed uploads to retry")
	dir := flag.String("dir", "uploads/passports", "base dir for files")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT u.id, u.file_name, p.user_id
		FROM uploads u
		JOIN profiles p ON p.id = u.profile_id
		JOIN users usr ON usr.id = p.user_id
		WHERE usr.username = $1 AND u.failed = true`, *profile)
	if err != nil {
		log.Fatalf("query failed uploads: %v", err)
	}
	type job struct {
		uploadID int64
		fileName string
		userID   int64
	}
	var jobs []job
	for rows.Next() {
		var j job
		if err := rows.Scan(&j.uploadID, &j.fileName, &j.userID); err != nil {
			log.Fatalf("scan row: %v", err)
		}
		jobs = append(jobs, j)
	}
	rows.Close()
	log.Printf("retrying %d failed uploads for %s", len(jobs), *profile)

	retried, fixed := 0, 0
	for _, j := range jobs {
		retried++
		res, err := ocr.ExtractMRZFromImage(filepath.Join(*dir, j.fileName))
		if err != nil {
			log.Printf("still failing %s: %v", j.fileName, err)
			continue
		}
		sum := mrz.Summarize(res.Fields, mrz.DefaultDateOptions())
		var scanID int64
		err = db.QueryRow(`INSERT INTO passport_scans
			(created_at, updated_at, user_id, file_name, document_type, country, number,
			 birth_date, expiration_date, nationality, gender, full_name, surname,
			 mrz_line1, mrz_line2, confidence, scanned_at)
			VALUES (now(), now(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
			ON CONFLICT (user_id, file_name) DO UPDATE SET
			 updated_at = now(), document_type = EXCLUDED.document_type,
			 country = EXCLUDED.country, number = EXCLUDED.number,
			 birth_date = EXCLUDED.birth_date, expiration_date = EXCLUDED.expiration_date,
			 nationality = EXCLUDED.nationality, gender = EXCLUDED.gender,
			 full_name = EXCLUDED.full_name, surname = EXCLUDED.surname,
			 mrz_line1 = EXCLUDED.mrz_line1, mrz_line2 = EXCLUDED.mrz_line2,
			 confidence = EXCLUDED.confidence, scanned_at = now()
			RETURNING id`,
			j.userID, j.fileName, sum.DocumentType, sum.Country, sum.Number,
			sum.BirthDate, sum.ExpirationDate, sum.Nationality, sum.Gender,
			sum.FullName, sum.Surname, res.Line1, res.Line2, res.Confidence).Scan(&scanID)
		if err != nil {
			log.Printf("upsert scan %s: %v", j.fileName, err)
			continue
		}
		if _, err := db.Exec(`UPDATE uploads SET scan_id = $1, failed = false, failed_reason = '' WHERE id = $2`, scanID, j.uploadID); err != nil {
			log.Printf("relink upload %d: %v", j.uploadID, err)
			continue
		}
		fixed++
		log.Printf("recovered %s number=%s conf=%.2f", j.fileName, sum.Number, res.Confidence)
	}
	fmt.Printf("retried=%d recovered=%d\n", retried, fixed)
}
