package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunInspectFKs connects to Postgres using dsn and prints foreign key
// constraints on the scan tables. Handy when AutoMigrate warnings suggest a
// constraint drift.
func RunInspectFKs(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT rel.relname, ct.conname, pg_get_constraintdef(ct.oid)
		FROM pg_constraint ct
		JOIN pg_class rel ON rel.oid = ct.conrelid
		WHERE ct.contype = 'f' AND rel.relname IN ('uploads', 'passport_scans', 'profiles', 'users')
		ORDER BY rel.relname, ct.conname`)
	if err != nil {
		return fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var table, name, def string
		if err := rows.Scan(&table, &name, &def); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		fmt.Printf("%s: %s %s\n", table, name, def)
	}
	return rows.Err()
}
