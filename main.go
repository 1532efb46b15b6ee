package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"passmrz/pkg/mrz"

	"github.com/gin-gonic/gin"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

// scanOptions controls century resolution for dates on scanned documents.
// Configurable via env because the right pivot policy depends on the
// document population being scanned.
var scanOptions = mrz.DefaultDateOptions()

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)
	scanOptions = loadDateOptions()

	// Support a lightweight migrate command: `./passmrz migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	r := gin.Default()

	setupRoutes(r)

	r.Run(":8081")
}

// loadDateOptions reads the century-resolution config from env:
// MRZ_CENTURY_POLICY = relative (default) | fixed | current,
// MRZ_PIVOT_YEAR = two-digit pivot for the fixed policy (default 30),
// MRZ_STRICT_DATES = true to reject calendar-impossible day/month values.
func loadDateOptions() mrz.DateOptions {
	opts := mrz.DefaultDateOptions()
	switch strings.ToLower(os.Getenv("MRZ_CENTURY_POLICY")) {
	case "fixed":
		opts.Policy = mrz.PivotFixed
	case "current":
		opts.Policy = mrz.AlwaysCurrentCentury
	case "", "relative":
		opts.Policy = mrz.PivotRelative
	}
	if v := os.Getenv("MRZ_PIVOT_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 100 {
			opts.PivotYear = n
		}
	}
	if v := strings.ToLower(os.Getenv("MRZ_STRICT_DATES")); v == "true" || v == "1" || v == "yes" {
		opts.Strict = true
	}
	return opts
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
