package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"passmrz/models"
	"passmrz/pkg/mrz"
	"passmrz/pkg/ocr"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var (
	verbose     bool
	simulateOCR bool
)

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// preloadState caches existing uploads and scans so the pool touches the DB
// once per new file, not per lookup.
type preloadState struct {
	uploadsByFile map[string]*models.Upload
	scansByFile   map[string]*models.PassportScan
	mu            sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{
		uploadsByFile: make(map[string]*models.Upload, 1024),
		scansByFile:   make(map[string]*models.PassportScan, 1024),
	}
}

func (ps *preloadState) getUpload(name string) (*models.Upload, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	u, ok := ps.uploadsByFile[name]
	return u, ok
}
func (ps *preloadState) putUpload(u *models.Upload) {
	ps.mu.Lock()
	ps.uploadsByFile[u.FileName] = u
	ps.mu.Unlock()
}
func (ps *preloadState) getScan(name string) (*models.PassportScan, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	s, ok := ps.scansByFile[name]
	return s, ok
}
func (ps *preloadState) putScan(s *models.PassportScan) {
	ps.mu.Lock()
	ps.scansByFile[s.FileName] = s
	ps.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: scans a directory of passport images, creates Upload rows, runs the
// MRZ pipeline to create/link PassportScan records, optional watch mode.
func main() {
	dirFlag := flag.String("dir", "public/passports", "directory to scan for passport images")
	profileID := flag.Uint("profile-id", 0, "Profile ID to assign uploads to (if omitted attempts admin profile)")
	dryRun := flag.Bool("dry-run", false, "Skip all DB queries and writes; just list / optionally OCR (see --simulate-ocr)")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	inspectFKs := flag.Bool("inspect-fks", false, "Print FK constraints on the scan tables and exit")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.BoolVar(&simulateOCR, "simulate-ocr", false, "In dry-run: actually run OCR to show detected zones")
	flag.Parse()

	if *inspectFKs {
		if err := RunInspectFKs(os.Getenv("DB_DSN")); err != nil {
			log.Fatalf("inspect fks: %v", err)
		}
		return
	}

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		files := listImageFiles(*dirFlag)
		log.Printf("Found %d candidate files", len(files))
		if simulateOCR {
			for _, f := range files {
				res, err := ocr.ExtractMRZFromImage(filepath.Join(*dirFlag, f))
				if err != nil {
					logV("OCR %s: %v", f, err)
					continue
				}
				sum := mrz.Summarize(res.Fields, mrz.DefaultDateOptions())
				logV("OCR %s number=%s name=%q conf=%.2f", f, sum.Number, sum.FullName, res.Confidence)
			}
		}
		return
	}

	db = mustInitDBFromEnv()
	profile := resolveProfile(*profileID)
	ps := preloadAll(profile)
	log.Printf("Preloaded: uploads=%d scans=%d", len(ps.uploadsByFile), len(ps.scansByFile))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, profile, ps, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, profile, ps, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadAll fetches existing uploads and scans to minimize per-file queries.
func preloadAll(profile models.Profile) *preloadState {
	ps := newPreloadState()
	var ups []models.Upload
	if err := db.Where("profile_id = ?", profile.ID).Find(&ups).Error; err == nil {
		for i := range ups {
			u := ups[i]
			ps.uploadsByFile[u.FileName] = &u
		}
	}
	var scans []models.PassportScan
	if err := db.Where("user_id = ?", profile.UserID).Find(&scans).Error; err == nil {
		for i := range scans {
			s := scans[i]
			ps.scansByFile[s.FileName] = &s
		}
	}
	return ps
}

// resolveProfile finds the profile either by explicit id or by admin username.
func resolveProfile(id uint) models.Profile {
	var p models.Profile
	if id != 0 {
		if err := db.First(&p, id).Error; err != nil {
			log.Fatalf("failed to find profile id %d: %v", id, err)
		}
		return p
	}
	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		log.Fatalf("no --profile-id provided and admin user not found: %v", err)
	}
	if err := db.Where("user_id = ?", admin.ID).First(&p).Error; err != nil {
		log.Fatalf("admin profile not found: %v", err)
	}
	return p
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, profile models.Profile, ps *preloadState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(dir, profile, ps, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".bmp", ".webp":
		return true
	}
	return false
}

// runWorkerPool fans filenames out to processSingleFile workers.
func runWorkerPool(dir string, profile models.Profile, ps *preloadState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, profile, ps)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile executes idempotent logic to create/fill Upload & Scan
// using the preloaded maps and minimal queries.
func processSingleFile(dir, name string, profile models.Profile, ps *preloadState) {
	storePath := filepath.ToSlash(filepath.Join("public", filepath.Base(dir), name))
	filePath := filepath.Join(dir, name)

	if _, ok := ps.getScan(name); ok { // scan already exists
		logV("SKIP scan exists %s", name)
		return
	}
	up, upExists := ps.getUpload(name)
	if upExists && up.ScanID != nil { // already linked
		logV("SKIP upload already linked %s", name)
		return
	}

	if !upExists {
		newUp := models.Upload{ProfileID: profile.ID, FileName: name, StorePath: storePath}
		if ct := mimeFromExt(name); ct != "" {
			newUp.ContentType = ct
		}
		if err := db.Create(&newUp).Error; err != nil {
			if isUniqueConstraintError(err) { // race: someone else created
				if err2 := db.Where("store_path = ?", storePath).First(&newUp).Error; err2 != nil {
					log.Printf("WARN fetch after race failed %s: %v", storePath, err2)
					return
				}
			} else {
				log.Printf("ERROR create upload %s: %v", storePath, err)
				return
			}
		}
		ps.putUpload(&newUp)
		up = &newUp
		log.Printf("NEW upload id=%d file=%s", newUp.ID, name)
	}

	res, err := ocr.ExtractMRZFromImage(filePath)
	if err != nil {
		logV("OCR fail %s: %v", name, err)
		up.Failed = true
		up.FailedReason = err.Error()
		_ = db.Save(up).Error
		return
	}

	// Re-check if a scan was created concurrently
	if _, ok := ps.getScan(name); ok {
		return
	}

	sum := mrz.Summarize(res.Fields, mrz.DefaultDateOptions())
	scan := models.PassportScan{
		UserID:         profile.UserID,
		FileName:       name,
		DocumentType:   sum.DocumentType,
		Country:        sum.Country,
		Number:         sum.Number,
		BirthDate:      sum.BirthDate,
		ExpirationDate: sum.ExpirationDate,
		Nationality:    sum.Nationality,
		Gender:         sum.Gender,
		FullName:       sum.FullName,
		Surname:        sum.Surname,
		MRZLine1:       res.Line1,
		MRZLine2:       res.Line2,
		Confidence:     res.Confidence,
		ScannedAt:      time.Now(),
	}
	if err := db.Create(&scan).Error; err != nil {
		if isUniqueConstraintError(err) { // fetch existing
			var existing models.PassportScan
			if err2 := db.Where("user_id = ? AND file_name = ?", profile.UserID, name).First(&existing).Error; err2 == nil {
				ps.putScan(&existing)
				if up.ScanID == nil {
					up.ScanID = &existing.ID
					_ = db.Save(up).Error
				}
			}
		} else {
			log.Printf("ERROR create scan %s: %v", name, err)
		}
		return
	}
	ps.putScan(&scan)
	if up.ScanID == nil {
		up.ScanID = &scan.ID
		up.Failed = false
		up.FailedReason = ""
		_ = db.Save(up).Error
	}
	log.Printf("SCAN number=%s name=%q conf=%.2f file=%s upload=%d", scan.Number, scan.FullName, scan.Confidence, name, up.ID)
}

func mimeFromExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if m, ok := extMime[ext]; ok {
		return m
	}
	return ""
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
