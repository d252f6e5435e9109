/*
Package maintenance holds the startup/background housekeeping around the
ledger database file.

PURPOSE:
  Safety backups of the database file. A backup is a plain byte-for-byte copy
  into a backup directory with a timestamped name; only the newest copies are
  kept. Backups run once at startup and then on a schedule. A failed backup is
  logged and never fatal — losing a backup run must not take the ledger down.

ROTATION:
  Keep the 10 most recent backups; older copies are removed after each run.

SEE ALSO:
  - cmd/ledgerd: Wires the scheduler into the serve command
*/
package maintenance

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tidebook/accounts-engine/logger"
)

// KeepBackups is the rotation depth.
const KeepBackups = 10

const stampLayout = "2006-01-02_15-04-05"

// Backup copies the database file at srcPath into dir and rotates old copies.
// It returns the path of the new backup. A missing source file is not an
// error: there is nothing to back up yet.
func Backup(srcPath, dir string) (string, error) {
	if srcPath == "" {
		return "", nil
	}
	if _, err := os.Stat(srcPath); os.IsNotExist(err) {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	name := fmt.Sprintf("%s_%s.db", base, time.Now().Format(stampLayout))
	dst := filepath.Join(dir, name)

	if err := copyFile(srcPath, dst); err != nil {
		return "", err
	}
	if err := rotate(dir); err != nil {
		return dst, err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy backup: %w", err)
	}
	return out.Sync()
}

// rotate removes the oldest backups beyond KeepBackups.
func rotate(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type backup struct {
		path string
		mod  time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	if len(backups) <= KeepBackups {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].mod.Before(backups[j].mod) })
	for _, b := range backups[:len(backups)-KeepBackups] {
		os.Remove(b.path)
	}
	return nil
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler runs periodic safety backups in the background.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler that backs up dbPath into dir every
// interval. The job never overlaps itself.
func NewScheduler(dbPath, dir string, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("maintenance")
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			path, err := Backup(dbPath, dir)
			if err != nil {
				log.Warn().Err(err).Msg("scheduled backup failed")
				return
			}
			if path != "" {
				log.Info().Str("backup", path).Msg("scheduled backup complete")
			}
		}),
		gocron.WithName("safety-backup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: sched}, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
