package database

import (
	"testing"
	"time"

	"greylog/internal/database/models"
	"greylog/internal/database/repositories"

	"github.com/pterm/pterm"
)

type fakePurgeRepo struct {
	purgeCalls int
	purgeDays  int
	deleted    int64
	err        error
}

func (f *fakePurgeRepo) Exists(key uint64) (bool, error)         { return false, nil }
func (f *fakePurgeRepo) Insert(entry *models.IPLog) error        { return nil }
func (f *fakePurgeRepo) IncrementHit(key uint64) error           { return nil }
func (f *fakePurgeRepo) DeleteOne(key uint64) error              { return nil }
func (f *fakePurgeRepo) DeleteMany(keys []uint64) (int64, error) { return 0, nil }

func (f *fakePurgeRepo) PurgeOlderThan(days int) (int64, error) {
	f.purgeCalls++
	f.purgeDays = days
	return f.deleted, f.err
}

func (f *fakePurgeRepo) CountAll() (*repositories.LogCounts, error) {
	return &repositories.LogCounts{}, nil
}

func (f *fakePurgeRepo) CountMalicious() (*repositories.LogCounts, error) {
	return &repositories.LogCounts{}, nil
}

func (f *fakePurgeRepo) Page(offset int, limit int, search string) ([]*models.IPLog, error) {
	return nil, nil
}

type fakePurgeSettings struct {
	running   bool
	purgeDays int
}

func (f *fakePurgeSettings) Running() bool  { return f.running }
func (f *fakePurgeSettings) PurgeDays() int { return f.purgeDays }

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
}

func TestRunPurgeDisabled(t *testing.T) {
	repo := &fakePurgeRepo{}
	service := NewPurgeService(repo, &fakePurgeSettings{running: false, purgeDays: 7},
		testLogger(), "02:00", time.Hour)

	service.RunPurge()

	if repo.purgeCalls != 0 {
		t.Errorf("expected no purge while disabled, got %d calls", repo.purgeCalls)
	}
}

func TestRunPurgeUsesConfiguredDays(t *testing.T) {
	repo := &fakePurgeRepo{deleted: 5}
	service := NewPurgeService(repo, &fakePurgeSettings{running: true, purgeDays: 21},
		testLogger(), "02:00", time.Hour)

	service.RunPurge()

	if repo.purgeCalls != 1 {
		t.Fatalf("expected 1 purge call, got %d", repo.purgeCalls)
	}
	if repo.purgeDays != 21 {
		t.Errorf("expected purge age 21 days, got %d", repo.purgeDays)
	}

	stats := service.GetStats()
	if stats.RowsDeleted != 5 {
		t.Errorf("expected 5 rows recorded as deleted, got %d", stats.RowsDeleted)
	}
	if stats.LastRunTime.IsZero() {
		t.Error("expected last run time to be recorded")
	}
}

func TestManualPurgeDisabled(t *testing.T) {
	repo := &fakePurgeRepo{}
	service := NewPurgeService(repo, &fakePurgeSettings{running: false, purgeDays: 7},
		testLogger(), "02:00", time.Hour)

	if err := service.ManualPurge(); err == nil {
		t.Error("expected an error triggering a manual purge while disabled")
	}
}

func TestGetStatsNextRun(t *testing.T) {
	repo := &fakePurgeRepo{}
	service := NewPurgeService(repo, &fakePurgeSettings{running: true, purgeDays: 7},
		testLogger(), "02:00", time.Hour)

	stats := service.GetStats()

	if !stats.NextScheduledRun.After(time.Now()) {
		t.Error("expected the next scheduled run to be in the future")
	}
	if stats.NextScheduledRun.Hour() != 2 || stats.NextScheduledRun.Minute() != 0 {
		t.Errorf("expected next run at 02:00, got %s", stats.NextScheduledRun.Format("15:04"))
	}
}
