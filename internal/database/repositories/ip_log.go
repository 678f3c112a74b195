// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package repositories

import (
	"time"

	"greylog/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LogCounts aggregates a set of log rows: the number of rows and the sum of
// their hit counters
type LogCounts struct {
	Rows int64
	Hits int64
}

// IPLogRepository handles all access to the ip_log table
type IPLogRepository interface {
	Exists(key uint64) (bool, error)
	Insert(entry *models.IPLog) error
	IncrementHit(key uint64) error
	PurgeOlderThan(days int) (int64, error)
	CountAll() (*LogCounts, error)
	CountMalicious() (*LogCounts, error)
	Page(offset int, limit int, search string) ([]*models.IPLog, error)
	DeleteOne(key uint64) error
	DeleteMany(keys []uint64) (int64, error)
}

type ipLogRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewIPLogRepository creates a new IP log repository
func NewIPLogRepository(db *gorm.DB, logger *pterm.Logger) IPLogRepository {
	return &ipLogRepo{db: db, logger: logger}
}

// Exists reports whether a log row already exists for the encoded IP key
func (r *ipLogRepo) Exists(key uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.IPLog{}).Where("id = ?", key).Count(&count).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to check IP log existence",
			r.logger.Args("key", key, "error", err))
		return false, err
	}
	return count > 0, nil
}

// Insert writes a new log row. A concurrent request for the same new IP can
// race this insert, so a primary key conflict resolves to an atomic hit
// increment instead of an error.
func (r *ipLogRepo) Insert(entry *models.IPLog) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hits":       gorm.Expr("hits + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(entry).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to insert IP log",
			r.logger.Args("key", entry.ID, "ip", entry.IPAddress, "error", err))
		return err
	}

	r.logger.Trace("Inserted IP log", r.logger.Args("key", entry.ID, "ip", entry.IPAddress))
	return nil
}

// IncrementHit bumps the hit counter and refreshes updated_at for an existing
// row. Returns gorm.ErrRecordNotFound if the key is absent.
func (r *ipLogRepo) IncrementHit(key uint64) error {
	result := r.db.Model(&models.IPLog{}).
		Where("id = ?", key).
		Updates(map[string]interface{}{
			"hits":       gorm.Expr("hits + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		r.logger.WithCaller().Error("Failed to increment IP log hit",
			r.logger.Args("key", key, "error", result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// PurgeOlderThan deletes all rows last updated more than the given number of
// days ago, except those classified malicious. Returns the number of rows
// deleted.
func (r *ipLogRepo) PurgeOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	result := r.db.
		Where("updated_at <= ? AND classification <> ?", cutoff, classificationMalicious).
		Delete(&models.IPLog{})
	if result.Error != nil {
		r.logger.WithCaller().Error("Failed to purge IP logs",
			r.logger.Args("cutoff", cutoff.Format("2006-01-02"), "error", result.Error))
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

const classificationMalicious = "malicious"

// CountAll returns the total row count and hit sum across the whole table
func (r *ipLogRepo) CountAll() (*LogCounts, error) {
	return r.counts(r.db.Model(&models.IPLog{}))
}

// CountMalicious returns the row count and hit sum of malicious rows only
func (r *ipLogRepo) CountMalicious() (*LogCounts, error) {
	return r.counts(r.db.Model(&models.IPLog{}).Where("classification = ?", classificationMalicious))
}

func (r *ipLogRepo) counts(query *gorm.DB) (*LogCounts, error) {
	var counts LogCounts
	err := query.
		Select("COUNT(id) as rows, COALESCE(SUM(hits), 0) as hits").
		Scan(&counts).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to count IP logs", r.logger.Args("error", err))
		return nil, err
	}
	return &counts, nil
}

// Page returns one page of log rows ordered by last update, newest first.
// A non-empty search string filters on a case-insensitive ip_address
// substring match.
func (r *ipLogRepo) Page(offset int, limit int, search string) ([]*models.IPLog, error) {
	var logs []*models.IPLog

	query := r.db.Order("updated_at DESC")
	if search != "" {
		query = query.Where("ip_address LIKE ?", "%"+search+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		r.logger.WithCaller().Error("Failed to page IP logs",
			r.logger.Args("offset", offset, "limit", limit, "error", err))
		return nil, err
	}

	r.logger.Trace("Paged IP logs",
		r.logger.Args("count", len(logs), "offset", offset, "limit", limit, "search", search))
	return logs, nil
}

// DeleteOne removes a single row by key
func (r *ipLogRepo) DeleteOne(key uint64) error {
	if err := r.db.Delete(&models.IPLog{}, "id = ?", key).Error; err != nil {
		r.logger.WithCaller().Error("Failed to delete IP log",
			r.logger.Args("key", key, "error", err))
		return err
	}
	return nil
}

// DeleteMany removes a set of rows by key, returning how many were deleted
func (r *ipLogRepo) DeleteMany(keys []uint64) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	result := r.db.Delete(&models.IPLog{}, "id IN ?", keys)
	if result.Error != nil {
		r.logger.WithCaller().Error("Failed to bulk delete IP logs",
			r.logger.Args("count", len(keys), "error", result.Error))
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
