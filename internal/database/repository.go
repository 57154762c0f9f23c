package database

import (
	"time"

	"github.com/awake/awake/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for tick events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new tick event into the database
func (r *Repository) Create(event *models.TickEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert tick event")
	}
	return nil
}

// Record stores the outcome of one keepalive tick
func (r *Repository) Record(event *models.TickEvent) error {
	return r.Create(event)
}

// GetEventsSince retrieves all tick events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.TickEvent, error) {
	var events []*models.TickEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query tick events")
	}

	return events, nil
}

// GetBackendSummarySince returns tick and failure counts per backend since a given time
func (r *Repository) GetBackendSummarySince(since time.Time) ([]models.BackendSummary, error) {
	var summaries []models.BackendSummary

	result := r.db.Model(&models.TickEvent{}).
		Select("backend, COUNT(*) as ticks, SUM(CASE WHEN success THEN 0 ELSE 1 END) as failures").
		Where("timestamp >= ?", since).
		Group("backend").
		Order("ticks DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query backend summary")
	}

	return summaries, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.TickEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// GetLatest retrieves the most recent tick event
func (r *Repository) GetLatest() (*models.TickEvent, error) {
	var event models.TickEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// Clear removes all tick events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM tick_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear tick events")
	}
	return nil
}

// Count returns the number of stored tick events
func (r *Repository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.TickEvent{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count tick events")
	}
	return n, nil
}
