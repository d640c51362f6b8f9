package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory-reconciler/core/reconcile"

	"gorm.io/gorm"
)

// RunRecord is the persisted summary of one reconciliation run.
type RunRecord struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Organization  string    `gorm:"size:255;index" json:"organization"`
	GeneratedAt   time.Time `gorm:"index" json:"generated_at"`
	Complete      bool      `json:"complete"`
	Indeterminate int       `json:"indeterminate"`

	Comparisons []ComparisonRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"comparisons,omitempty"`
	Entries     []EntryRecord      `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
}

// TableName overrides the gorm table name.
func (RunRecord) TableName() string { return "reconcile_runs" }

// ComparisonRecord is the persisted outcome of one comparison.
type ComparisonRecord struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	RunID   string `gorm:"size:36;index" json:"-"`
	Name    string `gorm:"size:128" json:"name"`
	Source  string `gorm:"size:32" json:"source"`
	Against string `gorm:"size:32" json:"against"`
	Status  string `gorm:"size:16" json:"status"`
	Missing int    `json:"missing"`
	Reason  string `gorm:"type:text" json:"reason,omitempty"`
}

// TableName overrides the gorm table name.
func (ComparisonRecord) TableName() string { return "reconcile_comparisons" }

// EntryRecord is one persisted report row.
type EntryRecord struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	RunID        string `gorm:"size:36;index" json:"-"`
	ComputerName string `gorm:"size:255" json:"computer_name"`
	MissingFrom  string `gorm:"size:64" json:"missing_from"`
}

// TableName overrides the gorm table name.
func (EntryRecord) TableName() string { return "reconcile_entries" }

// DatabaseSink records runs as an audit trail.
type DatabaseSink struct {
	db *gorm.DB
}

// NewDatabaseSink creates a sink writing to db.
func NewDatabaseSink(db *gorm.DB) *DatabaseSink {
	return &DatabaseSink{db: db}
}

// Migrate creates or updates the report tables.
func (s *DatabaseSink) Migrate() error {
	return s.db.AutoMigrate(&RunRecord{}, &ComparisonRecord{}, &EntryRecord{})
}

// Write implements Sink.
func (s *DatabaseSink) Write(ctx context.Context, result *reconcile.Result) error {
	if result.RunID == "" {
		return fmt.Errorf("cannot persist a result without a run id")
	}

	record := NewRunRecord(result)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist run %s: %w", result.RunID, err)
	}
	return nil
}

// History returns the most recent runs of an organization, newest first, without their entries.
// The organization matches case-insensitively, like runs themselves.
func (s *DatabaseSink) History(ctx context.Context, organization string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []RunRecord
	err := s.db.WithContext(ctx).
		Preload("Comparisons").
		Where("UPPER(organization) = UPPER(?)", strings.TrimSpace(organization)).
		Order("generated_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return runs, nil
}

// NewRunRecord maps a result onto its persisted form.
func NewRunRecord(result *reconcile.Result) RunRecord {
	summary := result.Summary()
	record := RunRecord{
		ID:            result.RunID,
		Organization:  result.Organization,
		GeneratedAt:   result.GeneratedAt,
		Complete:      result.Complete(),
		Indeterminate: summary.Indeterminate,
	}
	for _, c := range result.Comparisons {
		record.Comparisons = append(record.Comparisons, ComparisonRecord{
			Name:    c.Name,
			Source:  string(c.Source),
			Against: string(c.Against),
			Status:  string(c.Status),
			Missing: len(c.Missing),
			Reason:  c.Reason,
		})
	}
	for _, row := range result.Rows() {
		record.Entries = append(record.Entries, EntryRecord{
			ComputerName: row.ComputerName,
			MissingFrom:  row.MissingFrom,
		})
	}
	return record
}
