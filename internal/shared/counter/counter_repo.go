package counter

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/shared/connection"

	"gorm.io/gorm"
)

const TypeTimeOffReference = "time_off_reference"

// OrganizationCounter holds the last issued value per organization and
// counter type.
type OrganizationCounter struct {
	OrganizationID string `gorm:"primaryKey"`
	CounterType    string `gorm:"primaryKey"`
	LastValue      int64  `gorm:"not null"`
	UpdatedAt      time.Time
}

func (OrganizationCounter) TableName() string {
	return "organization_counters"
}

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, organizationID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) GetNextValue(ctx context.Context, organizationID string, counterType string) (int64, error) {
	var nextValue int64

	// Atomic upsert-and-increment per organization/type.
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO organization_counters (organization_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (organization_id, counter_type) DO UPDATE
		SET last_value = organization_counters.last_value + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`, organizationID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
