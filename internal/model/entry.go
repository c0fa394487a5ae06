// internal/model/entry.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus はCPD記録のレビュー状態
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
)

// CPDEntry は記録されたCPD活動。
// レビュー状態は目標進捗の集計には影響しない (pending/approved とも加算対象)。
type CPDEntry struct {
	EntryID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"entry_id"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description,omitempty"`
	Category       string       `gorm:"not null;index" json:"category"`
	DateCompleted  time.Time    `gorm:"type:date;not null;index" json:"date_completed"`
	Hours          float64      `gorm:"not null" json:"hours"`
	Points         *float64     `json:"points,omitempty"`
	ReviewStatus   ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"review_status"`
	ReviewedBy     *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewComments string       `json:"review_comments,omitempty"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (CPDEntry) TableName() string {
	return "cpd_entries"
}

// EntryAggregate は対象ユーザー集合に対するCPD記録の集計結果
type EntryAggregate struct {
	TotalHours    float64    `json:"total_hours"`
	TotalPoints   float64    `json:"total_points"`
	EntryCount    int        `json:"entry_count"`
	LastEntryDate *time.Time `json:"last_entry_date,omitempty"`
}

// CPD記録作成リクエストDTO
type CreateEntryRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=200"`
	Description   string   `json:"description,omitempty" validate:"max=2000"`
	Category      string   `json:"category" validate:"required,min=1,max=100"`
	DateCompleted string   `json:"date_completed" validate:"required,datetime=2006-01-02"`
	Hours         float64  `json:"hours" validate:"required,gt=0"`
	Points        *float64 `json:"points,omitempty" validate:"omitempty,gt=0"`
}

// CPD記録更新（部分）リクエストDTO
type PatchEntryRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	DateCompleted *string  `json:"date_completed,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Hours         *float64 `json:"hours,omitempty" validate:"omitempty,gt=0"`
	Points        *float64 `json:"points,omitempty" validate:"omitempty,gt=0"`
}

// レビュー（承認）リクエストDTO
type ReviewEntryRequest struct {
	Comments string `json:"comments,omitempty" validate:"max=2000"`
}
