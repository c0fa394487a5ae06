// internal/model/goal.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// GoalType は目標の対象範囲
type GoalType string

const (
	GoalTypeIndividual GoalType = "individual"
	GoalTypeTeam       GoalType = "team"
	GoalTypeDepartment GoalType = "department"
)

// GoalStatus は目標の状態。
// deadline と進捗から再計算される導出値であり、独立した真実のソースではない。
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusCancelled GoalStatus = "cancelled"
	GoalStatusOverdue   GoalStatus = "overdue"
)

// Goal はCPD目標。
// GoalType に応じて TargetUserID / TargetTeamID / TargetDepartmentID の
// いずれかひとつだけが設定される。
// CurrentHours / CurrentEntries / Status / CompletedAt は再計算で維持される
// キャッシュ (一覧・絞り込みを安価にするため永続化している)。
type Goal struct {
	GoalID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"goal_id"`
	GoalType           GoalType   `gorm:"type:varchar(20);not null;index" json:"goal_type"`
	TargetUserID       *uuid.UUID `gorm:"type:uuid;index" json:"target_user_id,omitempty"`
	TargetTeamID       *uuid.UUID `gorm:"type:uuid;index" json:"target_team_id,omitempty"`
	TargetDepartmentID *uuid.UUID `gorm:"type:uuid;index" json:"target_department_id,omitempty"`
	SetBy              uuid.UUID  `gorm:"type:uuid;not null;index" json:"set_by"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description,omitempty"`
	TargetHours        float64    `gorm:"not null" json:"target_hours"`
	TargetEntries      *int       `json:"target_entries,omitempty"`
	TargetPoints       *float64   `json:"target_points,omitempty"`
	Deadline           time.Time  `gorm:"type:date;not null;index" json:"deadline"`
	Status             GoalStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CurrentHours       float64    `gorm:"not null;default:0" json:"current_hours"`
	CurrentEntries     int        `gorm:"not null;default:0" json:"current_entries"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Goal) TableName() string {
	return "goals"
}

// IsPersonal は本人が自分自身に設定した個人目標かどうか (データ上の慣習)
func (g *Goal) IsPersonal() bool {
	return g.GoalType == GoalTypeIndividual && g.TargetUserID != nil && *g.TargetUserID == g.SetBy
}

// DaysUntil は日付単位の残り日数を返します。
// deadline 当日は 0、期限超過は負値。時刻成分は無視する。
func DaysUntil(deadline, now time.Time) int {
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n).Hours() / 24)
}

// ProgressResult は目標ひとつ分の進捗計算結果
type ProgressResult struct {
	CurrentHours       float64    `json:"current_hours"`
	CurrentEntries     int        `json:"current_entries"`
	CurrentPoints      float64    `json:"current_points"`
	LastEntryDate      *time.Time `json:"last_entry_date,omitempty"`
	ProgressPercentage float64    `json:"progress_percentage"`
	DaysRemaining      int        `json:"days_remaining"`
}

// ParticipantProgress はチーム/部門目標における参加者ごとの進捗。
// 各メンバーは目標の target_hours 全量に対して独立に測定される
// (人数割りの分担ではない)。
type ParticipantProgress struct {
	UserID             uuid.UUID  `json:"user_id"`
	UserName           string     `json:"user_name"`
	CurrentHours       float64    `json:"current_hours"`
	CurrentEntries     int        `json:"current_entries"`
	ProgressPercentage float64    `json:"progress_percentage"`
	LastEntryDate      *time.Time `json:"last_entry_date,omitempty"`
}

// GoalResponse はクライアントに返す目標情報 (導出値を付加)
type GoalResponse struct {
	Goal
	DaysRemaining int             `json:"days_remaining"`
	IsPersonal    bool            `json:"is_personal"`
	Progress      *ProgressResult `json:"progress,omitempty"`
}

// GoalFilter は目標一覧の絞り込み条件
type GoalFilter struct {
	Status *GoalStatus
}

// 目標作成リクエストDTO
type CreateGoalRequest struct {
	GoalType           string     `json:"goal_type" validate:"required,oneof=individual team department"`
	TargetUserID       *uuid.UUID `json:"target_user_id,omitempty"`
	TargetTeamID       *uuid.UUID `json:"target_team_id,omitempty"`
	TargetDepartmentID *uuid.UUID `json:"target_department_id,omitempty"`
	Title              string     `json:"title" validate:"required,min=1,max=200"`
	Description        string     `json:"description,omitempty" validate:"max=2000"`
	TargetHours        float64    `json:"target_hours" validate:"required,gt=0"`
	TargetEntries      *int       `json:"target_entries,omitempty" validate:"omitempty,gt=0"`
	TargetPoints       *float64   `json:"target_points,omitempty" validate:"omitempty,gt=0"`
	Deadline           string     `json:"deadline" validate:"required,datetime=2006-01-02"`
}

// 目標更新（部分）リクエストDTO。対象 (goal_type/target) は変更不可
type PatchGoalRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	TargetHours   *float64 `json:"target_hours,omitempty" validate:"omitempty,gt=0"`
	TargetEntries *int     `json:"target_entries,omitempty" validate:"omitempty,gt=0"`
	TargetPoints  *float64 `json:"target_points,omitempty" validate:"omitempty,gt=0"`
	Deadline      *string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
