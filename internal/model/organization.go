// internal/model/organization.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization は最上位の組織
type Organization struct {
	OrganizationID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Departments []Department `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Department は組織内の部門
type Department struct {
	DepartmentID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"department_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Teams []Team `gorm:"foreignKey:DepartmentID" json:"-"`
}

func (Department) TableName() string {
	return "departments"
}

// Team は部門内のチーム。ユーザーは user_teams 経由で所属する
type Team struct {
	TeamID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"team_id"`
	DepartmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"department_id"`
	Name         string         `gorm:"not null" json:"name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Team) TableName() string {
	return "teams"
}

// UserTeam はチーム所属の中間テーブル
type UserTeam struct {
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserTeam) TableName() string {
	return "user_teams"
}

// TeamManager はマネージャ/パートナーのチームに対する権限割り当て
type TeamManager struct {
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamManager) TableName() string {
	return "team_managers"
}

// DepartmentManager はマネージャ/パートナーの部門に対する権限割り当て
type DepartmentManager struct {
	DepartmentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"department_id"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (DepartmentManager) TableName() string {
	return "department_managers"
}

// 組織・部門・チーム作成/更新リクエストDTO
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// OrganizationID / DepartmentID はURLパスから設定する (ボディでは受け取らない)
type CreateDepartmentRequest struct {
	OrganizationID uuid.UUID `json:"-"`
	Name           string    `json:"name" validate:"required,min=1,max=200"`
}

type CreateTeamRequest struct {
	DepartmentID uuid.UUID `json:"-"`
	Name         string    `json:"name" validate:"required,min=1,max=200"`
}

type PatchNameRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
}

// メンバー追加・マネージャ割り当てリクエストDTO
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}
