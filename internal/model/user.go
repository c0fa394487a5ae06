// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role はユーザーの権限区分
type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RolePartner Role = "partner"
)

// User はCPDを記録するユーザー
type User struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// GORM用のリレーション (JSONには含めない)
	Teams []Team `gorm:"many2many:user_teams;foreignKey:UserID;joinForeignKey:UserID;References:TeamID;joinReferences:TeamID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Actor はリクエスト元の認証済みユーザーを表します。
// セッション等のグローバル状態ではなく、この構造体を各サービス呼び出しに明示的に渡す。
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// CanManage はレビュー・目標設定権限を持つ役割かどうかを返します
func (a Actor) CanManage() bool {
	return a.Role == RoleManager || a.Role == RolePartner
}

type ContextKey string

const (
	ActorKey ContextKey = "actor"
)

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
