//go:generate mockery --name GoalRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalRepository はCPD目標の永続化と、進捗再計算・一覧取得のための検索を担うリポジトリ
type GoalRepository interface {
	Create(ctx context.Context, tx *gorm.DB, goal *model.Goal) error
	FindByID(ctx context.Context, db *gorm.DB, goalID uuid.UUID) (*model.Goal, error)
	Update(ctx context.Context, tx *gorm.DB, goalID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, goalID uuid.UUID) error
	// FindActiveTargetingUser は指定ユーザーの記録変更で進捗が動きうる目標 (active/overdue) を返す
	FindActiveTargetingUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, teamIDs, departmentIDs []uuid.UUID) ([]*model.Goal, error)
	// FindVisibleToActor は操作者が閲覧可能な目標を期限昇順で返す。
	// teamIDs / departmentIDs には所属と管理権限の両方を含めて渡す
	FindVisibleToActor(ctx context.Context, db *gorm.DB, actor model.Actor, teamIDs, departmentIDs []uuid.UUID, filter model.GoalFilter) ([]*model.Goal, error)
}

type gormGoalRepository struct{}

func NewGormGoalRepository() GoalRepository {
	return &gormGoalRepository{}
}

func (r *gormGoalRepository) Create(ctx context.Context, tx *gorm.DB, goal *model.Goal) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(goal)
	if result.Error != nil {
		logger.Error("Error creating goal in DB",
			"error", result.Error,
			"goal_type", string(goal.GoalType),
			"title", goal.Title,
		)
		return fmt.Errorf("gormGoalRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormGoalRepository) FindByID(ctx context.Context, db *gorm.DB, goalID uuid.UUID) (*model.Goal, error) {
	var goal model.Goal
	result := db.WithContext(ctx).Where("goal_id = ?", goalID).First(&goal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormGoalRepository.FindByID: %w", result.Error)
	}
	return &goal, nil
}

func (r *gormGoalRepository) Update(ctx context.Context, tx *gorm.DB, goalID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Goal{}).Where("goal_id = ?", goalID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormGoalRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormGoalRepository) Delete(ctx context.Context, tx *gorm.DB, goalID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("goal_id = ?", goalID).Delete(&model.Goal{})
	if result.Error != nil {
		return fmt.Errorf("gormGoalRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormGoalRepository) FindActiveTargetingUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, teamIDs, departmentIDs []uuid.UUID) ([]*model.Goal, error) {
	// completed / cancelled は記録の変更では動かさない
	target := db.Where("target_user_id = ?", userID)
	if len(teamIDs) > 0 {
		target = target.Or("target_team_id IN ?", teamIDs)
	}
	if len(departmentIDs) > 0 {
		target = target.Or("target_department_id IN ?", departmentIDs)
	}

	var goals []*model.Goal
	result := db.WithContext(ctx).
		Where("status IN ?", []model.GoalStatus{model.GoalStatusActive, model.GoalStatusOverdue}).
		Where(target).
		Order("deadline ASC").
		Find(&goals)
	if result.Error != nil {
		return nil, fmt.Errorf("gormGoalRepository.FindActiveTargetingUser: %w", result.Error)
	}
	return goals, nil
}

func (r *gormGoalRepository) FindVisibleToActor(ctx context.Context, db *gorm.DB, actor model.Actor, teamIDs, departmentIDs []uuid.UUID, filter model.GoalFilter) ([]*model.Goal, error) {
	query := db.WithContext(ctx).Model(&model.Goal{})

	// パートナーは全目標を閲覧できる。それ以外は自分宛て・自分が設定した目標と、
	// 所属または管理するチーム/部門宛ての目標に限る
	if actor.Role != model.RolePartner {
		visible := db.Where("target_user_id = ?", actor.UserID).
			Or("set_by = ?", actor.UserID)
		if len(teamIDs) > 0 {
			visible = visible.Or("target_team_id IN ?", teamIDs)
		}
		if len(departmentIDs) > 0 {
			visible = visible.Or("target_department_id IN ?", departmentIDs)
		}
		query = query.Where(visible)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var goals []*model.Goal
	result := query.Order("deadline ASC").Find(&goals)
	if result.Error != nil {
		return nil, fmt.Errorf("gormGoalRepository.FindVisibleToActor: %w", result.Error)
	}
	return goals, nil
}
