//go:generate mockery --name GoalService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"time"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalService は目標のライフサイクル (作成・閲覧・更新・取消・再開・削除) を扱う
type GoalService interface {
	CreateGoal(ctx context.Context, actor model.Actor, req *model.CreateGoalRequest) (*model.GoalResponse, error)
	GetGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) (*model.GoalResponse, error)
	ListGoals(ctx context.Context, actor model.Actor, filter model.GoalFilter) ([]*model.GoalResponse, error)
	PatchGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID, req *model.PatchGoalRequest) (*model.GoalResponse, error)
	CancelGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) error
	ReactivateGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) (*model.GoalResponse, error)
	DeleteGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) error
}

type goalService struct {
	db       *gorm.DB
	goalRepo repository.GoalRepository
	orgRepo  repository.OrgRepository
	userRepo repository.UserRepository
	progress ProgressService
}

func NewGoalService(
	db *gorm.DB,
	goalRepo repository.GoalRepository,
	orgRepo repository.OrgRepository,
	userRepo repository.UserRepository,
	progress ProgressService,
) GoalService {
	return &goalService{
		db:       db,
		goalRepo: goalRepo,
		orgRepo:  orgRepo,
		userRepo: userRepo,
		progress: progress,
	}
}

// validateTarget は目標種別と対象指定の整合を確認する。
// 種別に対応する対象がちょうどひとつ指定されていなければならない
func validateTarget(req *model.CreateGoalRequest) error {
	goalType := model.GoalType(req.GoalType)
	ok := false
	switch goalType {
	case model.GoalTypeIndividual:
		ok = req.TargetUserID != nil && req.TargetTeamID == nil && req.TargetDepartmentID == nil
	case model.GoalTypeTeam:
		ok = req.TargetTeamID != nil && req.TargetUserID == nil && req.TargetDepartmentID == nil
	case model.GoalTypeDepartment:
		ok = req.TargetDepartmentID != nil && req.TargetUserID == nil && req.TargetTeamID == nil
	}
	if !ok {
		return model.NewAppError("invalid_request", "目標種別と対象の指定が一致していません", "goal_type", model.ErrInvalidInput)
	}
	return nil
}

// authorizeCreate は操作者が対象に目標を設定できるか確認する。
// スタッフは自分自身への個人目標のみ。マネージャは権限を持つ範囲。パートナーは無制限
func (s *goalService) authorizeCreate(ctx context.Context, actor model.Actor, req *model.CreateGoalRequest) error {
	if actor.Role == model.RolePartner {
		return nil
	}

	goalType := model.GoalType(req.GoalType)
	if actor.Role == model.RoleStaff {
		if goalType == model.GoalTypeIndividual && *req.TargetUserID == actor.UserID {
			return nil
		}
		return model.NewAppError("forbidden", "自分以外を対象とする目標を設定する権限がありません", "", model.ErrForbidden)
	}

	// マネージャ
	switch goalType {
	case model.GoalTypeIndividual:
		if *req.TargetUserID == actor.UserID {
			return nil
		}
		ok, err := s.orgRepo.HasAuthorityOverUser(ctx, s.db, actor.UserID, *req.TargetUserID)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewAppError("forbidden", "このユーザーに目標を設定する権限がありません", "target_user_id", model.ErrForbidden)
		}
	case model.GoalTypeTeam:
		ok, err := s.orgRepo.HasTeamAuthority(ctx, s.db, actor.UserID, *req.TargetTeamID)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewAppError("forbidden", "このチームに目標を設定する権限がありません", "target_team_id", model.ErrForbidden)
		}
	case model.GoalTypeDepartment:
		ok, err := s.orgRepo.HasDepartmentAuthority(ctx, s.db, actor.UserID, *req.TargetDepartmentID)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewAppError("forbidden", "この部門に目標を設定する権限がありません", "target_department_id", model.ErrForbidden)
		}
	}
	return nil
}

// verifyTargetExists は対象エンティティの存在を確認する
func (s *goalService) verifyTargetExists(ctx context.Context, req *model.CreateGoalRequest) error {
	switch model.GoalType(req.GoalType) {
	case model.GoalTypeIndividual:
		if _, err := s.userRepo.FindByID(ctx, s.db, *req.TargetUserID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("not_found", "対象のユーザーが見つかりません", "target_user_id", model.ErrNotFound)
			}
			return err
		}
	case model.GoalTypeTeam:
		if _, err := s.orgRepo.FindTeamByID(ctx, s.db, *req.TargetTeamID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("not_found", "対象のチームが見つかりません", "target_team_id", model.ErrNotFound)
			}
			return err
		}
	case model.GoalTypeDepartment:
		if _, err := s.orgRepo.FindDepartmentByID(ctx, s.db, *req.TargetDepartmentID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("not_found", "対象の部門が見つかりません", "target_department_id", model.ErrNotFound)
			}
			return err
		}
	}
	return nil
}

func (s *goalService) CreateGoal(ctx context.Context, actor model.Actor, req *model.CreateGoalRequest) (*model.GoalResponse, error) {
	logger := middleware.GetLogger(ctx)

	if err := validateTarget(req); err != nil {
		return nil, err
	}
	if err := s.authorizeCreate(ctx, actor, req); err != nil {
		return nil, err
	}
	if err := s.verifyTargetExists(ctx, req); err != nil {
		return nil, err
	}

	deadline, err := time.Parse(config.DateLayout, req.Deadline)
	if err != nil {
		return nil, model.NewAppError("invalid_request", "期限の形式が正しくありません", "deadline", model.ErrInvalidInput)
	}

	goal := &model.Goal{
		GoalID:             uuid.New(),
		GoalType:           model.GoalType(req.GoalType),
		TargetUserID:       req.TargetUserID,
		TargetTeamID:       req.TargetTeamID,
		TargetDepartmentID: req.TargetDepartmentID,
		SetBy:              actor.UserID,
		Title:              req.Title,
		Description:        req.Description,
		TargetHours:        req.TargetHours,
		TargetEntries:      req.TargetEntries,
		TargetPoints:       req.TargetPoints,
		Deadline:           deadline,
		Status:             model.GoalStatusActive,
	}
	if err := s.goalRepo.Create(ctx, s.db, goal); err != nil {
		return nil, err
	}

	// 既存の記録を反映した初期進捗を確定させる
	updated, err := s.progress.UpdateGoalProgress(ctx, goal.GoalID)
	if err != nil {
		return nil, err
	}

	logger.Info("Goal created",
		"goal_id", goal.GoalID.String(),
		"goal_type", string(goal.GoalType),
		"set_by", actor.UserID.String(),
	)
	return s.buildResponse(ctx, updated)
}

func (s *goalService) buildResponse(ctx context.Context, goal *model.Goal) (*model.GoalResponse, error) {
	progress, err := s.progress.ComputeProgress(ctx, s.db, goal)
	if err != nil {
		return nil, err
	}
	return newGoalResponse(goal, progress.DaysRemaining, progress), nil
}

func (s *goalService) findVisibleGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) (*model.Goal, error) {
	goal, err := s.goalRepo.FindByID(ctx, s.db, goalID)
	if err != nil {
		return nil, err
	}
	visible, err := canActorViewGoal(ctx, s.db, s.orgRepo, actor, goal)
	if err != nil {
		return nil, err
	}
	if !visible {
		// 存在するが閲覧権限がない場合は 404 に潰さず 403 を返す
		return nil, model.ErrForbidden
	}
	return goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) (*model.GoalResponse, error) {
	goal, err := s.findVisibleGoal(ctx, actor, goalID)
	if err != nil {
		return nil, err
	}

	// active/overdue の目標は読み取り時に再計算して最新の状態を返す
	if goal.Status == model.GoalStatusActive || goal.Status == model.GoalStatusOverdue {
		goal, err = s.progress.UpdateGoalProgress(ctx, goalID)
		if err != nil {
			return nil, err
		}
	}
	return s.buildResponse(ctx, goal)
}

func (s *goalService) ListGoals(ctx context.Context, actor model.Actor, filter model.GoalFilter) ([]*model.GoalResponse, error) {
	teamIDs, departmentIDs, err := actorScopeIDs(ctx, s.db, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.FindVisibleToActor(ctx, s.db, actor, teamIDs, departmentIDs, filter)
	if err != nil {
		return nil, err
	}

	// 一覧はキャッシュ列をそのまま返す。個別取得時に再計算される
	now := time.Now()
	responses := make([]*model.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, newGoalResponse(goal, model.DaysUntil(goal.Deadline, now), nil))
	}
	return responses, nil
}

// canModifyGoal は設定者本人またはパートナーのみ変更可とする
func canModifyGoal(actor model.Actor, goal *model.Goal) bool {
	return goal.SetBy == actor.UserID || actor.Role == model.RolePartner
}

func (s *goalService) PatchGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID, req *model.PatchGoalRequest) (*model.GoalResponse, error) {
	goal, err := s.findVisibleGoal(ctx, actor, goalID)
	if err != nil {
		return nil, err
	}
	if !canModifyGoal(actor, goal) {
		return nil, model.NewAppError("forbidden", "この目標を変更する権限がありません", "", model.ErrForbidden)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TargetHours != nil {
		updates["target_hours"] = *req.TargetHours
	}
	if req.TargetEntries != nil {
		updates["target_entries"] = *req.TargetEntries
	}
	if req.TargetPoints != nil {
		updates["target_points"] = *req.TargetPoints
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(config.DateLayout, *req.Deadline)
		if err != nil {
			return nil, model.NewAppError("invalid_request", "期限の形式が正しくありません", "deadline", model.ErrInvalidInput)
		}
		updates["deadline"] = deadline
	}

	if len(updates) > 0 {
		if err := s.goalRepo.Update(ctx, s.db, goalID, updates); err != nil {
			return nil, err
		}
	}

	// 目標値や期限の変更は状態に影響しうるため必ず再計算する
	updated, err := s.progress.UpdateGoalProgress(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, updated)
}

func (s *goalService) CancelGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	goal, err := s.findVisibleGoal(ctx, actor, goalID)
	if err != nil {
		return err
	}
	if !canModifyGoal(actor, goal) {
		return model.NewAppError("forbidden", "この目標を取り消す権限がありません", "", model.ErrForbidden)
	}
	if goal.Status == model.GoalStatusCompleted {
		return model.NewAppError("conflict", "完了済みの目標は取り消せません", "", model.ErrConflict)
	}
	if goal.Status == model.GoalStatusCancelled {
		return nil
	}

	updates := map[string]interface{}{
		"status":       model.GoalStatusCancelled,
		"completed_at": nil,
	}
	if err := s.goalRepo.Update(ctx, s.db, goalID, updates); err != nil {
		return err
	}
	logger.Info("Goal cancelled", "goal_id", goalID.String(), "by", actor.UserID.String())
	return nil
}

func (s *goalService) ReactivateGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) (*model.GoalResponse, error) {
	logger := middleware.GetLogger(ctx)

	goal, err := s.findVisibleGoal(ctx, actor, goalID)
	if err != nil {
		return nil, err
	}
	if !canModifyGoal(actor, goal) {
		return nil, model.NewAppError("forbidden", "この目標を再開する権限がありません", "", model.ErrForbidden)
	}
	if goal.Status != model.GoalStatusCancelled {
		return nil, model.NewAppError("conflict", "取消済みの目標のみ再開できます", "", model.ErrConflict)
	}

	if err := s.goalRepo.Update(ctx, s.db, goalID, map[string]interface{}{"status": model.GoalStatusActive}); err != nil {
		return nil, err
	}

	// 再開直後に再計算し、達成済み・期限超過であれば即座にその状態へ移す
	updated, err := s.progress.UpdateGoalProgress(ctx, goalID)
	if err != nil {
		return nil, err
	}
	logger.Info("Goal reactivated", "goal_id", goalID.String(), "by", actor.UserID.String())
	return s.buildResponse(ctx, updated)
}

func (s *goalService) DeleteGoal(ctx context.Context, actor model.Actor, goalID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	goal, err := s.findVisibleGoal(ctx, actor, goalID)
	if err != nil {
		return err
	}
	if !canModifyGoal(actor, goal) {
		return model.NewAppError("forbidden", "この目標を削除する権限がありません", "", model.ErrForbidden)
	}

	if err := s.goalRepo.Delete(ctx, s.db, goalID); err != nil {
		return err
	}
	logger.Info("Goal deleted", "goal_id", goalID.String(), "by", actor.UserID.String())
	return nil
}
