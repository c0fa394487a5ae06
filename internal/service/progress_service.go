//go:generate mockery --name ProgressService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService は目標進捗の計算と状態遷移を担うエンジン。
// 進捗はCPD記録からの導出値であり、記録の変更時と読み取り時に再計算して
// goals テーブルのキャッシュ列へ書き戻す。
type ProgressService interface {
	// ComputeProgress は保存せずに進捗を計算して返す
	ComputeProgress(ctx context.Context, db *gorm.DB, goal *model.Goal) (*model.ProgressResult, error)
	// UpdateGoalProgress は単一の目標を再計算し、キャッシュと状態を更新して返す
	UpdateGoalProgress(ctx context.Context, goalID uuid.UUID) (*model.Goal, error)
	// SyncGoalsForUser は指定ユーザーの記録変更の影響を受けうる全目標を
	// 渡されたトランザクション内で再計算する。個別の失敗は記録して続行し、
	// 更新された目標数を返す
	SyncGoalsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int, error)
	GetApproachingDeadlineGoals(ctx context.Context, actor model.Actor, withinDays int) ([]*model.GoalResponse, error)
	GetOverdueGoals(ctx context.Context, actor model.Actor) ([]*model.GoalResponse, error)
	GetTeamGoalProgress(ctx context.Context, actor model.Actor, goalID uuid.UUID) ([]*model.ParticipantProgress, error)
}

type progressService struct {
	db        *gorm.DB
	goalRepo  repository.GoalRepository
	entryRepo repository.EntryRepository
	orgRepo   repository.OrgRepository
	userRepo  repository.UserRepository
	mailer    Mailer
}

func NewProgressService(
	db *gorm.DB,
	goalRepo repository.GoalRepository,
	entryRepo repository.EntryRepository,
	orgRepo repository.OrgRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
) ProgressService {
	return &progressService{
		db:        db,
		goalRepo:  goalRepo,
		entryRepo: entryRepo,
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		mailer:    mailer,
	}
}

// resolvePopulation は目標の種別に応じて集計対象のユーザー集合を解決する
func (s *progressService) resolvePopulation(ctx context.Context, db *gorm.DB, goal *model.Goal) ([]uuid.UUID, error) {
	switch goal.GoalType {
	case model.GoalTypeIndividual:
		if goal.TargetUserID == nil {
			return nil, fmt.Errorf("progressService.resolvePopulation: individual goal %s has no target user", goal.GoalID)
		}
		return []uuid.UUID{*goal.TargetUserID}, nil
	case model.GoalTypeTeam:
		if goal.TargetTeamID == nil {
			return nil, fmt.Errorf("progressService.resolvePopulation: team goal %s has no target team", goal.GoalID)
		}
		return s.orgRepo.FindTeamMemberIDs(ctx, db, *goal.TargetTeamID)
	case model.GoalTypeDepartment:
		if goal.TargetDepartmentID == nil {
			return nil, fmt.Errorf("progressService.resolvePopulation: department goal %s has no target department", goal.GoalID)
		}
		return s.orgRepo.FindDepartmentMemberIDs(ctx, db, *goal.TargetDepartmentID)
	default:
		return nil, fmt.Errorf("progressService.resolvePopulation: unknown goal type %q", goal.GoalType)
	}
}

// progressPercentage は達成率を 0〜100 に丸めて返す。
// target_hours が 0 以下の目標はエラーにせず常に 0% とする
func progressPercentage(totalHours, targetHours float64) float64 {
	if targetHours <= 0 {
		return 0
	}
	pct := totalHours / targetHours * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func (s *progressService) ComputeProgress(ctx context.Context, db *gorm.DB, goal *model.Goal) (*model.ProgressResult, error) {
	userIDs, err := s.resolvePopulation(ctx, db, goal)
	if err != nil {
		return nil, err
	}

	agg, err := s.entryRepo.Aggregate(ctx, db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("progressService.ComputeProgress: %w", err)
	}

	return &model.ProgressResult{
		CurrentHours:       agg.TotalHours,
		CurrentEntries:     agg.EntryCount,
		CurrentPoints:      agg.TotalPoints,
		LastEntryDate:      agg.LastEntryDate,
		ProgressPercentage: progressPercentage(agg.TotalHours, goal.TargetHours),
		DaysRemaining:      model.DaysUntil(goal.Deadline, time.Now()),
	}, nil
}

// advanceStatus は再計算後の次状態を決める純粋関数。
//   - cancelled / completed は手動操作以外では変わらない
//   - 達成率 100% 到達で completed
//   - 期限超過で overdue。期限が先送りされれば active に戻る
func advanceStatus(current model.GoalStatus, pct float64, daysRemaining int) model.GoalStatus {
	switch current {
	case model.GoalStatusCancelled:
		return model.GoalStatusCancelled
	case model.GoalStatusCompleted:
		return model.GoalStatusCompleted
	}
	if pct >= 100 {
		return model.GoalStatusCompleted
	}
	if daysRemaining < 0 {
		return model.GoalStatusOverdue
	}
	return model.GoalStatusActive
}

// updateGoalProgress は1目標を再計算し、差分があればキャッシュ列を更新する。
// goal は更新後の値に書き換えられる
func (s *progressService) updateGoalProgress(ctx context.Context, tx *gorm.DB, goal *model.Goal) (bool, error) {
	logger := middleware.GetLogger(ctx)

	progress, err := s.ComputeProgress(ctx, tx, goal)
	if err != nil {
		return false, err
	}
	nextStatus := advanceStatus(goal.Status, progress.ProgressPercentage, progress.DaysRemaining)

	updates := make(map[string]interface{})
	if goal.CurrentHours != progress.CurrentHours {
		updates["current_hours"] = progress.CurrentHours
	}
	if goal.CurrentEntries != progress.CurrentEntries {
		updates["current_entries"] = progress.CurrentEntries
	}

	becameOverdue := false
	if nextStatus != goal.Status {
		updates["status"] = nextStatus
		switch nextStatus {
		case model.GoalStatusCompleted:
			now := time.Now()
			updates["completed_at"] = &now
		case model.GoalStatusOverdue:
			becameOverdue = goal.Status == model.GoalStatusActive
		case model.GoalStatusActive:
			// 期限先送りによる overdue -> active の復帰。completed_at は持たない
		}
	}

	if len(updates) == 0 {
		return false, nil
	}

	if err := s.goalRepo.Update(ctx, tx, goal.GoalID, updates); err != nil {
		return false, fmt.Errorf("progressService.updateGoalProgress: %w", err)
	}

	goal.CurrentHours = progress.CurrentHours
	goal.CurrentEntries = progress.CurrentEntries
	goal.Status = nextStatus
	if at, ok := updates["completed_at"].(*time.Time); ok {
		goal.CompletedAt = at
	}

	logger.Debug("Goal progress updated",
		"goal_id", goal.GoalID.String(),
		"status", string(nextStatus),
		"current_hours", progress.CurrentHours,
	)

	// 期限超過への遷移は設定者へ通知する。送信失敗で再計算は巻き戻さない
	if becameOverdue {
		s.notifyOverdue(ctx, tx, goal)
	}
	return true, nil
}

func (s *progressService) notifyOverdue(ctx context.Context, db *gorm.DB, goal *model.Goal) {
	logger := middleware.GetLogger(ctx)

	setter, err := s.userRepo.FindByID(ctx, db, goal.SetBy)
	if err != nil {
		logger.Warn("Failed to look up goal setter for overdue notification",
			"goal_id", goal.GoalID.String(), "error", err)
		return
	}

	subject := fmt.Sprintf("【%s】目標「%s」の期限が超過しました", config.AppName, goal.Title)
	body := fmt.Sprintf(
		"%s 様\n\n設定された目標「%s」が期限 (%s) を超過しました。\n現在の実績: %.1f / %.1f 時間\n\n進捗を確認してください。",
		setter.Name, goal.Title, goal.Deadline.Format(config.DateLayout),
		goal.CurrentHours, goal.TargetHours,
	)
	if err := s.mailer.Send(ctx, setter.Email, subject, body); err != nil {
		logger.Warn("Failed to send overdue notification",
			"goal_id", goal.GoalID.String(), "to", setter.Email, "error", err)
	}
}

func (s *progressService) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID) (*model.Goal, error) {
	var updated *model.Goal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := s.goalRepo.FindByID(ctx, tx, goalID)
		if err != nil {
			return err
		}
		if _, err := s.updateGoalProgress(ctx, tx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *progressService) SyncGoalsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int, error) {
	logger := middleware.GetLogger(ctx)

	teamIDs, err := s.orgRepo.FindTeamIDsByUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("progressService.SyncGoalsForUser: %w", err)
	}
	departmentIDs, err := s.orgRepo.FindDepartmentIDsByUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("progressService.SyncGoalsForUser: %w", err)
	}

	goals, err := s.goalRepo.FindActiveTargetingUser(ctx, tx, userID, teamIDs, departmentIDs)
	if err != nil {
		return 0, fmt.Errorf("progressService.SyncGoalsForUser: %w", err)
	}

	changed := 0
	for _, goal := range goals {
		ok, err := s.updateGoalProgress(ctx, tx, goal)
		if err != nil {
			// 1目標の失敗で残りの再計算を止めない
			logger.Error("Failed to recompute goal progress",
				"goal_id", goal.GoalID.String(), "user_id", userID.String(), "error", err)
			continue
		}
		if ok {
			changed++
		}
	}
	logger.Debug("Synced goals for user",
		"user_id", userID.String(), "total", len(goals), "changed", changed)
	return changed, nil
}

// visibleGoals は操作者が閲覧可能な目標を取得する共通処理
func (s *progressService) visibleGoals(ctx context.Context, actor model.Actor, filter model.GoalFilter) ([]*model.Goal, error) {
	teamIDs, departmentIDs, err := actorScopeIDs(ctx, s.db, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.goalRepo.FindVisibleToActor(ctx, s.db, actor, teamIDs, departmentIDs, model.GoalFilter{Status: filter.Status})
}

func (s *progressService) GetApproachingDeadlineGoals(ctx context.Context, actor model.Actor, withinDays int) ([]*model.GoalResponse, error) {
	if withinDays < 0 {
		return nil, model.NewAppError("invalid_request", "日数には0以上を指定してください", "within_days", model.ErrInvalidInput)
	}

	status := model.GoalStatusActive
	goals, err := s.visibleGoals(ctx, actor, model.GoalFilter{Status: &status})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]*model.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		days := model.DaysUntil(goal.Deadline, now)
		if days < 0 || days > withinDays {
			continue
		}
		responses = append(responses, newGoalResponse(goal, days, nil))
	}
	return responses, nil
}

func (s *progressService) GetOverdueGoals(ctx context.Context, actor model.Actor) ([]*model.GoalResponse, error) {
	status := model.GoalStatusOverdue
	goals, err := s.visibleGoals(ctx, actor, model.GoalFilter{Status: &status})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]*model.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, newGoalResponse(goal, model.DaysUntil(goal.Deadline, now), nil))
	}
	return responses, nil
}

func (s *progressService) GetTeamGoalProgress(ctx context.Context, actor model.Actor, goalID uuid.UUID) ([]*model.ParticipantProgress, error) {
	goal, err := s.goalRepo.FindByID(ctx, s.db, goalID)
	if err != nil {
		return nil, err
	}

	visible, err := canActorViewGoal(ctx, s.db, s.orgRepo, actor, goal)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, model.ErrForbidden
	}

	if goal.GoalType == model.GoalTypeIndividual {
		return nil, model.NewAppError("invalid_request", "個人目標には参加者別の進捗はありません", "goal_id", model.ErrInvalidInput)
	}

	userIDs, err := s.resolvePopulation(ctx, s.db, goal)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, s.db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("progressService.GetTeamGoalProgress: %w", err)
	}
	aggs, err := s.entryRepo.AggregatePerUser(ctx, s.db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("progressService.GetTeamGoalProgress: %w", err)
	}

	// 各メンバーは目標の総時間に対して独立に測定する (人数割りしない)
	participants := make([]*model.ParticipantProgress, 0, len(users))
	for _, user := range users {
		agg := aggs[user.UserID]
		participants = append(participants, &model.ParticipantProgress{
			UserID:             user.UserID,
			UserName:           user.Name,
			CurrentHours:       agg.TotalHours,
			CurrentEntries:     agg.EntryCount,
			ProgressPercentage: progressPercentage(agg.TotalHours, goal.TargetHours),
			LastEntryDate:      agg.LastEntryDate,
		})
	}
	sort.Slice(participants, func(i, j int) bool {
		if participants[i].ProgressPercentage != participants[j].ProgressPercentage {
			return participants[i].ProgressPercentage > participants[j].ProgressPercentage
		}
		return participants[i].UserName < participants[j].UserName
	})
	return participants, nil
}

// actorScopeIDs は操作者の所属と管理対象を合わせたチーム/部門IDを返す
func actorScopeIDs(ctx context.Context, db *gorm.DB, orgRepo repository.OrgRepository, actor model.Actor) ([]uuid.UUID, []uuid.UUID, error) {
	teamIDs, err := orgRepo.FindTeamIDsByUser(ctx, db, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	departmentIDs, err := orgRepo.FindDepartmentIDsByUser(ctx, db, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role == model.RoleManager {
		managedTeams, err := orgRepo.FindManagedTeamIDs(ctx, db, actor.UserID)
		if err != nil {
			return nil, nil, err
		}
		managedDepts, err := orgRepo.FindManagedDepartmentIDs(ctx, db, actor.UserID)
		if err != nil {
			return nil, nil, err
		}
		teamIDs = appendMissingIDs(teamIDs, managedTeams)
		departmentIDs = appendMissingIDs(departmentIDs, managedDepts)
	}
	return teamIDs, departmentIDs, nil
}

func appendMissingIDs(base, extra []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(base))
	for _, id := range base {
		seen[id] = struct{}{}
	}
	for _, id := range extra {
		if _, ok := seen[id]; !ok {
			base = append(base, id)
		}
	}
	return base
}

// canActorViewGoal は目標単体の閲覧可否を判定する。
// パートナーと設定者は常に可。それ以外は対象 (本人/所属チーム/所属部門) か、
// マネージャとして対象への権限を持つ場合に可
func canActorViewGoal(ctx context.Context, db *gorm.DB, orgRepo repository.OrgRepository, actor model.Actor, goal *model.Goal) (bool, error) {
	if actor.Role == model.RolePartner || goal.SetBy == actor.UserID {
		return true, nil
	}

	switch goal.GoalType {
	case model.GoalTypeIndividual:
		if goal.TargetUserID == nil {
			return false, nil
		}
		if *goal.TargetUserID == actor.UserID {
			return true, nil
		}
		if actor.Role == model.RoleManager {
			return orgRepo.HasAuthorityOverUser(ctx, db, actor.UserID, *goal.TargetUserID)
		}
		return false, nil

	case model.GoalTypeTeam:
		if goal.TargetTeamID == nil {
			return false, nil
		}
		teamIDs, err := orgRepo.FindTeamIDsByUser(ctx, db, actor.UserID)
		if err != nil {
			return false, err
		}
		for _, id := range teamIDs {
			if id == *goal.TargetTeamID {
				return true, nil
			}
		}
		if actor.Role == model.RoleManager {
			return orgRepo.HasTeamAuthority(ctx, db, actor.UserID, *goal.TargetTeamID)
		}
		return false, nil

	case model.GoalTypeDepartment:
		if goal.TargetDepartmentID == nil {
			return false, nil
		}
		departmentIDs, err := orgRepo.FindDepartmentIDsByUser(ctx, db, actor.UserID)
		if err != nil {
			return false, err
		}
		for _, id := range departmentIDs {
			if id == *goal.TargetDepartmentID {
				return true, nil
			}
		}
		if actor.Role == model.RoleManager {
			return orgRepo.HasDepartmentAuthority(ctx, db, actor.UserID, *goal.TargetDepartmentID)
		}
		return false, nil
	}
	return false, nil
}

// newGoalResponse は導出値を付加したレスポンスを組み立てる
func newGoalResponse(goal *model.Goal, daysRemaining int, progress *model.ProgressResult) *model.GoalResponse {
	return &model.GoalResponse{
		Goal:          *goal,
		DaysRemaining: daysRemaining,
		IsPersonal:    goal.IsPersonal(),
		Progress:      progress,
	}
}
