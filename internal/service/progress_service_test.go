// internal/service/progress_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"go_cpd_track/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Test ComputeProgress ---

func Test_progressService_ComputeProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 承認待ちと承認済みの記録が合算される", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))

		createTestEntry(t, env.db, user.UserID, 3, model.ReviewStatusPending)
		createTestEntry(t, env.db, user.UserID, 5, model.ReviewStatusApproved)

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 8.0, progress.CurrentHours)
		assert.Equal(t, 2, progress.CurrentEntries)
		assert.InDelta(t, 80.0, progress.ProgressPercentage, 0.001)
		assert.Equal(t, 30, progress.DaysRemaining)
		assert.NotNil(t, progress.LastEntryDate)
	})

	t.Run("正常系: 目標時間が0以下なら常に0%", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 0, daysFromNow(30))
		createTestEntry(t, env.db, user.UserID, 5, model.ReviewStatusApproved)

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 5.0, progress.CurrentHours)
		assert.Equal(t, 0.0, progress.ProgressPercentage)
	})

	t.Run("正常系: 100%を超えても100で頭打ち", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, user.UserID, 25, model.ReviewStatusApproved)

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 100.0, progress.ProgressPercentage)
	})

	t.Run("正常系: 記録が無ければゼロで返る", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 0.0, progress.CurrentHours)
		assert.Equal(t, 0, progress.CurrentEntries)
		assert.Equal(t, 0.0, progress.ProgressPercentage)
		assert.Nil(t, progress.LastEntryDate)
	})

	t.Run("正常系: 他のユーザーの記録は含めない", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		other := createTestUser(t, env.db, "staff2", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, user.UserID, 2, model.ReviewStatusApproved)
		createTestEntry(t, env.db, other.UserID, 9, model.ReviewStatusApproved)

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 2.0, progress.CurrentHours)
	})

	t.Run("正常系: チーム目標はメンバー全員の記録を合算する", func(t *testing.T) {
		env := newTestEnv(t)
		memberA := createTestUser(t, env.db, "memberA", model.RoleStaff)
		memberB := createTestUser(t, env.db, "memberB", model.RoleStaff)
		outsider := createTestUser(t, env.db, "outsider", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)
		addTeamMember(t, env.db, team.TeamID, memberA.UserID)
		addTeamMember(t, env.db, team.TeamID, memberB.UserID)

		goal := createTeamGoal(t, env.db, team.TeamID, memberA.UserID, 20, daysFromNow(30))
		createTestEntry(t, env.db, memberA.UserID, 4, model.ReviewStatusApproved)
		createTestEntry(t, env.db, memberB.UserID, 6, model.ReviewStatusPending)
		createTestEntry(t, env.db, outsider.UserID, 100, model.ReviewStatusApproved)

		progress, err := env.progress.ComputeProgress(ctx, env.db, goal)
		require.NoError(t, err)
		assert.Equal(t, 10.0, progress.CurrentHours)
		assert.InDelta(t, 50.0, progress.ProgressPercentage, 0.001)
	})
}

// --- Test advanceStatus ---

func Test_advanceStatus(t *testing.T) {
	tests := []struct {
		name    string
		current model.GoalStatus
		pct     float64
		days    int
		want    model.GoalStatus
	}{
		{"進行中は変化なし", model.GoalStatusActive, 50, 10, model.GoalStatusActive},
		{"100%到達で完了", model.GoalStatusActive, 100, 10, model.GoalStatusCompleted},
		{"期限超過で期限切れ", model.GoalStatusActive, 50, -1, model.GoalStatusOverdue},
		{"期限当日はまだ進行中", model.GoalStatusActive, 50, 0, model.GoalStatusActive},
		{"期限切れでも100%なら完了", model.GoalStatusOverdue, 100, -5, model.GoalStatusCompleted},
		{"期限の先送りで期限切れから復帰", model.GoalStatusOverdue, 50, 3, model.GoalStatusActive},
		{"完了は維持される", model.GoalStatusCompleted, 10, -5, model.GoalStatusCompleted},
		{"取消は維持される", model.GoalStatusCancelled, 100, 10, model.GoalStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, advanceStatus(tt.current, tt.pct, tt.days))
		})
	}
}

// --- Test UpdateGoalProgress ---

func Test_progressService_UpdateGoalProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 達成で完了になりcompleted_atが設定される", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, user.UserID, 12, model.ReviewStatusApproved)

		updated, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusCompleted, updated.Status)
		assert.Equal(t, 12.0, updated.CurrentHours)
		assert.NotNil(t, updated.CompletedAt)

		stored := reloadGoal(t, env.db, goal.GoalID)
		assert.Equal(t, model.GoalStatusCompleted, stored.Status)
		assert.NotNil(t, stored.CompletedAt)
	})

	t.Run("正常系: 期限超過で期限切れに遷移する", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(-1))
		createTestEntry(t, env.db, user.UserID, 3, model.ReviewStatusApproved)

		updated, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusOverdue, updated.Status)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("正常系: 期限当日はまだ進行中", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(0))
		createTestEntry(t, env.db, user.UserID, 3, model.ReviewStatusApproved)

		updated, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusActive, updated.Status)
	})

	t.Run("正常系: 期限の先送りで期限切れから進行中に戻る", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(-3))

		updated, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		require.Equal(t, model.GoalStatusOverdue, updated.Status)

		// 期限を1週間先に変更
		require.NoError(t, env.goalRepo.Update(ctx, env.db, goal.GoalID, map[string]interface{}{"deadline": daysFromNow(7)}))

		updated, err = env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusActive, updated.Status)
	})

	t.Run("正常系: 取消済みの目標は再計算しても状態が変わらない", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", goal.GoalID).
			Update("status", model.GoalStatusCancelled).Error)
		createTestEntry(t, env.db, user.UserID, 15, model.ReviewStatusApproved)

		updated, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusCancelled, updated.Status)
		// キャッシュの時間だけは最新化される
		assert.Equal(t, 15.0, updated.CurrentHours)
	})

	t.Run("正常系: 再計算は冪等", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, user.UserID, 4, model.ReviewStatusApproved)

		first, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		second, err := env.progress.UpdateGoalProgress(ctx, goal.GoalID)
		require.NoError(t, err)
		assert.Equal(t, first.CurrentHours, second.CurrentHours)
		assert.Equal(t, first.CurrentEntries, second.CurrentEntries)
		assert.Equal(t, first.Status, second.Status)
	})

	t.Run("異常系: 存在しない目標はNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.progress.UpdateGoalProgress(ctx, uuid.New())
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

// --- Test SyncGoalsForUser ---

func Test_progressService_SyncGoalsForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 個人・チーム・部門の目標がまとめて再計算される", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		other := createTestUser(t, env.db, "staff2", model.RoleStaff)
		_, dept, team := createTestHierarchy(t, env.db)
		addTeamMember(t, env.db, team.TeamID, user.UserID)

		individual := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		teamGoal := createTeamGoal(t, env.db, team.TeamID, user.UserID, 20, daysFromNow(30))
		deptGoal := createDepartmentGoal(t, env.db, dept.DepartmentID, user.UserID, 40, daysFromNow(30))
		unrelated := createIndividualGoal(t, env.db, other.UserID, other.UserID, 10, daysFromNow(30))

		createTestEntry(t, env.db, user.UserID, 5, model.ReviewStatusApproved)

		var changed int
		err := env.db.Transaction(func(tx *gorm.DB) error {
			var err error
			changed, err = env.progress.SyncGoalsForUser(ctx, tx, user.UserID)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 3, changed)

		assert.Equal(t, 5.0, reloadGoal(t, env.db, individual.GoalID).CurrentHours)
		assert.Equal(t, 5.0, reloadGoal(t, env.db, teamGoal.GoalID).CurrentHours)
		assert.Equal(t, 5.0, reloadGoal(t, env.db, deptGoal.GoalID).CurrentHours)
		assert.Equal(t, 0.0, reloadGoal(t, env.db, unrelated.GoalID).CurrentHours)
	})

	t.Run("正常系: 完了・取消済みの目標は対象外", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)

		completed := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", completed.GoalID).
			Updates(map[string]interface{}{"status": model.GoalStatusCompleted, "current_hours": 10.0}).Error)
		cancelled := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", cancelled.GoalID).
			Update("status", model.GoalStatusCancelled).Error)

		createTestEntry(t, env.db, user.UserID, 3, model.ReviewStatusApproved)

		var changed int
		err := env.db.Transaction(func(tx *gorm.DB) error {
			var err error
			changed, err = env.progress.SyncGoalsForUser(ctx, tx, user.UserID)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 0, changed)

		// 完了時点のキャッシュがそのまま残る
		assert.Equal(t, 10.0, reloadGoal(t, env.db, completed.GoalID).CurrentHours)
		assert.Equal(t, model.GoalStatusCompleted, reloadGoal(t, env.db, completed.GoalID).Status)
		assert.Equal(t, model.GoalStatusCancelled, reloadGoal(t, env.db, cancelled.GoalID).Status)
	})

	t.Run("正常系: 変化が無ければ更新件数は0", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))

		var changed int
		err := env.db.Transaction(func(tx *gorm.DB) error {
			var err error
			changed, err = env.progress.SyncGoalsForUser(ctx, tx, user.UserID)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 0, changed)
	})
}

// --- Test GetTeamGoalProgress ---

func Test_progressService_GetTeamGoalProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 各メンバーは目標の総時間に対して独立に測定され、進捗降順で返る", func(t *testing.T) {
		env := newTestEnv(t)
		memberA := createTestUser(t, env.db, "memberA", model.RoleStaff)
		memberB := createTestUser(t, env.db, "memberB", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)
		addTeamMember(t, env.db, team.TeamID, memberA.UserID)
		addTeamMember(t, env.db, team.TeamID, memberB.UserID)

		goal := createTeamGoal(t, env.db, team.TeamID, memberA.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, memberA.UserID, 2, model.ReviewStatusApproved)
		createTestEntry(t, env.db, memberB.UserID, 10, model.ReviewStatusPending)

		actor := model.Actor{UserID: memberA.UserID, Role: model.RoleStaff}
		participants, err := env.progress.GetTeamGoalProgress(ctx, actor, goal.GoalID)
		require.NoError(t, err)
		require.Len(t, participants, 2)

		// memberB が100%で先頭、memberA は20% (人数割りではなく全量に対する進捗)
		assert.Equal(t, memberB.UserID, participants[0].UserID)
		assert.Equal(t, 100.0, participants[0].ProgressPercentage)
		assert.Equal(t, memberA.UserID, participants[1].UserID)
		assert.InDelta(t, 20.0, participants[1].ProgressPercentage, 0.001)
	})

	t.Run("正常系: 記録の無いメンバーも0%で含まれる", func(t *testing.T) {
		env := newTestEnv(t)
		memberA := createTestUser(t, env.db, "memberA", model.RoleStaff)
		memberB := createTestUser(t, env.db, "memberB", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)
		addTeamMember(t, env.db, team.TeamID, memberA.UserID)
		addTeamMember(t, env.db, team.TeamID, memberB.UserID)

		goal := createTeamGoal(t, env.db, team.TeamID, memberA.UserID, 10, daysFromNow(30))
		createTestEntry(t, env.db, memberA.UserID, 5, model.ReviewStatusApproved)

		actor := model.Actor{UserID: memberA.UserID, Role: model.RoleStaff}
		participants, err := env.progress.GetTeamGoalProgress(ctx, actor, goal.GoalID)
		require.NoError(t, err)
		require.Len(t, participants, 2)
		assert.Equal(t, memberB.UserID, participants[1].UserID)
		assert.Equal(t, 0.0, participants[1].ProgressPercentage)
		assert.Nil(t, participants[1].LastEntryDate)
	})

	t.Run("異常系: 個人目標には参加者別進捗が無い", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(30))

		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		_, err := env.progress.GetTeamGoalProgress(ctx, actor, goal.GoalID)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("異常系: 無関係なスタッフはForbidden", func(t *testing.T) {
		env := newTestEnv(t)
		member := createTestUser(t, env.db, "member", model.RoleStaff)
		outsider := createTestUser(t, env.db, "outsider", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)
		addTeamMember(t, env.db, team.TeamID, member.UserID)
		goal := createTeamGoal(t, env.db, team.TeamID, member.UserID, 10, daysFromNow(30))

		actor := model.Actor{UserID: outsider.UserID, Role: model.RoleStaff}
		_, err := env.progress.GetTeamGoalProgress(ctx, actor, goal.GoalID)
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})

	t.Run("異常系: 存在しない目標はNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		_, err := env.progress.GetTeamGoalProgress(ctx, actor, uuid.New())
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

// --- Test GetApproachingDeadlineGoals / GetOverdueGoals ---

func Test_progressService_GetApproachingDeadlineGoals(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 指定日数以内の進行中の目標のみ返る", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)

		near := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(3))
		createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(10))
		today := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(0))

		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		goals, err := env.progress.GetApproachingDeadlineGoals(ctx, actor, 7)
		require.NoError(t, err)
		require.Len(t, goals, 2)

		// 期限昇順
		assert.Equal(t, today.GoalID, goals[0].GoalID)
		assert.Equal(t, 0, goals[0].DaysRemaining)
		assert.Equal(t, near.GoalID, goals[1].GoalID)
		assert.Equal(t, 3, goals[1].DaysRemaining)
	})

	t.Run("正常系: 取消・完了・期限切れの目標は含まれない", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)

		cancelled := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(2))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", cancelled.GoalID).
			Update("status", model.GoalStatusCancelled).Error)
		overdue := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(-2))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", overdue.GoalID).
			Update("status", model.GoalStatusOverdue).Error)

		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		goals, err := env.progress.GetApproachingDeadlineGoals(ctx, actor, 7)
		require.NoError(t, err)
		assert.Len(t, goals, 0)
	})

	t.Run("異常系: 負の日数はInvalidInput", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		_, err := env.progress.GetApproachingDeadlineGoals(ctx, actor, -1)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})
}

func Test_progressService_GetOverdueGoals(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 自分宛ての期限切れ目標のみ返る", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		other := createTestUser(t, env.db, "staff2", model.RoleStaff)

		mine := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(-5))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", mine.GoalID).
			Update("status", model.GoalStatusOverdue).Error)
		others := createIndividualGoal(t, env.db, other.UserID, other.UserID, 10, daysFromNow(-5))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", others.GoalID).
			Update("status", model.GoalStatusOverdue).Error)

		actor := model.Actor{UserID: user.UserID, Role: model.RoleStaff}
		goals, err := env.progress.GetOverdueGoals(ctx, actor)
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, mine.GoalID, goals[0].GoalID)
		assert.Equal(t, -5, goals[0].DaysRemaining)
	})

	t.Run("正常系: パートナーは全員分の期限切れ目標が見える", func(t *testing.T) {
		env := newTestEnv(t)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		partner := createTestUser(t, env.db, "partner1", model.RolePartner)

		goal := createIndividualGoal(t, env.db, user.UserID, user.UserID, 10, daysFromNow(-5))
		require.NoError(t, env.db.Model(&model.Goal{}).Where("goal_id = ?", goal.GoalID).
			Update("status", model.GoalStatusOverdue).Error)

		actor := model.Actor{UserID: partner.UserID, Role: model.RolePartner}
		goals, err := env.progress.GetOverdueGoals(ctx, actor)
		require.NoError(t, err)
		assert.Len(t, goals, 1)
	})
}
