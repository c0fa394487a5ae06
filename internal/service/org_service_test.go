// internal/service/org_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"go_cpd_track/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrgService(env *testEnv) OrgService {
	return NewOrgService(env.db, env.orgRepo, env.userRepo)
}

func Test_orgService_Organizations(t *testing.T) {
	ctx := context.Background()
	partner := model.Actor{UserID: uuid.New(), Role: model.RolePartner}

	t.Run("正常系: パートナーは組織を作成・変更・削除できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)

		org, err := svc.CreateOrganization(ctx, partner, &model.CreateOrganizationRequest{Name: "テスト法人"})
		require.NoError(t, err)
		assert.Equal(t, "テスト法人", org.Name)

		newName := "改名後の法人"
		renamed, err := svc.RenameOrganization(ctx, partner, org.OrganizationID, &model.PatchNameRequest{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, newName, renamed.Name)

		require.NoError(t, svc.DeleteOrganization(ctx, partner, org.OrganizationID))
		_, err = svc.GetOrganization(ctx, org.OrganizationID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("異常系: パートナー以外は組織を作成できない", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)

		manager := model.Actor{UserID: uuid.New(), Role: model.RoleManager}
		_, err := svc.CreateOrganization(ctx, manager, &model.CreateOrganizationRequest{Name: "テスト法人"})
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})
}

func Test_orgService_Departments(t *testing.T) {
	ctx := context.Background()
	partner := model.Actor{UserID: uuid.New(), Role: model.RolePartner}

	t.Run("正常系: 組織配下に部門を作成できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		org, _, _ := createTestHierarchy(t, env.db)

		dept, err := svc.CreateDepartment(ctx, partner, &model.CreateDepartmentRequest{
			OrganizationID: org.OrganizationID,
			Name:           "アドバイザリー部",
		})
		require.NoError(t, err)
		assert.Equal(t, org.OrganizationID, dept.OrganizationID)

		depts, err := svc.ListDepartments(ctx, org.OrganizationID)
		require.NoError(t, err)
		assert.Len(t, depts, 2)
	})

	t.Run("異常系: 存在しない組織配下には作成できない", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)

		_, err := svc.CreateDepartment(ctx, partner, &model.CreateDepartmentRequest{
			OrganizationID: uuid.New(),
			Name:           "アドバイザリー部",
		})
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_orgService_Teams(t *testing.T) {
	ctx := context.Background()
	partner := model.Actor{UserID: uuid.New(), Role: model.RolePartner}

	t.Run("正常系: 部門への権限を持つマネージャはチームを作成できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		manager := createTestUser(t, env.db, "manager1", model.RoleManager)
		_, dept, _ := createTestHierarchy(t, env.db)
		assignDepartmentManager(t, env.db, dept.DepartmentID, manager.UserID)

		actor := model.Actor{UserID: manager.UserID, Role: model.RoleManager}
		team, err := svc.CreateTeam(ctx, actor, &model.CreateTeamRequest{
			DepartmentID: dept.DepartmentID,
			Name:         "第二チーム",
		})
		require.NoError(t, err)
		assert.Equal(t, dept.DepartmentID, team.DepartmentID)
	})

	t.Run("異常系: 権限のないマネージャはチームを作成できない", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		manager := createTestUser(t, env.db, "manager1", model.RoleManager)
		_, dept, _ := createTestHierarchy(t, env.db)

		actor := model.Actor{UserID: manager.UserID, Role: model.RoleManager}
		_, err := svc.CreateTeam(ctx, actor, &model.CreateTeamRequest{
			DepartmentID: dept.DepartmentID,
			Name:         "第二チーム",
		})
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})

	t.Run("正常系: チームの改名と削除", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		_, _, team := createTestHierarchy(t, env.db)

		newName := "改名後のチーム"
		renamed, err := svc.RenameTeam(ctx, partner, team.TeamID, &model.PatchNameRequest{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, newName, renamed.Name)

		require.NoError(t, svc.DeleteTeam(ctx, partner, team.TeamID))
		teams, err := svc.ListTeams(ctx, team.DepartmentID)
		require.NoError(t, err)
		assert.Len(t, teams, 0)
	})
}

func Test_orgService_TeamMembers(t *testing.T) {
	ctx := context.Background()
	partner := model.Actor{UserID: uuid.New(), Role: model.RolePartner}

	t.Run("正常系: メンバーの追加・一覧・削除", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)

		require.NoError(t, svc.AddTeamMember(ctx, partner, team.TeamID, user.UserID))

		members, err := svc.ListTeamMembers(ctx, team.TeamID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, user.UserID, members[0].UserID)
		assert.Equal(t, user.Name, members[0].Name)

		require.NoError(t, svc.RemoveTeamMember(ctx, partner, team.TeamID, user.UserID))
		members, err = svc.ListTeamMembers(ctx, team.TeamID)
		require.NoError(t, err)
		assert.Len(t, members, 0)
	})

	t.Run("異常系: 二重追加はConflict", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)

		require.NoError(t, svc.AddTeamMember(ctx, partner, team.TeamID, user.UserID))
		err := svc.AddTeamMember(ctx, partner, team.TeamID, user.UserID)
		assert.True(t, errors.Is(err, model.ErrConflict))
	})

	t.Run("異常系: 存在しないユーザーの追加はNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		_, _, team := createTestHierarchy(t, env.db)

		err := svc.AddTeamMember(ctx, partner, team.TeamID, uuid.New())
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_orgService_Managers(t *testing.T) {
	ctx := context.Background()
	partner := model.Actor{UserID: uuid.New(), Role: model.RolePartner}

	t.Run("正常系: マネージャをチームに割り当てられる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		manager := createTestUser(t, env.db, "manager1", model.RoleManager)
		_, _, team := createTestHierarchy(t, env.db)

		require.NoError(t, svc.AssignTeamManager(ctx, partner, team.TeamID, manager.UserID))

		ok, err := env.orgRepo.HasTeamAuthority(ctx, env.db, manager.UserID, team.TeamID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("正常系: 割り当てを解除できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		manager := createTestUser(t, env.db, "manager1", model.RoleManager)
		_, _, team := createTestHierarchy(t, env.db)
		require.NoError(t, svc.AssignTeamManager(ctx, partner, team.TeamID, manager.UserID))

		require.NoError(t, svc.UnassignTeamManager(ctx, partner, team.TeamID, manager.UserID))
		ok, err := env.orgRepo.HasTeamAuthority(ctx, env.db, manager.UserID, team.TeamID)
		require.NoError(t, err)
		assert.False(t, ok)

		// 解除済みの再解除はNotFound
		err = svc.UnassignTeamManager(ctx, partner, team.TeamID, manager.UserID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("異常系: スタッフはマネージャに割り当てられない", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		staff := createTestUser(t, env.db, "staff1", model.RoleStaff)
		_, _, team := createTestHierarchy(t, env.db)

		err := svc.AssignTeamManager(ctx, partner, team.TeamID, staff.UserID)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("正常系: 部門マネージャの割り当て", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newOrgService(env)
		manager := createTestUser(t, env.db, "manager1", model.RoleManager)
		_, dept, _ := createTestHierarchy(t, env.db)

		require.NoError(t, svc.AssignDepartmentManager(ctx, partner, dept.DepartmentID, manager.UserID))

		ok, err := env.orgRepo.HasDepartmentAuthority(ctx, env.db, manager.UserID, dept.DepartmentID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
