//go:generate mockery --name OrgRepository --output ./mocks --outpkg mocks --case=underscore
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

// OrgRepository は組織・部門・チームの階層と所属・権限割り当てを扱うリポジトリ
type OrgRepository interface {
	// 組織
	CreateOrganization(ctx context.Context, tx *gorm.DB, org *model.Organization) error
	FindOrganizationByID(ctx context.Context, db *gorm.DB, orgID uuid.UUID) (*model.Organization, error)
	ListOrganizations(ctx context.Context, db *gorm.DB) ([]*model.Organization, error)
	UpdateOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, updates map[string]interface{}) error
	DeleteOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error

	// 部門
	CreateDepartment(ctx context.Context, tx *gorm.DB, dept *model.Department) error
	FindDepartmentByID(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) (*model.Department, error)
	ListDepartmentsByOrganization(ctx context.Context, db *gorm.DB, orgID uuid.UUID) ([]*model.Department, error)
	UpdateDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID, updates map[string]interface{}) error
	DeleteDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID) error

	// チーム
	CreateTeam(ctx context.Context, tx *gorm.DB, team *model.Team) error
	FindTeamByID(ctx context.Context, db *gorm.DB, teamID uuid.UUID) (*model.Team, error)
	ListTeamsByDepartment(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) ([]*model.Team, error)
	UpdateTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, updates map[string]interface{}) error
	DeleteTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) error

	// 所属 (目標の対象母集団の解決に使用)
	AddTeamMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error
	FindTeamMemberIDs(ctx context.Context, db *gorm.DB, teamID uuid.UUID) ([]uuid.UUID, error)
	FindDepartmentMemberIDs(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) ([]uuid.UUID, error)
	FindTeamIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	FindDepartmentIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)

	// マネージャ/パートナーの権限割り当て
	AssignTeamManager(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error
	UnassignTeamManager(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error
	AssignDepartmentManager(ctx context.Context, tx *gorm.DB, departmentID, userID uuid.UUID) error
	UnassignDepartmentManager(ctx context.Context, tx *gorm.DB, departmentID, userID uuid.UUID) error
	FindManagedTeamIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	FindManagedDepartmentIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	HasTeamAuthority(ctx context.Context, db *gorm.DB, userID, teamID uuid.UUID) (bool, error)
	HasDepartmentAuthority(ctx context.Context, db *gorm.DB, userID, departmentID uuid.UUID) (bool, error)
	HasAuthorityOverUser(ctx context.Context, db *gorm.DB, managerID, userID uuid.UUID) (bool, error)
}

type gormOrgRepository struct{}

func NewGormOrgRepository() OrgRepository {
	return &gormOrgRepository{}
}

// --- 組織 ---

func (r *gormOrgRepository) CreateOrganization(ctx context.Context, tx *gorm.DB, org *model.Organization) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(org)
	if result.Error != nil {
		logger.Error("Error creating organization in DB", "error", result.Error, "name", org.Name)
		return fmt.Errorf("gormOrgRepository.CreateOrganization: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) FindOrganizationByID(ctx context.Context, db *gorm.DB, orgID uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	result := db.WithContext(ctx).Where("organization_id = ?", orgID).First(&org)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOrgRepository.FindOrganizationByID: %w", result.Error)
	}
	return &org, nil
}

func (r *gormOrgRepository) ListOrganizations(ctx context.Context, db *gorm.DB) ([]*model.Organization, error) {
	var orgs []*model.Organization
	result := db.WithContext(ctx).Order("created_at ASC").Find(&orgs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.ListOrganizations: %w", result.Error)
	}
	return orgs, nil
}

func (r *gormOrgRepository) UpdateOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Organization{}).Where("organization_id = ?", orgID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.UpdateOrganization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) DeleteOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("organization_id = ?", orgID).Delete(&model.Organization{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.DeleteOrganization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- 部門 ---

func (r *gormOrgRepository) CreateDepartment(ctx context.Context, tx *gorm.DB, dept *model.Department) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(dept)
	if result.Error != nil {
		logger.Error("Error creating department in DB", "error", result.Error, "name", dept.Name)
		return fmt.Errorf("gormOrgRepository.CreateDepartment: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) FindDepartmentByID(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) (*model.Department, error) {
	var dept model.Department
	result := db.WithContext(ctx).Where("department_id = ?", departmentID).First(&dept)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOrgRepository.FindDepartmentByID: %w", result.Error)
	}
	return &dept, nil
}

func (r *gormOrgRepository) ListDepartmentsByOrganization(ctx context.Context, db *gorm.DB, orgID uuid.UUID) ([]*model.Department, error) {
	var depts []*model.Department
	result := db.WithContext(ctx).Where("organization_id = ?", orgID).Order("created_at ASC").Find(&depts)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.ListDepartmentsByOrganization: %w", result.Error)
	}
	return depts, nil
}

func (r *gormOrgRepository) UpdateDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Department{}).Where("department_id = ?", departmentID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.UpdateDepartment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) DeleteDepartment(ctx context.Context, tx *gorm.DB, departmentID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("department_id = ?", departmentID).Delete(&model.Department{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.DeleteDepartment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- チーム ---

func (r *gormOrgRepository) CreateTeam(ctx context.Context, tx *gorm.DB, team *model.Team) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(team)
	if result.Error != nil {
		logger.Error("Error creating team in DB", "error", result.Error, "name", team.Name)
		return fmt.Errorf("gormOrgRepository.CreateTeam: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) FindTeamByID(ctx context.Context, db *gorm.DB, teamID uuid.UUID) (*model.Team, error) {
	var team model.Team
	result := db.WithContext(ctx).Where("team_id = ?", teamID).First(&team)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOrgRepository.FindTeamByID: %w", result.Error)
	}
	return &team, nil
}

func (r *gormOrgRepository) ListTeamsByDepartment(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) ([]*model.Team, error) {
	var teams []*model.Team
	result := db.WithContext(ctx).Where("department_id = ?", departmentID).Order("created_at ASC").Find(&teams)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.ListTeamsByDepartment: %w", result.Error)
	}
	return teams, nil
}

func (r *gormOrgRepository) UpdateTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Team{}).Where("team_id = ?", teamID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.UpdateTeam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) DeleteTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("team_id = ?", teamID).Delete(&model.Team{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.DeleteTeam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- 所属 ---

func (r *gormOrgRepository) AddTeamMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	member := model.UserTeam{TeamID: teamID, UserID: userID}
	result := tx.WithContext(ctx).Create(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error adding team member in DB",
			"error", result.Error,
			"team_id", teamID.String(),
			"user_id", userID.String(),
		)
		return fmt.Errorf("gormOrgRepository.AddTeamMember: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) RemoveTeamMember(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&model.UserTeam{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.RemoveTeamMember: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) FindTeamMemberIDs(ctx context.Context, db *gorm.DB, teamID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.UserTeam{}).
		Where("team_id = ?", teamID).
		Pluck("user_id", &userIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindTeamMemberIDs: %w", result.Error)
	}
	return userIDs, nil
}

func (r *gormOrgRepository) FindDepartmentMemberIDs(ctx context.Context, db *gorm.DB, departmentID uuid.UUID) ([]uuid.UUID, error) {
	// 部門配下の全チームの所属ユーザーの和集合
	var userIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.UserTeam{}).
		Distinct("user_teams.user_id").
		Joins("JOIN teams ON teams.team_id = user_teams.team_id AND teams.deleted_at IS NULL").
		Where("teams.department_id = ?", departmentID).
		Pluck("user_teams.user_id", &userIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindDepartmentMemberIDs: %w", result.Error)
	}
	return userIDs, nil
}

func (r *gormOrgRepository) FindTeamIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var teamIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.UserTeam{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &teamIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindTeamIDsByUser: %w", result.Error)
	}
	return teamIDs, nil
}

func (r *gormOrgRepository) FindDepartmentIDsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var departmentIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.UserTeam{}).
		Distinct("teams.department_id").
		Joins("JOIN teams ON teams.team_id = user_teams.team_id AND teams.deleted_at IS NULL").
		Where("user_teams.user_id = ?", userID).
		Pluck("teams.department_id", &departmentIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindDepartmentIDsByUser: %w", result.Error)
	}
	return departmentIDs, nil
}

// --- 権限割り当て ---

func (r *gormOrgRepository) AssignTeamManager(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error {
	assignment := model.TeamManager{TeamID: teamID, UserID: userID}
	result := tx.WithContext(ctx).Create(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		return fmt.Errorf("gormOrgRepository.AssignTeamManager: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) UnassignTeamManager(ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&model.TeamManager{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.UnassignTeamManager: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) AssignDepartmentManager(ctx context.Context, tx *gorm.DB, departmentID, userID uuid.UUID) error {
	assignment := model.DepartmentManager{DepartmentID: departmentID, UserID: userID}
	result := tx.WithContext(ctx).Create(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		return fmt.Errorf("gormOrgRepository.AssignDepartmentManager: %w", result.Error)
	}
	return nil
}

func (r *gormOrgRepository) UnassignDepartmentManager(ctx context.Context, tx *gorm.DB, departmentID, userID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("department_id = ? AND user_id = ?", departmentID, userID).Delete(&model.DepartmentManager{})
	if result.Error != nil {
		return fmt.Errorf("gormOrgRepository.UnassignDepartmentManager: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOrgRepository) FindManagedTeamIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var teamIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.TeamManager{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &teamIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindManagedTeamIDs: %w", result.Error)
	}
	return teamIDs, nil
}

func (r *gormOrgRepository) FindManagedDepartmentIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var departmentIDs []uuid.UUID
	result := db.WithContext(ctx).Model(&model.DepartmentManager{}).
		Where("user_id = ?", userID).
		Pluck("department_id", &departmentIDs)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOrgRepository.FindManagedDepartmentIDs: %w", result.Error)
	}
	return departmentIDs, nil
}

func (r *gormOrgRepository) HasTeamAuthority(ctx context.Context, db *gorm.DB, userID, teamID uuid.UUID) (bool, error) {
	// 直接のチーム権限、またはチームが属する部門への権限
	var count int64
	result := db.WithContext(ctx).Model(&model.TeamManager{}).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormOrgRepository.HasTeamAuthority: %w", result.Error)
	}
	if count > 0 {
		return true, nil
	}
	result = db.WithContext(ctx).Model(&model.DepartmentManager{}).
		Joins("JOIN teams ON teams.department_id = department_managers.department_id AND teams.deleted_at IS NULL").
		Where("department_managers.user_id = ? AND teams.team_id = ?", userID, teamID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormOrgRepository.HasTeamAuthority: %w", result.Error)
	}
	return count > 0, nil
}

func (r *gormOrgRepository) HasDepartmentAuthority(ctx context.Context, db *gorm.DB, userID, departmentID uuid.UUID) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.DepartmentManager{}).
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormOrgRepository.HasDepartmentAuthority: %w", result.Error)
	}
	return count > 0, nil
}

func (r *gormOrgRepository) HasAuthorityOverUser(ctx context.Context, db *gorm.DB, managerID, userID uuid.UUID) (bool, error) {
	// 対象ユーザーが所属するいずれかのチームへの直接権限
	var count int64
	result := db.WithContext(ctx).Model(&model.TeamManager{}).
		Joins("JOIN user_teams ON user_teams.team_id = team_managers.team_id").
		Where("team_managers.user_id = ? AND user_teams.user_id = ?", managerID, userID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormOrgRepository.HasAuthorityOverUser: %w", result.Error)
	}
	if count > 0 {
		return true, nil
	}

	// 対象ユーザーのチームが属する部門への権限
	result = db.WithContext(ctx).Model(&model.DepartmentManager{}).
		Joins("JOIN teams ON teams.department_id = department_managers.department_id AND teams.deleted_at IS NULL").
		Joins("JOIN user_teams ON user_teams.team_id = teams.team_id").
		Where("department_managers.user_id = ? AND user_teams.user_id = ?", managerID, userID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormOrgRepository.HasAuthorityOverUser: %w", result.Error)
	}
	return count > 0, nil
}
