//go:generate mockery --name OrgService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"

	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrgService は組織・部門・チームの階層と所属・権限割り当てを扱う
type OrgService interface {
	CreateOrganization(ctx context.Context, actor model.Actor, req *model.CreateOrganizationRequest) (*model.Organization, error)
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]*model.Organization, error)
	RenameOrganization(ctx context.Context, actor model.Actor, orgID uuid.UUID, req *model.PatchNameRequest) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, actor model.Actor, orgID uuid.UUID) error

	CreateDepartment(ctx context.Context, actor model.Actor, req *model.CreateDepartmentRequest) (*model.Department, error)
	ListDepartments(ctx context.Context, orgID uuid.UUID) ([]*model.Department, error)
	RenameDepartment(ctx context.Context, actor model.Actor, departmentID uuid.UUID, req *model.PatchNameRequest) (*model.Department, error)
	DeleteDepartment(ctx context.Context, actor model.Actor, departmentID uuid.UUID) error

	CreateTeam(ctx context.Context, actor model.Actor, req *model.CreateTeamRequest) (*model.Team, error)
	ListTeams(ctx context.Context, departmentID uuid.UUID) ([]*model.Team, error)
	RenameTeam(ctx context.Context, actor model.Actor, teamID uuid.UUID, req *model.PatchNameRequest) (*model.Team, error)
	DeleteTeam(ctx context.Context, actor model.Actor, teamID uuid.UUID) error

	AddTeamMember(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error
	ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]*model.UserResponse, error)

	AssignTeamManager(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error
	UnassignTeamManager(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error
	AssignDepartmentManager(ctx context.Context, actor model.Actor, departmentID, userID uuid.UUID) error
	UnassignDepartmentManager(ctx context.Context, actor model.Actor, departmentID, userID uuid.UUID) error
}

type orgService struct {
	db       *gorm.DB
	orgRepo  repository.OrgRepository
	userRepo repository.UserRepository
}

func NewOrgService(db *gorm.DB, orgRepo repository.OrgRepository, userRepo repository.UserRepository) OrgService {
	return &orgService{db: db, orgRepo: orgRepo, userRepo: userRepo}
}

func requirePartner(actor model.Actor) error {
	if actor.Role != model.RolePartner {
		return model.NewAppError("forbidden", "この操作にはパートナー権限が必要です", "", model.ErrForbidden)
	}
	return nil
}

// --- 組織 ---

func (s *orgService) CreateOrganization(ctx context.Context, actor model.Actor, req *model.CreateOrganizationRequest) (*model.Organization, error) {
	if err := requirePartner(actor); err != nil {
		return nil, err
	}
	org := &model.Organization{
		OrganizationID: uuid.New(),
		Name:           req.Name,
	}
	if err := s.orgRepo.CreateOrganization(ctx, s.db, org); err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Organization created", "organization_id", org.OrganizationID.String(), "name", org.Name)
	return org, nil
}

func (s *orgService) GetOrganization(ctx context.Context, orgID uuid.UUID) (*model.Organization, error) {
	return s.orgRepo.FindOrganizationByID(ctx, s.db, orgID)
}

func (s *orgService) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	return s.orgRepo.ListOrganizations(ctx, s.db)
}

func (s *orgService) RenameOrganization(ctx context.Context, actor model.Actor, orgID uuid.UUID, req *model.PatchNameRequest) (*model.Organization, error) {
	if err := requirePartner(actor); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.orgRepo.UpdateOrganization(ctx, s.db, orgID, map[string]interface{}{"name": *req.Name}); err != nil {
			return nil, err
		}
	}
	return s.orgRepo.FindOrganizationByID(ctx, s.db, orgID)
}

func (s *orgService) DeleteOrganization(ctx context.Context, actor model.Actor, orgID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	return s.orgRepo.DeleteOrganization(ctx, s.db, orgID)
}

// --- 部門 ---

func (s *orgService) CreateDepartment(ctx context.Context, actor model.Actor, req *model.CreateDepartmentRequest) (*model.Department, error) {
	if err := requirePartner(actor); err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.FindOrganizationByID(ctx, s.db, req.OrganizationID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("not_found", "対象の組織が見つかりません", "organization_id", model.ErrNotFound)
		}
		return nil, err
	}
	dept := &model.Department{
		DepartmentID:   uuid.New(),
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
	}
	if err := s.orgRepo.CreateDepartment(ctx, s.db, dept); err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Department created", "department_id", dept.DepartmentID.String(), "name", dept.Name)
	return dept, nil
}

func (s *orgService) ListDepartments(ctx context.Context, orgID uuid.UUID) ([]*model.Department, error) {
	return s.orgRepo.ListDepartmentsByOrganization(ctx, s.db, orgID)
}

func (s *orgService) RenameDepartment(ctx context.Context, actor model.Actor, departmentID uuid.UUID, req *model.PatchNameRequest) (*model.Department, error) {
	if err := requirePartner(actor); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.orgRepo.UpdateDepartment(ctx, s.db, departmentID, map[string]interface{}{"name": *req.Name}); err != nil {
			return nil, err
		}
	}
	return s.orgRepo.FindDepartmentByID(ctx, s.db, departmentID)
}

func (s *orgService) DeleteDepartment(ctx context.Context, actor model.Actor, departmentID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	return s.orgRepo.DeleteDepartment(ctx, s.db, departmentID)
}

// --- チーム ---

// requireDepartmentAuthority はパートナー、または部門への権限を持つマネージャを許可する
func (s *orgService) requireDepartmentAuthority(ctx context.Context, actor model.Actor, departmentID uuid.UUID) error {
	if actor.Role == model.RolePartner {
		return nil
	}
	if actor.Role == model.RoleManager {
		ok, err := s.orgRepo.HasDepartmentAuthority(ctx, s.db, actor.UserID, departmentID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return model.NewAppError("forbidden", "この部門を管理する権限がありません", "", model.ErrForbidden)
}

func (s *orgService) requireTeamAuthority(ctx context.Context, actor model.Actor, teamID uuid.UUID) error {
	if actor.Role == model.RolePartner {
		return nil
	}
	if actor.Role == model.RoleManager {
		ok, err := s.orgRepo.HasTeamAuthority(ctx, s.db, actor.UserID, teamID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return model.NewAppError("forbidden", "このチームを管理する権限がありません", "", model.ErrForbidden)
}

func (s *orgService) CreateTeam(ctx context.Context, actor model.Actor, req *model.CreateTeamRequest) (*model.Team, error) {
	if err := s.requireDepartmentAuthority(ctx, actor, req.DepartmentID); err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.FindDepartmentByID(ctx, s.db, req.DepartmentID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("not_found", "対象の部門が見つかりません", "department_id", model.ErrNotFound)
		}
		return nil, err
	}
	team := &model.Team{
		TeamID:       uuid.New(),
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
	}
	if err := s.orgRepo.CreateTeam(ctx, s.db, team); err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Team created", "team_id", team.TeamID.String(), "name", team.Name)
	return team, nil
}

func (s *orgService) ListTeams(ctx context.Context, departmentID uuid.UUID) ([]*model.Team, error) {
	return s.orgRepo.ListTeamsByDepartment(ctx, s.db, departmentID)
}

func (s *orgService) RenameTeam(ctx context.Context, actor model.Actor, teamID uuid.UUID, req *model.PatchNameRequest) (*model.Team, error) {
	if err := s.requireTeamAuthority(ctx, actor, teamID); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.orgRepo.UpdateTeam(ctx, s.db, teamID, map[string]interface{}{"name": *req.Name}); err != nil {
			return nil, err
		}
	}
	return s.orgRepo.FindTeamByID(ctx, s.db, teamID)
}

func (s *orgService) DeleteTeam(ctx context.Context, actor model.Actor, teamID uuid.UUID) error {
	if err := s.requireTeamAuthority(ctx, actor, teamID); err != nil {
		return err
	}
	return s.orgRepo.DeleteTeam(ctx, s.db, teamID)
}

// --- 所属 ---

func (s *orgService) AddTeamMember(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error {
	if err := s.requireTeamAuthority(ctx, actor, teamID); err != nil {
		return err
	}
	if _, err := s.orgRepo.FindTeamByID(ctx, s.db, teamID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, s.db, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("not_found", "対象のユーザーが見つかりません", "user_id", model.ErrNotFound)
		}
		return err
	}
	if err := s.orgRepo.AddTeamMember(ctx, s.db, teamID, userID); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.NewAppError("conflict", "このユーザーは既にチームに所属しています", "user_id", model.ErrConflict)
		}
		return err
	}
	middleware.GetLogger(ctx).Info("Team member added", "team_id", teamID.String(), "user_id", userID.String())
	return nil
}

func (s *orgService) RemoveTeamMember(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error {
	if err := s.requireTeamAuthority(ctx, actor, teamID); err != nil {
		return err
	}
	if err := s.orgRepo.RemoveTeamMember(ctx, s.db, teamID, userID); err != nil {
		return err
	}
	middleware.GetLogger(ctx).Info("Team member removed", "team_id", teamID.String(), "user_id", userID.String())
	return nil
}

func (s *orgService) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]*model.UserResponse, error) {
	if _, err := s.orgRepo.FindTeamByID(ctx, s.db, teamID); err != nil {
		return nil, err
	}
	userIDs, err := s.orgRepo.FindTeamMemberIDs(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, s.db, userIDs)
	if err != nil {
		return nil, err
	}
	responses := make([]*model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, model.NewUserResponse(user))
	}
	return responses, nil
}

// --- 権限割り当て ---

// verifyManagerRole は権限を割り当てる相手がマネージャ以上であることを確認する
func (s *orgService) verifyManagerRole(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("not_found", "対象のユーザーが見つかりません", "user_id", model.ErrNotFound)
		}
		return err
	}
	if user.Role != model.RoleManager && user.Role != model.RolePartner {
		return model.NewAppError("invalid_request", "マネージャ権限のないユーザーには割り当てられません", "user_id", model.ErrInvalidInput)
	}
	return nil
}

func (s *orgService) AssignTeamManager(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	if _, err := s.orgRepo.FindTeamByID(ctx, s.db, teamID); err != nil {
		return err
	}
	if err := s.verifyManagerRole(ctx, userID); err != nil {
		return err
	}
	if err := s.orgRepo.AssignTeamManager(ctx, s.db, teamID, userID); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.NewAppError("conflict", "このユーザーには既に割り当て済みです", "user_id", model.ErrConflict)
		}
		return err
	}
	middleware.GetLogger(ctx).Info("Team manager assigned", "team_id", teamID.String(), "user_id", userID.String())
	return nil
}

func (s *orgService) UnassignTeamManager(ctx context.Context, actor model.Actor, teamID, userID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	if err := s.orgRepo.UnassignTeamManager(ctx, s.db, teamID, userID); err != nil {
		return err
	}
	middleware.GetLogger(ctx).Info("Team manager unassigned", "team_id", teamID.String(), "user_id", userID.String())
	return nil
}

func (s *orgService) AssignDepartmentManager(ctx context.Context, actor model.Actor, departmentID, userID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	if _, err := s.orgRepo.FindDepartmentByID(ctx, s.db, departmentID); err != nil {
		return err
	}
	if err := s.verifyManagerRole(ctx, userID); err != nil {
		return err
	}
	if err := s.orgRepo.AssignDepartmentManager(ctx, s.db, departmentID, userID); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.NewAppError("conflict", "このユーザーには既に割り当て済みです", "user_id", model.ErrConflict)
		}
		return err
	}
	middleware.GetLogger(ctx).Info("Department manager assigned", "department_id", departmentID.String(), "user_id", userID.String())
	return nil
}

func (s *orgService) UnassignDepartmentManager(ctx context.Context, actor model.Actor, departmentID, userID uuid.UUID) error {
	if err := requirePartner(actor); err != nil {
		return err
	}
	if err := s.orgRepo.UnassignDepartmentManager(ctx, s.db, departmentID, userID); err != nil {
		return err
	}
	middleware.GetLogger(ctx).Info("Department manager unassigned", "department_id", departmentID.String(), "user_id", userID.String())
	return nil
}
