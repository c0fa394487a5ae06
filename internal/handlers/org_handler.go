package handlers

import (
	"log/slog"
	"net/http"

	"go_cpd_track/internal/model"
	"go_cpd_track/internal/service"
	"go_cpd_track/internal/webutil"
)

type OrgHandler struct {
	service service.OrgService
	logger  *slog.Logger
}

func NewOrgHandler(s service.OrgService, logger *slog.Logger) *OrgHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgHandler{
		service: s,
		logger:  logger,
	}
}

// --- 組織 ---

func (h *OrgHandler) PostOrganization(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostOrganization"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateOrganizationRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	org, err := h.service.CreateOrganization(r.Context(), actor, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, org, logger)
}

func (h *OrgHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetOrganization"))

	if _, err := requireActor(r, logger); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	orgID, err := parseUUIDParam(r, "organization_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	org, err := h.service.GetOrganization(r.Context(), orgID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, org, logger)
}

func (h *OrgHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListOrganizations"))

	if _, err := requireActor(r, logger); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	orgs, err := h.service.ListOrganizations(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, orgs, logger)
}

func (h *OrgHandler) PatchOrganization(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchOrganization"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	orgID, err := parseUUIDParam(r, "organization_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchNameRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	org, err := h.service.RenameOrganization(r.Context(), actor, orgID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, org, logger)
}

func (h *OrgHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteOrganization"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	orgID, err := parseUUIDParam(r, "organization_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteOrganization(r.Context(), actor, orgID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 部門 ---

func (h *OrgHandler) PostDepartment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostDepartment"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	orgID, err := parseUUIDParam(r, "organization_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateDepartmentRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	req.OrganizationID = orgID

	dept, err := h.service.CreateDepartment(r.Context(), actor, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, dept, logger)
}

func (h *OrgHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListDepartments"))

	if _, err := requireActor(r, logger); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	orgID, err := parseUUIDParam(r, "organization_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	depts, err := h.service.ListDepartments(r.Context(), orgID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, depts, logger)
}

func (h *OrgHandler) PatchDepartment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchDepartment"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchNameRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	dept, err := h.service.RenameDepartment(r.Context(), actor, departmentID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, dept, logger)
}

func (h *OrgHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteDepartment"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteDepartment(r.Context(), actor, departmentID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- チーム ---

func (h *OrgHandler) PostTeam(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTeam"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateTeamRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	req.DepartmentID = departmentID

	team, err := h.service.CreateTeam(r.Context(), actor, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, team, logger)
}

func (h *OrgHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListTeams"))

	if _, err := requireActor(r, logger); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	teams, err := h.service.ListTeams(r.Context(), departmentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, teams, logger)
}

func (h *OrgHandler) PatchTeam(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchTeam"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchNameRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	team, err := h.service.RenameTeam(r.Context(), actor, teamID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, team, logger)
}

func (h *OrgHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteTeam"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteTeam(r.Context(), actor, teamID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 所属 ---

func (h *OrgHandler) PostTeamMember(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTeamMember"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.AddMemberRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.AddTeamMember(r.Context(), actor, teamID, req.UserID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteTeamMember"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.RemoveTeamMember(r.Context(), actor, teamID, userID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListTeamMembers"))

	if _, err := requireActor(r, logger); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	members, err := h.service.ListTeamMembers(r.Context(), teamID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, members, logger)
}

// --- 権限割り当て ---

func (h *OrgHandler) PostTeamManager(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTeamManager"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.AddMemberRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.AssignTeamManager(r.Context(), actor, teamID, req.UserID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) DeleteTeamManager(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteTeamManager"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	teamID, err := parseUUIDParam(r, "team_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.UnassignTeamManager(r.Context(), actor, teamID, userID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) PostDepartmentManager(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostDepartmentManager"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.AddMemberRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.AssignDepartmentManager(r.Context(), actor, departmentID, req.UserID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrgHandler) DeleteDepartmentManager(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteDepartmentManager"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	departmentID, err := parseUUIDParam(r, "department_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.UnassignDepartmentManager(r.Context(), actor, departmentID, userID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
