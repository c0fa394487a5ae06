package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/service"
	"go_cpd_track/internal/webutil"
)

type GoalHandler struct {
	service  service.GoalService
	progress service.ProgressService
	logger   *slog.Logger
}

func NewGoalHandler(s service.GoalService, progress service.ProgressService, logger *slog.Logger) *GoalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalHandler{
		service:  s,
		progress: progress,
		logger:   logger,
	}
}

// PostGoal は目標を作成するハンドラ
func (h *GoalHandler) PostGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("user_id", actor.UserID.String()))

	var req model.CreateGoalRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	goal, err := h.service.CreateGoal(r.Context(), actor, &req)
	if err != nil {
		logger.Error("Error creating goal in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Goal created successfully", slog.String("goal_id", goal.GoalID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, goal, logger)
}

// GetGoal は目標を1件取得するハンドラ。最新の進捗を反映して返す
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	goal, err := h.service.GetGoal(r.Context(), actor, goalID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goal, logger)
}

// ListGoals は閲覧可能な目標の一覧を返すハンドラ。status クエリで絞り込める
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListGoals"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var filter model.GoalFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.GoalStatus(raw)
		switch status {
		case model.GoalStatusActive, model.GoalStatusCompleted, model.GoalStatusCancelled, model.GoalStatusOverdue:
			filter.Status = &status
		default:
			appErr := model.NewAppError("INVALID_PARAMETER", "指定された状態は無効です。", "status", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
	}

	goals, err := h.service.ListGoals(r.Context(), actor, filter)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goals, logger)
}

// PatchGoal は目標を部分更新するハンドラ
func (h *GoalHandler) PatchGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchGoalRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	goal, err := h.service.PatchGoal(r.Context(), actor, goalID, &req)
	if err != nil {
		logger.Error("Error patching goal in service", slog.Any("error", err), slog.String("goal_id", goalID.String()))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goal, logger)
}

// CancelGoal は目標を取り消すハンドラ
func (h *GoalHandler) CancelGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CancelGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.CancelGoal(r.Context(), actor, goalID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReactivateGoal は取消済みの目標を再開するハンドラ
func (h *GoalHandler) ReactivateGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ReactivateGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	goal, err := h.service.ReactivateGoal(r.Context(), actor, goalID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goal, logger)
}

// DeleteGoal は目標を削除するハンドラ
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteGoal"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteGoal(r.Context(), actor, goalID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetParticipants はチーム/部門目標のメンバー別進捗を返すハンドラ
func (h *GoalHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetParticipants"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	goalID, err := parseUUIDParam(r, "goal_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	participants, err := h.progress.GetTeamGoalProgress(r.Context(), actor, goalID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, participants, logger)
}

// GetDeadlines は期限が近い目標の一覧を返すハンドラ。
// within_days の指定がなければ設定値を使う
func (h *GoalHandler) GetDeadlines(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDeadlines"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	withinDays := config.Cfg.App.DeadlineWarningDays
	if raw := r.URL.Query().Get("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			appErr := model.NewAppError("INVALID_PARAMETER", "日数には0以上の整数を指定してください。", "within_days", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		withinDays = parsed
	}

	goals, err := h.progress.GetApproachingDeadlineGoals(r.Context(), actor, withinDays)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goals, logger)
}

// GetOverdue は期限超過の目標の一覧を返すハンドラ
func (h *GoalHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetOverdue"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	goals, err := h.progress.GetOverdueGoals(r.Context(), actor)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, goals, logger)
}
