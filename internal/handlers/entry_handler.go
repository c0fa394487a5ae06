package handlers

import (
	"log/slog"
	"net/http"

	"go_cpd_track/internal/model"
	"go_cpd_track/internal/service"
	"go_cpd_track/internal/webutil"

	"github.com/google/uuid"
)

type EntryHandler struct {
	service service.EntryService
	logger  *slog.Logger
}

func NewEntryHandler(s service.EntryService, logger *slog.Logger) *EntryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryHandler{
		service: s,
		logger:  logger,
	}
}

// PostEntry はCPD記録を作成するハンドラ
func (h *EntryHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEntry"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("user_id", actor.UserID.String()))

	var req model.CreateEntryRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), actor, &req)
	if err != nil {
		logger.Error("Error creating entry in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Entry created successfully", slog.String("entry_id", entry.EntryID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, entry, logger)
}

// GetEntry はCPD記録を1件取得するハンドラ
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetEntry"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	entryID, err := parseUUIDParam(r, "entry_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entry, err := h.service.GetEntry(r.Context(), actor, entryID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, entry, logger)
}

// ListEntries はCPD記録の一覧を返すハンドラ。
// user_id クエリパラメータの指定がなければ自分の記録を返す
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListEntries"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	targetUserID := actor.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			appErr := model.NewAppError("INVALID_PARAMETER", "IDの形式が正しくありません。", "user_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		targetUserID = parsed
	}

	entries, err := h.service.ListEntries(r.Context(), actor, targetUserID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, entries, logger)
}

// PatchEntry はCPD記録を部分更新するハンドラ
func (h *EntryHandler) PatchEntry(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchEntry"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	entryID, err := parseUUIDParam(r, "entry_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PatchEntryRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entry, err := h.service.PatchEntry(r.Context(), actor, entryID, &req)
	if err != nil {
		logger.Error("Error patching entry in service", slog.Any("error", err), slog.String("entry_id", entryID.String()))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, entry, logger)
}

// DeleteEntry はCPD記録を削除するハンドラ
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteEntry"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	entryID, err := parseUUIDParam(r, "entry_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteEntry(r.Context(), actor, entryID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReviewEntry はCPD記録を承認するハンドラ
func (h *EntryHandler) ReviewEntry(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ReviewEntry"))

	actor, err := requireActor(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	entryID, err := parseUUIDParam(r, "entry_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.ReviewEntryRequest
	if err := decodeAndValidate(r, logger, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entry, err := h.service.ReviewEntry(r.Context(), actor, entryID, &req)
	if err != nil {
		logger.Error("Error reviewing entry in service", slog.Any("error", err), slog.String("entry_id", entryID.String()))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Entry reviewed successfully", slog.String("entry_id", entryID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, entry, logger)
}
