package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// requireActor は認証済みユーザーを取り出す。未認証は AppError を返す
func requireActor(r *http.Request, logger *slog.Logger) (model.Actor, error) {
	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		return model.Actor{}, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
	}
	return actor, nil
}

// decodeAndValidate はリクエストボディのデコードとバリデーションをまとめて行う。
// バリデーションエラーは最初の1件を日本語メッセージに翻訳して返す
func decodeAndValidate(r *http.Request, logger *slog.Logger, dst interface{}) error {
	if err := webutil.DecodeJSONBody(r, dst); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		return model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
	}

	if err := webutil.Validator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))
			firstErr := validationErrors[0]
			translatedMsg := firstErr.Translate(webutil.Trans)
			return model.NewAppError(
				"VALIDATION_ERROR",
				translatedMsg,
				firstErr.Field(),
				model.ErrInvalidInput,
			)
		}
		logger.Error("Unexpected error during validation", slog.Any("error", err))
		return err
	}
	return nil
}

// parseUUIDParam はURLパスパラメータをUUIDとして解釈する
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_PARAMETER", "IDの形式が正しくありません。", name, model.ErrInvalidInput)
	}
	return id, nil
}
