// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"log"
	"net/http"

	"go_cpd_track/internal/model"
	"go_cpd_track/internal/webutil"

	"github.com/google/uuid"
)

// DevActorContextMiddleware は開発時用ミドルウェアです。
// X-User-ID / X-User-Role ヘッダーから Actor を組み立ててコンテキストに設定します。
// DBでのユーザー存在チェックは行いません。
func DevActorContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			log.Println("[DEV AUTH] Failed: X-User-ID header missing")
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Missing X-User-ID header")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			log.Printf("[DEV AUTH] Failed: Invalid X-User-ID format: %s", userIDStr)
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Invalid X-User-ID format")
			return
		}

		role := model.Role(r.Header.Get("X-User-Role"))
		switch role {
		case model.RoleStaff, model.RoleManager, model.RolePartner:
		case "":
			role = model.RoleStaff
		default:
			log.Printf("[DEV AUTH] Failed: Invalid X-User-Role: %s", role)
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Invalid X-User-Role")
			return
		}

		// DB検証はスキップ
		actor := model.Actor{UserID: userID, Role: role}
		ctx := context.WithValue(r.Context(), model.ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
