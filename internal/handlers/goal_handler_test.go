// internal/handlers/goal_handler_test.go
package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_cpd_track/internal/handlers"
	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/service/mocks"
)

func newGoalRouter(t *testing.T) (*mocks.GoalService, *mocks.ProgressService, *chi.Mux) {
	t.Helper()
	mockService := mocks.NewGoalService(t)
	mockProgress := mocks.NewProgressService(t)
	handler := handlers.NewGoalHandler(mockService, mockProgress, nil)

	router := chi.NewRouter()
	router.Use(middleware.DevActorContextMiddleware)
	router.Route("/api/v1/goals", func(r chi.Router) {
		r.Post("/", handler.PostGoal)
		r.Get("/", handler.ListGoals)
		r.Get("/deadlines", handler.GetDeadlines)
		r.Get("/overdue", handler.GetOverdue)
		r.Get("/{goal_id}", handler.GetGoal)
		r.Patch("/{goal_id}", handler.PatchGoal)
		r.Delete("/{goal_id}", handler.DeleteGoal)
		r.Post("/{goal_id}/cancel", handler.CancelGoal)
		r.Post("/{goal_id}/reactivate", handler.ReactivateGoal)
		r.Get("/{goal_id}/participants", handler.GetParticipants)
	})
	return mockService, mockProgress, router
}

func TestGoalHandler_PostGoal(t *testing.T) {
	actor := staffActor()
	targetUserID := actor.UserID

	validReq := model.CreateGoalRequest{
		GoalType:     "individual",
		TargetUserID: &targetUserID,
		Title:        "年間CPD時間目標",
		TargetHours:  40,
		Deadline:     "2026-12-31",
	}
	expected := &model.GoalResponse{
		Goal: model.Goal{
			GoalID:       uuid.New(),
			GoalType:     model.GoalTypeIndividual,
			TargetUserID: &targetUserID,
			SetBy:        actor.UserID,
			Title:        validReq.Title,
			TargetHours:  validReq.TargetHours,
			Deadline:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Status:       model.GoalStatusActive,
		},
	}

	tests := []struct {
		name           string
		actor          *model.Actor
		body           interface{}
		setupMock      func(m *mocks.GoalService)
		expectedStatus int
	}{
		{
			name:  "正常系: 有効なリクエストで201",
			actor: actor,
			body:  validReq,
			setupMock: func(m *mocks.GoalService) {
				m.On("CreateGoal", mock.Anything, *actor, &validReq).Return(expected, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: 認証ヘッダーなしで401",
			actor:          nil,
			body:           validReq,
			setupMock:      func(m *mocks.GoalService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: タイトル欠落で400",
			actor:          actor,
			body:           model.CreateGoalRequest{GoalType: "individual", TargetHours: 40, Deadline: "2026-12-31"},
			setupMock:      func(m *mocks.GoalService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: JSONとして不正なボディで400",
			actor:          actor,
			body:           `{"goal_type": `,
			setupMock:      func(m *mocks.GoalService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "異常系: サービスが権限エラーを返すと403",
			actor: actor,
			body:  validReq,
			setupMock: func(m *mocks.GoalService) {
				m.On("CreateGoal", mock.Anything, *actor, &validReq).Return(nil, model.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService, _, router := newGoalRouter(t)
			tc.setupMock(mockService)

			req := createRequest(t, "POST", "/api/v1/goals", tc.body, tc.actor)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusCreated {
				var got model.GoalResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, expected.GoalID, got.GoalID)
				assert.Equal(t, expected.Title, got.Title)
			}
		})
	}
}

func TestGoalHandler_GetGoal(t *testing.T) {
	actor := staffActor()
	goalID := uuid.New()

	t.Run("正常系: 200と目標が返る", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		expected := &model.GoalResponse{Goal: model.Goal{GoalID: goalID, Title: "年間CPD時間目標"}}
		mockService.On("GetGoal", mock.Anything, *actor, goalID).Return(expected, nil).Once()

		req := createRequest(t, "GET", "/api/v1/goals/"+goalID.String(), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got model.GoalResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, goalID, got.GoalID)
	})

	t.Run("異常系: UUIDでないIDは400", func(t *testing.T) {
		_, _, router := newGoalRouter(t)

		req := createRequest(t, "GET", "/api/v1/goals/not-a-uuid", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("異常系: 存在しない目標は404", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		mockService.On("GetGoal", mock.Anything, *actor, goalID).Return(nil, model.ErrNotFound).Once()

		req := createRequest(t, "GET", "/api/v1/goals/"+goalID.String(), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		errResp := decodeErrorResponse(t, rr.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", errResp.Error.Code)
	})

	t.Run("異常系: 閲覧権限がない目標は403", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		mockService.On("GetGoal", mock.Anything, *actor, goalID).Return(nil, model.ErrForbidden).Once()

		req := createRequest(t, "GET", "/api/v1/goals/"+goalID.String(), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestGoalHandler_ListGoals(t *testing.T) {
	actor := staffActor()

	t.Run("正常系: statusクエリで絞り込める", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		status := model.GoalStatusActive
		mockService.On("ListGoals", mock.Anything, *actor, model.GoalFilter{Status: &status}).
			Return([]*model.GoalResponse{}, nil).Once()

		req := createRequest(t, "GET", "/api/v1/goals?status=active", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("異常系: 不正なstatusは400", func(t *testing.T) {
		_, _, router := newGoalRouter(t)

		req := createRequest(t, "GET", "/api/v1/goals?status=unknown", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGoalHandler_CancelGoal(t *testing.T) {
	actor := staffActor()
	goalID := uuid.New()

	t.Run("正常系: 取消で204", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		mockService.On("CancelGoal", mock.Anything, *actor, goalID).Return(nil).Once()

		req := createRequest(t, "POST", fmt.Sprintf("/api/v1/goals/%s/cancel", goalID), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("異常系: 完了済みの取消は409", func(t *testing.T) {
		mockService, _, router := newGoalRouter(t)
		mockService.On("CancelGoal", mock.Anything, *actor, goalID).Return(model.ErrConflict).Once()

		req := createRequest(t, "POST", fmt.Sprintf("/api/v1/goals/%s/cancel", goalID), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestGoalHandler_GetDeadlines(t *testing.T) {
	actor := staffActor()

	t.Run("正常系: 指定なしは設定値の日数で検索する", func(t *testing.T) {
		_, mockProgress, router := newGoalRouter(t)
		mockProgress.On("GetApproachingDeadlineGoals", mock.Anything, *actor, 7).
			Return([]*model.GoalResponse{}, nil).Once()

		req := createRequest(t, "GET", "/api/v1/goals/deadlines", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("正常系: within_daysクエリで上書きできる", func(t *testing.T) {
		_, mockProgress, router := newGoalRouter(t)
		mockProgress.On("GetApproachingDeadlineGoals", mock.Anything, *actor, 3).
			Return([]*model.GoalResponse{}, nil).Once()

		req := createRequest(t, "GET", "/api/v1/goals/deadlines?within_days=3", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("異常系: 数値でないwithin_daysは400", func(t *testing.T) {
		_, _, router := newGoalRouter(t)

		req := createRequest(t, "GET", "/api/v1/goals/deadlines?within_days=abc", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("異常系: 負のwithin_daysは400", func(t *testing.T) {
		_, _, router := newGoalRouter(t)

		req := createRequest(t, "GET", "/api/v1/goals/deadlines?within_days=-1", nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGoalHandler_GetParticipants(t *testing.T) {
	actor := staffActor()
	goalID := uuid.New()

	t.Run("正常系: 参加者別の進捗が返る", func(t *testing.T) {
		_, mockProgress, router := newGoalRouter(t)
		participants := []*model.ParticipantProgress{
			{UserID: uuid.New(), UserName: "山田太郎", CurrentHours: 8, ProgressPercentage: 80},
			{UserID: uuid.New(), UserName: "佐藤花子", CurrentHours: 2, ProgressPercentage: 20},
		}
		mockProgress.On("GetTeamGoalProgress", mock.Anything, *actor, goalID).Return(participants, nil).Once()

		req := createRequest(t, "GET", fmt.Sprintf("/api/v1/goals/%s/participants", goalID), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []*model.ParticipantProgress
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "山田太郎", got[0].UserName)
	})

	t.Run("異常系: 個人目標への要求は400", func(t *testing.T) {
		_, mockProgress, router := newGoalRouter(t)
		appErr := model.NewAppError("invalid_request", "個人目標には参加者別の進捗はありません", "goal_id", model.ErrInvalidInput)
		mockProgress.On("GetTeamGoalProgress", mock.Anything, *actor, goalID).Return(nil, appErr).Once()

		req := createRequest(t, "GET", fmt.Sprintf("/api/v1/goals/%s/participants", goalID), nil, actor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
