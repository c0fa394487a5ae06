//go:generate mockery --name EntryService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"time"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"
	"go_cpd_track/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryService はCPD記録の登録・変更・レビューを扱う。
// 記録の変更と影響を受ける目標の再計算は同一トランザクションで行い、
// 記録と進捗キャッシュが食い違った状態を外部に見せない
type EntryService interface {
	CreateEntry(ctx context.Context, actor model.Actor, req *model.CreateEntryRequest) (*model.CPDEntry, error)
	GetEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID) (*model.CPDEntry, error)
	ListEntries(ctx context.Context, actor model.Actor, userID uuid.UUID) ([]*model.CPDEntry, error)
	PatchEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID, req *model.PatchEntryRequest) (*model.CPDEntry, error)
	DeleteEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID) error
	// ReviewEntry は記録を承認する。レビュー状態は進捗集計に影響しないため再計算は行わない
	ReviewEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID, req *model.ReviewEntryRequest) (*model.CPDEntry, error)
}

type entryService struct {
	db        *gorm.DB
	entryRepo repository.EntryRepository
	orgRepo   repository.OrgRepository
	progress  ProgressService
}

func NewEntryService(
	db *gorm.DB,
	entryRepo repository.EntryRepository,
	orgRepo repository.OrgRepository,
	progress ProgressService,
) EntryService {
	return &entryService{
		db:        db,
		entryRepo: entryRepo,
		orgRepo:   orgRepo,
		progress:  progress,
	}
}

func (s *entryService) CreateEntry(ctx context.Context, actor model.Actor, req *model.CreateEntryRequest) (*model.CPDEntry, error) {
	logger := middleware.GetLogger(ctx)

	dateCompleted, err := time.Parse(config.DateLayout, req.DateCompleted)
	if err != nil {
		return nil, model.NewAppError("invalid_request", "実施日の形式が正しくありません", "date_completed", model.ErrInvalidInput)
	}

	entry := &model.CPDEntry{
		EntryID:       uuid.New(),
		UserID:        actor.UserID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		DateCompleted: dateCompleted,
		Hours:         req.Hours,
		Points:        req.Points,
		ReviewStatus:  model.ReviewStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}
		if _, err := s.progress.SyncGoalsForUser(ctx, tx, actor.UserID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("CPD entry created",
		"entry_id", entry.EntryID.String(),
		"user_id", actor.UserID.String(),
		"hours", entry.Hours,
	)
	return entry, nil
}

// canViewEntry は本人・パートナー・対象ユーザーに権限を持つマネージャに閲覧を許可する
func (s *entryService) canViewEntry(ctx context.Context, actor model.Actor, ownerID uuid.UUID) (bool, error) {
	if actor.UserID == ownerID || actor.Role == model.RolePartner {
		return true, nil
	}
	if actor.Role == model.RoleManager {
		return s.orgRepo.HasAuthorityOverUser(ctx, s.db, actor.UserID, ownerID)
	}
	return false, nil
}

func (s *entryService) GetEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID) (*model.CPDEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, s.db, entryID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canViewEntry(ctx, actor, entry.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	return entry, nil
}

func (s *entryService) ListEntries(ctx context.Context, actor model.Actor, userID uuid.UUID) ([]*model.CPDEntry, error) {
	ok, err := s.canViewEntry(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewAppError("forbidden", "このユーザーの記録を閲覧する権限がありません", "user_id", model.ErrForbidden)
	}
	return s.entryRepo.FindByUser(ctx, s.db, userID)
}

func (s *entryService) PatchEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID, req *model.PatchEntryRequest) (*model.CPDEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, s.db, entryID)
	if err != nil {
		return nil, err
	}
	// 変更は記録の本人のみ。マネージャでも他人の記録は書き換えられない
	if entry.UserID != actor.UserID {
		return nil, model.NewAppError("forbidden", "自分の記録のみ変更できます", "", model.ErrForbidden)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.DateCompleted != nil {
		dateCompleted, err := time.Parse(config.DateLayout, *req.DateCompleted)
		if err != nil {
			return nil, model.NewAppError("invalid_request", "実施日の形式が正しくありません", "date_completed", model.ErrInvalidInput)
		}
		updates["date_completed"] = dateCompleted
	}
	if req.Hours != nil {
		updates["hours"] = *req.Hours
	}
	if req.Points != nil {
		updates["points"] = *req.Points
	}
	if len(updates) == 0 {
		return entry, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.Update(ctx, tx, entryID, updates); err != nil {
			return err
		}
		if _, err := s.progress.SyncGoalsForUser(ctx, tx, entry.UserID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.entryRepo.FindByID(ctx, s.db, entryID)
}

func (s *entryService) DeleteEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	entry, err := s.entryRepo.FindByID(ctx, s.db, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != actor.UserID {
		return model.NewAppError("forbidden", "自分の記録のみ削除できます", "", model.ErrForbidden)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entryRepo.Delete(ctx, tx, entryID); err != nil {
			return err
		}
		if _, err := s.progress.SyncGoalsForUser(ctx, tx, entry.UserID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("CPD entry deleted", "entry_id", entryID.String(), "user_id", actor.UserID.String())
	return nil
}

func (s *entryService) ReviewEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID, req *model.ReviewEntryRequest) (*model.CPDEntry, error) {
	logger := middleware.GetLogger(ctx)

	entry, err := s.entryRepo.FindByID(ctx, s.db, entryID)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage() {
		return nil, model.NewAppError("forbidden", "記録を承認する権限がありません", "", model.ErrForbidden)
	}
	if actor.Role == model.RoleManager {
		ok, err := s.orgRepo.HasAuthorityOverUser(ctx, s.db, actor.UserID, entry.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.NewAppError("forbidden", "このユーザーの記録を承認する権限がありません", "", model.ErrForbidden)
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"review_status":   model.ReviewStatusApproved,
		"reviewed_by":     actor.UserID,
		"review_comments": req.Comments,
		"reviewed_at":     &now,
	}
	if err := s.entryRepo.Update(ctx, s.db, entryID, updates); err != nil {
		return nil, err
	}

	logger.Info("CPD entry approved",
		"entry_id", entryID.String(),
		"reviewed_by", actor.UserID.String(),
	)
	return s.entryRepo.FindByID(ctx, s.db, entryID)
}
