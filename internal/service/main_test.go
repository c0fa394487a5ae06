// internal/service/main_test.go
package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"go_cpd_track/internal/model"
	"go_cpd_track/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	// テスト中はログを抑制
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// --- テストヘルパー関数 (インメモリDBセットアップ) ---

// setupTestDB はテストごとに独立したインメモリDBを作成する
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect test database")

	err = db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Department{},
		&model.Team{},
		&model.UserTeam{},
		&model.TeamManager{},
		&model.DepartmentManager{},
		&model.CPDEntry{},
		&model.Goal{},
	)
	require.NoError(t, err, "failed to migrate test database")
	return db
}

// testEnv は実リポジトリを束ねたテスト用の依存セット。
// 進捗計算はSQLの集計に依存するため、モックではなくsqlite上の実リポジトリで検証する
type testEnv struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	orgRepo   repository.OrgRepository
	entryRepo repository.EntryRepository
	goalRepo  repository.GoalRepository
	progress  ProgressService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	userRepo := repository.NewGormUserRepository()
	orgRepo := repository.NewGormOrgRepository()
	entryRepo := repository.NewGormEntryRepository()
	goalRepo := repository.NewGormGoalRepository()
	progress := NewProgressService(db, goalRepo, entryRepo, orgRepo, userRepo, &LogMailer{})
	return &testEnv{
		db:        db,
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		entryRepo: entryRepo,
		goalRepo:  goalRepo,
		progress:  progress,
	}
}

// --- フィクスチャ ---

func createTestUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       uuid.New(),
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "hashed",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestHierarchy は組織/部門/チームを1つずつ作成する
func createTestHierarchy(t *testing.T, db *gorm.DB) (*model.Organization, *model.Department, *model.Team) {
	t.Helper()
	org := &model.Organization{OrganizationID: uuid.New(), Name: "テスト法人"}
	require.NoError(t, db.Create(org).Error)
	dept := &model.Department{DepartmentID: uuid.New(), OrganizationID: org.OrganizationID, Name: "監査部"}
	require.NoError(t, db.Create(dept).Error)
	team := &model.Team{TeamID: uuid.New(), DepartmentID: dept.DepartmentID, Name: "第一チーム"}
	require.NoError(t, db.Create(team).Error)
	return org, dept, team
}

func addTeamMember(t *testing.T, db *gorm.DB, teamID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserTeam{TeamID: teamID, UserID: userID}).Error)
}

func assignTeamManager(t *testing.T, db *gorm.DB, teamID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.TeamManager{TeamID: teamID, UserID: userID}).Error)
}

func assignDepartmentManager(t *testing.T, db *gorm.DB, departmentID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.DepartmentManager{DepartmentID: departmentID, UserID: userID}).Error)
}

func createTestEntry(t *testing.T, db *gorm.DB, userID uuid.UUID, hours float64, status model.ReviewStatus) *model.CPDEntry {
	t.Helper()
	entry := &model.CPDEntry{
		EntryID:       uuid.New(),
		UserID:        userID,
		Title:         "監査基準研修",
		Category:      "研修",
		DateCompleted: time.Now(),
		Hours:         hours,
		ReviewStatus:  status,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

// createIndividualGoal は個人目標を直接DBに作成する
func createIndividualGoal(t *testing.T, db *gorm.DB, targetUserID, setBy uuid.UUID, targetHours float64, deadline time.Time) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		GoalID:       uuid.New(),
		GoalType:     model.GoalTypeIndividual,
		TargetUserID: &targetUserID,
		SetBy:        setBy,
		Title:        "年間CPD時間目標",
		TargetHours:  targetHours,
		Deadline:     deadline,
		Status:       model.GoalStatusActive,
	}
	require.NoError(t, db.Create(goal).Error)
	return goal
}

func createTeamGoal(t *testing.T, db *gorm.DB, teamID, setBy uuid.UUID, targetHours float64, deadline time.Time) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		GoalID:       uuid.New(),
		GoalType:     model.GoalTypeTeam,
		TargetTeamID: &teamID,
		SetBy:        setBy,
		Title:        "チームCPD時間目標",
		TargetHours:  targetHours,
		Deadline:     deadline,
		Status:       model.GoalStatusActive,
	}
	require.NoError(t, db.Create(goal).Error)
	return goal
}

func createDepartmentGoal(t *testing.T, db *gorm.DB, departmentID, setBy uuid.UUID, targetHours float64, deadline time.Time) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		GoalID:             uuid.New(),
		GoalType:           model.GoalTypeDepartment,
		TargetDepartmentID: &departmentID,
		SetBy:              setBy,
		Title:              "部門CPD時間目標",
		TargetHours:        targetHours,
		Deadline:           deadline,
		Status:             model.GoalStatusActive,
	}
	require.NoError(t, db.Create(goal).Error)
	return goal
}

// daysFromNow は今日を基準にn日後の日付を返す
func daysFromNow(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

func reloadGoal(t *testing.T, db *gorm.DB, goalID uuid.UUID) *model.Goal {
	t.Helper()
	var goal model.Goal
	require.NoError(t, db.Where("goal_id = ?", goalID).First(&goal).Error)
	return &goal
}
