//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/pkg/database"
	pkgerrors "enib-internships/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=internships password=internships dbname=internships_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type fixture struct {
	typ      *model.InternshipType
	student  *model.Student
	mentor   *model.Mentor
	campaign *model.Campaign
}

// setupFixture 创建基础测试数据并返回清理函数
func setupFixture(t *testing.T, repo *repository.Repository) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	f := &fixture{
		typ:     &model.InternshipType{Label: fmt.Sprintf("类别-%d", suffix)},
		student: &model.Student{FirstName: "Jean", LastName: "Dupont", Email: fmt.Sprintf("s%d@enib.fr", suffix), Semester: "S8"},
		mentor:  &model.Mentor{FirstName: "Alice", LastName: "Martin", Email: fmt.Sprintf("m%d@enib.fr", suffix), Role: model.MentorRoleDefault},
	}
	if err := repo.InternshipType.Create(ctx, f.typ); err != nil {
		t.Fatalf("创建类别失败: %v", err)
	}
	if err := repo.Student.Create(ctx, f.student); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	if err := repo.Mentor.Create(ctx, f.mentor); err != nil {
		t.Fatalf("创建导师失败: %v", err)
	}
	f.campaign = &model.Campaign{Name: "Campagne S8", Semester: "S8", InternshipTypeID: &f.typ.InternshipTypeID}
	if err := repo.Campaign.Create(ctx, f.campaign); err != nil {
		t.Fatalf("创建批次失败: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM internships WHERE internship_type_id = ?", f.typ.InternshipTypeID)
		testDB.Exec("DELETE FROM campaigns WHERE campaign_id = ?", f.campaign.CampaignID)
		testDB.Exec("DELETE FROM mentors WHERE mentor_id = ?", f.mentor.MentorID)
		testDB.Exec("DELETE FROM students WHERE student_id = ?", f.student.StudentID)
		testDB.Exec("DELETE FROM internship_types WHERE internship_type_id = ?", f.typ.InternshipTypeID)
	}
	return f, cleanup
}

func newInternship(t *testing.T, repo *repository.Repository, typeID string) *model.Internship {
	t.Helper()
	i := &model.Internship{Subject: "Banc de test CAN", Country: "France", State: model.StateWaiting, Result: model.ResultUnknown, InternshipTypeID: &typeID}
	if err := repo.Internship.Create(context.Background(), i); err != nil {
		t.Fatalf("创建实习失败: %v", err)
	}
	return i
}

// ═══════════════════════════════════════════════════════════
// Internship
// ═══════════════════════════════════════════════════════════

func TestInternshipRepo_TransitionCAS(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	i := newInternship(t, repo, f.typ.InternshipTypeID)

	err := repo.Internship.Transition(ctx, i.InternshipID, model.StateWaiting, model.StatePublished,
		map[string]interface{}{"publish_at": time.Now()})
	if err != nil {
		t.Fatalf("流转失败: %v", err)
	}

	// 预期状态不符时不写入
	err = repo.Internship.Transition(ctx, i.InternshipID, model.StateWaiting, model.StatePublished, nil)
	if !errors.Is(err, pkgerrors.ErrStateConflict) {
		t.Fatalf("期望 ErrStateConflict，得到 %v", err)
	}

	got, err := repo.Internship.GetByID(ctx, i.InternshipID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.State != model.StatePublished || got.PublishAt == nil {
		t.Errorf("状态 = %s, publish_at = %v", got.State, got.PublishAt)
	}
	if got.InternshipType == nil || got.InternshipType.InternshipTypeID != f.typ.InternshipTypeID {
		t.Error("InternshipType 未预加载")
	}
}

func TestInternshipRepo_ConcurrentTransitionSingleWinner(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	i := newInternship(t, repo, f.typ.InternshipTypeID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Internship.Transition(ctx, i.InternshipID, model.StateWaiting, model.StatePublished, nil); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("并发流转成功次数 = %d，期望 1", wins)
	}
}

func TestInternshipRepo_EligibleAndLink(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	a := newInternship(t, repo, f.typ.InternshipTypeID)
	b := newInternship(t, repo, f.typ.InternshipTypeID)

	if err := repo.Internship.LinkAvailableCampaign(ctx, a.InternshipID, f.campaign.CampaignID); err != nil {
		t.Fatalf("关联失败: %v", err)
	}
	if err := repo.Internship.LinkAvailableCampaign(ctx, a.InternshipID, f.campaign.CampaignID); !errors.Is(err, pkgerrors.ErrStateConflict) {
		t.Fatalf("重复关联应返回 ErrStateConflict，得到 %v", err)
	}

	eligible, err := repo.Internship.ListEligibleForCampaign(ctx, f.typ.InternshipTypeID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(eligible) != 1 || eligible[0].InternshipID != b.InternshipID {
		t.Errorf("可关联实习 = %+v", eligible)
	}

	counts, err := repo.Campaign.Counts(ctx)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	for _, c := range counts {
		if c.CampaignID == f.campaign.CampaignID && (c.Available != 1 || c.Internships != 1) {
			t.Errorf("批次计数 = %+v", c)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Campaign
// ═══════════════════════════════════════════════════════════

func TestCampaignRepo_MarkLaunchedOnce(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Campaign.MarkLaunched(ctx, f.campaign.CampaignID, time.Now()); err != nil {
		t.Fatalf("首次发布失败: %v", err)
	}
	if err := repo.Campaign.MarkLaunched(ctx, f.campaign.CampaignID, time.Now()); !errors.Is(err, pkgerrors.ErrStateConflict) {
		t.Fatalf("重复发布应返回 ErrStateConflict，得到 %v", err)
	}
	if err := repo.Campaign.ClearLaunched(ctx, f.campaign.CampaignID); err != nil {
		t.Fatalf("清除发布标记失败: %v", err)
	}
	if err := repo.Campaign.MarkLaunched(ctx, f.campaign.CampaignID, time.Now()); err != nil {
		t.Fatalf("清除后应可再次发布: %v", err)
	}

	summary := datatypes.JSON(`{"succeeded":true}`)
	if err := repo.Campaign.SaveLaunchSummary(ctx, f.campaign.CampaignID, summary); err != nil {
		t.Fatalf("保存摘要失败: %v", err)
	}
}

func TestCampaignRepo_AddMentorIdempotent(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Campaign.AddMentor(ctx, f.campaign.CampaignID, f.mentor.MentorID)
	if err != nil || !created {
		t.Fatalf("首次关联: created=%v err=%v", created, err)
	}
	created, err = repo.Campaign.AddMentor(ctx, f.campaign.CampaignID, f.mentor.MentorID)
	if err != nil || created {
		t.Fatalf("重复关联应为空操作: created=%v err=%v", created, err)
	}

	mentors, err := repo.Campaign.ListMentors(ctx, f.campaign.CampaignID)
	if err != nil || len(mentors) != 1 {
		t.Fatalf("导师列表 = %v, err = %v", mentors, err)
	}

	removed, err := repo.Campaign.RemoveMentor(ctx, f.campaign.CampaignID, f.mentor.MentorID)
	if err != nil || !removed {
		t.Fatalf("移除关联: removed=%v err=%v", removed, err)
	}
}

func TestStudentRepo_DuplicateEmail(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()

	dup := &model.Student{FirstName: "X", LastName: "Y", Email: f.student.Email, Semester: "S6"}
	if err := repo.Student.Create(context.Background(), dup); !errors.Is(err, pkgerrors.ErrDuplicate) {
		t.Fatalf("期望 ErrDuplicate，得到 %v", err)
	}
}

func TestRepository_WithTxRollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("开启事务失败: %v", err)
	}
	txRepo := repo.WithTx(tx)
	if _, err := txRepo.Proposition.DeleteByCampaign(ctx, f.campaign.CampaignID); err != nil {
		t.Fatalf("删除指导意向失败: %v", err)
	}
	if err := txRepo.Campaign.Delete(ctx, f.campaign.CampaignID); err != nil {
		t.Fatalf("删除批次失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.Campaign.GetByID(ctx, f.campaign.CampaignID); err != nil {
		t.Fatalf("回滚后批次应仍存在: %v", err)
	}
}
