package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/statistics"
)

func setupTestPropositionService(t *testing.T) (PropositionService, *mockRepos, *statistics.Cache) {
	t.Helper()
	repo, m := newMockRepos()
	stats := statistics.NewCache()
	ctx := context.Background()

	_ = m.campaigns.Create(ctx, &model.Campaign{CampaignID: "c1", Name: "S8", Semester: "S8", MaxProposition: 1})
	_ = m.mentors.Create(ctx, &model.Mentor{MentorID: "m1", Email: "m1@enib.fr"})
	m.internships.put(&model.Internship{InternshipID: "i1", State: model.StateAvailableCampaign, AvailableCampaignID: strPtr("c1")})
	m.internships.put(&model.Internship{InternshipID: "i2", State: model.StateAvailableCampaign, AvailableCampaignID: strPtr("c1")})
	m.internships.put(&model.Internship{InternshipID: "i3", State: model.StatePublished})

	return NewPropositionService(repo, stats, zap.NewNop()), m, stats
}

func TestPropositionService_Create_Success(t *testing.T) {
	svc, _, stats := setupTestPropositionService(t)

	resp, err := svc.Create(context.Background(), "c1", &dto.PropositionRequest{InternshipID: "i1", Comment: "Sujet intéressant"}, "m1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.MentorID != "m1" || resp.CampaignID != "c1" {
		t.Errorf("指导意向内容不符: %+v", resp)
	}
	if stats.Global().Propositions != 1 {
		t.Errorf("期望全局指导意向数=1，实际=%d", stats.Global().Propositions)
	}
	if snap, _ := stats.Campaign("c1"); snap.Propositions != 1 {
		t.Errorf("期望批次指导意向数=1，实际=%d", snap.Propositions)
	}
}

func TestPropositionService_Create_Rejections(t *testing.T) {
	svc, _, _ := setupTestPropositionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "c1", &dto.PropositionRequest{InternshipID: "i3"}, "m1"); !errors.Is(err, ErrPropositionNotAvailable) {
		t.Errorf("期望 ErrPropositionNotAvailable，实际: %v", err)
	}
	if _, err := svc.Create(ctx, "c1", &dto.PropositionRequest{InternshipID: "i1"}, ""); !errors.Is(err, ErrPropositionMentorNeeded) {
		t.Errorf("期望 ErrPropositionMentorNeeded，实际: %v", err)
	}
	if _, err := svc.Create(ctx, "ghost", &dto.PropositionRequest{InternshipID: "i1"}, "m1"); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("期望 ErrCampaignNotFound，实际: %v", err)
	}

	if _, err := svc.Create(ctx, "c1", &dto.PropositionRequest{InternshipID: "i1"}, "m1"); err != nil {
		t.Fatalf("首个指导意向应成功: %v", err)
	}
	if _, err := svc.Create(ctx, "c1", &dto.PropositionRequest{InternshipID: "i2"}, "m1"); !errors.Is(err, ErrPropositionLimitReached) {
		t.Errorf("期望 ErrPropositionLimitReached，实际: %v", err)
	}
}

func TestPropositionService_Delete(t *testing.T) {
	svc, _, stats := setupTestPropositionService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "c1", &dto.PropositionRequest{InternshipID: "i1"}, "m1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if err := svc.Delete(ctx, "other", p.ID); !errors.Is(err, ErrPropositionNotFound) {
		t.Errorf("跨批次删除应返回 ErrPropositionNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, "c1", p.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if stats.Global().Propositions != 0 {
		t.Errorf("期望全局指导意向数=0，实际=%d", stats.Global().Propositions)
	}
}
