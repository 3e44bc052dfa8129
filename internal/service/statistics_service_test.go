package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
)

func TestStatisticsService_Resync_RebuildsFromStore(t *testing.T) {
	repo, m := newMockRepos()
	cache := statistics.NewCache()
	svc := NewStatisticsService(repo, cache, zap.NewNop())
	ctx := context.Background()

	m.internships.put(&model.Internship{InternshipID: "i1", State: model.StateWaiting})
	m.internships.put(&model.Internship{InternshipID: "i2", State: model.StateWaiting})
	m.internships.put(&model.Internship{InternshipID: "i3", State: model.StateRunning})
	_ = m.mentors.Create(ctx, &model.Mentor{MentorID: "m1", Email: "m1@enib.fr"})
	_ = m.students.Create(ctx, &model.Student{StudentID: "s1", Email: "s1@enib.fr"})
	_ = m.propositions.Create(ctx, &model.MentoringProposition{CampaignID: "c1"})
	m.campaigns.counts = []repository.CampaignCounts{{CampaignID: "c1", Internships: 2, Available: 1, Attributed: 1, Mentors: 1, Propositions: 1}}

	// 旧的偏差值应被覆盖
	cache.Init(statistics.GlobalSnapshot{Mentors: 99})

	if err := svc.Resync(ctx); err != nil {
		t.Fatalf("Resync 应成功: %v", err)
	}

	global := svc.Global()
	if global.Total != 3 {
		t.Errorf("期望 Total=3，实际=%d", global.Total)
	}
	if global.States[model.StateWaiting] != 2 || global.States[model.StateRunning] != 1 {
		t.Errorf("状态计数不符: %+v", global.States)
	}
	if global.Mentors != 1 || global.Students != 1 || global.Propositions != 1 {
		t.Errorf("全局计数不符: %+v", global)
	}

	snap, err := svc.Campaign("c1")
	if err != nil {
		t.Fatalf("Campaign 应成功: %v", err)
	}
	if snap.Internships != 2 || snap.Available != 1 || snap.Attributed != 1 {
		t.Errorf("批次统计不符: %+v", snap)
	}
	if got := len(svc.Campaigns()); got != 1 {
		t.Errorf("期望 1 个批次条目，实际=%d", got)
	}
}

func TestStatisticsService_Campaign_NotFound(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewStatisticsService(repo, statistics.NewCache(), zap.NewNop())

	if _, err := svc.Campaign("ghost"); !errors.Is(err, ErrCampaignStatisticsNotFound) {
		t.Errorf("期望 ErrCampaignStatisticsNotFound，实际: %v", err)
	}
}
