package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/statistics"
)

// ── 测试辅助 ──

type recordedEvent struct {
	Topic     string
	Recipient string
	Payload   any
}

type recordingTransport struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingTransport) Emit(topic, recipient string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Topic: topic, Recipient: recipient, Payload: payload})
}

func (r *recordingTransport) count(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func (r *recordingTransport) first(topic string) (recordedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Topic == topic {
			return e, true
		}
	}
	return recordedEvent{}, false
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []string
	err    error
	onSend func()
}

func (s *recordingSender) SendCampaignCreated(ctx context.Context, mentor *model.Mentor, _ *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onSend != nil {
		s.onSend()
	}
	if s.err != nil {
		return s.err
	}
	// 与真实 SMTP 发送一致：ctx 已取消时放弃发送
	if err := ctx.Err(); err != nil {
		return err
	}
	s.sent = append(s.sent, mentor.Email)
	return nil
}

func (s *recordingSender) Close() error { return nil }

type campaignFixture struct {
	svc       CampaignService
	mocks     *mockRepos
	stats     *statistics.Cache
	transport *recordingTransport
	sender    *recordingSender
}

func setupTestCampaignService(env string) *campaignFixture {
	repo, mocks := newMockRepos()
	f := &campaignFixture{
		mocks:     mocks,
		stats:     statistics.NewCache(),
		transport: &recordingTransport{},
		sender:    &recordingSender{},
	}
	cfg := &config.Config{
		App:     config.AppConfig{Env: env},
		Feature: config.FeatureConfig{LaunchConcurrency: 4},
	}
	f.svc = NewCampaignService(cfg, repo, f.stats, f.transport, f.sender, nil, zap.NewNop())
	return f
}

// seedLaunchData 批次 c1（类别 type-1）、3 个可关联实习、2 个不可关联实习、2 个导师
func seedLaunchData(t *testing.T, m *mockRepos) {
	t.Helper()
	ctx := context.Background()
	if err := m.campaigns.Create(ctx, &model.Campaign{CampaignID: "c1", Name: "S8 2026", Semester: "S8", InternshipTypeID: strPtr("type-1")}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"i1", "i2", "i3"} {
		m.internships.put(&model.Internship{InternshipID: id, Subject: "Stage " + id, State: model.StateAttributedStudent, InternshipTypeID: strPtr("type-1")})
	}
	m.internships.put(&model.Internship{InternshipID: "other-type", Subject: "Autre", InternshipTypeID: strPtr("type-2")})
	m.internships.put(&model.Internship{InternshipID: "taken", Subject: "Pris", InternshipTypeID: strPtr("type-1"), ValidatedCampaignID: strPtr("c0")})

	_ = m.mentors.Create(ctx, &model.Mentor{MentorID: "m1", FirstName: "Alan", LastName: "Turing", Email: "turing@enib.fr"})
	_ = m.mentors.Create(ctx, &model.Mentor{MentorID: "m2", FirstName: "Grace", LastName: "Hopper", Email: "hopper@enib.fr"})
}

// ── CRUD ──

func TestCampaignService_Create_RegistersStatisticsEntry(t *testing.T) {
	f := setupTestCampaignService("test")

	resp, err := f.svc.Create(context.Background(), &dto.CampaignRequest{Name: "S6 2026", Semester: "S6"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, ok := f.stats.Campaign(resp.ID); !ok {
		t.Error("期望创建后存在空的批次统计条目")
	}
}

func TestCampaignService_Delete_RemovesPropositions(t *testing.T) {
	f := setupTestCampaignService("test")
	seedLaunchData(t, f.mocks)
	ctx := context.Background()
	_ = f.mocks.propositions.Create(ctx, &model.MentoringProposition{CampaignID: "c1", MentorID: "m1", InternshipID: "i1"})
	_ = f.mocks.propositions.Create(ctx, &model.MentoringProposition{CampaignID: "c1", MentorID: "m2", InternshipID: "i2"})
	f.stats.AddProposition()
	f.stats.AddProposition()
	f.stats.NewCampaign("c1", statistics.CampaignSnapshot{Propositions: 2})

	if err := f.svc.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if n, _ := f.mocks.propositions.Count(ctx); n != 0 {
		t.Errorf("期望指导意向已删除，剩余=%d", n)
	}
	if _, ok := f.stats.Campaign("c1"); ok {
		t.Error("期望批次统计条目已移除")
	}
	if got := f.stats.Global().Propositions; got != 0 {
		t.Errorf("期望全局指导意向数=0，实际=%d", got)
	}
}

func TestCampaignService_LinkMentor_Idempotent(t *testing.T) {
	f := setupTestCampaignService("test")
	seedLaunchData(t, f.mocks)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.svc.LinkMentor(ctx, "c1", "m1"); err != nil {
			t.Fatalf("LinkMentor 应成功: %v", err)
		}
	}
	snap, _ := f.stats.Campaign("c1")
	if snap.Mentors != 1 {
		t.Errorf("重复关联不应重复计数，Mentors=%d", snap.Mentors)
	}
	if err := f.svc.LinkMentor(ctx, "c1", "ghost"); !errors.Is(err, ErrMentorNotFound) {
		t.Errorf("期望 ErrMentorNotFound，实际: %v", err)
	}

	if err := f.svc.UnlinkMentor(ctx, "c1", "m1"); err != nil {
		t.Fatalf("UnlinkMentor 应成功: %v", err)
	}
	snap, _ = f.stats.Campaign("c1")
	if snap.Mentors != 0 {
		t.Errorf("期望 Mentors=0，实际=%d", snap.Mentors)
	}
}

// ── Launch ──

func TestCampaignService_Launch_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := setupTestCampaignService("development")
	seedLaunchData(t, f.mocks)

	summary, err := f.svc.Launch(context.Background(), "c1", "sess-1")
	if err != nil {
		t.Fatalf("Launch 应成功: %v", err)
	}
	if summary.Internships != 3 || summary.Mentors != 2 || summary.Emails != 2 || !summary.Succeeded {
		t.Errorf("发布摘要不符: %+v", summary)
	}

	// start 1 次，total = 2M + N
	start, ok := f.transport.first("campaign:start")
	if !ok {
		t.Fatal("缺少 start 事件")
	}
	if p := start.Payload.(progress.StartPayload); p.Total != 2*2+3 || p.Type != "initialized" {
		t.Errorf("start 载荷不符: %+v", p)
	}
	if start.Recipient != "sess-1" {
		t.Errorf("期望 recipient=sess-1，实际=%s", start.Recipient)
	}
	if got := f.transport.count("campaign:step"); got != 7 {
		t.Errorf("期望 7 个 step 事件，实际=%d", got)
	}
	if got := f.transport.count("campaign:end"); got != 1 {
		t.Errorf("期望 1 个 end 事件，实际=%d", got)
	}
	if got := f.transport.count("campaign:error"); got != 0 {
		t.Errorf("不应有 error 事件，实际=%d", got)
	}

	for _, id := range []string{"i1", "i2", "i3"} {
		i, _ := f.mocks.internships.GetByID(context.Background(), id)
		if i.AvailableCampaignID == nil || *i.AvailableCampaignID != "c1" {
			t.Errorf("实习 %s 应关联到 c1", id)
		}
	}
	other, _ := f.mocks.internships.GetByID(context.Background(), "other-type")
	if other.AvailableCampaignID != nil {
		t.Error("其他类别的实习不应被关联")
	}
	if got := f.mocks.campaigns.linkCount("c1"); got != 2 {
		t.Errorf("期望关联 2 个导师，实际=%d", got)
	}
	if len(f.sender.sent) != 2 {
		t.Errorf("期望发送 2 封通知，实际=%d", len(f.sender.sent))
	}

	snap, ok := f.stats.Campaign("c1")
	if !ok {
		t.Fatal("缺少批次统计条目")
	}
	want := statistics.CampaignSnapshot{CampaignID: "c1", Internships: 3, Available: 3, Mentors: 2, Students: 3}
	if snap != want {
		t.Errorf("批次统计不符: 期望 %+v，实际 %+v", want, snap)
	}

	var saved struct {
		Succeeded bool `json:"succeeded"`
	}
	if err := json.Unmarshal(f.mocks.campaigns.summaries["c1"], &saved); err != nil || !saved.Succeeded {
		t.Errorf("发布摘要未正确保存: %s", f.mocks.campaigns.summaries["c1"])
	}
}

func TestCampaignService_Launch_SurvivesCallerCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := setupTestCampaignService("development")
	seedLaunchData(t, f.mocks)

	// 客户端在第一封通知发送期间断开
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	f.sender.onSend = func() { once.Do(cancel) }

	summary, err := f.svc.Launch(ctx, "c1", "sess-1")
	if err != nil {
		t.Fatalf("请求取消后发布仍应完成: %v", err)
	}
	if summary.Emails != 2 || summary.Mentors != 2 || summary.Internships != 3 {
		t.Errorf("发布摘要不符: %+v", summary)
	}
	if len(f.sender.sent) != 2 {
		t.Errorf("期望发送 2 封通知，实际=%d", len(f.sender.sent))
	}
	if got := f.transport.count("campaign:error"); got != 0 {
		t.Errorf("不应有 error 事件，实际=%d", got)
	}
	if got := f.transport.count("campaign:end"); got != 1 {
		t.Errorf("期望 1 个 end 事件，实际=%d", got)
	}
	if c, _ := f.mocks.campaigns.GetByID(context.Background(), "c1"); c.LaunchedAt == nil {
		t.Error("发布标记不应被清除")
	}
}

func TestCampaignService_Launch_TestEnvSkipsEmails(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := setupTestCampaignService("test")
	seedLaunchData(t, f.mocks)

	summary, err := f.svc.Launch(context.Background(), "c1", "sess-1")
	if err != nil {
		t.Fatalf("Launch 应成功: %v", err)
	}
	if summary.Emails != 0 || len(f.sender.sent) != 0 {
		t.Errorf("测试环境不应发送通知: %+v", summary)
	}
	// start 的 total 仍按 2M+N 计算，step 只有 N+M 个
	if got := f.transport.count("campaign:step"); got != 5 {
		t.Errorf("期望 5 个 step 事件，实际=%d", got)
	}
	if got := f.transport.count("campaign:end"); got != 1 {
		t.Errorf("期望 1 个 end 事件，实际=%d", got)
	}
}

func TestCampaignService_Launch_WithoutRecipientEmitsNothing(t *testing.T) {
	f := setupTestCampaignService("test")
	seedLaunchData(t, f.mocks)

	if _, err := f.svc.Launch(context.Background(), "c1", ""); err != nil {
		t.Fatalf("Launch 应成功: %v", err)
	}
	f.transport.mu.Lock()
	defer f.transport.mu.Unlock()
	if len(f.transport.events) != 0 {
		t.Errorf("无接收方时不应推送进度，实际 %d 个事件", len(f.transport.events))
	}
}

func TestCampaignService_Launch_FailureCompensates(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := setupTestCampaignService("development")
	seedLaunchData(t, f.mocks)
	f.mocks.campaigns.addMentorErr["m2"] = errors.New("connection reset")

	_, err := f.svc.Launch(context.Background(), "c1", "sess-1")
	if !errors.Is(err, ErrCampaignLaunchFailed) {
		t.Fatalf("期望 ErrCampaignLaunchFailed，实际: %v", err)
	}

	if got := f.transport.count("campaign:error"); got != 1 {
		t.Errorf("期望 1 个 error 事件，实际=%d", got)
	}
	if got := f.transport.count("campaign:end"); got != 0 {
		t.Errorf("失败时不应有 end 事件，实际=%d", got)
	}

	snap, ok := f.stats.Campaign("c1")
	if !ok {
		t.Fatal("失败后批次统计条目应存在且为空")
	}
	if snap != (statistics.CampaignSnapshot{CampaignID: "c1"}) {
		t.Errorf("失败后批次统计应为空: %+v", snap)
	}

	c, _ := f.mocks.campaigns.GetByID(context.Background(), "c1")
	if c.LaunchedAt != nil {
		t.Error("失败后应清除 launched_at")
	}
	var saved struct {
		Succeeded bool   `json:"succeeded"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(f.mocks.campaigns.summaries["c1"], &saved); err != nil || saved.Succeeded || saved.Error == "" {
		t.Errorf("失败摘要未正确保存: %s", f.mocks.campaigns.summaries["c1"])
	}

	// 修复后可重新发布；已关联的实习不再重复计入
	delete(f.mocks.campaigns.addMentorErr, "m2")
	summary, err := f.svc.Launch(context.Background(), "c1", "")
	if err != nil {
		t.Fatalf("重新发布应成功: %v", err)
	}
	if summary.Mentors != 2 {
		t.Errorf("期望 Mentors=2，实际=%d", summary.Mentors)
	}
}

func TestCampaignService_Launch_Guards(t *testing.T) {
	f := setupTestCampaignService("test")
	seedLaunchData(t, f.mocks)
	ctx := context.Background()
	_ = f.mocks.campaigns.Create(ctx, &model.Campaign{CampaignID: "no-type", Name: "Sans type", Semester: "S6"})

	if _, err := f.svc.Launch(ctx, "missing", ""); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("期望 ErrCampaignNotFound，实际: %v", err)
	}
	if _, err := f.svc.Launch(ctx, "no-type", "sess-1"); !errors.Is(err, ErrCampaignCategoryMissing) {
		t.Errorf("期望 ErrCampaignCategoryMissing，实际: %v", err)
	}
	if f.transport.count("campaign:start") != 0 {
		t.Error("类别缺失时不应推送任何进度")
	}

	if _, err := f.svc.Launch(ctx, "c1", ""); err != nil {
		t.Fatalf("首次发布应成功: %v", err)
	}
	if _, err := f.svc.Launch(ctx, "c1", ""); !errors.Is(err, ErrCampaignAlreadyLaunched) {
		t.Errorf("期望 ErrCampaignAlreadyLaunched，实际: %v", err)
	}
}
