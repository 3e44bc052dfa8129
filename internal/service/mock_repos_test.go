package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	pkgerrors "enib-internships/backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

// ── Mock InternshipTypeRepository ──

type mockInternshipTypeRepo struct {
	types map[string]*model.InternshipType
	seq   int
}

func newMockInternshipTypeRepo() *mockInternshipTypeRepo {
	return &mockInternshipTypeRepo{types: make(map[string]*model.InternshipType)}
}

func (m *mockInternshipTypeRepo) Create(_ context.Context, t *model.InternshipType) error {
	for _, existing := range m.types {
		if existing.Label == t.Label {
			return pkgerrors.ErrDuplicate
		}
	}
	if t.InternshipTypeID == "" {
		m.seq++
		t.InternshipTypeID = fmt.Sprintf("type-%d", m.seq)
	}
	m.types[t.InternshipTypeID] = t
	return nil
}

func (m *mockInternshipTypeRepo) GetByID(_ context.Context, id string) (*model.InternshipType, error) {
	if t, ok := m.types[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInternshipTypeRepo) List(_ context.Context) ([]model.InternshipType, error) {
	result := make([]model.InternshipType, 0, len(m.types))
	for _, t := range m.types {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

func (m *mockInternshipTypeRepo) Update(_ context.Context, t *model.InternshipType) error {
	for id, existing := range m.types {
		if id != t.InternshipTypeID && existing.Label == t.Label {
			return pkgerrors.ErrDuplicate
		}
	}
	m.types[t.InternshipTypeID] = t
	return nil
}

func (m *mockInternshipTypeRepo) Delete(_ context.Context, id string) error {
	delete(m.types, id)
	return nil
}

// ── Mock BusinessRepository ──

type mockBusinessRepo struct {
	businesses map[string]*model.Business
	seq        int
}

func newMockBusinessRepo() *mockBusinessRepo {
	return &mockBusinessRepo{businesses: make(map[string]*model.Business)}
}

func (m *mockBusinessRepo) Create(_ context.Context, b *model.Business) error {
	if b.BusinessID == "" {
		m.seq++
		b.BusinessID = fmt.Sprintf("biz-%d", m.seq)
	}
	m.businesses[b.BusinessID] = b
	return nil
}

func (m *mockBusinessRepo) GetByID(_ context.Context, id string) (*model.Business, error) {
	if b, ok := m.businesses[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBusinessRepo) List(_ context.Context, keyword string) ([]model.Business, error) {
	var result []model.Business
	for _, b := range m.businesses {
		if keyword == "" || strings.Contains(strings.ToLower(b.Name), strings.ToLower(keyword)) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBusinessRepo) Update(_ context.Context, b *model.Business) error {
	m.businesses[b.BusinessID] = b
	return nil
}

func (m *mockBusinessRepo) Delete(_ context.Context, id string) error {
	delete(m.businesses, id)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	for _, existing := range m.students {
		if existing.Email == s.Email {
			return pkgerrors.ErrDuplicate
		}
	}
	if s.StudentID == "" {
		m.seq++
		s.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	m.students[s.StudentID] = s
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	for _, s := range m.students {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, semester string) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if semester == "" || s.Semester == semester {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, s *model.Student) error {
	for id, existing := range m.students {
		if id != s.StudentID && existing.Email == s.Email {
			return pkgerrors.ErrDuplicate
		}
	}
	m.students[s.StudentID] = s
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.students)), nil
}

// ── Mock MentorRepository ──

type mockMentorRepo struct {
	mu      sync.Mutex
	mentors map[string]*model.Mentor
	seq     int
}

func newMockMentorRepo() *mockMentorRepo {
	return &mockMentorRepo{mentors: make(map[string]*model.Mentor)}
}

func (m *mockMentorRepo) Create(_ context.Context, mentor *model.Mentor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.mentors {
		if existing.Email == mentor.Email {
			return pkgerrors.ErrDuplicate
		}
	}
	if mentor.MentorID == "" {
		m.seq++
		mentor.MentorID = fmt.Sprintf("men-%d", m.seq)
	}
	m.mentors[mentor.MentorID] = mentor
	return nil
}

func (m *mockMentorRepo) GetByID(_ context.Context, id string) (*model.Mentor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mentor, ok := m.mentors[id]; ok {
		cp := *mentor
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMentorRepo) GetByEmail(_ context.Context, email string) (*model.Mentor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mentor := range m.mentors {
		if mentor.Email == email {
			cp := *mentor
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMentorRepo) List(_ context.Context) ([]model.Mentor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Mentor, 0, len(m.mentors))
	for _, mentor := range m.mentors {
		result = append(result, *mentor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MentorID < result[j].MentorID })
	return result, nil
}

func (m *mockMentorRepo) Update(_ context.Context, mentor *model.Mentor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mentors[mentor.MentorID] = mentor
	return nil
}

func (m *mockMentorRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mentors, id)
	return nil
}

func (m *mockMentorRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.mentors)), nil
}

// ── Mock CampaignRepository ──

type mockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	links     map[string]map[string]bool // campaignID → mentorID
	seq       int

	// addMentorErr 非空时 AddMentor 对该导师返回错误
	addMentorErr map[string]error
	cleared      []string
	summaries    map[string]datatypes.JSON
	counts       []repository.CampaignCounts
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{
		campaigns:    make(map[string]*model.Campaign),
		links:        make(map[string]map[string]bool),
		addMentorErr: make(map[string]error),
		summaries:    make(map[string]datatypes.JSON),
	}
}

func (m *mockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CampaignID == "" {
		m.seq++
		c.CampaignID = fmt.Sprintf("camp-%d", m.seq)
	}
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *mockCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampaignRepo) List(_ context.Context) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.campaigns[c.CampaignID]; ok {
		c.LaunchedAt = existing.LaunchedAt
	}
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *mockCampaignRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	delete(m.links, id)
	return nil
}

func (m *mockCampaignRepo) AddMentor(_ context.Context, campaignID, mentorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.addMentorErr[mentorID]; err != nil {
		return false, err
	}
	if m.links[campaignID] == nil {
		m.links[campaignID] = make(map[string]bool)
	}
	if m.links[campaignID][mentorID] {
		return false, nil
	}
	m.links[campaignID][mentorID] = true
	return true, nil
}

func (m *mockCampaignRepo) RemoveMentor(_ context.Context, campaignID, mentorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.links[campaignID][mentorID] {
		return false, nil
	}
	delete(m.links[campaignID], mentorID)
	return true, nil
}

func (m *mockCampaignRepo) ListMentors(_ context.Context, campaignID string) ([]model.Mentor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Mentor
	for id := range m.links[campaignID] {
		result = append(result, model.Mentor{MentorID: id})
	}
	return result, nil
}

func (m *mockCampaignRepo) MarkLaunched(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.LaunchedAt != nil {
		return pkgerrors.ErrStateConflict
	}
	c.LaunchedAt = &at
	return nil
}

func (m *mockCampaignRepo) ClearLaunched(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[id]; ok {
		c.LaunchedAt = nil
	}
	m.cleared = append(m.cleared, id)
	return nil
}

func (m *mockCampaignRepo) SaveLaunchSummary(_ context.Context, id string, summary datatypes.JSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = summary
	return nil
}

func (m *mockCampaignRepo) Counts(_ context.Context) ([]repository.CampaignCounts, error) {
	return m.counts, nil
}

func (m *mockCampaignRepo) linkCount(campaignID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links[campaignID])
}

// ── Mock InternshipRepository ──

type mockInternshipRepo struct {
	mu          sync.Mutex
	internships map[string]*model.Internship
	seq         int

	// beforeTransition 在条件写入前调用，用于模拟并发修改
	beforeTransition func(i *model.Internship)
	// linkErr 非空时 LinkAvailableCampaign 对该实习返回错误
	linkErr map[string]error
}

func newMockInternshipRepo() *mockInternshipRepo {
	return &mockInternshipRepo{
		internships: make(map[string]*model.Internship),
		linkErr:     make(map[string]error),
	}
}

func (m *mockInternshipRepo) put(i *model.Internship) *model.Internship {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.Result == "" {
		i.Result = model.ResultUnknown
	}
	m.internships[i.InternshipID] = i
	return i
}

func (m *mockInternshipRepo) Create(_ context.Context, i *model.Internship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.InternshipID == "" {
		m.seq++
		i.InternshipID = fmt.Sprintf("int-%d", m.seq)
	}
	m.internships[i.InternshipID] = i
	return nil
}

func (m *mockInternshipRepo) GetByID(_ context.Context, id string) (*model.Internship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.internships[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInternshipRepo) List(_ context.Context, filter repository.InternshipFilter) ([]model.Internship, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Internship
	for _, i := range m.internships {
		if filter.State != "" && i.State != filter.State {
			continue
		}
		if filter.StudentID != "" && (i.StudentID == nil || *i.StudentID != filter.StudentID) {
			continue
		}
		result = append(result, *i)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].InternshipID < result[b].InternshipID })
	return result, int64(len(result)), nil
}

func (m *mockInternshipRepo) UpdateDetails(_ context.Context, i *model.Internship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.internships[i.InternshipID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Subject = i.Subject
	existing.Description = i.Description
	existing.Country = i.Country
	existing.City = i.City
	return nil
}

func (m *mockInternshipRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.internships, id)
	return nil
}

func (m *mockInternshipRepo) Transition(_ context.Context, id string, from, to model.InternshipState, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.internships[id]
	if !ok {
		return pkgerrors.ErrStateConflict
	}
	if m.beforeTransition != nil {
		m.beforeTransition(i)
	}
	if i.State != from {
		return pkgerrors.ErrStateConflict
	}
	i.State = to
	for k, v := range fields {
		switch k {
		case "student_id":
			i.StudentID = optString(v)
		case "mentor_id":
			i.MentorID = optString(v)
		case "available_campaign_id":
			i.AvailableCampaignID = optString(v)
		case "validated_campaign_id":
			i.ValidatedCampaignID = optString(v)
		case "publish_at":
			i.PublishAt = optTime(v)
		case "start_at":
			i.StartAt = optTime(v)
		case "end_at":
			i.EndAt = optTime(v)
		case "result":
			i.Result = v.(model.InternshipResult)
		default:
			return fmt.Errorf("unexpected column %s", k)
		}
	}
	return nil
}

func optString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optTime(v interface{}) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func (m *mockInternshipRepo) ListEligibleForCampaign(_ context.Context, typeID string) ([]model.Internship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Internship
	for _, i := range m.internships {
		if i.AvailableCampaignID != nil || i.ValidatedCampaignID != nil {
			continue
		}
		if i.InternshipTypeID == nil || *i.InternshipTypeID != typeID {
			continue
		}
		result = append(result, *i)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].InternshipID < result[b].InternshipID })
	return result, nil
}

func (m *mockInternshipRepo) LinkAvailableCampaign(_ context.Context, internshipID, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.linkErr[internshipID]; err != nil {
		return err
	}
	i, ok := m.internships[internshipID]
	if !ok || i.AvailableCampaignID != nil || i.ValidatedCampaignID != nil {
		return pkgerrors.ErrStateConflict
	}
	i.AvailableCampaignID = strPtr(campaignID)
	return nil
}

func (m *mockInternshipRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.Internship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Internship
	for _, i := range m.internships {
		if (i.AvailableCampaignID != nil && *i.AvailableCampaignID == campaignID) ||
			(i.ValidatedCampaignID != nil && *i.ValidatedCampaignID == campaignID) {
			result = append(result, *i)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Subject < result[b].Subject })
	return result, nil
}

func (m *mockInternshipRepo) CountByState(_ context.Context) (map[model.InternshipState]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[model.InternshipState]int64)
	for _, i := range m.internships {
		counts[i.State]++
	}
	return counts, nil
}

// ── Mock FileRepository ──

type mockFileRepo struct {
	files map[string]*model.File
	seq   int
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[string]*model.File)}
}

func (m *mockFileRepo) Create(_ context.Context, f *model.File) error {
	if f.FileID == "" {
		m.seq++
		f.FileID = fmt.Sprintf("file-%d", m.seq)
	}
	m.files[f.FileID] = f
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id string) (*model.File, error) {
	if f, ok := m.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFileRepo) ListByInternship(_ context.Context, internshipID string) ([]model.File, error) {
	var result []model.File
	for _, f := range m.files {
		if f.InternshipID == internshipID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFileRepo) Delete(_ context.Context, id string) error {
	delete(m.files, id)
	return nil
}

// ── Mock PropositionRepository ──

type mockPropositionRepo struct {
	propositions map[string]*model.MentoringProposition
	seq          int
}

func newMockPropositionRepo() *mockPropositionRepo {
	return &mockPropositionRepo{propositions: make(map[string]*model.MentoringProposition)}
}

func (m *mockPropositionRepo) Create(_ context.Context, p *model.MentoringProposition) error {
	if p.PropositionID == "" {
		m.seq++
		p.PropositionID = fmt.Sprintf("prop-%d", m.seq)
	}
	m.propositions[p.PropositionID] = p
	return nil
}

func (m *mockPropositionRepo) GetByID(_ context.Context, id string) (*model.MentoringProposition, error) {
	if p, ok := m.propositions[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPropositionRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.MentoringProposition, error) {
	var result []model.MentoringProposition
	for _, p := range m.propositions {
		if p.CampaignID == campaignID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPropositionRepo) CountByMentor(_ context.Context, campaignID, mentorID string) (int64, error) {
	var n int64
	for _, p := range m.propositions {
		if p.CampaignID == campaignID && p.MentorID == mentorID {
			n++
		}
	}
	return n, nil
}

func (m *mockPropositionRepo) Delete(_ context.Context, id string) error {
	delete(m.propositions, id)
	return nil
}

func (m *mockPropositionRepo) DeleteByCampaign(_ context.Context, campaignID string) (int64, error) {
	var n int64
	for id, p := range m.propositions {
		if p.CampaignID == campaignID {
			delete(m.propositions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockPropositionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.propositions)), nil
}

// ── 聚合 ──

type mockRepos struct {
	types        *mockInternshipTypeRepo
	businesses   *mockBusinessRepo
	students     *mockStudentRepo
	mentors      *mockMentorRepo
	campaigns    *mockCampaignRepo
	internships  *mockInternshipRepo
	files        *mockFileRepo
	propositions *mockPropositionRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		types:        newMockInternshipTypeRepo(),
		businesses:   newMockBusinessRepo(),
		students:     newMockStudentRepo(),
		mentors:      newMockMentorRepo(),
		campaigns:    newMockCampaignRepo(),
		internships:  newMockInternshipRepo(),
		files:        newMockFileRepo(),
		propositions: newMockPropositionRepo(),
	}
	repo := &repository.Repository{
		InternshipType: m.types,
		Business:       m.businesses,
		Student:        m.students,
		Mentor:         m.mentors,
		Campaign:       m.campaigns,
		Internship:     m.internships,
		File:           m.files,
		Proposition:    m.propositions,
	}
	return repo, m
}
