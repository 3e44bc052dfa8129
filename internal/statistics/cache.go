// Package statistics 维护实习、导师、学生与指导意向计数的内存聚合视图。
//
// Cache 是数据库的非事务性冗余视图：各写操作在成功后增量修正计数，
// 出现偏差时通过 Reset + Init 全量重建。
package statistics

import (
	"sync"

	"enib-internships/backend/internal/model"
)

// StateCounts 各状态实习数量
type StateCounts map[model.InternshipState]int

// GlobalSnapshot 全局统计快照
type GlobalSnapshot struct {
	Total        int         `json:"total"        yaml:"total"`
	States       StateCounts `json:"states"       yaml:"states"`
	Mentors      int         `json:"mentors"      yaml:"mentors"`
	Students     int         `json:"students"     yaml:"students"`
	Propositions int         `json:"propositions" yaml:"propositions"`
}

// CampaignSnapshot 单个批次统计快照
type CampaignSnapshot struct {
	CampaignID   string `json:"campaign_id"  yaml:"campaign_id"`
	Internships  int    `json:"internships"  yaml:"internships"`
	Available    int    `json:"available"    yaml:"available"`
	Attributed   int    `json:"attributed"   yaml:"attributed"`
	Mentors      int    `json:"mentors"      yaml:"mentors"`
	Students     int    `json:"students"     yaml:"students"`
	Propositions int    `json:"propositions" yaml:"propositions"`
}

// Cache 进程内统计缓存，所有方法并发安全
type Cache struct {
	mu          sync.RWMutex
	initialized bool

	states       map[model.InternshipState]int
	mentors      int
	students     int
	propositions int
	campaigns    map[string]*CampaignSnapshot
}

// NewCache 创建空的统计缓存，需调用 Init 完成首次加载
func NewCache() *Cache {
	return &Cache{
		states:    newStateMap(),
		campaigns: make(map[string]*CampaignSnapshot),
	}
}

func newStateMap() map[model.InternshipState]int {
	m := make(map[model.InternshipState]int, len(model.InternshipStates))
	for _, s := range model.InternshipStates {
		m[s] = 0
	}
	return m
}

// Init 用数据库计数完成首次加载；已初始化时不做任何事
func (c *Cache) Init(global GlobalSnapshot, campaigns ...CampaignSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return
	}
	for s, n := range global.States {
		if _, ok := c.states[s]; ok {
			c.states[s] = clamp(n)
		}
	}
	c.mentors = clamp(global.Mentors)
	c.students = clamp(global.Students)
	c.propositions = clamp(global.Propositions)
	for i := range campaigns {
		entry := campaigns[i]
		c.campaigns[entry.CampaignID] = &entry
	}
	c.initialized = true
}

// Reset 清零所有计数并清空批次条目，仅在已初始化时生效
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	c.states = newStateMap()
	c.mentors, c.students, c.propositions = 0, 0, 0
	c.campaigns = make(map[string]*CampaignSnapshot)
	c.initialized = false
}

// Initialized 是否已完成加载
func (c *Cache) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// ── 状态计数 ──

// StateAdd 某状态实习数增加 qty
func (c *Cache) StateAdd(state model.InternshipState, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addState(state, qty)
}

// StateRemove 某状态实习数减少 qty
func (c *Cache) StateRemove(state model.InternshipState, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addState(state, -qty)
}

// StateChange 实习从 prev 流转到 next；campaignID 非空时同步修正该批次的子计数
func (c *Cache) StateChange(next, prev model.InternshipState, campaignID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addState(prev, -1)
	c.addState(next, 1)

	if campaignID == "" {
		return
	}
	entry := c.campaign(campaignID)
	if prev == model.StateAvailableCampaign {
		entry.Available = clamp(entry.Available - 1)
	}
	switch next {
	case model.StateAvailableCampaign:
		entry.Internships++
		entry.Available++
	case model.StateAttributedMentor:
		entry.Attributed++
	}
}

// addState 调用方需持有写锁；未知状态忽略
func (c *Cache) addState(state model.InternshipState, delta int) {
	n, ok := c.states[state]
	if !ok {
		return
	}
	c.states[state] = clamp(n + delta)
}

// ── 实体计数 ──

func (c *Cache) AddMentor() { c.adjust(&c.mentors, 1) }
func (c *Cache) RemoveMentor() { c.adjust(&c.mentors, -1) }

func (c *Cache) AddStudent() { c.adjust(&c.students, 1) }
func (c *Cache) RemoveStudent() { c.adjust(&c.students, -1) }

func (c *Cache) AddProposition() { c.adjust(&c.propositions, 1) }
func (c *Cache) RemoveProposition() { c.adjust(&c.propositions, -1) }

func (c *Cache) adjust(counter *int, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*counter = clamp(*counter + delta)
}

// LinkStudent 批次关联学生数加一
func (c *Cache) LinkStudent(campaignID string) {
	c.adjustCampaign(campaignID, func(e *CampaignSnapshot) { e.Students++ })
}

// LinkProposition 批次指导意向数加一
func (c *Cache) LinkProposition(campaignID string) {
	c.adjustCampaign(campaignID, func(e *CampaignSnapshot) { e.Propositions++ })
}

// UnlinkProposition 批次指导意向数减一
func (c *Cache) UnlinkProposition(campaignID string) {
	c.adjustCampaign(campaignID, func(e *CampaignSnapshot) { e.Propositions = clamp(e.Propositions - 1) })
}

// LinkMentor 批次导师数加一
func (c *Cache) LinkMentor(campaignID string) {
	c.adjustCampaign(campaignID, func(e *CampaignSnapshot) { e.Mentors++ })
}

// UnlinkMentor 批次导师数减一
func (c *Cache) UnlinkMentor(campaignID string) {
	c.adjustCampaign(campaignID, func(e *CampaignSnapshot) { e.Mentors = clamp(e.Mentors - 1) })
}

func (c *Cache) adjustCampaign(campaignID string, fn func(*CampaignSnapshot)) {
	if campaignID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.campaign(campaignID))
}

// campaign 获取批次条目，不存在时惰性创建；调用方需持有写锁
func (c *Cache) campaign(id string) *CampaignSnapshot {
	entry, ok := c.campaigns[id]
	if !ok {
		entry = &CampaignSnapshot{CampaignID: id}
		c.campaigns[id] = entry
	}
	return entry
}

// ── 批次条目 ──

// NewCampaign 以 partial 整体替换批次条目（不合并）
func (c *Cache) NewCampaign(id string, partial CampaignSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	partial.CampaignID = id
	partial.Internships = clamp(partial.Internships)
	partial.Available = clamp(partial.Available)
	partial.Attributed = clamp(partial.Attributed)
	partial.Mentors = clamp(partial.Mentors)
	partial.Students = clamp(partial.Students)
	partial.Propositions = clamp(partial.Propositions)
	c.campaigns[id] = &partial
}

// RemoveCampaign 删除批次条目
func (c *Cache) RemoveCampaign(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.campaigns, id)
}

// ── 查询 ──

// Campaign 返回批次快照；从未创建时 ok 为 false
func (c *Cache) Campaign(id string) (CampaignSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.campaigns[id]
	if !ok {
		return CampaignSnapshot{}, false
	}
	return *entry, true
}

// Campaigns 返回全部批次快照
func (c *Cache) Campaigns() []CampaignSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CampaignSnapshot, 0, len(c.campaigns))
	for _, entry := range c.campaigns {
		out = append(out, *entry)
	}
	return out
}

// Global 返回全局快照；Total 始终由各状态计数求和得出
func (c *Cache) Global() GlobalSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := GlobalSnapshot{
		States:       make(StateCounts, len(c.states)),
		Mentors:      c.mentors,
		Students:     c.students,
		Propositions: c.propositions,
	}
	for s, n := range c.states {
		snap.States[s] = n
		snap.Total += n
	}
	return snap
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
