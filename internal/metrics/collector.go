package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"enib-internships/backend/internal/statistics"
)

// StatisticsCollector 在抓取时读取统计缓存快照
type StatisticsCollector struct {
	cache *statistics.Cache

	internships *prometheus.Desc
	mentors     *prometheus.Desc
	students    *prometheus.Desc
	props       *prometheus.Desc
	campaign    *prometheus.Desc
}

// NewStatisticsCollector 创建统计缓存采集器
func NewStatisticsCollector(cache *statistics.Cache) *StatisticsCollector {
	return &StatisticsCollector{
		cache:       cache,
		internships: prometheus.NewDesc(namespace+"_internships", "各状态实习数", []string{"state"}, nil),
		mentors:     prometheus.NewDesc(namespace+"_mentors", "导师数", nil, nil),
		students:    prometheus.NewDesc(namespace+"_students", "学生数", nil, nil),
		props:       prometheus.NewDesc(namespace+"_propositions", "指导意向数", nil, nil),
		campaign:    prometheus.NewDesc(namespace+"_campaign_internships", "批次内实习数", []string{"campaign_id", "kind"}, nil),
	}
}

func (c *StatisticsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.internships
	ch <- c.mentors
	ch <- c.students
	ch <- c.props
	ch <- c.campaign
}

func (c *StatisticsCollector) Collect(ch chan<- prometheus.Metric) {
	g := c.cache.Global()
	for state, n := range g.States {
		ch <- prometheus.MustNewConstMetric(c.internships, prometheus.GaugeValue, float64(n), string(state))
	}
	ch <- prometheus.MustNewConstMetric(c.mentors, prometheus.GaugeValue, float64(g.Mentors))
	ch <- prometheus.MustNewConstMetric(c.students, prometheus.GaugeValue, float64(g.Students))
	ch <- prometheus.MustNewConstMetric(c.props, prometheus.GaugeValue, float64(g.Propositions))

	for _, snap := range c.cache.Campaigns() {
		ch <- prometheus.MustNewConstMetric(c.campaign, prometheus.GaugeValue, float64(snap.Internships), snap.CampaignID, "total")
		ch <- prometheus.MustNewConstMetric(c.campaign, prometheus.GaugeValue, float64(snap.Available), snap.CampaignID, "available")
		ch <- prometheus.MustNewConstMetric(c.campaign, prometheus.GaugeValue, float64(snap.Attributed), snap.CampaignID, "attributed")
	}
}
