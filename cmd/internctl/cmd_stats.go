package main

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/internal/statistics"
)

var statsCampaign string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "从数据库重建统计并以 YAML 输出",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		svc := service.NewStatisticsService(repository.NewRepository(e.db), statistics.NewCache(), e.logger)
		if err := svc.Resync(cmd.Context()); err != nil {
			return err
		}
		return writeStats(cmd.OutOrStdout(), svc, statsCampaign)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsCampaign, "campaign", "", "只输出指定批次")
}

type statsReport struct {
	Global    *statistics.GlobalSnapshot    `yaml:"global,omitempty"`
	Campaigns []statistics.CampaignSnapshot `yaml:"campaigns,omitempty"`
}

func writeStats(w io.Writer, svc service.StatisticsService, campaignID string) error {
	var report statsReport
	if campaignID != "" {
		snap, err := svc.Campaign(campaignID)
		if err != nil {
			return err
		}
		report.Campaigns = []statistics.CampaignSnapshot{*snap}
	} else {
		global := svc.Global()
		report.Global = &global
		report.Campaigns = svc.Campaigns()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}
