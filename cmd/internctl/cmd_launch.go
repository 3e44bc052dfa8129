package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"enib-internships/backend/internal/notify"
	"enib-internships/backend/internal/progress"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/internal/statistics"
)

var launchQuiet bool

var launchCmd = &cobra.Command{
	Use:   "launch <campaign-id>",
	Short: "发布批次并在终端输出进度",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sender, err := notify.New(&e.cfg.Notify, e.logger)
		if err != nil {
			return err
		}
		defer sender.Close()

		repo := repository.NewRepository(e.db)
		stats := statistics.NewCache()
		statsSvc := service.NewStatisticsService(repo, stats, e.logger)
		if err := statsSvc.Resync(cmd.Context()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var transport progress.Transport = progress.Noop{}
		if !launchQuiet {
			transport = &consoleTransport{w: out}
		}
		campaigns := service.NewCampaignService(e.cfg, repo, stats, transport, sender, nil, e.logger)

		summary, err := campaigns.Launch(cmd.Context(), args[0], "cli")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "发布完成: %d 个实习, %d 位导师, %d 封通知\n", summary.Internships, summary.Mentors, summary.Emails)
		return writeStats(out, statsSvc, args[0])
	},
}

func init() {
	launchCmd.Flags().BoolVarP(&launchQuiet, "quiet", "q", false, "不输出进度")
}

// consoleTransport 将进度事件逐行写到终端
type consoleTransport struct {
	mu sync.Mutex
	w  io.Writer
}

func (t *consoleTransport) Emit(topic, _ string, payload any) {
	data, _ := json.Marshal(payload)
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%-24s %s\n", topic, data)
}
