package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"enib-internships/backend/pkg/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "执行全部未应用的迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sqlDB, err := e.db.DB()
		if err != nil {
			return err
		}
		return database.RunMigrations(sqlDB, e.logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "回滚迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateSteps <= 0 {
			return fmt.Errorf("--steps 必须大于 0")
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sqlDB, err := e.db.DB()
		if err != nil {
			return err
		}
		return database.RollbackMigrations(sqlDB, migrateSteps, e.logger)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "回滚的迁移数量")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
