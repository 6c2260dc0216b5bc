package main

import (
	"rpgserver/internal/infrastructure/database"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（AutoMigrate）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, db, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return oops.Code("MIGRATION_FAILED").Wrap(err)
			}
			logger.Info("数据库迁移完成")
			return nil
		},
	}
}
