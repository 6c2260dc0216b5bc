package main

import (
	"log/slog"
	"os"

	"rpgserver/internal/config"
	"rpgserver/internal/infrastructure/database"
	"rpgserver/internal/logging"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const defaultConfigFile = "config/config.yaml"

// NewRootCmd 不带子命令时等同于 serve
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "rpgserver",
		Short:        "RPG 游戏后端服务",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configFile)
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "配置文件路径")

	cmd.AddCommand(newServeCmd(&configFile))
	cmd.AddCommand(newMigrateCmd(&configFile))
	cmd.AddCommand(newGrantAdminCmd(&configFile))
	return cmd
}

// bootstrap 加载配置、创建日志并连接数据库，所有子命令共用
func bootstrap(configFile string) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.New("rpgserver", version, cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, oops.Code("DB_CONNECT_FAILED").With("driver", cfg.Database.Driver).Wrap(err)
	}
	return cfg, logger, db, nil
}
