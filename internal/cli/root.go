// Package cli 实现 sitectl 运维命令：迁移、创建管理员与导入种子数据。
package cli

import (
	"fmt"

	"github.com/sitecms/internal/config"
	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Opener 打开数据库连接，测试中可替换为内存 sqlite。
type Opener func(logger *zap.Logger) (*gorm.DB, error)

type app struct {
	open   Opener
	logger *zap.Logger
	gdb    *gorm.DB
}

// NewRootCommand 构建 sitectl 根命令；open 为 nil 时按环境变量配置连接数据库。
func NewRootCommand(open Opener) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Site CMS maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newMigrateCommand(a),
		newCreateAdminCommand(a),
		newSeedCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	// help 不需要数据库
	if cmd.Name() == "help" {
		return nil
	}
	if a.open == nil {
		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		a.logger = logger
		a.open = configOpener(cfg)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	gdb, err := a.open(a.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.gdb = gdb
	a.logger.Debug("database opened", zap.String("command", cmd.Name()))
	return nil
}

func (a *app) teardown() error {
	if a.gdb == nil {
		return nil
	}
	err := db.Close(a.gdb)
	a.gdb = nil
	_ = a.logger.Sync()
	return err
}

// configOpener 只建立连接，迁移交给各命令决定。
func configOpener(cfg config.AppConfig) Opener {
	return func(logger *zap.Logger) (*gorm.DB, error) {
		return db.Open(db.Options{
			Driver:       cfg.DatabaseDriver,
			DSN:          cfg.DatabaseURL,
			Path:         cfg.DatabasePath,
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
			Logger:       logging.NewGormLogger(logger),
		})
	}
}
