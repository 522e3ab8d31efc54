package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options 描述打开数据库所需的参数。
type Options struct {
	Driver       string
	DSN          string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	Logger       gormlogger.Interface
}

// Init 打开数据库连接、调整连接池并执行自动迁移。
func Init(opts Options) (*gorm.DB, error) {
	gdb, err := Open(opts)
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return gdb, nil
}

// Open 根据驱动打开 postgres 或 sqlite 连接。
func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         opts.Logger,
		TranslateError: true,
	}
	if cfg.Logger == nil {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "postgres":
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "sitecms.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := tunePool(gdb, opts); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate 为全部模型创建或更新表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Page{},
		&PageContent{},
		&BlogCategory{},
		&BlogPost{},
		&TeamMember{},
		&PortfolioCompany{},
		&InvestmentArea{},
		&OfficeLocation{},
		&Media{},
		&BrandingSetting{},
		&FooterLink{},
		&Form{},
		&FormField{},
		&FormSubmission{},
	)
}

// Ping 检查数据库连接是否可用。
func Ping(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭底层连接池。
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func tunePool(gdb *gorm.DB, opts Options) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
