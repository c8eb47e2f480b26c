package database

import (
	"embed"
	"errors"
	"fmt"

	"cohort-checkin/internal/model"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// autoMigrateModels mysql 没有部分唯一索引，使用 AutoMigrate 建表
var autoMigrateModels = []any{
	&model.User{},
	&model.CheckinSchedule{},
	&model.CheckinRecord{},
	&model.Assignment{},
	&model.Submission{},
}

func Migrate(db *gorm.DB, driver string) error {
	if driver == "mysql" {
		return db.AutoMigrate(autoMigrateModels...)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}
	target, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		return fmt.Errorf("初始化迁移失败: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	if _, dirty, _ := m.Version(); dirty {
		return errors.New("数据库迁移处于 dirty 状态，需要人工处理")
	}
	return nil
}
