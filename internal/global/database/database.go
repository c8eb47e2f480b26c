package database

import (
	"fmt"
	"net"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/sentry/tracing"
	"cohort-checkin/tools"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init() {
	cfg := config.Get()
	log := logger.New("Database")

	gormConfig := &gorm.Config{TranslateError: true}
	switch cfg.Mode {
	case config.ModeDebug:
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	case config.ModeRelease:
		gormConfig.Logger = gormlogger.Discard
	}

	db, err := gorm.Open(Dialector(cfg.Database), gormConfig)
	tools.PanicOnErr(err)

	if tracing.IsEnabled() {
		tools.PanicOnErr(db.Use(tracing.NewGormPlugin()))
	}

	sqlDB, err := db.DB()
	tools.PanicOnErr(err)
	sqlDB.SetMaxOpenConns(max(cfg.Database.MaxOpenConns, 1))
	sqlDB.SetMaxIdleConns(max(cfg.Database.MaxIdleConns, 1))
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)
	}
	tools.PanicOnErr(sqlDB.Ping())

	tools.PanicOnErr(Migrate(db, cfg.Database.Driver))
	log.Info("数据库连接成功", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "db", cfg.Database.DBName)
	DB = db
}

// Dialector postgres 用于 Supabase，mysql 兼容旧部署
func Dialector(c config.Database) gorm.Dialector {
	if c.Driver == "mysql" {
		return mysql.Open(MySQLDSN(c))
	}
	return postgres.Open(PostgresDSN(c))
}

func PostgresDSN(c config.Database) string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.Username, c.Password, c.DBName, sslmode)
}

func MySQLDSN(c config.Database) string {
	mc := mysqldriver.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
