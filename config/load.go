package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 CHECKIN_DB_HOST、CHECKIN_JWT_ACCESS_SECRET
const EnvPrefix = "CHECKIN"

var (
	cfg  *Config
	once sync.Once
)

// Init 读取配置文件并叠加环境变量，失败直接 panic
func Init() {
	once.Do(func() {
		c, err := Load(os.Getenv("CONFIG_PATH"))
		if err != nil {
			panic(err)
		}
		cfg = c
	})
}

// Get 获取全局配置，未初始化时自动初始化
func Get() *Config {
	if cfg == nil {
		Init()
	}
	return cfg
}

// Set 替换全局配置，仅用于测试
func Set(c *Config) {
	once.Do(func() {})
	cfg = c
}

// Load 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("prefix", "api")
	v.SetDefault("mode", string(ModeDebug))

	v.SetDefault("app.timezone", "Asia/Shanghai")
	v.SetDefault("app.allow_register", true)

	v.SetDefault("program.window_days", 93)
	v.SetDefault("program.pass_days", 90)
	v.SetDefault("program.self_schedule_months", 6)
	v.SetDefault("program.count_pending", false)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.username", "postgres")
	v.SetDefault("db.db_name", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_expire", 7*24*3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "uploads")
	v.SetDefault("s3.path_style", true)

	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("crawler.timeout_seconds", 15)
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return errors.New("配置校验失败: jwt.access_secret 不能为空")
	}
	if c.Program.WindowDays <= 0 || c.Program.PassDays <= 0 || c.Program.PassDays > c.Program.WindowDays {
		return fmt.Errorf("配置校验失败: program.pass_days(%d) 必须在 1-%d 之间", c.Program.PassDays, c.Program.WindowDays)
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("配置校验失败: 不支持的数据库驱动 %q", c.Database.Driver)
	}
	return nil
}
