package config

import "time"

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host     string `envconfig:"HOST" mapstructure:"host"`
	Port     string `envconfig:"PORT" mapstructure:"port"`
	Domain   string `envconfig:"DOMAIN" mapstructure:"domain"`
	Prefix   string `envconfig:"PREFIX" mapstructure:"prefix"`
	Mode     Mode   `envconfig:"MODE" mapstructure:"mode"`
	App      App    `mapstructure:"app"`
	Program  Program
	Database Database `envconfig:"DB" mapstructure:"db"`
	Redis    Redis
	JWT      JWT
	Log      Log `mapstructure:"log"`
	Sentry   Sentry
	S3       S3
	AI       AI `envconfig:"AI" mapstructure:"ai"`
	Crawler  Crawler
	PDF      PDF `envconfig:"PDF" mapstructure:"pdf"`
}

type App struct {
	Timezone      string   `envconfig:"TIMEZONE" mapstructure:"timezone"`             // 项目日期计算所用时区
	AllowRegister bool     `envconfig:"ALLOW_REGISTER" mapstructure:"allow_register"` // 是否开放学生自助注册
	AllowOrigins  []string `envconfig:"ALLOW_ORIGINS" mapstructure:"allow_origins"`   // 跨域白名单
}

// Program 打卡项目规则
type Program struct {
	WindowDays         int  `envconfig:"WINDOW_DAYS" mapstructure:"window_days"`                   // 打卡周期天数，默认 93
	PassDays           int  `envconfig:"PASS_DAYS" mapstructure:"pass_days"`                       // 合格所需打卡天数，默认 90
	SelfScheduleMonths int  `envconfig:"SELF_SCHEDULE_MONTHS" mapstructure:"self_schedule_months"` // 自主排期权限有效月数，默认 6
	CountPending       bool `envconfig:"COUNT_PENDING" mapstructure:"count_pending"`               // 待审核的打卡是否计入进度，默认只统计审核通过的
}

type Database struct {
	Driver          string `envconfig:"DRIVER" mapstructure:"driver"` // postgres | mysql
	Host            string `envconfig:"HOST" mapstructure:"host"`
	Port            string `envconfig:"PORT" mapstructure:"port"`
	Username        string `envconfig:"USERNAME" mapstructure:"username"`
	Password        string `envconfig:"PASSWORD" mapstructure:"password"`
	DBName          string `envconfig:"DB_NAME" mapstructure:"db_name"`
	SSLMode         string `envconfig:"SSLMODE" mapstructure:"sslmode"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" mapstructure:"conn_max_lifetime"` // 分钟
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET" mapstructure:"access_secret"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE" mapstructure:"access_expire"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string        `envconfig:"DSN" mapstructure:"dsn"`
	Environment string        `envconfig:"ENVIRONMENT" mapstructure:"environment"`
	SampleRate  float64       `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"`
	Tracing     SentryTracing `mapstructure:"tracing"`
}

type SentryTracing struct {
	DBSlowThresholdMs    int  `envconfig:"DB_SLOW_THRESHOLD_MS" mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int  `envconfig:"REDIS_SLOW_THRESHOLD_MS" mapstructure:"redis_slow_threshold_ms"`
	TraceHTTPCalls       bool `envconfig:"TRACE_HTTP_CALLS" mapstructure:"trace_http_calls"`
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	BaseURL         string `mapstructure:"base_url"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKey       string `envconfig:"ACCESS_KEY" mapstructure:"access_key"`
	SecretAccessKey string `envconfig:"SECRET_KEY" mapstructure:"secret_key"`
	Prefix          string `mapstructure:"prefix"`
	UsePathStyle    bool   `envconfig:"PATH_STYLE" mapstructure:"path_style"`
}

// AI 作业批改服务（OpenAI 兼容接口）
type AI struct {
	BaseURL        string `envconfig:"BASE_URL" mapstructure:"base_url"`
	APIKey         string `envconfig:"API_KEY" mapstructure:"api_key"`
	Model          string `envconfig:"MODEL" mapstructure:"model"`
	FallbackModel  string `envconfig:"FALLBACK_MODEL" mapstructure:"fallback_model"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" mapstructure:"timeout_seconds"`
}

// Crawler 小红书爬虫 / MCP 服务
type Crawler struct {
	BaseURL        string `envconfig:"BASE_URL" mapstructure:"base_url"`
	Token          string `envconfig:"TOKEN" mapstructure:"token"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" mapstructure:"timeout_seconds"`
}

type PDF struct {
	TemplatePath string `envconfig:"TEMPLATE_PATH" mapstructure:"template_path"`
	FontPath     string `envconfig:"FONT_PATH" mapstructure:"font_path"` // 中文需提供 TTF 字体
}

// Location 项目时区，加载失败时使用 UTC
func (a App) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
