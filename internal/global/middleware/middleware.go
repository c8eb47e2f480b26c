package middleware

import "log/slog"

var log = slog.Default()

// SetLogger 由 server 初始化时注入
func SetLogger(l *slog.Logger) {
	log = l
}
