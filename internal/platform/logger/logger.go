package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/desplega-ai/mood/internal/platform/envutil"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	opts := []zap.Option{}
	if path := strings.TrimSpace(os.Getenv("LOG_FILE")); path != "" {
		fileCore := newFileCore(path, cfg)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	zapLogger, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	sugar := zapLogger.Sugar()
	return &Logger{SugaredLogger: sugar}, nil
}

// newFileCore writes JSON lines to a size-rotated file alongside the console core.
func newFileCore(path string, cfg zap.Config) zapcore.Core {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envutil.Int("LOG_FILE_MAX_SIZE_MB", 10),
		MaxBackups: envutil.Int("LOG_FILE_MAX_BACKUPS", 3),
		MaxAge:     envutil.Int("LOG_FILE_MAX_AGE_DAYS", 28),
		Compress:   true,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), cfg.Level)
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, scrub(kv)...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}

// Keys containing one of these fragments are replaced with [REDACTED].
var redactFragments = []string{
	"token", "authorization", "password", "secret",
	"api_key", "apikey", "raw_response", "body", "mood_text",
}

// Addresses are hashed so a sender can be followed across lines without being logged.
var hashFragments = []string{"email", "sender"}

type redactor struct {
	enabled bool
	salt    string
}

var (
	redactOnce sync.Once
	active     redactor
)

func currentRedactor() redactor {
	redactOnce.Do(func() {
		active = redactor{
			enabled: envutil.Bool("LOG_REDACTION_ENABLED", true),
			salt:    strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
		}
	})
	return active
}

func scrub(kv []interface{}) []interface{} {
	r := currentRedactor()
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(keyOf(out[i]), out[i+1])
	}
	return out
}

func (r redactor) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
	case containsAny(key, redactFragments):
		return "[REDACTED]"
	case containsAny(key, hashFragments):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		m := make(map[string]interface{}, len(v))
		for k, inner := range v {
			m[k] = r.value(keyOf(k), inner)
		}
		return m
	case []interface{}:
		if v == nil {
			return v
		}
		list := make([]interface{}, len(v))
		for i, inner := range v {
			list[i] = r.value("", inner)
		}
		return list
	}
	return val
}

func (r redactor) hash(val interface{}) string {
	raw := stringOf(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func keyOf(v interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringOf(v)))
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
