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
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for the given mode. "prod"/"production" emit JSON,
// anything else uses the colored development encoder.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(levelFromEnv(zap.InfoLevel))
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(levelFromEnv(zap.DebugLevel))
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func levelFromEnv(def zapcore.Level) zapcore.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return def
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
		return def
	}
	return lvl
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, scrub(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, scrub(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(keysAndValues)...)}
}

// redaction policy: secrets never reach the sink, session identifiers are
// replaced with a salted short hash.
var (
	policyOnce sync.Once
	policy     struct {
		enabled bool
		salt    string
	}
)

var redactMarkers = []string{
	"token",
	"authorization",
	"password",
	"secret",
	"cookie",
	"api_key",
	"apikey",
	"access_key",
}

var hashMarkers = []string{
	"session_id",
	"sid",
}

func scrub(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionOn() {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := stringify(kv[i])
		out = append(out, key, scrubValue(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func scrubValue(key string, val interface{}) interface{} {
	if key != "" {
		if containsAny(key, redactMarkers) {
			return "[REDACTED]"
		}
		if containsAny(key, hashMarkers) {
			return hashValue(val)
		}
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = scrubValue(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return "[REDACTED]"
		}
		return v
	default:
		return val
	}
}

func containsAny(key string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}

func hashValue(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if policy.salt != "" {
		_, _ = h.Write([]byte(policy.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
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

func redactionOn() bool {
	policyOnce.Do(func() {
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			policy.enabled = false
		default:
			policy.enabled = true
		}
		policy.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return policy.enabled
}
