// Package logging configures logrus for the client and scrubs credentials
// out of every emitted entry.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// sensitivePatterns matches credentials embedded in free-form text.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password)["\s:=]+["\s]*([^"\s,}]+)`),
	regexp.MustCompile(`(?i)(access_token|accesstoken)["\s:=]+["\s]*([^"\s,}]+)`),
	regexp.MustCompile(`(?i)(refresh_token|refreshtoken)["\s:=]+["\s]*([^"\s,}]+)`),
	regexp.MustCompile(`(?i)(api_key|apikey)["\s:=]+["\s]*([^"\s,}]+)`),
	regexp.MustCompile(`(?i)(secret)["\s:=]+["\s]*([^"\s,}]+)`),
	regexp.MustCompile(`(?i)(bearer\s+)([^\s"]+)`),
}

// sensitiveKeys are field names whose values are always replaced.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"access_token":  true,
	"refresh_token": true,
	"api_key":       true,
	"secret":        true,
	"token":         true,
}

const redacted = "[REDACTED]"

// Setup applies level, formatter and output from cfg to the standard logger.
// When cfg.File is set, output goes to a rotating file.
func Setup(cfg config.LoggingConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.AddHook(redactHook{})

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return err
		}
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
	log.SetOutput(out)
	return nil
}

// Component returns an entry tagged with the given component name.
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}

// redactHook scrubs messages and string fields before formatting.
type redactHook struct{}

func (redactHook) Levels() []log.Level { return log.AllLevels }

func (redactHook) Fire(entry *log.Entry) error {
	entry.Message = Redact(entry.Message)
	entry.Data = RedactFields(entry.Data)
	return nil
}

// Redact removes credential values from s, keeping the key names.
func Redact(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		matches := pattern.FindAllStringSubmatchIndex(result, -1)
		if matches == nil {
			continue
		}
		var b strings.Builder
		last := 0
		for _, m := range matches {
			// m[4]:m[5] is the value group.
			if len(m) < 6 || m[4] < 0 {
				b.WriteString(result[last:m[1]])
				last = m[1]
				continue
			}
			b.WriteString(result[last:m[4]])
			b.WriteString(redacted)
			last = m[5]
		}
		b.WriteString(result[last:])
		result = b.String()
	}
	return result
}

// RedactFields returns a copy of fields with sensitive values replaced.
func RedactFields(fields log.Fields) log.Fields {
	result := make(log.Fields, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			if sensitiveKeys[strings.ToLower(k)] {
				result[k] = redacted
			} else {
				result[k] = Redact(val)
			}
		case error:
			result[k] = Redact(val.Error())
		default:
			if sensitiveKeys[strings.ToLower(k)] {
				result[k] = redacted
			} else {
				result[k] = v
			}
		}
	}
	return result
}
