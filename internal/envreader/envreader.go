package envreader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvReader struct {
	prefix string
}

func New(prefix string) *EnvReader {
	return &EnvReader{
		prefix: prefix,
	}
}

func (r *EnvReader) String(key, fallback string) string {
	value := os.Getenv(r.prefix + key)

	if value == "" {
		return fallback
	}

	return value
}

func (r *EnvReader) Bool(key string, fallback bool) bool {
	value := r.String(key, "")

	if value == "" {
		return fallback
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return fallback
}

func (r *EnvReader) Int(key string, fallback int) int {
	value := r.String(key, "")

	if value == "" {
		return fallback
	}

	if i, err := strconv.Atoi(value); err == nil {
		return i
	}

	return fallback
}

func (r *EnvReader) Float(key string, fallback float64) float64 {
	value := r.String(key, "")

	if value == "" {
		return fallback
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return fallback
}

// Duration parses values such as "30m" or "1h30m".
func (r *EnvReader) Duration(key string, fallback time.Duration) time.Duration {
	value := r.String(key, "")

	if value == "" {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	return fallback
}

func (r *EnvReader) Choice(key string, choices []string, fallback string) string {
	value := r.String(key, "")

	if value == "" {
		return fallback
	}

	for _, choice := range choices {
		if strings.EqualFold(value, choice) {
			return choice
		}
	}

	return fallback
}
