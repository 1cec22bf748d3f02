package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 200

	// The stricter of the two historical bounds; see DESIGN.md.
	AbstractMinLen = 100
	AbstractMaxLen = 5000

	MaxTechStack = 20
	MaxTags      = 10

	MinProjectYear = 2000
)

// ValidateTitle returns the trimmed title or an error when it falls
// outside the 3-200 character bounds.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)

	if len(trimmed) < TitleMinLen || len(trimmed) > TitleMaxLen {
		return "", fmt.Errorf("title must be between %d and %d characters", TitleMinLen, TitleMaxLen)
	}

	return trimmed, nil
}

// ValidateAbstract checks the plain-text length of a rich-text abstract.
func ValidateAbstract(raw string) error {
	plain := StripHTML(raw)

	if len(plain) < AbstractMinLen {
		return fmt.Errorf("abstract must be at least %d characters of text", AbstractMinLen)
	}
	if len(plain) > AbstractMaxLen {
		return fmt.Errorf("abstract must be at most %d characters of text", AbstractMaxLen)
	}

	return nil
}

// NormalizeList trims entries, drops empties and caps the list at max.
func NormalizeList(values []string, max int) []string {
	normalized := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
		if len(normalized) == max {
			break
		}
	}

	return normalized
}

// ClampYear keeps the year within [2000, next year], falling back to the
// current year on anything outside that range.
func ClampYear(year int) int {
	maxYear := time.Now().Year() + 1

	if year < MinProjectYear || year > maxYear {
		return time.Now().Year()
	}

	return year
}

// ValidateGithubURL accepts an empty link or one whose host is exactly
// github.com or www.github.com.
func ValidateGithubURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid GitHub URL")
	}

	host := strings.ToLower(parsed.Host)
	if host != "github.com" && host != "www.github.com" {
		return fmt.Errorf("link must point to github.com")
	}

	return nil
}
