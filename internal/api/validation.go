package api

import (
	"fmt"
	"regexp"

	"github.com/FINSIGHT/finsight/internal/models"
)

// ValidationError names the offending field alongside the message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const maxQueryLength = 2000

// symbolPattern covers tickers across the supported markets: plain US
// equities, .NS suffixes, -USD crypto pairs, =F futures, ^ indices.
var symbolPattern = regexp.MustCompile(`^\^?[A-Z][A-Z0-9&\-\.=]{0,15}$`)

// ValidateChatRequest checks a chat request body.
func ValidateChatRequest(req *ChatRequest) error {
	if req.Query == "" {
		return ValidationError{Field: "query", Message: "query is required"}
	}
	if len(req.Query) > maxQueryLength {
		return ValidationError{Field: "query", Message: fmt.Sprintf("query exceeds %d characters", maxQueryLength)}
	}

	switch req.Mode {
	case "", string(models.ModeQuick), string(models.ModeDeep):
	default:
		return ValidationError{Field: "mode", Message: "must be 'quick' or 'deep'"}
	}
	return nil
}

// ValidateSymbols checks a portfolio symbol list. Symbols arrive
// upper-cased by convention; anything else is rejected rather than
// silently fixed.
func ValidateSymbols(symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, ValidationError{Field: "symbols", Message: "at least one symbol required"}
	}
	if len(symbols) > 50 {
		return nil, ValidationError{Field: "symbols", Message: "at most 50 symbols allowed"}
	}

	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !symbolPattern.MatchString(s) {
			return nil, ValidationError{Field: "symbols", Message: fmt.Sprintf("invalid symbol %q", s)}
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// ValidatePreferences checks a preference update and fills defaults.
func ValidatePreferences(prefs *models.Preferences) error {
	switch prefs.RiskTolerance {
	case "", "conservative", "moderate", "aggressive":
	default:
		return ValidationError{Field: "risk_tolerance", Message: "must be conservative, moderate, or aggressive"}
	}

	switch prefs.Horizon {
	case "", "short_term", "medium_term", "long_term":
	default:
		return ValidationError{Field: "investment_horizon", Message: "must be short_term, medium_term, or long_term"}
	}

	return prefs.Validate()
}
