package postgres

import "strings"

const (
	defaultLimit = 10
	maxLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE substring pattern.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// optional unwraps a pointer into a driver argument, nil meaning SQL NULL.
func optional[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
