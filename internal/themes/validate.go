package themes

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/wonny/themescreen/internal/contracts"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks every theme; the first violation is returned
func Validate(list []contracts.Theme) error {
	if len(list) == 0 {
		return ValidationError{"themes", "at least one theme is required"}
	}

	seen := make(map[string]bool, len(list))
	for i, t := range list {
		field := fmt.Sprintf("themes[%d]", i)

		if t.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if seen[t.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate id %q", t.ID)}
		}
		seen[t.ID] = true

		if t.NameEn == "" && t.NameZh == "" {
			return ValidationError{field + ".name", "name_zh or name_en is required"}
		}
		if _, err := contracts.ParseMarket(string(t.Market)); err != nil || t.Market == "" {
			return ValidationError{field + ".market", "must be america or china"}
		}
		if len(t.Filters) == 0 {
			return ValidationError{field + ".filters", "at least one filter is required"}
		}
		for j, f := range t.Filters {
			if f.Left == "" || f.Operation == "" {
				return ValidationError{fmt.Sprintf("%s.filters[%d]", field, j), "left and operation are required"}
			}
		}
		if t.Schedule != "" {
			if _, err := scheduleParser.Parse(t.Schedule); err != nil {
				return ValidationError{field + ".schedule", err.Error()}
			}
		}
	}

	return nil
}
