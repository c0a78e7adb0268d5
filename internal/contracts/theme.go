package contracts

// Theme is a named thematic filter preset
type Theme struct {
	ID       string   `json:"id" yaml:"id"`
	NameZh   string   `json:"name_zh" yaml:"name_zh"`
	NameEn   string   `json:"name_en" yaml:"name_en"`
	Market   Market   `json:"market" yaml:"market"`
	Sectors  []string `json:"sectors" yaml:"sectors"`
	Filters  []Filter `json:"filters" yaml:"filters"`
	Schedule string   `json:"schedule,omitempty" yaml:"schedule"` // 5-field cron, empty = manual only
}
