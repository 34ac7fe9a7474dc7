package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"backend": BackendCSV,
			"path":    "~/.rentdesk/reminders.csv",
		},
		"reminders": map[string]interface{}{
			"due_soon_hours": 48,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
		"log": map[string]interface{}{
			"level": "info",
			"file":  "~/.rentdesk/rentdesk.log",
		},
		"watch": map[string]interface{}{
			"interval": 3600,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.rentdesk/config.yaml"
}
