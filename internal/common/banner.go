package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner followed by the listen
// address and storage backend
func PrintBanner(config *Config) {
	banner.Print("Stock Analyzer", GetVersion())
	fmt.Printf("  http://%s:%d  storage=%s  scheduler=%t\n\n",
		config.Server.Host, config.Server.Port, config.Storage.Type, config.Scheduler.Enabled)
}
