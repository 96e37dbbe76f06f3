package cli

import (
	"fmt"
)

// BuildPrompt generates the dynamic prompt string.
// Format: redis-fs-events:volume:<watches>w>
func BuildPrompt(volume string, watches int, color bool) string {
	if color {
		// Green prompt
		return fmt.Sprintf("\033[32mredis-fs-events:%s:%dw>\033[0m ", volume, watches)
	}
	return fmt.Sprintf("redis-fs-events:%s:%dw> ", volume, watches)
}
