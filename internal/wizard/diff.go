package wizard

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
)

// payloadDiff renders both payloads as YAML and diffs them.
func payloadDiff(step census.Step, submitted, canonical census.Payload) string {
	before, err := yaml.Marshal(submitted)
	if err != nil {
		logger.Warn("Encoding submitted step %d: %v", step, err)
		return ""
	}
	after, err := yaml.Marshal(canonical)
	if err != nil {
		logger.Warn("Encoding canonical step %d: %v", step, err)
		return ""
	}
	if string(before) == string(after) {
		return ""
	}
	return udiff.Unified(fmt.Sprintf("step%d (submitted)", step), fmt.Sprintf("step%d (server)", step), string(before), string(after))
}
