// Package hooks runs user-configured shell commands after wizard events.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/wizard"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".census.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	Record      string
	Step        string
	CurrentStep string
	Status      string
}

// Execute runs a hook command and returns its output.
// Template variables in the command ({{record}}, {{step}}, {{current_step}},
// {{status}}) are expanded before execution.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"CENSUS_RECORD="+vars.Record,
		"CENSUS_STEP="+vars.Step,
		"CENSUS_STATUS="+vars.Status,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Check for context cancellation (propagate this)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// ExecuteAll runs hooks in order and joins their output with blank lines.
func ExecuteAll(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var outputs []string
	for _, hook := range hooks {
		out, err := Execute(ctx, hook, workDir, vars)
		if err != nil {
			return strings.Join(outputs, "\n"), err
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	return strings.NewReplacer(
		"{{record}}", vars.Record,
		"{{step}}", vars.Step,
		"{{current_step}}", vars.CurrentStep,
		"{{status}}", vars.Status,
	).Replace(command)
}

// Runner runs the configured hooks for wizard events. It satisfies
// wizard.Recorder; hook failures are logged and never returned.
type Runner struct {
	cfg     *Config
	workDir string
	// Output receives the combined output of each event's hooks.
	Output func(ev wizard.Event, output string)
}

// NewRunner creates a runner. A nil config runs nothing.
func NewRunner(cfg *Config, workDir string) *Runner {
	return &Runner{cfg: cfg, workDir: workDir}
}

// For returns the hooks configured for an event kind.
func (r *Runner) For(kind wizard.EventKind) []*HookConfig {
	if r == nil || r.cfg == nil {
		return nil
	}
	switch kind {
	case wizard.EventStepSubmitted:
		return r.cfg.Hooks.OnStepSubmitted
	case wizard.EventRecordCompleted:
		return r.cfg.Hooks.OnRecordCompleted
	case wizard.EventSubmitFailed:
		return r.cfg.Hooks.OnSubmitFailed
	}
	return nil
}

// Record runs the hooks for ev.
func (r *Runner) Record(ctx context.Context, ev wizard.Event) error {
	hooks := r.For(ev.Kind)
	if len(hooks) == 0 {
		return nil
	}
	vars := Variables{
		Record:      ev.RecordID,
		Step:        stepString(int(ev.Step)),
		CurrentStep: stepString(int(ev.CurrentStep)),
		Status:      string(ev.Status),
	}
	out, err := ExecuteAll(ctx, hooks, r.workDir, vars)
	if err != nil {
		logger.Warn("Hooks for %s on %s interrupted: %v", ev.Kind, ev.RecordID, err)
		return nil
	}
	if r.Output != nil && out != "" {
		r.Output(ev, out)
	}
	return nil
}

func stepString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
