package hooks

// Config is the top-level configuration for hooks loaded from .census.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the commands run after each kind of wizard event.
type HooksConfig struct {
	OnStepSubmitted   []*HookConfig `yaml:"on_step_submitted"`
	OnRecordCompleted []*HookConfig `yaml:"on_record_completed"`
	OnSubmitFailed    []*HookConfig `yaml:"on_submit_failed"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
