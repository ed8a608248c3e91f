package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"fastpull/internal/app/errors"
)

// Config represents the application configuration
type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}
	Runtime   Runtime              `yaml:"runtime"`
	Probe     Probe                `yaml:"probe"`
	Monitor   Monitor              `yaml:"monitor"`
	Telemetry Telemetry            `yaml:"telemetry"`
	Preflight Preflight            `yaml:"preflight"`
	Workloads map[string]*Workload `yaml:"workloads"`
	Logs      struct {
		Buffer int `yaml:"buffer"`
	}
	Version int

	order []string
}

// Runtime holds the container CLI settings
type Runtime struct {
	Binary        string        `yaml:"binary"`
	EventsBinary  string        `yaml:"events_binary" mapstructure:"events_binary"`
	Sudo          bool          `yaml:"sudo"`
	Namespace     string        `yaml:"namespace"`
	GPUs          string        `yaml:"gpus"`
	StopTimeout   time.Duration `yaml:"stop_timeout" mapstructure:"stop_timeout"`
	RemoveTimeout time.Duration `yaml:"remove_timeout" mapstructure:"remove_timeout"`
	Settle        time.Duration `yaml:"settle"`
}

// Probe holds the health probe settings
type Probe struct {
	Interval       time.Duration `yaml:"interval"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	DefaultCap     time.Duration `yaml:"default_cap" mapstructure:"default_cap"`
}

// Monitor holds the monitoring loop settings
type Monitor struct {
	PollWait      time.Duration `yaml:"poll_wait" mapstructure:"poll_wait"`
	Backoff       time.Duration `yaml:"backoff"`
	EventsSettle  time.Duration `yaml:"events_settle" mapstructure:"events_settle"`
	StartupSettle time.Duration `yaml:"startup_settle" mapstructure:"startup_settle"`
}

// Preflight holds the stale follower cleanup settings
type Preflight struct {
	Workers     int           `yaml:"workers"`
	KillTimeout time.Duration `yaml:"kill_timeout" mapstructure:"kill_timeout"`
}

// Telemetry holds error reporting settings
type Telemetry struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Workload describes a benchmarked server and its phase table
type Workload struct {
	Name          string        `yaml:"-" mapstructure:"-"`
	Readiness     bool          `yaml:"readiness"`
	HealthPath    string        `yaml:"health_path" mapstructure:"health_path"`
	Port          int           `yaml:"port"`
	ContainerPort int           `yaml:"container_port" mapstructure:"container_port"`
	Timeout       time.Duration `yaml:"timeout"`
	Phases        []Phase       `yaml:"phases"`
}

// Phase is a named milestone and the log patterns announcing it
type Phase struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		Workloads: make(map[string]*Workload),
		Version:   1,
	}

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	cfg.Runtime = Runtime{
		Binary:        RuntimeBinary,
		EventsBinary:  EventsBinary,
		GPUs:          DefaultGPUs,
		StopTimeout:   StopTimeout,
		RemoveTimeout: RemoveTimeout,
		Settle:        TeardownSettle,
	}

	cfg.Probe = Probe{
		Interval:       ProbeInterval,
		RequestTimeout: ProbeRequestTimeout,
		DefaultCap:     ProbeDefaultCap,
	}

	cfg.Monitor = Monitor{
		PollWait:      MonitorPollWait,
		Backoff:       FollowBackoff,
		EventsSettle:  EventsSettle,
		StartupSettle: StartupSettle,
	}

	cfg.Preflight = Preflight{
		Workers:     PreflightWorkers,
		KillTimeout: PreflightKillTimeout,
	}

	cfg.Logs.Buffer = LogsBufferSize

	for _, w := range DefaultWorkloads() {
		cfg.Workloads[w.Name] = w
		cfg.order = append(cfg.order, w.Name)
	}

	return cfg
}

// Load reads the configuration at path, falling back to defaults when the file does not exist
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, errors.ErrFailedToReadConfig
	}

	order, err := parseWorkloadOrder(data)
	if err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.ErrFailedToReadConfig
	}

	custom := struct {
		Workloads map[string]*Workload `mapstructure:"workloads"`
	}{}

	if err := v.Unmarshal(&custom); err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	// workloads are merged by name, the rest of the document overlays defaults
	workloads := cfg.Workloads
	cfg.Workloads = nil

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	cfg.Workloads = workloads
	cfg.mergeWorkloads(custom.Workloads, order)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// mergeWorkloads replaces built-ins by name and appends new workloads in declaration order
func (c *Config) mergeWorkloads(custom map[string]*Workload, order []string) {
	for _, name := range order {
		w, ok := custom[name]
		if !ok || w == nil {
			continue
		}

		if _, exists := c.Workloads[name]; !exists {
			c.order = append(c.order, name)
		}

		c.Workloads[name] = w
	}
}

// ApplyDefaults fills unset workload fields
func (c *Config) ApplyDefaults() {
	for name, w := range c.Workloads {
		w.Name = name
		w.HealthPath = strings.TrimPrefix(w.HealthPath, "/")

		if w.Port == 0 {
			w.Port = DefaultPort
		}

		if w.ContainerPort == 0 {
			w.ContainerPort = DefaultContainerPort
		}

		if w.Timeout == 0 {
			w.Timeout = DefaultTimeout
		}

		for i := range w.Phases {
			w.Phases[i].Name = strings.TrimSpace(w.Phases[i].Name)
			for j, p := range w.Phases[i].Patterns {
				w.Phases[i].Patterns[j] = strings.ToLower(p)
			}
		}
	}

	// workloads set programmatically are listed after the known ones
	var missing []string

	for name := range c.Workloads {
		if !slices.Contains(c.order, name) {
			missing = append(missing, name)
		}
	}

	slices.Sort(missing)
	c.order = append(c.order, missing...)
}

// Workload returns the named workload
func (c *Config) Workload(name string) (*Workload, error) {
	w, ok := c.Workloads[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", errors.ErrWorkloadNotFound, name)
	}

	return w, nil
}

// WorkloadNames returns workload names in display order: built-ins first, then declaration order
func (c *Config) WorkloadNames() []string {
	names := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if _, ok := c.Workloads[name]; ok {
			names = append(names, name)
		}
	}

	return names
}

// parseWorkloadOrder extracts the declaration order of workloads from the raw document
func parseWorkloadOrder(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	order := []string{}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return order, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return order, nil
	}

	for i := 0; i < len(doc.Content); i += 2 {
		key := doc.Content[i]
		value := doc.Content[i+1]

		if key.Value != "workloads" || value.Kind != yaml.MappingNode {
			continue
		}

		for j := 0; j < len(value.Content); j += 2 {
			// viper lower-cases map keys
			order = append(order, strings.ToLower(value.Content[j].Value))
		}
	}

	return order, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateRuntime(); err != nil {
		return err
	}

	if err := c.validateProbe(); err != nil {
		return err
	}

	if c.Monitor.PollWait <= 0 {
		return errors.ErrInvalidMonitorWait
	}

	if c.Logs.Buffer <= 0 {
		return errors.ErrInvalidLogsBuffer
	}

	if c.Preflight.Workers <= 0 {
		return errors.ErrInvalidWorkers
	}

	for _, name := range c.WorkloadNames() {
		if err := c.Workloads[name].Validate(); err != nil {
			return fmt.Errorf("workload %s: %w", name, err)
		}
	}

	return nil
}

func (c *Config) validateRuntime() error {
	if c.Runtime.Binary == "" || c.Runtime.EventsBinary == "" {
		return errors.ErrRuntimeBinaryRequired
	}

	return nil
}

func (c *Config) validateProbe() error {
	if c.Probe.Interval <= 0 {
		return errors.ErrInvalidProbeInterval
	}

	if c.Probe.RequestTimeout <= 0 {
		return errors.ErrInvalidProbeTimeout
	}

	return nil
}

// Validate checks the phase table and readiness contract of a workload
func (w *Workload) Validate() error {
	if len(w.Phases) == 0 {
		return errors.ErrWorkloadPhasesRequired
	}

	if w.Readiness && w.HealthPath == "" {
		return errors.ErrWorkloadHealthRequired
	}

	if w.Port < 1 || w.Port > 65535 || w.ContainerPort < 1 || w.ContainerPort > 65535 {
		return errors.ErrInvalidPort
	}

	seen := make(map[string]bool, len(w.Phases))

	for _, p := range w.Phases {
		if p.Name == "" {
			return errors.ErrPhaseNameRequired
		}

		if p.Name == PhaseFirstLog || p.Name == PhaseServerReady {
			return fmt.Errorf("%w: '%s'", errors.ErrReservedPhaseName, p.Name)
		}

		if seen[p.Name] {
			return fmt.Errorf("%w: '%s'", errors.ErrDuplicatePhase, p.Name)
		}

		seen[p.Name] = true

		if len(p.Patterns) == 0 {
			return fmt.Errorf("%w: '%s'", errors.ErrPhasePatternsRequired, p.Name)
		}

		for _, pattern := range p.Patterns {
			expr, ok := strings.CutPrefix(pattern, GlobPrefix)
			if !ok {
				continue
			}

			if _, err := glob.Compile(expr); err != nil {
				return fmt.Errorf("%w: '%s'", errors.ErrInvalidGlobPattern, pattern)
			}
		}
	}

	return nil
}
