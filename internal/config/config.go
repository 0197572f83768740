package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/todoscan/internal/fileutil"
	"github.com/harrison/todoscan/internal/filelock"
	"github.com/harrison/todoscan/internal/todo"
)

// DefaultConfigFile is the configuration file used when none is given.
const DefaultConfigFile = "todo.cfg.yml"

var (
	// ErrNoNotations is returned when todo_notations is missing or empty.
	ErrNoNotations = errors.New("todo_notations must define at least one keyword")
	// ErrInvalidLocationPattern is returned when location_pattern is not a
	// [pattern, replacement] pair.
	ErrInvalidLocationPattern = errors.New("location_pattern must be a list of exactly two strings: [pattern, replacement]")
)

// Config represents todoscan configuration options
type Config struct {
	// Filename is the todo file entries are written to. Empty writes entries
	// to the console instead.
	Filename string `yaml:"filename"`

	// Recursive enables scanning of subdirectories
	Recursive bool `yaml:"recursive"`

	// Notations maps annotation keywords to priorities, in file order
	Notations Notations `yaml:"todo_notations"`

	// PrintResult echoes the todo file once the scan is done
	PrintResult bool `yaml:"print_result"`

	// ForceOverwrite truncates the todo file instead of appending new tasks
	ForceOverwrite bool `yaml:"force_overwrite"`

	// TagWithProject adds "+<project>" to every entry
	TagWithProject bool `yaml:"tag_with_project"`

	// LocationPattern is the [pattern, replacement] rule for entry locations
	LocationPattern []string `yaml:"location_pattern"`

	// Tags are tag templates added to every entry
	Tags []string `yaml:"tags"`

	// Exclude and Include hold the path rules
	Exclude fileutil.RuleSpec `yaml:"exclude"`
	Include fileutil.RuleSpec `yaml:"include"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// HistoryDB is the SQLite database recording runs. Empty disables history.
	HistoryDB string `yaml:"history_db"`

	// Path is the file the configuration was loaded from
	Path string `yaml:"-"`

	matcher  *todo.Matcher
	location *todo.LocationRule
	exclude  fileutil.Rules
	include  fileutil.Rules
	compiled bool
}

// Notations is the ordered keyword to priority mapping. It decodes from a
// YAML mapping and keeps the mapping's key order.
type Notations []todo.Notation

// UnmarshalYAML decodes a mapping of keyword to priority. A null priority is
// treated as no priority.
func (n *Notations) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: todo_notations must be a mapping of keyword to priority", value.Line)
	}

	out := make(Notations, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]

		var priority string
		if val.Tag != "!!null" {
			if err := val.Decode(&priority); err != nil {
				return fmt.Errorf("line %d: priority for %q: %w", val.Line, key.Value, err)
			}
		}
		out = append(out, todo.Notation{Keyword: key.Value, Priority: priority})
	}

	*n = out
	return nil
}

// MarshalYAML encodes the notations as an ordered mapping.
func (n Notations) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, notation := range n {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: notation.Keyword},
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.SingleQuotedStyle, Value: notation.Priority},
		)
	}
	return node, nil
}

// DefaultConfig returns the configuration written by Bootstrap.
func DefaultConfig() *Config {
	cfg, err := Parse([]byte(DefaultConfigYAML))
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// LoadConfig loads and validates configuration from the specified file path.
// The file is authoritative: keys it omits are empty, so an omitted
// filename sends entries to the console.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	cfg.Path = path

	return cfg, nil
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bootstrap writes the default configuration to path when no file exists
// there. It reports whether a file was written.
func Bootstrap(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := WriteDefault(path); err != nil {
		return false, err
	}
	return true, nil
}

// WriteDefault writes the default configuration to path, replacing any
// existing file.
func WriteDefault(path string) error {
	if err := filelock.AtomicWrite(path, []byte(DefaultConfigYAML)); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// Overrides carries command line flags that take precedence over the file.
type Overrides struct {
	// NoRecursion disables subdirectory scanning
	NoRecursion bool
	// Verbose lowers the log level to debug
	Verbose bool
	// Output replaces the configured filename when non-nil
	Output *string
}

// MergeWithFlags merges CLI flags into the configuration
func (c *Config) MergeWithFlags(o Overrides) {
	if o.NoRecursion {
		c.Recursive = false
	}
	if o.Verbose && logLevelRank(c.LogLevel) > logLevelRank("debug") {
		c.LogLevel = "debug"
	}
	if o.Output != nil {
		c.Filename = *o.Output
	}
}

// Validate validates the configuration values and compiles every pattern.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	c.compiled = false

	if len(c.Notations) == 0 {
		errs = append(errs, ErrNoNotations)
	} else if m, err := todo.NewMatcher(c.Notations); err != nil {
		errs = append(errs, fmt.Errorf("todo_notations: %w", err))
	} else {
		c.matcher = m
	}

	c.location = nil
	switch len(c.LocationPattern) {
	case 0:
	case 2:
		rule, err := todo.NewLocationRule(c.LocationPattern[0], c.LocationPattern[1])
		if err != nil {
			errs = append(errs, fmt.Errorf("location_pattern: %w", err))
		} else {
			c.location = rule
		}
	default:
		errs = append(errs, fmt.Errorf("%w, got %d elements", ErrInvalidLocationPattern, len(c.LocationPattern)))
	}

	if rules, err := fileutil.CompileRules(c.Exclude); err != nil {
		errs = append(errs, fmt.Errorf("exclude: %w", err))
	} else {
		c.exclude = rules
	}
	if rules, err := fileutil.CompileRules(c.Include); err != nil {
		errs = append(errs, fmt.Errorf("include: %w", err))
	} else {
		c.include = rules
	}

	if logLevelRank(c.LogLevel) < 0 {
		errs = append(errs, fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.compiled = true
	return nil
}

// Matcher returns the compiled annotation matcher.
func (c *Config) Matcher() *todo.Matcher {
	c.mustBeCompiled()
	return c.matcher
}

// LocationRule returns the compiled location rule, or nil when
// location_pattern is not set.
func (c *Config) LocationRule() *todo.LocationRule {
	c.mustBeCompiled()
	return c.location
}

// ExcludeRules returns the compiled exclude rules.
func (c *Config) ExcludeRules() fileutil.Rules {
	c.mustBeCompiled()
	return c.exclude
}

// IncludeRules returns the compiled include rules.
func (c *Config) IncludeRules() fileutil.Rules {
	c.mustBeCompiled()
	return c.include
}

func (c *Config) mustBeCompiled() {
	if !c.compiled {
		panic("config: compiled accessor used before a successful Validate")
	}
}

func logLevelRank(level string) int {
	switch strings.ToLower(level) {
	case "trace":
		return 0
	case "debug":
		return 1
	case "info":
		return 2
	case "warn":
		return 3
	case "error":
		return 4
	default:
		return -1
	}
}
