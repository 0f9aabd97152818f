package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds defaults for the global flags. Flags set on the command
// line take precedence.
type Config struct {
	SuperblockSize *int    `yaml:"superblock_size"`
	MaxEntries     *int    `yaml:"max_entries"`
	Mmap           *bool   `yaml:"mmap"`
	LogLevel       *string `yaml:"log_level"`
	LogFile        *string `yaml:"log_file"`
	Format         *string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply sets every flag the config provides and the command line did not.
func (c *Config) Apply(cmd *cobra.Command) error {
	values := map[string]*string{
		"log-level": c.LogLevel,
		"log-file":  c.LogFile,
		"format":    c.Format,
	}
	if c.SuperblockSize != nil {
		s := strconv.Itoa(*c.SuperblockSize)
		values["superblock-size"] = &s
	}
	if c.MaxEntries != nil {
		s := strconv.Itoa(*c.MaxEntries)
		values["max-entries"] = &s
	}
	if c.Mmap != nil {
		s := strconv.FormatBool(*c.Mmap)
		values["mmap"] = &s
	}

	flags := cmd.Flags()
	for name, v := range values {
		if v == nil || flags.Changed(name) {
			continue
		}
		if err := flags.Set(name, *v); err != nil {
			return fmt.Errorf("invalid config value for %s: %w", name, err)
		}
	}
	return nil
}
