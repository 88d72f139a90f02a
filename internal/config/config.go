package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/odcscan/odcscan/internal/discovery"
	"github.com/odcscan/odcscan/internal/output"
	"github.com/odcscan/odcscan/internal/scanner"
)

type Config struct {
	Tools  ToolsConfig  `mapstructure:"tools"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
}

type ToolsConfig struct {
	Maven           string `mapstructure:"maven"`
	DependencyCheck string `mapstructure:"dependency_check"`
}

type ScanConfig struct {
	IgnoreDirs []string      `mapstructure:"ignore_dirs"`
	Only       string        `mapstructure:"only"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	Verbose   bool   `mapstructure:"verbose"`
	Color     string `mapstructure:"color"`
	JSON      bool   `mapstructure:"json"`
	ReportDir string `mapstructure:"report_dir"`
}

var cfg *Config

// InitConfig loads the config file, environment and defaults into Get's
// result. A missing default config file is not an error; an explicit
// cfgFile must exist and parse.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "odcscan"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("odcscan")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("tools.maven", "ODCSCAN_TOOLS_MAVEN", "MAVEN_CMD")
	viper.BindEnv("tools.dependency_check", "ODCSCAN_TOOLS_DEPENDENCY_CHECK", "DEPENDENCY_CHECK")

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded
	return nil
}

func SetDefaults() {
	tools := scanner.DefaultTools()
	viper.SetDefault("tools.maven", tools.Maven)
	viper.SetDefault("tools.dependency_check", tools.DependencyCheck)
	viper.SetDefault("scan.ignore_dirs", discovery.DefaultIgnoreDirs)
	viper.SetDefault("scan.timeout", "0s")
	viper.SetDefault("output.color", string(output.ColorAuto))
}

func Get() *Config {
	if cfg == nil {
		if err := InitConfig(""); err != nil {
			klog.Warningf("%v", err)
			cfg = &Config{}
		}
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Scan.Only != "" {
		if _, err := discovery.ParseKind(c.Scan.Only); err != nil {
			return err
		}
	}

	switch output.ColorMode(c.GetColor()) {
	case output.ColorAuto, output.ColorAlways, output.ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Output.Color)
	}

	if c.Scan.Timeout < 0 {
		return fmt.Errorf("scan timeout must not be negative, got %s", c.Scan.Timeout)
	}
	if c.Tools.Maven == "" || c.Tools.DependencyCheck == "" {
		return fmt.Errorf("tool executables must not be empty. Set via --maven/--dependency-check or config file")
	}
	return nil
}

func (c *Config) GetOnly() discovery.Kind {
	return discovery.Kind(c.Scan.Only)
}

func (c *Config) GetColor() string {
	if c.Output.Color != "" {
		return c.Output.Color
	}
	return string(output.ColorAuto)
}

func (c *Config) GetIgnoreDirs() []string {
	if c.Scan.IgnoreDirs == nil {
		return slices.Clone(discovery.DefaultIgnoreDirs)
	}
	return slices.Clone(c.Scan.IgnoreDirs)
}

// GetIgnorePaths returns the report directory, if any, so retained reports
// are never rediscovered on the next run.
func (c *Config) GetIgnorePaths() []string {
	if c.Output.ReportDir == "" {
		return nil
	}
	abs, err := filepath.Abs(c.Output.ReportDir)
	if err != nil {
		return []string{c.Output.ReportDir}
	}
	return []string{abs}
}

func (c *Config) GetTools() scanner.Tools {
	return scanner.Tools{
		Maven:           c.Tools.Maven,
		DependencyCheck: c.Tools.DependencyCheck,
	}
}
