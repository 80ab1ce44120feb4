package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cxd309/kart-engine/internal/engine"
)

// FileName is the config file looked up in the config directory.
const FileName = "kart_engine.cfg.json"

// SimConfig holds the timing used when an input leaves a field at zero.
type SimConfig struct {
	RunTime   float64
	TimeStep  float64
	FrameStep float64
	Gravity   float64
}

// Defaults converts the sim section to engine defaults.
func (c SimConfig) Defaults() engine.Defaults {
	return engine.Defaults{
		RunTime:   c.RunTime,
		TimeStep:  c.TimeStep,
		FrameStep: c.FrameStep,
		Gravity:   &c.Gravity,
	}
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file is not
// an error; KART_* environment variables override both file and defaults.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "console")

	viper.SetDefault("sim.runTime", 10.0)
	viper.SetDefault("sim.timeStep", 0.02)
	viper.SetDefault("sim.frameStep", 0.0)
	viper.SetDefault("sim.gravity", engine.DefaultGravity)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	viper.SetEnvPrefix("KART")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Sim returns the sim section, with file and environment values laid over the defaults.
func Sim() SimConfig {
	return SimConfig{
		RunTime:   viper.GetFloat64("sim.runTime"),
		TimeStep:  viper.GetFloat64("sim.timeStep"),
		FrameStep: viper.GetFloat64("sim.frameStep"),
		Gravity:   viper.GetFloat64("sim.gravity"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
