/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/young-yangyong/SnowFlake"
)

// environment variables overriding the config file
const (
	EnvMachineID    = "CONFIG_SNOWFLAKE_MACHINE_ID"
	EnvMaxMachineID = "CONFIG_SNOWFLAKE_MAX_MACHINE_ID"
	EnvMaxSequence  = "CONFIG_SNOWFLAKE_MAX_SEQUENCE"
)

// Config of the generator process
type Config struct {
	// generator layout
	MachineID    int64     `toml:"MachineID"`
	MaxMachineID int64     `toml:"MaxMachineID"`
	MaxSequence  int64     `toml:"MaxSequence"`
	Epoch        time.Time `toml:"Epoch"` // zero value keeps UNIX epoch
	// logger
	lgMu           sync.Mutex
	lg             *zap.Logger
	Development    bool     `toml:"Development"`
	LogLevel       string   `toml:"LogLevel"`
	LogOutputPaths []string `toml:"LogOutputPaths"`
}

var strMapZapLevel = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zap.PanicLevel,
	"fatal": zap.FatalLevel,
}

// Default config: 1024 machines, 4096 ids per millisecond
func Default() *Config {
	return &Config{
		MachineID:    0,
		MaxMachineID: 1024,
		MaxSequence:  4096,
		LogLevel:     "info",
	}
}

// Read decodes toml file on top of defaults
func Read(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overrides layout settings with environment variables
func (cfg *Config) FromEnv() error {
	for key, val := range map[string]*int64{
		EnvMachineID:    &cfg.MachineID,
		EnvMaxMachineID: &cfg.MaxMachineID,
		EnvMaxSequence:  &cfg.MaxSequence,
	} {
		if err := getEnvInt64(key, val); err != nil {
			return err
		}
	}
	return nil
}

func getEnvInt64(key string, val *int64) error {
	s, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}

	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("env %s, integer expected: %w", key, err)
	}
	*val = v
	return nil
}

// Validate checks settings which are not validated by the generator itself
func (cfg *Config) Validate() error {
	if len(cfg.LogLevel) != 0 {
		if _, ok := strMapZapLevel[strings.ToLower(cfg.LogLevel)]; !ok {
			return fmt.Errorf("unknown log level %q", cfg.LogLevel)
		}
	}

	if cfg.Epoch.After(time.Now()) {
		return fmt.Errorf("epoch %s is in the future", cfg.Epoch.Format(time.RFC3339))
	}

	return nil
}

// Logger lazily builds the logger, it fails if output paths cannot be opened
func (cfg *Config) Logger() (*zap.Logger, error) {
	var err error
	cfg.lgMu.Lock()
	defer cfg.lgMu.Unlock()
	if cfg.lg != nil {
		return cfg.lg, nil
	}
	logLevel := zapcore.InfoLevel
	if lv, ok := strMapZapLevel[strings.ToLower(cfg.LogLevel)]; ok {
		logLevel = lv
	}
	logOutputPaths := cfg.LogOutputPaths
	if len(logOutputPaths) == 0 {
		logOutputPaths = []string{"stderr"}
	}
	cfg.lg, err = zap.Config{
		Level:       zap.NewAtomicLevelAt(logLevel),
		Development: cfg.Development,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      logOutputPaths,
		ErrorOutputPaths: logOutputPaths,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg.lg, nil
}

// Clock returns wall clock shifted to configured epoch
func (cfg *Config) Clock() snowflake.Chronos {
	if cfg.Epoch.IsZero() {
		return snowflake.NewClock()
	}
	return snowflake.NewClock(snowflake.WithEpoch(cfg.Epoch))
}

// Generator creates the generator for configured machine
func (cfg *Config) Generator() (*snowflake.Generator, error) {
	lg, err := cfg.Logger()
	if err != nil {
		return nil, err
	}

	g, err := snowflake.New(cfg.MachineID, cfg.MaxMachineID, cfg.MaxSequence,
		snowflake.WithChronos(cfg.Clock()),
		snowflake.WithLogger(lg),
	)
	if err != nil {
		return nil, err
	}

	l := g.Layout()
	lg.Debug("generator is created",
		zap.Int64("machineID", g.MachineID()),
		zap.Int("timestampBits", l.TimestampBits),
		zap.Int("machineBits", l.MachineBits),
		zap.Int("sequenceBits", l.SequenceBits),
	)
	return g, nil
}
