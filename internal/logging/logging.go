// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"io"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/modevm/config"
)

// New builds the node logger: a colored console core, plus a rotating JSON
// file core when [config.Config.LogFile] is set.
func New(name string, cfg *config.Config) (logging.Logger, error) {
	return newLogger(name, cfg, os.Stdout)
}

func newLogger(name string, cfg *config.Config, console io.WriteCloser) (logging.Logger, error) {
	level, err := cfg.GetLogLevel()
	if err != nil {
		return nil, err
	}
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(level, console, logging.Colors.ConsoleEncoder()),
	}
	if len(cfg.LogFile) > 0 {
		rw := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB, // megabytes
			MaxBackups: cfg.LogMaxFiles,  // files
			Compress:   true,
		}
		cores = append(cores, logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder()))
	}
	return logging.NewLogger(name, cores...), nil
}
