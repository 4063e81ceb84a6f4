// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.
//

package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

import (
	"github.com/natefinch/lumberjack"

	"github.com/pkg/errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// LogLevel represents the level of logging.
	LogLevel int8
	// LogType represents the type of logging.
	LogType string
)

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel = LogLevel(zapcore.DebugLevel)
	// InfoLevel is the default logging priority.
	InfoLevel = LogLevel(zapcore.InfoLevel)
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel = LogLevel(zapcore.WarnLevel)
	// ErrorLevel logs are high-priority.
	ErrorLevel = LogLevel(zapcore.ErrorLevel)
	// PanicLevel logs a message, then panics.
	PanicLevel = LogLevel(zapcore.PanicLevel)
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel = LogLevel(zapcore.FatalLevel)

	_minLevel = DebugLevel
	_maxLevel = FatalLevel

	MainLog    = LogType("main")
	RouteLog   = LogType("route")
	RewriteLog = LogType("rewrite")
)

// LoggingConfig controls the loggers. Files are written only when LogPath is set,
// otherwise everything goes to stdout.
type LoggingConfig struct {
	LogName        string   `yaml:"log_name" json:"log_name" default:"sharding.log"`
	LogPath        string   `yaml:"log_path" json:"log_path"`
	LogLevel       LogLevel `yaml:"log_level" json:"log_level"`
	LogMaxSize     int      `yaml:"log_max_size" json:"log_max_size" default:"10"`
	LogMaxBackups  int      `yaml:"log_max_backups" json:"log_max_backups" default:"5"`
	LogMaxAge      int      `yaml:"log_max_age" json:"log_max_age" default:"30"`
	LogCompress    bool     `yaml:"log_compress" json:"log_compress"`
	RouteLogName   string   `yaml:"route_log_name" json:"route_log_name" default:"route.log"`
	RewriteLogName string   `yaml:"rewrite_log_name" json:"rewrite_log_name" default:"rewrite.log"`
	// TraceEnabled writes the route and rewrite logs at debug level regardless of LogLevel.
	TraceEnabled bool `yaml:"trace_enabled" json:"trace_enabled"`
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	if l == nil {
		return errors.New("can't unmarshal a nil *LogLevel")
	}
	if !l.unmarshalText(text) && !l.unmarshalText(bytes.ToLower(text)) {
		return errors.Errorf("unrecognized level: %q", text)
	}
	return nil
}

func (l *LogLevel) unmarshalText(text []byte) bool {
	switch string(text) {
	case "debug", "DEBUG":
		*l = DebugLevel
	case "info", "INFO", "": // make the zero value useful
		*l = InfoLevel
	case "warn", "WARN":
		*l = WarnLevel
	case "error", "ERROR":
		*l = ErrorLevel
	case "panic", "PANIC":
		*l = PanicLevel
	case "fatal", "FATAL":
		*l = FatalLevel
	default:
		return false
	}
	return true
}

func (l LogLevel) String() string {
	return zapcore.Level(l).String()
}

type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

var (
	_ Logger = (*compositeLogger)(nil)

	mu           sync.RWMutex
	globalLogger *compositeLogger

	defaultLoggingConfig = &LoggingConfig{
		LogName:        "sharding.log",
		LogLevel:       InfoLevel,
		LogMaxSize:     10,
		LogMaxBackups:  5,
		LogMaxAge:      30,
		RouteLogName:   "route.log",
		RewriteLogName: "rewrite.log",
	}
)

func init() {
	globalLogger = NewCompositeLogger(defaultLoggingConfig)
}

// Init replaces the global loggers.
func Init(cfg *LoggingConfig) {
	if cfg == nil {
		cfg = defaultLoggingConfig
	}
	l := NewCompositeLogger(cfg)
	mu.Lock()
	prev := globalLogger
	globalLogger = l
	mu.Unlock()
	_ = prev.Sync()
}

// DefaultConfig returns a copy of the default logging config.
func DefaultConfig() *LoggingConfig {
	c := *defaultLoggingConfig
	return &c
}

func current() *compositeLogger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

type compositeLogger struct {
	mainLog    *zap.SugaredLogger
	routeLog   *zap.SugaredLogger
	rewriteLog *zap.SugaredLogger
}

func NewCompositeLogger(cfg *LoggingConfig) *compositeLogger {
	return &compositeLogger{
		mainLog:    NewLogger(MainLog, cfg),
		routeLog:   NewLogger(RouteLog, cfg),
		rewriteLog: NewLogger(RewriteLog, cfg),
	}
}

// NewLogger creates a console-encoded logger of the given type.
func NewLogger(logType LogType, cfg *LoggingConfig) *zap.SugaredLogger {
	syncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if len(cfg.LogPath) > 0 {
		syncers = append(syncers, zapcore.AddSync(buildLumberJack(logType, cfg)))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := getLoggerLevel(cfg.LogLevel)
	if logType != MainLog && cfg.TraceEnabled {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.NewMultiWriteSyncer(syncers...), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar().Named(string(logType))
}

func buildLumberJack(logType LogType, cfg *LoggingConfig) *lumberjack.Logger {
	var logName string
	switch logType {
	case RouteLog:
		logName = cfg.RouteLogName
	case RewriteLog:
		logName = cfg.RewriteLogName
	default:
		logName = cfg.LogName
	}
	if len(logName) == 0 {
		logName = fmt.Sprintf("%s.log", logType)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogPath, logName),
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}
}

func getLoggerLevel(level LogLevel) zapcore.Level {
	if level < _minLevel || level > _maxLevel {
		return zapcore.Level(InfoLevel)
	}
	return zapcore.Level(level)
}

func (c *compositeLogger) typed(logType LogType) *zap.SugaredLogger {
	switch logType {
	case RouteLog:
		return c.routeLog
	case RewriteLog:
		return c.rewriteLog
	default:
		return c.mainLog
	}
}

func (c *compositeLogger) Sync() error {
	var err error
	for _, it := range []*zap.SugaredLogger{c.mainLog, c.routeLog, c.rewriteLog} {
		// stdout can't be synced on some platforms
		if e := it.Sync(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (c *compositeLogger) Debug(v ...interface{}) {
	c.mainLog.Debug(v...)
}

func (c *compositeLogger) Debugf(format string, v ...interface{}) {
	c.mainLog.Debugf(format, v...)
}

func (c *compositeLogger) DebugfWithLogType(logType LogType, format string, v ...interface{}) {
	c.typed(logType).Debugf(format, v...)
}

func (c *compositeLogger) Info(v ...interface{}) {
	c.mainLog.Info(v...)
}

func (c *compositeLogger) Infof(format string, v ...interface{}) {
	c.mainLog.Infof(format, v...)
}

func (c *compositeLogger) InfofWithLogType(logType LogType, format string, v ...interface{}) {
	c.typed(logType).Infof(format, v...)
}

func (c *compositeLogger) Warn(v ...interface{}) {
	c.mainLog.Warn(v...)
}

func (c *compositeLogger) Warnf(format string, v ...interface{}) {
	c.mainLog.Warnf(format, v...)
}

func (c *compositeLogger) WarnfWithLogType(logType LogType, format string, v ...interface{}) {
	c.typed(logType).Warnf(format, v...)
}

func (c *compositeLogger) Error(v ...interface{}) {
	c.mainLog.Error(v...)
}

func (c *compositeLogger) Errorf(format string, v ...interface{}) {
	c.mainLog.Errorf(format, v...)
}

func (c *compositeLogger) ErrorfWithLogType(logType LogType, format string, v ...interface{}) {
	c.typed(logType).Errorf(format, v...)
}

// Debug ...
func Debug(v ...interface{}) {
	current().Debug(v...)
}

// Debugf ...
func Debugf(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

// DebugfWithLogType ...
func DebugfWithLogType(logType LogType, format string, v ...interface{}) {
	current().DebugfWithLogType(logType, format, v...)
}

// Info ...
func Info(v ...interface{}) {
	current().Info(v...)
}

// Infof ...
func Infof(format string, v ...interface{}) {
	current().Infof(format, v...)
}

// InfofWithLogType ...
func InfofWithLogType(logType LogType, format string, v ...interface{}) {
	current().InfofWithLogType(logType, format, v...)
}

// Warn ...
func Warn(v ...interface{}) {
	current().Warn(v...)
}

// Warnf ...
func Warnf(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

// WarnfWithLogType ...
func WarnfWithLogType(logType LogType, format string, v ...interface{}) {
	current().WarnfWithLogType(logType, format, v...)
}

// Error ...
func Error(v ...interface{}) {
	current().Error(v...)
}

// Errorf ...
func Errorf(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

// ErrorfWithLogType ...
func ErrorfWithLogType(logType LogType, format string, v ...interface{}) {
	current().ErrorfWithLogType(logType, format, v...)
}

// IsDebugEnabled returns true if the logger of the type writes debug logs.
func IsDebugEnabled(logType LogType) bool {
	return current().typed(logType).Desugar().Core().Enabled(zapcore.DebugLevel)
}
