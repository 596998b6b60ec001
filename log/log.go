// Package log exposes a sublogger per backtester subsystem so output can be
// filtered by the component that produced it. The backend is zap; callers
// only deal with the sublogger handle and printf-style helpers.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SubLogger is a named handle for a subsystem's log output
type SubLogger struct {
	name string
}

// Subsystem loggers. Each component logs through its own handle
var (
	Engine      = registerSubLogger("ENGINE")
	Portfolio   = registerSubLogger("PORTFOLIO")
	Broker      = registerSubLogger("BROKER")
	Exchange    = registerSubLogger("EXCHANGE")
	Risk        = registerSubLogger("RISK")
	Statistics  = registerSubLogger("STATISTICS")
	WalkForward = registerSubLogger("WALKFORWARD")
	MonteCarlo  = registerSubLogger("MONTECARLO")
	Config      = registerSubLogger("CONFIG")
	subLoggers  []*SubLogger
)

var global *zap.SugaredLogger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	global = l.Sugar()
}

func registerSubLogger(name string) *SubLogger {
	sl := &SubLogger{name: name}
	subLoggers = append(subLoggers, sl)
	return sl
}

// SetLogger replaces the backing zap logger, eg for tests or to route
// output to a file
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	global = l.Sugar()
}

// Info logs a message at info level
func Info(sl *SubLogger, data string) {
	global.Infof("%s %s", sl.name, data)
}

// Infof logs a formatted message at info level
func Infof(sl *SubLogger, data string, v ...any) {
	global.Infof(sl.name+" "+data, v...)
}

// Debugf logs a formatted message at debug level
func Debugf(sl *SubLogger, data string, v ...any) {
	global.Debugf(sl.name+" "+data, v...)
}

// Warnf logs a formatted message at warn level
func Warnf(sl *SubLogger, data string, v ...any) {
	global.Warnf(sl.name+" "+data, v...)
}

// Errorf logs a formatted message at error level
func Errorf(sl *SubLogger, data string, v ...any) {
	global.Errorf(sl.name+" "+data, v...)
}
