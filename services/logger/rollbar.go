package logsvc

import (
	"context"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

// RollbarLogger reports entries to Rollbar and mirrors them to a zap console logger.
type RollbarLogger struct {
	zl *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.Debug && !conf.TestMode && conf.RollbarToken != "")
	return &RollbarLogger{zl: newZapLogger(conf).Sugar()}
}

func newZapLogger(conf *core.Config) *zap.Logger {
	var zc zap.Config
	if conf.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if conf.TestMode {
		zc.Level = zap.NewAtomicLevelAt(zapcore.FatalLevel)
	}
	zc.DisableStacktrace = true
	zl, err := zc.Build(zap.AddCallerSkip(1), zap.Fields(zap.String("app", conf.AppName), zap.String("env", conf.Env)))
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes the buffered console entries and waits for Rollbar to send pending items.
func (l RollbarLogger) Sync() {
	_ = l.zl.Sync()
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, staff.Staff
// The staff member rides along with the item in a context, leaving the client's person untouched.
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var (
		person *rollbar.Person
		extras map[string]interface{}
		others []interface{}
	)
	newArgs := make([]interface{}, 0, 4)
	newArgs = append(newArgs, msg)
	fields := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case staff.Staff:
			// only set one Staff
			if person == nil {
				person = &rollbar.Person{Id: a.ID, Username: a.Name, Email: a.Email}
				fields = append(fields, "staff", a.ID)
			}
		case error:
			newArgs = append(newArgs, a)
			fields = append(fields, "error", a)
		case map[string]interface{}:
			if extras == nil {
				extras = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				extras[k] = v
				fields = append(fields, k, v)
			}
		default:
			others = append(others, a)
			fields = append(fields, "extra", a)
		}
	}
	if len(others) > 0 {
		if extras == nil {
			extras = make(map[string]interface{}, 1)
		}
		extras["extra"] = others
	}
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	if person != nil {
		newArgs = append(newArgs, rollbar.NewPersonContext(context.Background(), person))
	}
	return newArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	l.zl.Debugw(msg, fields...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	l.zl.Infow(msg, fields...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	l.zl.Warnw(msg, fields...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	l.zl.Errorw(msg, fields...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	rollbar.Wait()
	l.zl.Fatalw(msg, fields...)
}
