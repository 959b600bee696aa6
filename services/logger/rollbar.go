package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

// log levels, in increasing severity
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

var rollbarLevels = [...]string{rollbar.DEBUG, rollbar.INFO, rollbar.WARN, rollbar.ERR, rollbar.CRIT}

// RollbarLogger prints to a std logger and, when enabled, reports to Rollbar.
// Events below minLevel are dropped.
type RollbarLogger struct {
	std      *log.Logger
	minLevel int
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	lvl := LevelInfo
	if conf.Debug {
		lvl = LevelDebug
	}
	return &RollbarLogger{std: std, minLevel: lvl}
}

// Enable turns Rollbar reporting on or off; printing is always on.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && rollbar.Token() != "")
}

// SetLevel changes the minimum level of printed & reported events.
func (l *RollbarLogger) SetLevel(lvl int) {
	l.minLevel = lvl
}

type event struct {
	err    error
	fields map[string]interface{}
	caller *core.Caller
	extra  []interface{}
}

// parse sorts args into what Rollbar understands; only the first error & Caller are kept.
func parse(args []interface{}) event {
	var ev event
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			if ev.err == nil {
				ev.err = v
				continue
			}
		case map[string]interface{}:
			if ev.fields == nil {
				ev.fields = make(map[string]interface{}, len(v))
			}
			for k, val := range v {
				ev.fields[k] = val
			}
			continue
		case core.Caller:
			if ev.caller == nil {
				c := v
				ev.caller = &c
			}
			continue
		}
		ev.extra = append(ev.extra, arg)
	}
	return ev
}

func (ev event) rollbarArgs(msg string) []interface{} {
	args := []interface{}{msg}
	if ev.err != nil {
		args = append(args, ev.err)
	}
	if len(ev.fields) > 0 {
		args = append(args, ev.fields)
	}
	return args
}

// line renders the event as `LEVEL msg k=v ... caller=username`, fields sorted by key.
func (ev event) line(lvl int, msg string) string {
	var sb strings.Builder
	sb.WriteString(levelNames[lvl])
	sb.WriteByte(' ')
	sb.WriteString(msg)

	keys := make([]string, 0, len(ev.fields))
	for k := range ev.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, ev.fields[k])
	}
	for _, x := range ev.extra {
		fmt.Fprintf(&sb, " %v", x)
	}
	if ev.caller != nil {
		fmt.Fprintf(&sb, " caller=%s", ev.caller.Username)
	}
	if ev.err != nil {
		fmt.Fprintf(&sb, "\n%+v", ev.err)
	}
	return sb.String()
}

func (l *RollbarLogger) log(lvl int, msg string, args []interface{}) {
	if lvl < l.minLevel {
		return
	}
	ev := parse(args)
	if ev.caller != nil {
		rollbar.SetPerson(ev.caller.ID.String(), ev.caller.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(rollbarLevels[lvl], ev.rollbarArgs(msg)...)
	l.std.Println(ev.line(lvl, msg))
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(LevelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
