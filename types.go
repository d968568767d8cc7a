package storefront

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the structured logger used across the module. Messages are
// plain strings followed by key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerProvider hands out named loggers.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// LoggerProviderFunc adapts a function into a LoggerProvider.
type LoggerProviderFunc func(name string) Logger

// GetLogger implements LoggerProvider.
func (f LoggerProviderFunc) GetLogger(name string) Logger {
	if f == nil {
		return nil
	}
	return f(name)
}

// ResolveLogger picks the logger for name. A logger returned by provider wins,
// then fallback, then the default stdout logger. The returned provider always
// resolves to a non nil logger.
func ResolveLogger(name string, provider LoggerProvider, fallback Logger) (LoggerProvider, Logger) {
	var logger Logger
	if provider != nil {
		logger = provider.GetLogger(name)
	}
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = defaultLogger(name)
	}

	resolved := LoggerProviderFunc(func(n string) Logger {
		if provider != nil {
			if l := provider.GetLogger(n); l != nil {
				return l
			}
		}
		return logger
	})

	return resolved, logger
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

type defLogger struct {
	name string
}

func defaultLogger(name string) Logger {
	return defLogger{name: strings.ToUpper(name)}
}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }

func (d defLogger) print(level, msg string, args ...any) {
	fmt.Printf("[%s] %s %s%s\n", level, d.name, msg, formatArgs(args))
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}

// CustomerResolver exposes the identity of the caller behind a request
// context. It backs the identity collaborator of the checkout flow.
type CustomerResolver interface {
	GetUserEmail(ctx context.Context) string
	GetUserID(ctx context.Context) string
}
