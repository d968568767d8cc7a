package storefront_test

import (
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

var _ storefront.Logger = glog.Logger(nil)

func TestResolveLoggerPrefersProvider(t *testing.T) {
	fromProvider := &captureLogger{}
	fallback := &captureLogger{}

	provider := storefront.LoggerProviderFunc(func(name string) storefront.Logger {
		if name == "checkout" {
			return fromProvider
		}
		return nil
	})

	resolvedProvider, logger := storefront.ResolveLogger("checkout", provider, fallback)
	logger.Info("session created", "id", "cs_123")

	require.Len(t, fromProvider.calls, 1)
	require.Equal(t, "session created", fromProvider.calls[0].message)
	require.Equal(t, []any{"id", "cs_123"}, fromProvider.calls[0].args)
	require.Empty(t, fallback.calls)

	resolvedProvider.GetLogger("unknown").Warn("falls back")
	require.Len(t, fromProvider.calls, 2)
	require.Equal(t, "warn", fromProvider.calls[1].level)
}

func TestResolveLoggerFallback(t *testing.T) {
	fallback := &captureLogger{}

	_, logger := storefront.ResolveLogger("authstate", nil, fallback)
	logger.Error("eviction failed")
	require.Len(t, fallback.calls, 1)
	require.Equal(t, "error", fallback.calls[0].level)

	emptyProvider := storefront.LoggerProviderFunc(func(string) storefront.Logger { return nil })
	_, logger = storefront.ResolveLogger("authstate", emptyProvider, fallback)
	logger.Debug("still the fallback")
	require.Len(t, fallback.calls, 2)
}

func TestResolveLoggerDefault(t *testing.T) {
	provider, logger := storefront.ResolveLogger("storefront", nil, nil)
	require.NotNil(t, logger)
	require.NotNil(t, provider.GetLogger("other"))
	require.NotPanics(t, func() {
		logger.Info("default logger", "key", "value", "dangling")
	})
}
