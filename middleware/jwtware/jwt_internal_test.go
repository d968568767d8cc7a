package jwtware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingLogger struct {
	warns int
}

func (l *countingLogger) Debug(string, ...any) {}
func (l *countingLogger) Info(string, ...any)  {}
func (l *countingLogger) Warn(string, ...any)  { l.warns++ }
func (l *countingLogger) Error(string, ...any) {}

func TestKeyfuncOptionsRefreshErrorHandlerLogs(t *testing.T) {
	logger := &countingLogger{}
	opts := keyfuncOptions(nil, logger)
	require.NotNil(t, opts.RefreshErrorHandler)
	require.NotPanics(t, func() {
		opts.RefreshErrorHandler(errors.New("refresh failed"))
	})
	require.Equal(t, 1, logger.warns)

	require.Equal(t, time.Hour, opts.RefreshInterval)
	require.Equal(t, 5*time.Minute, opts.RefreshRateLimit)
	require.Equal(t, 10*time.Second, opts.RefreshTimeout)
	require.True(t, opts.RefreshUnknownKID)

	require.NotPanics(t, func() {
		keyfuncOptions(nil, nil).RefreshErrorHandler(errors.New("refresh failed"))
	})
}

func TestBearerPrefix(t *testing.T) {
	token, ok := bearerPrefix("Bearer abc", "Bearer")
	require.True(t, ok)
	require.Equal(t, "abc", token)

	token, ok = bearerPrefix("bearer abc", "Bearer")
	require.True(t, ok)
	require.Equal(t, "abc", token)

	_, ok = bearerPrefix("Bearerabc", "Bearer")
	require.False(t, ok)

	_, ok = bearerPrefix("Basic abc", "Bearer")
	require.False(t, ok)

	_, ok = bearerPrefix("Bearer", "Bearer")
	require.False(t, ok)
}
