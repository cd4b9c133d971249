package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("earnings", rec)

	scoped.ReportBroken("fetcher.fetch", errors.New("boom"))
	scoped.ReportWarning("fetcher.exists")
	scoped.ReportInfo("page does not exist")
	scoped.ReportCount("session.rows", 12)

	require.True(t, rec.Has("broken", "earnings: fetcher.fetch"))
	require.True(t, rec.Has("warning", "earnings: fetcher.exists"))
	require.True(t, rec.Has("info", "earnings: page does not exist"))

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, "earnings: session.rows", counts[0].Id)
	require.Equal(t, []any{int64(12)}, counts[0].Params)

	require.Len(t, rec.Reports(""), 4)
	require.False(t, rec.Has("debug", "earnings"))
}

func TestNestedScopes(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("inner", NewScopedAPI("outer", rec))

	scoped.ReportDebug("hello", 1, 2)

	reports := rec.Reports("debug")
	require.Len(t, reports, 1)
	require.Equal(t, "outer: inner: hello", reports[0].Id)
	require.Equal(t, []any{1, 2}, reports[0].Params)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	otel, err := Setup(context.Background(), "test:telemetry", OtlpConfig{})
	require.NoError(t, err)
	require.Nil(t, otel.TracerProvider)
	require.Nil(t, otel.MeterProvider)
	require.NoError(t, otel.Shutdown(context.Background()))
}
