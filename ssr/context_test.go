package ssr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-ui/sprig/ssr"
)

func TestCollectData_RoundTripsThroughResult(t *testing.T) {
	result, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error {
		ssr.CollectData(ctx, "user", map[string]int{"id": 1})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"id": 1}, result.Data()["user"])
}

func TestCollectData_OutsideAnySSRContextIsSilentNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		ssr.CollectData(context.Background(), "user", 1)
	})
}

func TestCollectData_DuplicateKeyIsLastWriteWins(t *testing.T) {
	result, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error {
		ssr.CollectData(ctx, "k", "first")
		ssr.CollectData(ctx, "k", "second")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "second", result.Data()["k"])
}

func TestExtractStyles_DeduplicatesByExactStringEquality(t *testing.T) {
	result, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error {
		ssr.ExtractStyles(ctx, ".a{color:red}")
		ssr.ExtractStyles(ctx, ".a{color:red}")
		ssr.ExtractStyles(ctx, ".b{color:blue}")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".a{color:red}", ".b{color:blue}"}, result.Styles())
}

func TestExtractStyles_OutsideAnySSRContextIsSilentNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		ssr.ExtractStyles(context.Background(), ".a{}")
	})
}

func TestRenderToString_ExceedingTimeoutFailsWithSsrTimeout(t *testing.T) {
	_, err := ssr.RenderToString(context.Background(), 5*time.Millisecond, func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	require.Error(t, err)
	var timeoutErr *ssr.ErrSsrTimeout
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestPendingSet_TracksOutstandingAsyncWork(t *testing.T) {
	result, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error {
		ssr.MarkPending(ctx, "fetch-1")
		sc, _ := ssr.GetSSRContext(ctx)
		assert.True(t, sc.Pending())
		ssr.ResolvePending(ctx, "fetch-1")
		assert.False(t, sc.Pending())
		return nil
	})
	require.NoError(t, err)
	assert.False(t, result.Pending())
	assert.True(t, result.Complete())
}

func TestRenderID_UniquePerRender(t *testing.T) {
	a, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	b, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	assert.NotEmpty(t, a.RenderID())
	assert.NotEqual(t, a.RenderID(), b.RenderID())
}

func TestAddIsland_CollectsOpaqueDescriptors(t *testing.T) {
	result, err := ssr.RenderToString(context.Background(), time.Second, func(ctx context.Context) error {
		ssr.AddIsland(ctx, "search-box")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"search-box"}, result.Islands())
}
