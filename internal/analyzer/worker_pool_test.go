package analyzer

import (
	"context"
	"image/color"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), NewWorkerPool(0).GetStats().Workers)
	assert.Equal(t, runtime.NumCPU(), NewWorkerPool(-3).GetStats().Workers)
	assert.Equal(t, 4, NewWorkerPool(4).GetStats().Workers)
}

func TestWorkerPool_SubmitStartsLazily(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var ran atomic.Bool
	require.True(t, pool.Submit(func() { ran.Store(true) }))
	pool.Wait()

	assert.True(t, ran.Load())
	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats.TotalJobs)
	assert.Equal(t, int64(1), stats.CompletedJobs)
	assert.Equal(t, int32(0), stats.ActiveWorkers)
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Close()

	assert.False(t, pool.Submit(func() { t.Error("job ran after close") }))
	assert.Equal(t, int64(0), pool.GetStats().TotalJobs)
}

func TestWorkerPool_CloseIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()

	assert.NotPanics(t, func() {
		pool.Close()
		pool.Close()
	})
}

func TestWorkerPool_CloseDrainsQueuedJobs(t *testing.T) {
	pool := NewWorkerPool(1)

	var done atomic.Int32
	for i := 0; i < 2; i++ {
		require.True(t, pool.Submit(func() {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
		}))
	}
	pool.Close()
	pool.Wait()

	assert.Equal(t, int32(2), done.Load())
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var running, peak atomic.Int32
	for i := 0; i < 8; i++ {
		pool.Submit(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int64(8), pool.GetStats().CompletedJobs)
}

func TestAnalyzeBatch_PoolCounters(t *testing.T) {
	a, err := NewImageAnalyzer(DefaultOptions().WithMaxWorkers(2))
	require.NoError(t, err)
	defer a.Close()

	data := encodePNG(t, createTestImage(24, 16, color.RGBA{70, 90, 110, 255}))
	inputs := make([]BatchInput, 5)
	for i := range inputs {
		inputs[i] = BatchInput{Source: "item", Data: data}
	}

	for _, r := range a.AnalyzeBatch(context.Background(), inputs) {
		require.NoError(t, r.Err)
		assert.Equal(t, 24, r.Report.BasicInfo.Width)
	}

	assert.Equal(t, 2, a.Stats().Workers)
	assert.Equal(t, int64(5), a.Stats().TotalJobs)
	// counters are updated after the batch result is recorded
	assert.Eventually(t, func() bool {
		s := a.Stats()
		return s.CompletedJobs == 5 && s.ActiveWorkers == 0
	}, time.Second, time.Millisecond)
}

func TestAnalyzeBatch_CanceledWhileQueued(t *testing.T) {
	a, err := NewImageAnalyzer(DefaultOptions().WithMaxWorkers(1))
	require.NoError(t, err)
	defer a.Close()

	// occupy the only worker so the batch is still queued when canceled
	release, busy := make(chan struct{}), make(chan struct{})
	require.True(t, a.(*coreAnalyzer).workerPool.Submit(func() {
		close(busy)
		<-release
	}))
	<-busy

	ctx, cancel := context.WithCancel(context.Background())
	data := encodePNG(t, createTestImage(8, 8, color.RGBA{1, 2, 3, 255}))
	done := make(chan []BatchResult, 1)
	go func() {
		done <- a.AnalyzeBatch(ctx, []BatchInput{
			{Source: "a", Data: data},
			{Source: "b", Data: data},
			{Source: "c", Data: data},
		})
	}()

	cancel()
	close(release)

	results := <-done
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled, r.Source)
	}
}
