package debug

// Runtime metrics logger, started only when config.Debug is true. Emits
// goroutine count, stack and heap usage and process RSS at a fixed interval to
// correlate native and heap growth across detection cycles.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StartRuntimeLogger logs runtime statistics every interval until ctx is done.
// RSS is best-effort; a failed query is logged once and reported as zero.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			logger.Info("runtime.stats", sample(&rssErrLogged, logger)...)
		}
	}()
}

func sample(rssErrLogged *bool, logger *slog.Logger) []any {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	rss, err := processRSS()
	if err != nil && !*rssErrLogged {
		logger.Warn("runtime.rss_unavailable", slog.String("err", err.Error()))
		*rssErrLogged = true
	}
	return []any{
		slog.Uint64("goroutines", goroutines),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("heap_sys", ms.HeapSys),
		slog.Uint64("next_gc", ms.NextGC),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
		slog.Uint64("rss", rss),
	}
}
