package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/fftplan/cache"
	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/engine/cpu"
	"github.com/IvanBrykalov/fftplan/fft"
	"github.com/IvanBrykalov/fftplan/filter"
	pmet "github.com/IvanBrykalov/fftplan/metrics/prom"
)

func runBench(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	if cfg.workers <= 0 {
		cfg.workers = 2 * runtime.GOMAXPROCS(0)
	}
	if cfg.seed == 0 {
		cfg.seed = time.Now().UnixNano()
	}

	// ---- pprof / Prometheus (both on DefaultServeMux) ----
	if cfg.pprofAddr != "" {
		go func() {
			log.Infof("pprof: serving at %s", cfg.pprofAddr)
			log.WithError(http.ListenAndServe(cfg.pprofAddr, nil)).Warn("pprof server stopped")
		}()
	}
	metrics := pmet.New(nil, "fftplan", "bench", nil)
	if cfg.httpAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Infof("metrics: serving at %s", cfg.httpAddr)
			log.WithError(http.ListenAndServe(cfg.httpAddr, nil)).Warn("metrics server stopped")
		}()
	}

	// ---- Build cache + dispatcher ----
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	plans := cache.New(cache.Options{
		Engine:   cpu.New(cpu.Options{Logger: logger}),
		Registry: device.Default(),
		Name:     "fftbench",
		Metrics:  metrics,
		Logger:   logger,
	})
	defer func() { _ = plans.Close() }()
	d := fft.New(plans, fft.Options{Logger: logger})

	template := chirp(cfg.template)

	log.WithFields(log.Fields{
		"lengths":  cfg.lengths,
		"workers":  cfg.workers,
		"duration": cfg.duration,
		"seed":     cfg.seed,
	}).Info("starting")

	// ---- Load generation ----
	var segments, hits, stale, teardowns uint64
	runCtx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()

	if cfg.teardownEvery > 0 {
		go func() {
			t := time.NewTicker(cfg.teardownEvery)
			defer t.Stop()
			for {
				select {
				case <-runCtx.Done():
					return
				case <-t.C:
					device.Teardown()
					atomic.AddUint64(&teardowns, 1)
				}
			}
		}()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < cfg.workers; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe; one per worker.
			r := rand.New(rand.NewSource(cfg.seed + int64(id)*9973))
			filters := make(map[int]*filter.Matched, len(cfg.lengths))

			for i := id; ; i++ {
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				n := cfg.lengths[i%len(cfg.lengths)]
				m, ok := filters[n]
				if !ok {
					var err error
					m, err = filter.NewMatched(gctx, d, template, n)
					if errors.Is(err, engine.ErrPlanClosed) {
						atomic.AddUint64(&stale, 1)
						continue
					}
					if err != nil {
						return err
					}
					filters[n] = m
				}

				delay := r.Intn(n - len(template) + 1)
				series, err := m.Correlate(gctx, segment(r, n, template, delay))
				if errors.Is(err, engine.ErrPlanClosed) {
					// A teardown closed the plan between lookup and execute.
					atomic.AddUint64(&stale, 1)
					continue
				}
				if err != nil {
					return err
				}
				if idx, _ := filter.Peak(series); idx == delay {
					atomic.AddUint64(&hits, 1)
				}
				atomic.AddUint64(&segments, 1)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report(os.Stdout, cfg, plans.Stats(), elapsed,
		atomic.LoadUint64(&segments), atomic.LoadUint64(&hits),
		atomic.LoadUint64(&stale), atomic.LoadUint64(&teardowns))
	return nil
}

// chirp returns a unit-energy linear chirp of length n.
func chirp(n int) []float64 {
	out := make([]float64, n)
	var energy float64
	for i := range out {
		x := float64(i) / float64(n)
		out[i] = math.Sin(2 * math.Pi * (4*x + 12*x*x))
		energy += out[i] * out[i]
	}
	scale := 1 / math.Sqrt(energy)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// segment returns white noise of length n with template injected at delay.
func segment(r *rand.Rand, n int, template []float64, delay int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.01 * r.NormFloat64()
	}
	for j, v := range template {
		out[delay+j] += v
	}
	return out
}

func report(w io.Writer, cfg benchConfig, st cache.Stats, elapsed time.Duration, segments, hits, stale, teardowns uint64) {
	fmt.Fprintf(w, "workers=%d lengths=%v dur=%v seed=%d\n", cfg.workers, cfg.lengths, elapsed.Round(time.Millisecond), cfg.seed)
	rate := float64(segments) / elapsed.Seconds()
	fmt.Fprintf(w, "segments=%s (%s/s)  detected=%s  stale=%d  teardowns=%d  clears=%d\n",
		humanize.Comma(int64(segments)), humanize.CommafWithDigits(rate, 1),
		humanize.Comma(int64(hits)), stale, teardowns, st.Clears)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Direction", "Plans", "Hits", "Misses", "Builds", "Failures"})
	for _, row := range []struct {
		name string
		s    cache.DirStats
	}{{"forward", st.Forward}, {"inverse", st.Inverse}} {
		table.Append([]string{
			row.name,
			strconv.Itoa(row.s.Entries),
			humanize.Comma(row.s.Hits),
			humanize.Comma(row.s.Misses),
			humanize.Comma(row.s.Builds),
			humanize.Comma(row.s.Failures),
		})
	}
	table.Render()
}
