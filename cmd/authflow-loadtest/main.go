package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	authflow "github.com/Saroj-Kumarr/ribitto-authflow"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// capturingSender records the last code issued per phone so the driver can
// replay it through the verify path.
type capturingSender struct {
	mu    sync.Mutex
	codes map[authflow.PhoneNumber]string
}

func (s *capturingSender) SendCode(_ context.Context, phone authflow.PhoneNumber, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

func (s *capturingSender) code(phone authflow.PhoneNumber) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

type emptyDirectory struct{}

func (emptyDirectory) LookupPhone(context.Context, authflow.PhoneNumber) (authflow.Identity, bool, error) {
	return authflow.Identity{}, false, nil
}

func main() {
	var (
		flows       = flag.Int("flows", 50000, "number of issue+verify round trips")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *flows <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "flows and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	cfg := authflow.DefaultConfig()
	cfg.Throttle.EnablePhoneThrottle = false
	cfg.Throttle.EnableIPThrottle = false

	sender := &capturingSender{codes: make(map[authflow.PhoneNumber]string)}
	backend, err := authflow.NewRedisOtpBackend(rdb, cfg.OTP, sender, emptyDirectory{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend: %v\n", err)
		os.Exit(1)
	}

	engine, err := authflow.New().
		WithConfig(cfg).
		WithOtpBackend(backend).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	stats := runFlows(ctx, engine, sender, *flows, *concurrency)

	fmt.Println("---- results ----")
	printStats("issue+verify", stats)
}

func runFlows(ctx context.Context, engine *authflow.Engine, sender *capturingSender, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				// Distinct phones keep workers off each other's challenges.
				phone := fmt.Sprintf("9%09d", i%1000000000)

				t0 := time.Now()
				err := driveFlow(ctx, engine, sender, phone)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func driveFlow(ctx context.Context, engine *authflow.Engine, sender *capturingSender, phone string) error {
	f := engine.NewFlow()
	if err := f.SetPhoneInput(phone); err != nil {
		return err
	}
	if err := f.SubmitPhone(ctx); err != nil {
		return err
	}
	code := sender.code(authflow.PhoneNumber(phone))
	if err := f.PasteCode(0, code); err != nil {
		return err
	}
	return f.SubmitCode(ctx)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
