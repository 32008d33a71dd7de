package analytics

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/avolkov/chainstats/internal/models"
)

// LedgerReader supplies all transfer events for one address, ordered by
// timestamp with ledger insertion order preserved for ties. May return an
// empty slice; must not include events for other addresses.
type LedgerReader interface {
	GetTransferEvents(ctx context.Context, address string) ([]models.TransferEvent, error)
}

// QuoteReader supplies daily quotes ordered by date ascending. Gaps are
// allowed; the engine forward-fills.
type QuoteReader interface {
	GetQuotes(ctx context.Context, start, end time.Time) ([]models.Quote, error)
}

// StatsReader supplies the materialized per-address daily statistics used by
// the top-addresses path.
type StatsReader interface {
	GetDailyStats(ctx context.Context, date time.Time) ([]models.RankedAddress, error)
}

// BenchmarkCache memoizes benchmark metrics keyed on the date window. Both
// methods are best-effort: a failing cache degrades to recomputation and must
// never fail a request.
type BenchmarkCache interface {
	Get(ctx context.Context, start, end time.Time) (models.BenchmarkMetrics, bool)
	Set(ctx context.Context, start, end time.Time, m models.BenchmarkMetrics)
}

// Diagnostics carries non-fatal data-quality signals raised while computing.
type Diagnostics struct {
	LedgerInconsistent bool `json:"ledger_inconsistent,omitempty"`
}

// Warnings renders the diagnostics as caller-facing warning strings.
func (d Diagnostics) Warnings() []string {
	var w []string
	if d.LedgerInconsistent {
		w = append(w, "ledger inconsistency: spends exceed cumulative receipts")
	}
	return w
}

// Config tunes the analytics service.
type Config struct {
	// FillLookbackDays is how far before the window start quotes are fetched
	// to seed the forward-fill.
	FillLookbackDays int
	// Workers caps the batch-evaluation worker pool.
	Workers int
}

// Service orchestrates the analytics engine over its data collaborators. The
// engine itself owns no persistent state; every call is a pure function of
// the data the readers hand it.
type Service struct {
	ledger LedgerReader
	quotes QuoteReader
	stats  StatsReader
	cache  BenchmarkCache
	cfg    Config
	tracer trace.Tracer
}

// NewService wires an analytics service. stats and cache may be nil: without
// a StatsReader the top-addresses path is unavailable, without a cache every
// benchmark is recomputed.
func NewService(ledger LedgerReader, quotes QuoteReader, stats StatsReader, cache BenchmarkCache, cfg Config) *Service {
	if cfg.FillLookbackDays <= 0 {
		cfg.FillLookbackDays = 30
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	return &Service{
		ledger: ledger,
		quotes: quotes,
		stats:  stats,
		cache:  cache,
		cfg:    cfg,
		tracer: otel.Tracer("chainstats/analytics"),
	}
}

// AddressStats computes the full statistics for one address through end
// (today when zero). An address with no events returns neutral stats and no
// error.
func (s *Service) AddressStats(ctx context.Context, address string, end time.Time) (models.AddressStats, Diagnostics, error) {
	ctx, span := s.tracer.Start(ctx, "AddressStats",
		trace.WithAttributes(attribute.String("address", address)))
	defer span.End()

	end = s.resolveEnd(end)

	events, err := s.ledger.GetTransferEvents(ctx, address)
	if err != nil {
		return models.AddressStats{}, Diagnostics{}, fmt.Errorf("fetch transfer events: %w", err)
	}
	if len(events) == 0 {
		return models.AddressStats{Address: address}, Diagnostics{}, nil
	}

	series, hist, err := s.reconstruct(ctx, address, events, end)
	if err != nil {
		return models.AddressStats{}, Diagnostics{}, err
	}

	stats := ComputeAddressStats(address, hist)

	bench, err := s.benchmarkForSeries(ctx, series)
	if err != nil {
		return models.AddressStats{}, Diagnostics{}, err
	}
	stats.BenchmarkProfit = bench.ProfitPct
	stats.BenchmarkSharpe = bench.Sharpe
	stats.BenchmarkDrawdown = bench.Drawdown

	diag := Diagnostics{LedgerInconsistent: hist.LedgerInconsistent}
	if diag.LedgerInconsistent {
		logrus.WithField("address", address).Warn("Reconstructed balance went negative, ledger is inconsistent")
	}
	return stats, diag, nil
}

// BalanceHistory returns the daily balance series for one address through
// end. An address with no events returns an empty slice and no error.
func (s *Service) BalanceHistory(ctx context.Context, address string, end time.Time) ([]models.BalanceSample, Diagnostics, error) {
	ctx, span := s.tracer.Start(ctx, "BalanceHistory",
		trace.WithAttributes(attribute.String("address", address)))
	defer span.End()

	end = s.resolveEnd(end)

	events, err := s.ledger.GetTransferEvents(ctx, address)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("fetch transfer events: %w", err)
	}
	if len(events) == 0 {
		return []models.BalanceSample{}, Diagnostics{}, nil
	}

	_, hist, err := s.reconstruct(ctx, address, events, end)
	if err != nil {
		return nil, Diagnostics{}, err
	}
	return hist.Samples, Diagnostics{LedgerInconsistent: hist.LedgerInconsistent}, nil
}

// Benchmark computes (or recalls) buy-and-hold metrics over [start, end].
func (s *Service) Benchmark(ctx context.Context, start, end time.Time) (models.BenchmarkMetrics, error) {
	ctx, span := s.tracer.Start(ctx, "Benchmark")
	defer span.End()

	start, end = models.Day(start), models.Day(end)
	if end.Before(start) {
		return models.BenchmarkMetrics{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, start, end); ok {
			return m, nil
		}
	}

	series, err := s.quoteWindow(ctx, start, end)
	if err != nil {
		return models.BenchmarkMetrics{}, err
	}
	m, err := ComputeBenchmark(series)
	if err != nil {
		return models.BenchmarkMetrics{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, start, end, m)
	}
	return m, nil
}

// TopAddresses reads the materialized daily statistics for date and applies
// the ranking filter.
func (s *Service) TopAddresses(ctx context.Context, date time.Time, f models.AddressFilter) ([]models.RankedAddress, error) {
	ctx, span := s.tracer.Start(ctx, "TopAddresses")
	defer span.End()

	if s.stats == nil {
		return nil, fmt.Errorf("daily stats source not configured")
	}
	rows, err := s.stats.GetDailyStats(ctx, models.Day(date))
	if err != nil {
		return nil, fmt.Errorf("fetch daily stats: %w", err)
	}
	return FilterAddresses(rows, f), nil
}

// EvaluateAddresses computes statistics for a batch of addresses on a worker
// pool, attaches a population-wide benchmark (window starting at the earliest
// transfer observed across the batch, so the benchmark is comparable between
// addresses), and returns the filtered, ranked result. Addresses that fail to
// evaluate are logged and skipped; they never fail the batch.
func (s *Service) EvaluateAddresses(ctx context.Context, addresses []string, end time.Time, f models.AddressFilter) ([]models.RankedAddress, error) {
	ctx, span := s.tracer.Start(ctx, "EvaluateAddresses",
		trace.WithAttributes(attribute.Int("batch_size", len(addresses))))
	defer span.End()

	end = s.resolveEnd(end)

	workers := s.cfg.Workers
	if workers > len(addresses) {
		workers = len(addresses)
	}
	if workers < 1 {
		workers = 1
	}

	workCh := make(chan string, len(addresses))
	resultCh := make(chan models.RankedAddress, len(addresses))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range workCh {
				entry, ok, err := s.evaluateOne(ctx, addr, end)
				if err != nil {
					logrus.WithError(err).WithField("address", addr).Warn("Address evaluation failed, skipping")
					continue
				}
				if ok {
					resultCh <- entry
				}
			}
		}()
	}

	for _, addr := range addresses {
		workCh <- addr
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	entries := make([]models.RankedAddress, 0, len(addresses))
	popFirst := time.Time{}
	for entry := range resultCh {
		if !entry.FirstIn.IsZero() && (popFirst.IsZero() || entry.FirstIn.Before(popFirst)) {
			popFirst = entry.FirstIn
		}
		entries = append(entries, entry)
	}

	if !popFirst.IsZero() {
		bench, err := s.Benchmark(ctx, popFirst, end)
		if err != nil {
			return nil, fmt.Errorf("population benchmark: %w", err)
		}
		for i := range entries {
			entries[i].BenchmarkProfit = bench.ProfitPct
			entries[i].BenchmarkSharpe = bench.Sharpe
			entries[i].BenchmarkDrawdown = bench.Drawdown
		}
	}
	return FilterAddresses(entries, f), nil
}

// evaluateOne computes the ranked entry for a single address. ok is false for
// an address with no events: it carries no signal worth ranking.
func (s *Service) evaluateOne(ctx context.Context, address string, end time.Time) (models.RankedAddress, bool, error) {
	events, err := s.ledger.GetTransferEvents(ctx, address)
	if err != nil {
		return models.RankedAddress{}, false, fmt.Errorf("fetch transfer events: %w", err)
	}
	if len(events) == 0 {
		return models.RankedAddress{}, false, nil
	}

	_, hist, err := s.reconstruct(ctx, address, events, end)
	if err != nil {
		return models.RankedAddress{}, false, err
	}

	return models.RankedAddress{
		AddressStats: ComputeAddressStats(address, hist),
		MaxBTC:       hist.MaxBalanceSat(),
		BTCValue:     hist.FinalBalanceSat(),
		CountOut:     hist.CountOut,
		FirstIn:      hist.FirstIn,
	}, true, nil
}

// reconstruct builds the forward-filled quote window and balance history for
// one address's events.
func (s *Service) reconstruct(ctx context.Context, address string, events []models.TransferEvent, end time.Time) ([]models.Quote, BalanceHistory, error) {
	first := events[0].Date()
	for _, ev := range events[1:] {
		if d := ev.Date(); d.Before(first) {
			first = d
		}
	}
	if end.Before(first) {
		return nil, BalanceHistory{}, fmt.Errorf("%w: end %s before first transfer %s", ErrInvalidWindow,
			end.Format(time.DateOnly), first.Format(time.DateOnly))
	}

	series, err := s.quoteWindow(ctx, first, end)
	if err != nil {
		return nil, BalanceHistory{}, err
	}
	hist, err := BuildBalanceHistory(events, series, end)
	if err != nil {
		return nil, BalanceHistory{}, err
	}
	return series, hist, nil
}

// quoteWindow fetches raw quotes with a lookback margin for the fill seed and
// forward-fills them over [start, end].
func (s *Service) quoteWindow(ctx context.Context, start, end time.Time) ([]models.Quote, error) {
	raw, err := s.quotes.GetQuotes(ctx, start.AddDate(0, 0, -s.cfg.FillLookbackDays), end)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	return BuildQuoteSeries(raw, start, end)
}

// benchmarkForSeries computes buy-and-hold metrics for an already-built quote
// window, consulting the cache under the window's (start, end) key.
func (s *Service) benchmarkForSeries(ctx context.Context, series []models.Quote) (models.BenchmarkMetrics, error) {
	if len(series) == 0 {
		return models.BenchmarkMetrics{}, fmt.Errorf("%w: empty quote window", ErrDataUnavailable)
	}
	start, end := series[0].Date, series[len(series)-1].Date
	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, start, end); ok {
			return m, nil
		}
	}
	m, err := ComputeBenchmark(series)
	if err != nil {
		return models.BenchmarkMetrics{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, start, end, m)
	}
	return m, nil
}

func (s *Service) resolveEnd(end time.Time) time.Time {
	if end.IsZero() {
		return models.Day(time.Now())
	}
	return models.Day(end)
}
