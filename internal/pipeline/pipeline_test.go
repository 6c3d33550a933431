package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/scraper"
)

var (
	wednesday = time.Date(2025, time.October, 15, 18, 30, 0, 0, time.UTC)
	sunday    = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// pageServer serves body with status and counts requests.
func pageServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", name))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return string(data)
}

func newTestPipeline(srv *httptest.Server, now time.Time) *Pipeline {
	return New(
		WithSource(scraper.NewFetcher(scraper.WithURL(srv.URL), scraper.WithTimeout(2*time.Second))),
		WithClock(fixedClock(now)),
	)
}

func TestResolve_StructuredPage(t *testing.T) {
	srv, _ := pageServer(t, http.StatusOK, fixture(t, "progol.html"))
	p := newTestPipeline(srv, wednesday)

	entry := p.Resolve(context.Background(), false)

	if entry.MatchStage != draw.StageStructured || entry.InfoStage != draw.StageStructured {
		t.Errorf("stages = %s/%s, want structured/structured", entry.MatchStage, entry.InfoStage)
	}
	if entry.BestEffort() {
		t.Error("BestEffort() = true for a fully structured page")
	}
	if len(entry.Matches) != draw.MaxMatches || !draw.ValidBatch(entry.Matches) {
		t.Errorf("got %d matches, want a valid batch of %d", len(entry.Matches), draw.MaxMatches)
	}
	if got := entry.Info.Prize(""); got != "$12,500,000.00" {
		t.Errorf("prize = %q, want $12,500,000.00", got)
	}
	if got := entry.Info.Round(""); got != "2301" {
		t.Errorf("round = %q, want 2301", got)
	}
	if want := time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC); !entry.Info.DrawDate.Equal(want) {
		t.Errorf("draw date = %v, want %v", entry.Info.DrawDate, want)
	}
	if !entry.AcquiredAt.Equal(wednesday) {
		t.Errorf("AcquiredAt = %v, want %v", entry.AcquiredAt, wednesday)
	}
}

func TestResolve_TextOnlyPage(t *testing.T) {
	srv, _ := pageServer(t, http.StatusOK, fixture(t, "progol_text.html"))
	p := newTestPipeline(srv, wednesday)

	entry := p.Resolve(context.Background(), false)

	if entry.InfoStage != draw.StagePattern {
		t.Errorf("InfoStage = %s, want pattern", entry.InfoStage)
	}
	if got := entry.Info.Prize(""); got != "$50,000,000" {
		t.Errorf("prize = %q, want $50,000,000", got)
	}
	if got := entry.Info.Round(""); got != "15" {
		t.Errorf("round = %q, want 15", got)
	}
	// Domingo 19 de Octubre seen on a Wednesday is that week's Sunday.
	if want := time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC); !entry.Info.DrawDate.Equal(want) {
		t.Errorf("draw date = %v, want %v", entry.Info.DrawDate, want)
	}
	if len(entry.Matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(entry.Matches))
	}
	if entry.Matches[2].HomeTeam != "Tigres" || entry.Matches[2].AwayTeam != "Monterrey" {
		t.Errorf("third match = %+v", entry.Matches[2])
	}
}

func TestResolve_PrizeOnlyPage(t *testing.T) {
	srv, _ := pageServer(t, http.StatusOK, "<html><body><p>Bolsa: $50,000,000</p></body></html>")
	p := newTestPipeline(srv, wednesday)

	entry := p.Resolve(context.Background(), false)

	if entry.InfoStage != draw.StagePattern {
		t.Errorf("InfoStage = %s, want pattern", entry.InfoStage)
	}
	if got := entry.Info.Prize(""); got != "$50,000,000" {
		t.Errorf("prize = %q, want $50,000,000", got)
	}
	if entry.Info.RoundNumber != nil {
		t.Errorf("round = %q, want nil", *entry.Info.RoundNumber)
	}
	if want := draw.NextSunday(wednesday); !entry.Info.DrawDate.Equal(want) {
		t.Errorf("draw date = %v, want %v", entry.Info.DrawDate, want)
	}
	if entry.MatchStage != draw.StageSynthetic {
		t.Errorf("MatchStage = %s, want synthetic", entry.MatchStage)
	}
	if len(entry.Matches) != draw.MaxMatches {
		t.Errorf("got %d matches, want %d", len(entry.Matches), draw.MaxMatches)
	}
}

func TestResolve_FetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		now      time.Time
		wantHits int32
		wantDate time.Time
	}{
		{
			name:     "server error retried once",
			status:   http.StatusServiceUnavailable,
			now:      wednesday,
			wantHits: 2,
			wantDate: time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "not found is not retried",
			status:   http.StatusNotFound,
			now:      wednesday,
			wantHits: 1,
			wantDate: time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "sunday skips to next week",
			status:   http.StatusInternalServerError,
			now:      sunday,
			wantHits: 2,
			wantDate: time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := pageServer(t, tt.status, "unavailable")
			p := newTestPipeline(srv, tt.now)

			entry := p.Resolve(context.Background(), false)

			if got := hits.Load(); got != tt.wantHits {
				t.Errorf("server hit %d times, want %d", got, tt.wantHits)
			}
			if entry.MatchStage != draw.StageSynthetic || entry.InfoStage != draw.StageSynthetic {
				t.Errorf("stages = %s/%s, want synthetic/synthetic", entry.MatchStage, entry.InfoStage)
			}
			if entry.Info.PrizeAmount != nil || entry.Info.RoundNumber != nil {
				t.Errorf("synthetic info carries fabricated values: %+v", entry.Info)
			}
			if !entry.Info.DrawDate.Equal(tt.wantDate) {
				t.Errorf("draw date = %v, want %v", entry.Info.DrawDate, tt.wantDate)
			}
			if !draw.ValidBatch(entry.Matches) {
				t.Errorf("invalid batch: %+v", entry.Matches)
			}
		})
	}
}

type failingSource struct{ calls int }

func (s *failingSource) Fetch(context.Context) (string, error) {
	s.calls++
	return "", &scraper.FetchError{Reason: "fetching page", Err: errors.New("connection refused")}
}

func TestResolve_NeverFails(t *testing.T) {
	src := &failingSource{}
	p := New(WithSource(src), WithClock(fixedClock(wednesday)))

	matches := p.ResolveMatches(context.Background(), true)
	info := p.ResolveDrawInfo(context.Background(), true)

	if len(matches) == 0 || len(matches) > draw.MaxMatches {
		t.Errorf("got %d matches", len(matches))
	}
	if info.DrawDate.IsZero() {
		t.Error("draw date is zero")
	}
	if src.calls != 2 {
		t.Errorf("source called %d times, want 2", src.calls)
	}
}

func TestCache_HitAndForcedRefresh(t *testing.T) {
	srv, hits := pageServer(t, http.StatusOK, fixture(t, "progol.html"))
	p := newTestPipeline(srv, wednesday)
	ctx := context.Background()

	if _, ok := p.Cached(); ok {
		t.Fatal("Cached() reported an entry before the first resolution")
	}

	p.ResolveDrawInfo(ctx, false)
	p.ResolveDrawInfo(ctx, false)
	p.ResolveMatches(ctx, false)
	if got := hits.Load(); got != 1 {
		t.Errorf("after cached calls: %d fetches, want 1", got)
	}

	p.ResolveDrawInfo(ctx, true)
	if got := hits.Load(); got != 2 {
		t.Errorf("after forced refresh: %d fetches, want 2", got)
	}

	if _, ok := p.Cached(); !ok {
		t.Error("Cached() = false after resolution")
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	srv, _ := pageServer(t, http.StatusOK, fixture(t, "progol.html"))
	p := newTestPipeline(srv, wednesday)
	ctx := context.Background()

	first := p.ResolveMatches(ctx, false)
	first[0].HomeTeam = "Changed"
	info := p.ResolveDrawInfo(ctx, false)
	*info.RoundNumber = "0"

	if got := p.ResolveMatches(ctx, false)[0].HomeTeam; got == "Changed" {
		t.Error("caller mutation leaked into the cached matches")
	}
	if got := p.ResolveDrawInfo(ctx, false).Round(""); got != "2301" {
		t.Errorf("cached round = %q, want 2301", got)
	}
}

func TestCache_SessionsAreIndependent(t *testing.T) {
	srv, hits := pageServer(t, http.StatusOK, fixture(t, "progol.html"))
	a := newTestPipeline(srv, wednesday)
	b := newTestPipeline(srv, wednesday)

	a.ResolveDrawInfo(context.Background(), false)
	b.ResolveDrawInfo(context.Background(), false)
	a.ResolveDrawInfo(context.Background(), false)

	if got := hits.Load(); got != 2 {
		t.Errorf("%d fetches, want one per session", got)
	}
}

func TestCache_ConcurrentCallersShareOneFetch(t *testing.T) {
	srv, hits := pageServer(t, http.StatusOK, fixture(t, "progol.html"))
	p := newTestPipeline(srv, wednesday)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ResolveDrawInfo(context.Background(), false)
		}()
	}
	wg.Wait()

	if got := hits.Load(); got != 1 {
		t.Errorf("%d fetches, want 1", got)
	}
}

func TestCache_Invalidate(t *testing.T) {
	calls := 0
	c := NewCache(func(context.Context) Entry {
		calls++
		return Entry{AcquiredAt: wednesday}
	})

	c.GetOrResolve(context.Background(), false)
	c.Invalidate()
	c.GetOrResolve(context.Background(), false)

	if calls != 2 {
		t.Errorf("resolve called %d times, want 2", calls)
	}
}
