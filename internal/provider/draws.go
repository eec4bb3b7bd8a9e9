package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"drawsage/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// DrawProvider fetches draw history from the upstream game API and
// normalizes entries into DrawRecord, newest first.
type DrawProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewDrawProvider creates a provider with built-in rate limiting.
// The upstream allows roughly one call per draw tick, so the bucket is
// kept small (12 requests per minute, one token every 5 seconds).
func NewDrawProvider(baseURL string, tracer trace.Tracer) *DrawProvider {
	return &DrawProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(12, 5*time.Second),
	}
}

type drawHistoryResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		List []drawEntry `json:"list"`
	} `json:"data"`
}

type drawEntry struct {
	IssueNumber string `json:"issueNumber"`
	OpenCode    string `json:"openCode"`
	OpenTime    string `json:"openTime"`
}

// FetchHistory fetches up to limit recent draws and returns them normalized,
// newest first. Entries that cannot be parsed are skipped, not surfaced.
func (p *DrawProvider) FetchHistory(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	_, span := p.tracer.Start(ctx, "draw-provider.fetch-history")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	url := fmt.Sprintf("%s/api/lottery/history?limit=%d", p.baseURL, limit)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch draw history: %w", err)
	}

	var raw drawHistoryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse draw history: %w", err)
	}
	if raw.Code != 0 {
		return nil, fmt.Errorf("draw history API error %d: %s", raw.Code, raw.Msg)
	}

	records := make([]domain.DrawRecord, 0, len(raw.Data.List))
	for _, entry := range raw.Data.List {
		rec, ok := normalizeEntry(entry)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	// Upstream ordering is not guaranteed; newest-first is an invariant
	// every downstream consumer relies on.
	sort.Slice(records, func(i, j int) bool {
		return issueAfter(records[i], records[j])
	})

	return records, nil
}

// issueAfter orders records newest first. Numeric issue ids compare by
// value so mixed-width ids ("9" vs "10") land in the right order;
// non-numeric ids fall back to the draw timestamp, then the raw string.
func issueAfter(a, b domain.DrawRecord) bool {
	na, errA := strconv.ParseInt(a.Issue, 10, 64)
	nb, errB := strconv.ParseInt(b.Issue, 10, 64)
	if errA == nil && errB == nil {
		return na > nb
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.Issue > b.Issue
}

// normalizeEntry derives the draw number from the first comma-separated
// group of the raw result and maps it to a BIG/SMALL outcome.
func normalizeEntry(entry drawEntry) (domain.DrawRecord, bool) {
	if entry.IssueNumber == "" || entry.OpenCode == "" {
		return domain.DrawRecord{}, false
	}

	first := entry.OpenCode
	if idx := strings.Index(first, ","); idx >= 0 {
		first = first[:idx]
	}
	number, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || number < 0 {
		return domain.DrawRecord{}, false
	}

	return domain.DrawRecord{
		Issue:     entry.IssueNumber,
		ResultRaw: entry.OpenCode,
		Number:    number,
		Outcome:   domain.OutcomeFromNumber(number),
		Timestamp: parseOpenTime(entry.OpenTime),
	}, true
}

func parseOpenTime(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

func (p *DrawProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("draw API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
