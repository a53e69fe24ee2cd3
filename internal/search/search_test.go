package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/caentzminger/grokipedia-go/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const baseURL = "https://grokipedia.com"

// fakeFetcher routes fetches by URL substring and records every URL
// requested.
type fakeFetcher struct {
	apiBody  string
	apiErr   error
	htmlBody string
	htmlErr  error
	requests []string
}

func (f *fakeFetcher) fetch(ctx context.Context, fetchURL string) (*types.FetchResponse, error) {
	f.requests = append(f.requests, fetchURL)
	if strings.Contains(fetchURL, APIPath) {
		if f.apiErr != nil {
			return nil, f.apiErr
		}
		return &types.FetchResponse{URL: fetchURL, StatusCode: 200, Text: f.apiBody}, nil
	}
	if f.htmlErr != nil {
		return nil, f.htmlErr
	}
	return &types.FetchResponse{URL: fetchURL, StatusCode: 200, Text: f.htmlBody}, nil
}

func newSearcher(t *testing.T, f *fakeFetcher) *Searcher {
	t.Helper()
	s, err := New(baseURL, f.fetch, testLogger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestRunEmptyQuery(t *testing.T) {
	s := newSearcher(t, &fakeFetcher{})
	if _, err := s.Run(context.Background(), "   "); !errors.Is(err, types.ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestRunAPIResults(t *testing.T) {
	f := &fakeFetcher{
		apiBody: `{"results":[
			{"slug":"Alan_Turing","title":"Alan Turing"},
			{"slug":"Alan_Turing","title":"duplicate"},
			{"slug":"","title":"empty slug skipped"},
			{"title":"no slug skipped"},
			{"slug":"Ada_Lovelace"}
		]}`,
	}
	s := newSearcher(t, f)

	urls, err := s.Run(context.Background(), "turing")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"https://grokipedia.com/page/Alan_Turing",
		"https://grokipedia.com/page/Ada_Lovelace",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
	if len(f.requests) != 1 {
		t.Errorf("requests = %v, want API only", f.requests)
	}
}

func TestRunQueryEscaped(t *testing.T) {
	f := &fakeFetcher{apiBody: `{"results":[]}`}
	s := newSearcher(t, f)

	if _, err := s.Run(context.Background(), "alan turing & co"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(f.requests[0], "query=alan+turing+%26+co") {
		t.Errorf("api url = %q, want escaped query", f.requests[0])
	}
}

func TestRunFallsBackOnAPIStatusError(t *testing.T) {
	f := &fakeFetcher{
		apiErr: &types.HTTPStatusError{StatusCode: 503, URL: baseURL + APIPath},
		htmlBody: `<html><body>
			<a href="/page/Alan_Turing">Alan Turing</a>
			<a href="/page/Alan_Turing">Alan Turing again</a>
			<a href="/about">not a page</a>
			<a href="https://elsewhere.example.com/page/Other">offsite</a>
			<a href="https://grokipedia.com/page/Ada_Lovelace?ref=search">Ada</a>
		</body></html>`,
	}
	s := newSearcher(t, f)

	urls, err := s.Run(context.Background(), "turing")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"https://grokipedia.com/page/Alan_Turing",
		"https://grokipedia.com/page/Ada_Lovelace",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
	if len(f.requests) != 2 || !strings.Contains(f.requests[1], "/search?q=") {
		t.Errorf("requests = %v, want API then HTML fallback", f.requests)
	}
}

func TestRunFallsBackOnMalformedAPIPayload(t *testing.T) {
	f := &fakeFetcher{
		apiBody:  `{"unexpected": true}`,
		htmlBody: `<a href="/page/Only_Result">x</a>`,
	}
	s := newSearcher(t, f)

	urls, err := s.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://grokipedia.com/page/Only_Result" {
		t.Errorf("urls = %v", urls)
	}
}

func TestRunNetworkErrorPropagates(t *testing.T) {
	fetchErr := &types.FetchError{URL: baseURL + APIPath, Err: errors.New("connection refused")}
	f := &fakeFetcher{apiErr: fetchErr}
	s := newSearcher(t, f)

	_, err := s.Run(context.Background(), "turing")
	var ferr *types.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FetchError (network failures must not fall back)", err)
	}
	if len(f.requests) != 1 {
		t.Errorf("requests = %v, want API only", f.requests)
	}
}

func TestRunFallbackErrorPropagates(t *testing.T) {
	f := &fakeFetcher{
		apiErr:  &types.HTTPStatusError{StatusCode: 500, URL: baseURL + APIPath},
		htmlErr: &types.HTTPStatusError{StatusCode: 500, URL: baseURL + "/search"},
	}
	s := newSearcher(t, f)

	_, err := s.Run(context.Background(), "turing")
	var statusErr *types.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *HTTPStatusError from the fallback", err)
	}
}
