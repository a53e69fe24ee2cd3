package integration

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/caentzminger/grokipedia-go/pkg/grokipedia"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func liveClient() *grokipedia.Client {
	return grokipedia.New(
		grokipedia.WithTimeout(20*time.Second),
		grokipedia.WithLogger(testLogger),
	)
}

// TestLivePage fetches and parses a real page.
func TestLivePage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := liveClient().Page(ctx, "Alan_Turing")
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}

	t.Logf("Title: %s", page.Title)
	t.Logf("Sections: %d", len(page.Sections))
	t.Logf("References: %d", len(page.References))

	if page.Title == "" {
		t.Error("empty title")
	}
	if len(page.Sections) == 0 {
		t.Error("no sections extracted")
	}
	if page.Metadata.StatusCode != 200 {
		t.Errorf("status = %d, want 200", page.Metadata.StatusCode)
	}
}

// TestLiveSearch runs a real full-text search.
func TestLiveSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	urls, err := liveClient().Search(ctx, "turing")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	t.Logf("Results: %d", len(urls))
	if len(urls) == 0 {
		t.Error("no search results")
	}
}

// TestLiveResolve resolves a title through the real sitemap
// inventory.
func TestLiveResolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	client := liveClient()
	pageURL, err := client.FindPageURL(ctx, "Alan Turing")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	t.Logf("Resolved: %s", pageURL)

	// A second lookup is served from the cached inventory and must
	// return the same answer.
	again, err := client.FindPageURL(ctx, "Alan Turing")
	if err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if again != pageURL {
		t.Errorf("cached resolve = %q, first = %q", again, pageURL)
	}
}
