package parser

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/caentzminger/grokipedia-go/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const articleFixture = `<!DOCTYPE html>
<html>
<head>
<title>Alan Turing | Grokipedia</title>
<link rel="canonical" href="https://grokipedia.com/page/Alan_Turing">
<meta name="description" content="Mathematician and computer scientist.">
<meta name="keywords" content="computing, cryptography, ">
</head>
<body>
<article class="prose text-[16px] w-full">
<h1>Alan Turing</h1>
<p>Alan Turing was a British mathematician.</p>
<dl>
<dt>Born</dt><dd>23 June 1912</dd>
<dt>Died</dt><dd>7 June 1954</dd>
<dt>Награды</dt>
</dl>
<figure>
<img src="/_next/image?url=%2Fimages%2Fturing.jpg&amp;w=1080&amp;q=75" alt="Portrait of Turing">
<figcaption>Turing in 1936</figcaption>
</figure>
<h2 id="early-life">Early Life</h2>
<p>He was born in London.</p>
<p>He studied at Cambridge.</p>
<h3 id="education">Education</h3>
<span data-tts-block="true">Turing read mathematics at King's College.</span>
<h2 id="references">References</h2>
<ul>
<li>Hodges, <a href="https://example.com/hodges">The Enigma</a></li>
<li>Turing Digital Archive</li>
</ul>
<ol>
<li><a href="https://example.com/paper-a">Paper A</a></li>
</ol>
</article>
</body>
</html>`

func parseFixture(t *testing.T, rawHTML string, opts Options) *types.Page {
	t.Helper()
	page, err := New(testLogger).Parse(rawHTML, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return page
}

func TestParseFullArticle(t *testing.T) {
	page := parseFixture(t, articleFixture, Options{
		SourceURL:  "https://grokipedia.com/page/Alan_Turing",
		StatusCode: 200,
		FetchedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	})

	if page.Title != "Alan Turing" {
		t.Errorf("title = %q", page.Title)
	}
	if page.Slug != "Alan_Turing" {
		t.Errorf("slug = %q", page.Slug)
	}
	if page.IntroText == nil || *page.IntroText != "Alan Turing was a British mathematician." {
		t.Errorf("intro = %v", page.IntroText)
	}

	if len(page.Infobox) != 2 {
		t.Fatalf("infobox = %+v, want 2 fields (dangling label dropped)", page.Infobox)
	}
	if page.Infobox[0].Label != "Born" || page.Infobox[0].Value != "23 June 1912" {
		t.Errorf("infobox[0] = %+v", page.Infobox[0])
	}

	if page.LeadFigure == nil {
		t.Fatal("lead figure missing")
	}
	if page.LeadFigure.ImageURL != "https://grokipedia.com/images/turing.jpg" {
		t.Errorf("lead figure url = %q, want proxy unwrapped", page.LeadFigure.ImageURL)
	}
	if page.LeadFigure.Caption == nil || *page.LeadFigure.Caption != "Turing in 1936" {
		t.Errorf("lead figure caption = %v", page.LeadFigure.Caption)
	}
	if page.LeadFigure.AltText == nil || *page.LeadFigure.AltText != "Portrait of Turing" {
		t.Errorf("lead figure alt = %v", page.LeadFigure.AltText)
	}

	if len(page.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(page.Sections))
	}
	early := page.Sections[0]
	if early.Title != "Early Life" || early.Level != 2 {
		t.Errorf("section[0] = %+v", early)
	}
	if early.ID == nil || *early.ID != "early-life" {
		t.Errorf("section[0].id = %v", early.ID)
	}
	if early.Text != "He was born in London.\n\nHe studied at Cambridge." {
		t.Errorf("section[0].text = %q", early.Text)
	}
	if len(early.Subsections) != 1 {
		t.Fatalf("section[0].subsections = %d, want 1", len(early.Subsections))
	}
	education := early.Subsections[0]
	if education.Title != "Education" || education.Level != 3 {
		t.Errorf("subsection = %+v", education)
	}
	if education.Text != "Turing read mathematics at King's College." {
		t.Errorf("subsection text = %q (data-tts-block span should count as a paragraph)", education.Text)
	}

	if len(page.References) != 3 {
		t.Fatalf("references = %+v, want 3", page.References)
	}
	for i, ref := range page.References {
		if ref.Index != i+1 {
			t.Errorf("references[%d].index = %d, want %d", i, ref.Index, i+1)
		}
	}
	if page.References[0].Text != "Hodges, The Enigma" {
		t.Errorf("references[0].text = %q", page.References[0].Text)
	}
	if page.References[0].URL == nil || *page.References[0].URL != "https://example.com/hodges" {
		t.Errorf("references[0].url = %v", page.References[0].URL)
	}
	if page.References[1].URL != nil {
		t.Errorf("references[1].url = %v, want nil", page.References[1].URL)
	}
	if page.References[2].Text != "Paper A" {
		t.Errorf("references[2].text = %q", page.References[2].Text)
	}

	if len(page.Links) != 2 {
		t.Errorf("links = %v, want 2", page.Links)
	}

	meta := page.Metadata
	if meta.StatusCode != 200 {
		t.Errorf("status_code = %d", meta.StatusCode)
	}
	if meta.CanonicalURL == nil || *meta.CanonicalURL != "https://grokipedia.com/page/Alan_Turing" {
		t.Errorf("canonical_url = %v", meta.CanonicalURL)
	}
	if meta.Description == nil || *meta.Description != "Mathematician and computer scientist." {
		t.Errorf("description = %v", meta.Description)
	}
	if len(meta.Keywords) != 2 || meta.Keywords[0] != "computing" || meta.Keywords[1] != "cryptography" {
		t.Errorf("keywords = %v", meta.Keywords)
	}
	if got := meta.FetchedAtUTC.Format(); got != "2026-08-30T12:00:00Z" {
		t.Errorf("fetched_at_utc = %q", got)
	}
}

func TestParseImplicitOverviewSection(t *testing.T) {
	rawHTML := `<article class="text-[16px]">
<h1>Topic</h1>
<h3 id="detail">Detail</h3>
<p>Content under an orphan level-3 heading.</p>
</article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Topic"})

	if len(page.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(page.Sections))
	}
	overview := page.Sections[0]
	if overview.Title != "Overview" || overview.Level != 2 || overview.ID != nil {
		t.Errorf("synthesized section = %+v", overview)
	}
	if len(overview.Subsections) != 1 || overview.Subsections[0].Title != "Detail" {
		t.Fatalf("subsections = %+v", overview.Subsections)
	}
	if overview.Subsections[0].Text != "Content under an orphan level-3 heading." {
		t.Errorf("subsection text = %q", overview.Subsections[0].Text)
	}
}

func TestParseContentBeforeFirstHeadingDropped(t *testing.T) {
	rawHTML := `<article class="text-[16px]">
<h1>Topic</h1>
<p>Intro only, no section owns this.</p>
<h2>Body</h2>
<p>Section text.</p>
</article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Topic"})

	if page.IntroText == nil || *page.IntroText != "Intro only, no section owns this." {
		t.Errorf("intro = %v", page.IntroText)
	}
	if len(page.Sections) != 1 || page.Sections[0].Text != "Section text." {
		t.Fatalf("sections = %+v", page.Sections)
	}
}

func TestParseSectionMediaDeduplicated(t *testing.T) {
	rawHTML := `<article class="text-[16px]">
<h1>Topic</h1>
<h2>Gallery</h2>
<figure><img src="/images/one.jpg" alt="first"></figure>
<figure><img src="/images/one.jpg" alt="repeat"></figure>
<figure><img src="/images/two.jpg"></figure>
</article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Topic"})

	if len(page.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(page.Sections))
	}
	media := page.Sections[0].Media
	if len(media) != 2 {
		t.Fatalf("media = %+v, want 2 (duplicate URL dropped)", media)
	}
	if media[0].Index != 1 || media[1].Index != 2 {
		t.Errorf("media indices = %d, %d, want 1, 2", media[0].Index, media[1].Index)
	}
	if media[0].ImageURL != "https://grokipedia.com/images/one.jpg" {
		t.Errorf("media[0].url = %q", media[0].ImageURL)
	}
}

func TestParsePayloadMediaReconciliation(t *testing.T) {
	rawHTML := `<html><body>
<article class="text-[16px]">
<h1>Alan Turing</h1>
<h2>Career</h2>
<p>Bletchley Park years.</p>
<h3>Cryptanalysis</h3>
<p>Enigma work.</p>
</article>
<script>self.__next_f.push([1,"c:payload\n## Career\n![Bombe machine](/images/bombe.jpg)\n*The Bombe at Bletchley*\n### Cryptanalysis\n![Enigma](<https://cdn.example.com/enigma%20machine.jpg>)\n"])</script>
</body></html>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Alan_Turing"})

	if len(page.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(page.Sections))
	}
	career := page.Sections[0]
	if len(career.Media) != 1 {
		t.Fatalf("career media = %+v, want 1", career.Media)
	}
	bombe := career.Media[0]
	if bombe.ImageURL != "https://grokipedia.com/images/bombe.jpg" {
		t.Errorf("bombe url = %q", bombe.ImageURL)
	}
	if bombe.AltText == nil || *bombe.AltText != "Bombe machine" {
		t.Errorf("bombe alt = %v", bombe.AltText)
	}
	if bombe.Caption == nil || *bombe.Caption != "The Bombe at Bletchley" {
		t.Errorf("bombe caption = %v", bombe.Caption)
	}

	if len(career.Subsections) != 1 {
		t.Fatalf("subsections = %d, want 1", len(career.Subsections))
	}
	crypt := career.Subsections[0]
	if len(crypt.Media) != 1 {
		t.Fatalf("subsection media = %+v, want 1", crypt.Media)
	}
	if crypt.Media[0].ImageURL != "https://cdn.example.com/enigma%20machine.jpg" {
		t.Errorf("enigma url = %q (angle-bracket URL should survive verbatim)", crypt.Media[0].ImageURL)
	}
	if crypt.Media[0].Caption != nil {
		t.Errorf("enigma caption = %v, want nil", crypt.Media[0].Caption)
	}
}

func TestParsePayloadMediaSkipsDuplicateOfDOMFigure(t *testing.T) {
	rawHTML := `<article class="text-[16px]">
<h1>Topic</h1>
<h2>Gallery</h2>
<figure><img src="/images/one.jpg" alt="from dom"></figure>
</article>
<script>self.__next_f.push([1,"c:payload\n## Gallery\n![from payload](/images/one.jpg)\n"])</script>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Topic"})

	media := page.Sections[0].Media
	if len(media) != 1 {
		t.Fatalf("media = %+v, want 1 (payload duplicate dropped)", media)
	}
	if media[0].AltText == nil || *media[0].AltText != "from dom" {
		t.Errorf("media alt = %v, want the DOM figure to win", media[0].AltText)
	}
}

func TestParseArticleSelectionPrefersClassMarker(t *testing.T) {
	rawHTML := `<article class="teaser"><h1>Wrong</h1></article>
<article class="prose text-[16px]"><h1>Right</h1></article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Right"})
	if page.Title != "Right" {
		t.Errorf("title = %q, want the marked article selected", page.Title)
	}
}

func TestParseArticleSelectionFallsBackToReferences(t *testing.T) {
	rawHTML := `<article class="nav"><p>menu</p></article>
<article class="content"><h1>Right</h1><h2>References</h2><ul><li>src</li></ul></article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/Right"})
	if page.Title != "Right" {
		t.Errorf("title = %q, want the h1+references article selected", page.Title)
	}
}

func TestParseNoArticleFails(t *testing.T) {
	_, err := New(testLogger).Parse(`<div><h1>Not an article</h1></div>`, Options{SourceURL: "https://grokipedia.com/page/X"})
	var perr *types.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestParseNoTitleFails(t *testing.T) {
	_, err := New(testLogger).Parse(`<article class="text-[16px]"><p>no headings anywhere</p></article>`, Options{})
	var perr *types.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestParseTitleFallsBackToMeta(t *testing.T) {
	rawHTML := `<head><meta property="og:title" content="Fallback Title"></head>
<article class="text-[16px]"><p>body</p></article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/X"})
	if page.Title != "Fallback Title" {
		t.Errorf("title = %q, want og:title fallback", page.Title)
	}
}

func TestParseURLFallsBackToCanonical(t *testing.T) {
	rawHTML := `<link rel="canonical" href="https://grokipedia.com/page/Canon">
<article class="text-[16px]"><h1>Canon</h1></article>`

	page := parseFixture(t, rawHTML, Options{})
	if page.URL != "https://grokipedia.com/page/Canon" {
		t.Errorf("url = %q, want canonical fallback", page.URL)
	}
	if page.Slug != "Canon" {
		t.Errorf("slug = %q", page.Slug)
	}
}

func TestParseDefaults(t *testing.T) {
	before := time.Now().UTC()
	page := parseFixture(t, `<article class="text-[16px]"><h1>T</h1></article>`, Options{SourceURL: "https://grokipedia.com/page/T"})

	if page.Metadata.StatusCode != 200 {
		t.Errorf("status_code = %d, want default 200", page.Metadata.StatusCode)
	}
	if page.Metadata.FetchedAtUTC.Before(before.Add(-time.Second)) {
		t.Errorf("fetched_at = %v, want roughly now", page.Metadata.FetchedAtUTC)
	}
	if page.Metadata.Keywords != nil {
		t.Errorf("keywords = %v, want nil when absent", page.Metadata.Keywords)
	}
	if page.IntroText != nil {
		t.Errorf("intro = %v, want nil", page.IntroText)
	}
	if page.LeadFigure != nil {
		t.Errorf("lead figure = %v, want nil", page.LeadFigure)
	}
}

func TestParseListRendering(t *testing.T) {
	rawHTML := `<article class="text-[16px]">
<h1>T</h1>
<h2>Steps</h2>
<ol><li>first</li><li></li><li>third</li></ol>
<ul><li>alpha</li><li>beta</li></ul>
<pre><code>x := 1
y := 2</code></pre>
<blockquote>Quoted   words</blockquote>
</article>`

	page := parseFixture(t, rawHTML, Options{SourceURL: "https://grokipedia.com/page/T"})

	want := "1. first\n3. third\n\n- alpha\n- beta\n\nx := 1\ny := 2\n\nQuoted words"
	if got := page.Sections[0].Text; got != want {
		t.Errorf("section text = %q, want %q", got, want)
	}
}
