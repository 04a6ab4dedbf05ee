package search

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New("test-agent", time.Millisecond, testLogger())
	c.baseURL = srv.URL + "/"
	return c, srv
}

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/one">First Result</a>
  <a class="result__snippet" href="#">Snippet one text.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/two"></a>
  <a class="result__snippet" href="#">Snippet two text.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/three">Third Result</a>
</div>
</body></html>`

func TestSearch_ParsesResults(t *testing.T) {
	var gotQuery, gotUA string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, resultsPage)
	}))
	defer srv.Close()

	results, err := c.Search(context.Background(), "digital minds", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "digital minds" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotUA != "test-agent" {
		t.Fatalf("user agent = %q", gotUA)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Title != "First Result" || results[0].URL != "https://example.com/one" || results[0].Snippet != "Snippet one text." {
		t.Fatalf("first = %+v", results[0])
	}
	if results[1].Title != "No title" {
		t.Fatalf("empty title = %q, want placeholder", results[1].Title)
	}
	if results[2].Snippet != "No description" {
		t.Fatalf("missing snippet = %q, want placeholder", results[2].Snippet)
	}
}

func TestSearch_HonorsMaxResults(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, resultsPage)
	}))
	defer srv.Close()

	results, err := c.Search(context.Background(), "anything", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
}

func TestSearch_NonOKStatus(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := c.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("non-200 must error")
	}
}

func TestFetchText_StripsMarkupAndScripts(t *testing.T) {
	page := `<html><head><style>body{color:red}</style></head><body>
<script>var hidden = "should not appear";</script>
<h1>Visible   Heading</h1>
<p>` + strings.Repeat("Readable paragraph text. ", 10) + `</p>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))
	defer srv.Close()

	c := New("test-agent", time.Millisecond, testLogger())
	text, err := c.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if strings.Contains(text, "hidden") || strings.Contains(text, "color:red") {
		t.Fatalf("script or style leaked into text: %q", text)
	}
	if !strings.Contains(text, "Visible Heading") {
		t.Fatalf("whitespace not collapsed: %q", text)
	}
	if !strings.Contains(text, "Readable paragraph text.") {
		t.Fatalf("body text missing: %q", text)
	}
}

func TestFetchText_RejectsEmptyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>tiny</p></body></html>")
	}))
	defer srv.Close()

	c := New("test-agent", time.Millisecond, testLogger())
	if _, err := c.FetchText(context.Background(), srv.URL); err == nil {
		t.Fatal("near-empty page must error")
	}
}

func TestFetchText_CapsLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>"+strings.Repeat("word ", 2000)+"</p></body></html>")
	}))
	defer srv.Close()

	c := New("test-agent", time.Millisecond, testLogger())
	text, err := c.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if len(text) > maxPageText {
		t.Fatalf("len = %d, want <= %d", len(text), maxPageText)
	}
}
