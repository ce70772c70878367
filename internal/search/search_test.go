package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		page int
		want string
	}{
		{0, `https://www.google.com/search?q="gleam.io"&tbs=qdr:h&filter=0&start=0`},
		{1, `https://www.google.com/search?q="gleam.io"&tbs=qdr:h&filter=0&start=10`},
		{4, `https://www.google.com/search?q="gleam.io"&tbs=qdr:h&filter=0&start=40`},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.page); got != tt.want {
			t.Errorf("BuildURL(%d) = %q, want %q", tt.page, got, tt.want)
		}
	}
}

func TestExtractResultLinks(t *testing.T) {
	body := `<html><body>
<div class="r"><a href="https://blog.example.com/giveaways" onmousedown="return rwt(this)">first</a></div>
<div class="r"><a href="https://videos.example.com/watch?v=1" data-ved="2ahUKE">second</a></div>
<div class="nav"><a href="https://www.google.com/preferences">settings</a></div>
</body></html>`

	got := ExtractResultLinks(body)
	want := []string{
		"https://blog.example.com/giveaways",
		"https://videos.example.com/watch?v=1",
	}
	if len(got) != len(want) {
		t.Fatalf("ExtractResultLinks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractResultLinks_NoConfirmation(t *testing.T) {
	// The href marker alone is not enough; without Google's click-tracking
	// attributes the match is page chrome, not a result.
	body := `<div class="x"><a href="https://example.com/page">plain</a></div>`
	if got := ExtractResultLinks(body); len(got) != 0 {
		t.Errorf("ExtractResultLinks() = %v, want none", got)
	}
}

func TestExtractResultLinks_EmptyPage(t *testing.T) {
	if got := ExtractResultLinks(""); got != nil {
		t.Errorf("ExtractResultLinks(\"\") = %v, want nil", got)
	}
}

type stubFetcher struct {
	body string
	err  error
	url  string
}

func (s *stubFetcher) FetchText(_ context.Context, url string) (string, error) {
	s.url = url
	return s.body, s.err
}

func TestClient_Search(t *testing.T) {
	f := &stubFetcher{body: `<div class="r"><a href="https://blog.example.com/post" onmousedown="return rwt(x)">r</a></div>`}
	c := New(f)

	links, err := c.Search(context.Background(), 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.Contains(f.url, "start=20") {
		t.Errorf("Search(page=2) requested %q, want start=20", f.url)
	}
	if len(links) != 1 || links[0] != "https://blog.example.com/post" {
		t.Errorf("Search() = %v", links)
	}
}

func TestClient_Search_TransportError(t *testing.T) {
	f := &stubFetcher{err: models.ErrTimeout}
	c := New(f)

	_, err := c.Search(context.Background(), 0)
	if !errors.Is(err, models.ErrTimeout) {
		t.Errorf("Search() error = %v, want ErrTimeout", err)
	}
}
