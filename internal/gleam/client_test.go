package gleam

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

// fakeFetcher serves canned bodies per URL and records every request.
type fakeFetcher struct {
	bodies   map[string]string
	requests []string
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	f.requests = append(f.requests, url)
	body, ok := f.bodies[url]
	if !ok {
		return "", models.ErrTimeout
	}
	return body, nil
}

func newTestClient(f *fakeFetcher) (*Client, *[]time.Duration) {
	c := NewClient(f)
	c.now = func() time.Time { return time.Unix(1700100000, 0) }
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestClient_Fetch_CanonicalizesURL(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"https://gleam.io/aB3dE/-": fixturePage,
	}}
	c, _ := newTestClient(f)

	g, err := c.Fetch(context.Background(), "https://gleam.io/aB3dE/mega-keyboard-giveaway")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if g.GleamID != "aB3dE" {
		t.Errorf("GleamID = %q", g.GleamID)
	}
	if len(f.requests) != 1 || f.requests[0] != "https://gleam.io/aB3dE/-" {
		t.Errorf("requests = %v, want single canonical URL", f.requests)
	}
}

func TestClient_Fetch_UnrecognizedURLSkipsNetwork(t *testing.T) {
	f := &fakeFetcher{}
	c, _ := newTestClient(f)

	_, err := c.Fetch(context.Background(), "https://example.com/not-a-giveaway")
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Fatalf("Fetch() error = %v, want ErrInvalidResponse", err)
	}
	if len(f.requests) != 0 {
		t.Errorf("unrecognized URL should not touch the network, got %v", f.requests)
	}
}

func TestClient_FetchAll_SkipsFailures(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"https://gleam.io/aB3dE/-": fixturePage,
		"https://gleam.io/fGh1J/-": fixturePage,
		// 2zAsX has no body, so its fetch fails.
	}}
	c, slept := newTestClient(f)

	urls := []string{
		"https://gleam.io/aB3dE/-",
		"https://gleam.io/2zAsX/-",
		"https://gleam.io/fGh1J/-",
	}
	got := c.FetchAll(context.Background(), urls, 10*time.Second)

	if len(got) != 2 {
		t.Fatalf("FetchAll() returned %d giveaways, want 2", len(got))
	}
	if got[0].GleamID != "aB3dE" || got[1].GleamID != "fGh1J" {
		t.Errorf("FetchAll() order = %s, %s", got[0].GleamID, got[1].GleamID)
	}
	// Cooldown after every attempt, failed ones included.
	if len(*slept) != 3 {
		t.Errorf("slept %d times, want 3", len(*slept))
	}
	for _, d := range *slept {
		if d != 10*time.Second {
			t.Errorf("slept %v, want 10s", d)
		}
	}
}

func TestClient_FetchAll_SingleURLNoCooldown(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"https://gleam.io/aB3dE/-": fixturePage,
	}}
	c, slept := newTestClient(f)

	got := c.FetchAll(context.Background(), []string{"https://gleam.io/aB3dE/-"}, 10*time.Second)
	if len(got) != 1 {
		t.Fatalf("FetchAll() returned %d giveaways, want 1", len(got))
	}
	if len(*slept) != 0 {
		t.Errorf("single-URL batch should not sleep, slept %d times", len(*slept))
	}
}

func TestClient_Update_PreservesBookkeeping(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"https://gleam.io/aB3dE/-": fixturePage,
	}}
	c, _ := newTestClient(f)

	msgTime := time.Unix(1690000000, 0)
	g := &models.Giveaway{
		GleamID:                "aB3dE",
		Name:                   "Stale Name",
		LastFetched:            1690000000,
		DiscordMessageID:       "msg-123",
		DiscordLastUpdatedTime: msgTime,
	}

	if err := c.Update(context.Background(), g); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if g.Name != "Win a Keyboard" {
		t.Errorf("Name = %q, want refreshed name", g.Name)
	}
	if g.LastFetched != 1700100000 {
		t.Errorf("LastFetched = %d, want refresh time", g.LastFetched)
	}
	if g.DiscordMessageID != "msg-123" || !g.DiscordLastUpdatedTime.Equal(msgTime) {
		t.Errorf("notification bookkeeping lost: %q, %v", g.DiscordMessageID, g.DiscordLastUpdatedTime)
	}
}

func TestClient_Update_FailureLeavesRecordUntouched(t *testing.T) {
	f := &fakeFetcher{} // every fetch fails
	c, _ := newTestClient(f)

	g := &models.Giveaway{
		GleamID:     "aB3dE",
		Name:        "Stale Name",
		LastFetched: 1690000000,
	}

	err := c.Update(context.Background(), g)
	if !errors.Is(err, models.ErrTimeout) {
		t.Fatalf("Update() error = %v, want ErrTimeout", err)
	}
	if g.Name != "Stale Name" || g.LastFetched != 1690000000 {
		t.Errorf("failed update mutated the record: %+v", g)
	}
}
