package models

import (
	"errors"
	"time"
)

// ErrTimeout is returned when the transport could not complete a request.
var ErrTimeout = errors.New("request timed out")

// ErrInvalidResponse is returned when a response was obtained but did not
// contain what the parser required: wrong URL shape, undecodable body,
// missing payload, or a missing required key.
var ErrInvalidResponse = errors.New("invalid response")

// ErrGiveawayExists is returned when attempting to create a giveaway that
// is already stored.
var ErrGiveawayExists = errors.New("giveaway already exists")

// EntryMethod is one way a participant can earn entries, with the number
// of entries it is worth. Methods keep their page order and are not
// deduplicated.
type EntryMethod struct {
	Kind  string `firestore:"kind" validate:"required"`
	Worth int64  `firestore:"worth" validate:"gte=0"`
}

// Giveaway is a fully parsed gleam.io giveaway. A Giveaway is either
// completely populated by the parser or never constructed; no partial
// records exist.
type Giveaway struct {
	GleamID      string        `firestore:"gleamID" validate:"required,len=5,alphanum"`
	Name         string        `firestore:"name" validate:"required"`
	Description  string        `firestore:"description"`
	EntryCount   *int64        `firestore:"entryCount,omitempty" validate:"omitempty,gte=0"`
	EntryMethods []EntryMethod `firestore:"entryMethods" validate:"dive"`
	StartDate    int64         `firestore:"startDate"`
	EndDate      int64         `firestore:"endDate"`
	LastFetched  int64         `firestore:"lastFetched" validate:"required"`

	// Notification bookkeeping, not sourced from the page.
	DiscordMessageID       string    `firestore:"discordMessageID,omitempty"`
	DiscordLastUpdatedTime time.Time `firestore:"discordLastUpdatedTime,omitempty"`
}

// URL returns the canonical, slug-free URL of the giveaway.
func (g *Giveaway) URL() string {
	return "https://gleam.io/" + g.GleamID + "/-"
}

// IsRunning reports whether the giveaway has not yet ended at now.
// Start and end dates are independent fields; the source may publish
// start > end and the parser does not correct that.
func (g *Giveaway) IsRunning(now time.Time) bool {
	return g.EndDate > now.Unix()
}

// MaxEntries returns the total entries obtainable by one account: the sum
// of the worth of every entry method.
func (g *Giveaway) MaxEntries() int64 {
	var total int64
	for _, m := range g.EntryMethods {
		total += m.Worth
	}
	return total
}
