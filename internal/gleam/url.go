// Package gleam parses gleam.io giveaway pages and the URLs that point at
// them. Extraction is positional marker scanning over the raw page text;
// there is no DOM parsing here and no tolerance for upstream markup
// redesign.
package gleam

// URLShape classifies the accepted gleam.io URL shapes.
type URLShape int

const (
	// ShapeUnrecognized means the URL is not a giveaway link. Not an error.
	ShapeUnrecognized URLShape = iota
	// ShapeCompetitions is https://gleam.io/competitions/<code>-<slug>.
	ShapeCompetitions
	// ShapeShort is https://gleam.io/<code>/<slug>.
	ShapeShort
)

// URLMatch is the result of classifying a candidate URL. ID is empty iff
// Shape is ShapeUnrecognized.
type URLMatch struct {
	Shape URLShape
	ID    string
}

const (
	competitionsPrefix = "https://gleam.io/competitions/"
	shortPrefix        = "https://gleam.io/"
)

// ParseGiveawayURL extracts the 5-character giveaway code from a URL.
// Exactly two shapes are accepted; everything else is Unrecognized.
// The offsets are fixed by construction: the code always sits right after
// the literal prefix, and the short shape additionally requires a path
// separator right after the code.
func ParseGiveawayURL(url string) URLMatch {
	if len(url) == 37 && url[0:30] == competitionsPrefix {
		return URLMatch{Shape: ShapeCompetitions, ID: url[30:35]}
	}
	if len(url) >= 23 && url[0:17] == shortPrefix && url[22] == '/' {
		return URLMatch{Shape: ShapeShort, ID: url[17:22]}
	}
	return URLMatch{Shape: ShapeUnrecognized}
}

// CanonicalURL rebuilds the slug-free URL for a giveaway code. Every
// accepted URL shape referencing the same giveaway canonicalizes to the
// same string, which is what makes deduplication work.
func CanonicalURL(id string) string {
	return "https://gleam.io/" + id + "/-"
}
