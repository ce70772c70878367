package gleam

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gleamhunt/gleam-finder/internal/models"
	"github.com/gleamhunt/gleam-finder/internal/scan"
)

// Giveaway pages embed their state as an Angular initializer argument.
// The entry count lives in a separate inline script, so it is extracted
// independently and is optional.
const (
	campaignOpen  = "<div class='popup-blocks-container' ng-init='initCampaign("
	campaignClose = ")'>"

	entryCountOpen  = "initEntryCount("
	entryCountClose = ")"
)

// Parse extracts a complete giveaway record from the raw text of the page
// for the given giveaway code. It either returns a fully populated record
// or ErrInvalidResponse; no partial records are ever produced. now is
// recorded as the fetch time.
func Parse(id, body string, now time.Time) (*models.Giveaway, error) {
	raw, ok := scan.BetweenStrict(body, campaignOpen, campaignClose)
	if !ok {
		return nil, fmt.Errorf("%w: campaign payload not found", models.ErrInvalidResponse)
	}

	payload, err := parsePayload(strings.ReplaceAll(raw, "&quot;", `"`))
	if err != nil {
		return nil, err
	}

	campaign, err := payload.field("campaign")
	if err != nil {
		return nil, err
	}
	nameField, err := campaign.field("name")
	if err != nil {
		return nil, err
	}
	name, err := nameField.str()
	if err != nil {
		return nil, err
	}
	startsField, err := campaign.field("starts_at")
	if err != nil {
		return nil, err
	}
	startsAt, err := startsField.integer()
	if err != nil {
		return nil, err
	}
	endsField, err := campaign.field("ends_at")
	if err != nil {
		return nil, err
	}
	endsAt, err := endsField.integer()
	if err != nil {
		return nil, err
	}

	incentive, err := payload.field("incentive")
	if err != nil {
		return nil, err
	}
	descField, err := incentive.field("description")
	if err != nil {
		return nil, err
	}
	description, err := descField.str()
	if err != nil {
		return nil, err
	}

	methodsField, err := payload.field("entry_methods")
	if err != nil {
		return nil, err
	}
	methodValues, err := methodsField.array()
	if err != nil {
		return nil, err
	}
	methods := make([]models.EntryMethod, 0, len(methodValues))
	for _, mv := range methodValues {
		kindField, err := mv.field("entry_type")
		if err != nil {
			return nil, err
		}
		kind, err := kindField.str()
		if err != nil {
			return nil, err
		}
		worthField, err := mv.field("worth")
		if err != nil {
			return nil, err
		}
		worth, err := worthField.integer()
		if err != nil {
			return nil, err
		}
		methods = append(methods, models.EntryMethod{Kind: kind, Worth: worth})
	}

	return &models.Giveaway{
		GleamID:      id,
		Name:         decodeDisplayText(name),
		Description:  decodeDisplayText(description),
		EntryCount:   parseEntryCount(body),
		EntryMethods: methods,
		StartDate:    startsAt,
		EndDate:      endsAt,
		LastFetched:  now.Unix(),
	}, nil
}

// decodeDisplayText routes a payload string through the decode pipeline
// matching its escaping layer. Text that still carries unicode-escaped
// tags came through the raw-script encoding; everything else came through
// the &quot;-unescaped HTML payload. The two pipelines are alternatives,
// never applied in sequence.
func decodeDisplayText(s string) string {
	if strings.Contains(s, `\u003c`) {
		return DecodeScriptDescription(s)
	}
	return DecodeDescription(s)
}

// parseEntryCount reads the inline counter initializer. The field is
// optional: a missing marker or unparsable number yields absent, never an
// error.
func parseEntryCount(body string) *int64 {
	raw, ok := scan.BetweenStrict(body, entryCountOpen, entryCountClose)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
