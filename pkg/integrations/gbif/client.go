package gbif

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/taxonscope/pkg/httputil"
	"github.com/matzehuels/taxonscope/pkg/integrations"
)

// DefaultBaseURL is the public GBIF v1 API root.
const DefaultBaseURL = "https://api.gbif.org/v1"

const (
	// MaxOccurrenceLimit is the largest page the occurrence search serves.
	MaxOccurrenceLimit = 300
	// MaxOccurrenceOffset is the deepest offset+limit the occurrence search serves.
	MaxOccurrenceOffset = 100000

	matchTypeNone = "NONE"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL   string          // API root (default: DefaultBaseURL)
	Timeout   time.Duration   // Per-request timeout (default: integrations.DefaultTimeout)
	Retry     httputil.Policy // Retry policy (default: httputil.DefaultPolicy)
	UserAgent string          // Sent with every request (default: "taxonscope")
}

// Client provides access to the GBIF species and occurrence APIs.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GBIF client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = httputil.DefaultPolicy
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "taxonscope"
	}
	return &Client{
		Client:  integrations.NewClient(opts.Timeout, opts.Retry, map[string]string{"User-Agent": opts.UserAgent}),
		baseURL: opts.BaseURL,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Match resolves name to GBIF's best-matching usage. If rank is non-empty it
// is passed through to narrow the match (GBIF upper-case rank names).
//
// Returns:
//   - the match on success; UsageKey is never zero
//   - [integrations.ErrNotFound] when GBIF reports no usable match
//   - [integrations.ErrNetwork] / [integrations.ErrMalformed] for transport failures
func (c *Client) Match(ctx context.Context, name, rank string) (*NameMatch, error) {
	q := url.Values{"name": {integrations.NormalizeName(name)}}
	if rank != "" {
		q.Set("rank", rank)
	}

	var m NameMatch
	if err := c.Get(ctx, c.baseURL+"/species/match", q, &m); err != nil {
		return nil, err
	}
	if m.UsageKey == 0 || m.MatchType == matchTypeNone {
		return nil, fmt.Errorf("%w: gbif name %q at rank %q", integrations.ErrNotFound, name, rank)
	}
	return &m, nil
}

// Children fetches one page of the direct children of the taxon with key id.
// A taxon GBIF does not know yields [integrations.ErrNotFound].
func (c *Client) Children(ctx context.Context, id int64, offset, limit int) (*ChildrenPage, error) {
	q := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}

	var page ChildrenPage
	endpoint := fmt.Sprintf("%s/species/%d/children", c.baseURL, id)
	if err := c.Get(ctx, endpoint, q, &page); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: gbif taxon %d", err, id)
		}
		return nil, err
	}
	return &page, nil
}

// OccurrenceQuery selects one page of occurrence search results.
type OccurrenceQuery struct {
	TaxonKey int64
	LatMin   float64
	LatMax   float64
	LonMin   float64
	LonMax   float64
	Offset   int
	Limit    int
}

func (q OccurrenceQuery) values() url.Values {
	return url.Values{
		"taxonKey":           {strconv.FormatInt(q.TaxonKey, 10)},
		"hasCoordinate":      {"true"},
		"hasGeospatialIssue": {"false"},
		"decimalLatitude":    {formatRange(q.LatMin, q.LatMax)},
		"decimalLongitude":   {formatRange(q.LonMin, q.LonMax)},
		"offset":             {strconv.Itoa(q.Offset)},
		"limit":              {strconv.Itoa(min(q.Limit, MaxOccurrenceLimit))},
	}
}

func formatRange(lo, hi float64) string {
	return strconv.FormatFloat(lo, 'f', -1, 64) + "," + strconv.FormatFloat(hi, 'f', -1, 64)
}

// Occurrences fetches one page of occurrence records with coordinates and no
// geospatial issue flag inside the query's bounding box.
func (c *Client) Occurrences(ctx context.Context, q OccurrenceQuery) (*OccurrencePage, error) {
	var page OccurrencePage
	if err := c.Get(ctx, c.baseURL+"/occurrence/search", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
