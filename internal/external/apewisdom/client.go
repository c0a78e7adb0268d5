package apewisdom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/httputil"
	"github.com/wonny/themescreen/pkg/logger"
)

// DefaultBaseURL lists all Reddit-tracked stocks, one page per path segment
const DefaultBaseURL = "https://apewisdom.io/api/v1.0/filter/all-stocks/page"

// Mention is one ticker's Reddit heat
type Mention struct {
	Rank           int `json:"rank"`
	Mentions       int `json:"mentions"`
	Mentions24hAgo int `json:"mentions_24h_ago"`
}

type pageResponse struct {
	Results []struct {
		Ticker         string `json:"ticker"`
		Mentions       int    `json:"mentions"`
		Mentions24hAgo int    `json:"mentions_24h_ago"`
		Rank           int    `json:"rank"`
	} `json:"results"`
}

// Client fetches Reddit mention counts from ApeWisdom
// ⭐ SSOT: ApeWisdom API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	pages      int
}

// NewClient creates a new ApeWisdom client reading pages 1..pages
func NewClient(httpClient *httputil.Client, baseURL string, pages int, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pages <= 0 {
		pages = 2
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("apewisdom"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		pages:      pages,
	}
}

// Fetch requests every page in parallel and merges them in page order.
// Any failed page fails the whole fetch; a partial map is never returned.
func (c *Client) Fetch(ctx context.Context) (map[string]Mention, error) {
	results := make([]pageResponse, c.pages)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.pages; i++ {
		i := i // per-iteration copy; go directive is 1.21 (pre-loopvar semantics)
		g.Go(func() error {
			page, err := c.fetchPage(gctx, i+1)
			if err != nil {
				return err
			}
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Mention)
	for _, page := range results {
		for _, item := range page.Results {
			out[item.Ticker] = Mention{
				Rank:           item.Rank,
				Mentions:       item.Mentions,
				Mentions24hAgo: item.Mentions24hAgo,
			}
		}
	}

	c.logger.WithField("tickers", len(out)).Debug("Fetched Reddit mentions")
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (pageResponse, error) {
	var decoded pageResponse

	resp, err := c.httpClient.Get(ctx, fmt.Sprintf("%s/%d", c.baseURL, page))
	if err != nil {
		return decoded, fmt.Errorf("page %d request failed: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decoded, fmt.Errorf("page %d: unexpected status code: %d", page, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return decoded, fmt.Errorf("page %d: failed to decode response: %w", page, err)
	}
	return decoded, nil
}

// Merge attaches Reddit heat to candidates with an exact ticker match.
// Returns new records; the input is not modified.
func Merge(candidates []contracts.CandidateRecord, mentions map[string]Mention) []contracts.CandidateRecord {
	out := make([]contracts.CandidateRecord, 0, len(candidates))
	source := contracts.SentimentReddit

	for _, c := range candidates {
		rec := c.Clone()
		if m, ok := mentions[c.Ticker]; ok {
			rec.SentimentRank = contracts.Int(m.Rank)
			rec.SentimentMentions = contracts.Int(m.Mentions)
			rec.SentimentMentionsPrev = contracts.Int(m.Mentions24hAgo)
			rec.SentimentSource = &source
		}
		out = append(out, rec)
	}
	return out
}
