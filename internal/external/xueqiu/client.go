package xueqiu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/httputil"
	"github.com/wonny/themescreen/pkg/logger"
)

const (
	DefaultHomeURL = "https://xueqiu.com"
	DefaultHotURL  = "https://stock.xueqiu.com/v5/stock/hot_stock/list.json?size=100&type=12"
)

// ErrNoToken is returned when the home page sets no xq_a_token cookie
var ErrNoToken = errors.New("failed to extract xq_a_token from Xueqiu")

var (
	tokenPattern  = regexp.MustCompile(`xq_a_token=([^;]+)`)
	prefixPattern = regexp.MustCompile(`(?i)^(SH|SZ)`)
)

// HotStock is one entry of the Xueqiu hot list
type HotStock struct {
	Rank        int     `json:"rank"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	FollowCount int     `json:"follow_count"`
	TweetCount  int     `json:"tweet_count"`
	Increase    float64 `json:"increase"` // rank change, positive = rising
}

type hotResponse struct {
	Data *struct {
		Items []struct {
			Code        string   `json:"code"`
			Name        string   `json:"name"`
			FollowCount int      `json:"follow_count"`
			TweetCount  int      `json:"tweet_count"`
			Increase    *float64 `json:"increase"`
			Rank        *int     `json:"rank"`
		} `json:"items"`
	} `json:"data"`
}

// Client fetches the A-share hot list from Xueqiu (雪球)
// ⭐ SSOT: 雪球 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client // must not follow redirects for the cookie handshake
	logger     *logger.Logger
	homeURL    string
	hotURL     string
	token      string
}

// NewClient creates a Xueqiu client. A non-empty token skips the cookie handshake.
func NewClient(httpClient *httputil.Client, homeURL, hotURL, token string, log *logger.Logger) *Client {
	if homeURL == "" {
		homeURL = DefaultHomeURL
	}
	if hotURL == "" {
		hotURL = DefaultHotURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("xueqiu"),
		homeURL:    homeURL,
		hotURL:     hotURL,
		token:      token,
	}
}

// Token returns the configured override or extracts xq_a_token from the
// home page's Set-Cookie header.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}

	resp, err := c.httpClient.Get(ctx, c.homeURL)
	if err != nil {
		return "", fmt.Errorf("token handshake failed: %w", err)
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Header.Values("Set-Cookie") {
		if m := tokenPattern.FindStringSubmatch(cookie); m != nil {
			return m[1], nil
		}
	}
	return "", ErrNoToken
}

// Fetch returns the hot list keyed by normalized code
func (c *Client) Fetch(ctx context.Context) (map[string]HotStock, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hotURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hot list request: %w", err)
	}
	req.Header.Set("Cookie", "xq_a_token="+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hot list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hot list: unexpected status code: %d", resp.StatusCode)
	}

	var decoded hotResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode hot list: %w", err)
	}

	out := make(map[string]HotStock)
	if decoded.Data == nil {
		return out, nil
	}

	for i, item := range decoded.Data.Items {
		hs := HotStock{
			Rank:        i + 1,
			Code:        item.Code,
			Name:        item.Name,
			FollowCount: item.FollowCount,
			TweetCount:  item.TweetCount,
		}
		if item.Rank != nil {
			hs.Rank = *item.Rank
		}
		if item.Increase != nil {
			hs.Increase = *item.Increase
		}
		out[NormalizeCode(item.Code)] = hs
	}

	c.logger.WithField("tickers", len(out)).Debug("Fetched Xueqiu hot list")
	return out, nil
}

// NormalizeCode strips a leading exchange prefix: "SH600519" → "600519"
func NormalizeCode(code string) string {
	return prefixPattern.ReplaceAllString(code, "")
}

// DeriveRatio maps a rank change onto a mentions ratio so that rising names
// score like growing Reddit chatter.
func DeriveRatio(increase float64) float64 {
	switch {
	case increase > 5:
		return 1.3
	case increase < -5:
		return 0.6
	}
	return 1.0
}

// Merge attaches hot-list data, looking up the raw ticker first and the
// normalized code second. Tweet count stands in for mentions.
func Merge(candidates []contracts.CandidateRecord, hot map[string]HotStock) []contracts.CandidateRecord {
	out := make([]contracts.CandidateRecord, 0, len(candidates))
	source := contracts.SentimentXueqiu

	for _, c := range candidates {
		rec := c.Clone()

		hs, ok := hot[c.Ticker]
		if !ok {
			hs, ok = hot[NormalizeCode(c.Ticker)]
		}
		if ok {
			mentions := hs.TweetCount
			prev := 0
			if mentions > 0 {
				prev = int(math.Round(float64(mentions) / DeriveRatio(hs.Increase)))
			}
			rec.SentimentRank = contracts.Int(hs.Rank)
			rec.SentimentMentions = contracts.Int(mentions)
			rec.SentimentMentionsPrev = contracts.Int(prev)
			rec.SentimentSource = &source
		}
		out = append(out, rec)
	}
	return out
}
