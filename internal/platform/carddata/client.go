package carddata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the external card-data API that feeds the catalog sync.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(baseURL, userAgent string, rps int, maxRetries int) *Client {
	if rps < 1 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// Card matches one object in the API's card search results.
type Card struct {
	ID              string            `json:"id"`
	OracleID        string            `json:"oracle_id"`
	Name            string            `json:"name"`
	ManaCost        string            `json:"mana_cost"`
	CMC             float64           `json:"cmc"`
	TypeLine        string            `json:"type_line"`
	OracleText      string            `json:"oracle_text"`
	Power           *string           `json:"power,omitempty"`
	Toughness       *string           `json:"toughness,omitempty"`
	Colors          []string          `json:"colors"`
	ColorIdentity   []string          `json:"color_identity"`
	Keywords        []string          `json:"keywords"`
	Legalities      map[string]string `json:"legalities"`
	Reserved        bool              `json:"reserved"`
	Set             string            `json:"set"`
	SetName         string            `json:"set_name"`
	CollectorNumber string            `json:"collector_number"`
	Rarity          string            `json:"rarity"`
	ReleasedAt      string            `json:"released_at"`
	ImageURIs       map[string]string `json:"image_uris"`
	CardFaces       []CardFace        `json:"card_faces,omitempty"`
	Frame        string             `json:"frame"`
	FrameEffects []string           `json:"frame_effects"`
	BorderColor  string             `json:"border_color"`
	PromoTypes   []string           `json:"promo_types"`
	Finishes     []string           `json:"finishes"`
	Oversized    bool               `json:"oversized"`
	FullArt      bool               `json:"full_art"`
	Textless     bool               `json:"textless"`
	Promo        bool               `json:"promo"`
	Artist       string             `json:"artist"`
	Prices       map[string]*string `json:"prices"`
}

// CardFace matches one face of a multi-faced card.
type CardFace struct {
	ImageURIs map[string]string `json:"image_uris"`
}

// CardList matches the paged search response.
type CardList struct {
	Data       []Card `json:"data"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page"`
	TotalCards int    `json:"total_cards"`
}

// SearchCards fetches one page of cards for a search query.
func (c *Client) SearchCards(ctx context.Context, query string, page int) (*CardList, error) {
	u := fmt.Sprintf("%s/cards/search?q=%s&page=%d", c.baseURL, url.QueryEscape(query), page)

	var res CardList
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
