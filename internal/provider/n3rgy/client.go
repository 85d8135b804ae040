package n3rgy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/provider"
)

const defaultBaseURL = "https://consumer-api.data.n3rgy.com"

// The consumer API rejects ranges longer than ten days, so history is paged
// in seven-day spans.
const windowDays = 7

// Client talks to the n3rgy consumer API using the MPxN-holder's API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	windowDays int
	log        *logger.Logger
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		windowDays: windowDays,
		log:        logger.Default().WithPrefix("n3rgy"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithWindowDays overrides the request window length. Values outside the
// API's 1..10 day limit are ignored.
func WithWindowDays(days int) Option {
	return func(c *Client) {
		if days >= 1 && days <= 10 {
			c.windowDays = days
		}
	}
}

func (c *Client) Name() string {
	return "n3rgy"
}

func (c *Client) Window() provider.WindowPolicy {
	return provider.FixedDayWindow(c.windowDays)
}

type entriesResp struct {
	Entries []string `json:"entries"`
}

// TestConnection verifies the API key by listing the meter point's entries.
func (c *Client) TestConnection(ctx context.Context) error {
	var out entriesResp
	return c.get(ctx, "/", nil, &out)
}

// HasConsumption probes the API root for the utility on every call. The set
// of entries can change when consent is granted or revoked, so nothing is
// cached.
func (c *Client) HasConsumption(ctx context.Context, utility models.Utility) bool {
	return c.hasEntry(ctx, utility)
}

func (c *Client) HasTariffHistory(ctx context.Context, utility models.Utility) bool {
	return c.hasEntry(ctx, utility)
}

func (c *Client) hasEntry(ctx context.Context, utility models.Utility) bool {
	log := logger.FromContext(ctx).WithPrefix("n3rgy")

	var out entriesResp
	if err := c.get(ctx, "/", nil, &out); err != nil {
		log.Warn("entry probe failed: %v", err)
		return false
	}
	for _, e := range out.Entries {
		if e == string(utility) {
			return true
		}
	}
	log.Debug("no %s entry for this meter point", utility)
	return false
}

type consumptionResp struct {
	Values []struct {
		Timestamp string  `json:"timestamp"`
		Value     float64 `json:"value"`
	} `json:"values"`
	Unit string `json:"unit"`
}

func (c *Client) Consumption(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("n3rgy").WithField("utility", utility)
	log.Debug("fetching consumption: start=%s, end=%s", start.Format(time.DateOnly), end.Format(time.DateOnly))

	params := url.Values{}
	params.Set("start", start.Format("200601021504"))
	params.Set("end", end.Format("200601021504"))

	var out consumptionResp
	if err := c.get(ctx, fmt.Sprintf("/%s/consumption/1", utility), params, &out); err != nil {
		return nil, err
	}

	records := make([]models.ConsumptionRecord, 0, len(out.Values))
	for _, v := range out.Values {
		ts, err := time.ParseInLocation("2006-01-02 15:04", v.Timestamp, time.UTC)
		if err != nil {
			log.Error("unparseable reading timestamp %q: %v", v.Timestamp, err)
			return nil, &provider.MalformedResponseError{Provider: c.Name(), Err: err}
		}
		records = append(records, models.ConsumptionRecord{Timestamp: ts, Value: v.Value})
	}

	log.Info("fetched %d %s readings", len(records), utility)
	return records, nil
}

type tariffResp struct {
	Values []struct {
		StandingCharges []struct {
			StartDate string  `json:"startDate"`
			Value     float64 `json:"value"`
		} `json:"standingCharges"`
		Prices []struct {
			Timestamp string  `json:"timestamp"`
			Value     float64 `json:"value"`
		} `json:"prices"`
	} `json:"values"`
}

func (c *Client) TariffHistory(ctx context.Context, utility models.Utility, start, end time.Time) (*models.TariffData, error) {
	log := logger.FromContext(ctx).WithPrefix("n3rgy").WithField("utility", utility)
	log.Debug("fetching tariff: start=%s, end=%s", start.Format(time.DateOnly), end.Format(time.DateOnly))

	params := url.Values{}
	params.Set("start", start.Format("200601021504"))
	params.Set("end", end.Format("200601021504"))

	var out tariffResp
	if err := c.get(ctx, fmt.Sprintf("/%s/tariff/1", utility), params, &out); err != nil {
		return nil, err
	}

	data := &models.TariffData{}
	for _, v := range out.Values {
		for _, sc := range v.StandingCharges {
			date, err := parseTariffTime(sc.StartDate)
			if err != nil {
				log.Error("unparseable standing charge date %q: %v", sc.StartDate, err)
				return nil, &provider.MalformedResponseError{Provider: c.Name(), Err: err}
			}
			data.StandingCharges = append(data.StandingCharges, models.StandingCharge{StartDate: date, Pence: sc.Value})
		}
		for _, p := range v.Prices {
			ts, err := parseTariffTime(p.Timestamp)
			if err != nil {
				log.Error("unparseable price timestamp %q: %v", p.Timestamp, err)
				return nil, &provider.MalformedResponseError{Provider: c.Name(), Err: err}
			}
			data.UnitPrices = append(data.UnitPrices, models.UnitPrice{EffectiveTime: ts, Pence: p.Value})
		}
	}

	log.Info("fetched %d standing charges, %d unit prices for %s", len(data.StandingCharges), len(data.UnitPrices), utility)
	return data, nil
}

func parseTariffTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	log := logger.FromContext(ctx).WithPrefix("n3rgy")

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response for %s received in %v, status=%d", path, time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return &provider.MissingResourceError{Resource: path}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return fmt.Errorf("n3rgy status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return &provider.MalformedResponseError{Provider: c.Name(), Err: err}
	}
	return nil
}
