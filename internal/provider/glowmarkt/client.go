package glowmarkt

import (
	"bytes"
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

const defaultBaseURL = "https://api.glowmarkt.com/api/v0-1"

// Application ID published by Hildebrand for the Bright app.
const applicationID = "b0f2b774-a586-4f72-9edd-27ead8aa7a8d"

// Virtual entity grouping the smart-meter resources served over DCC.
const dccEntityName = "DCC Sourced"

// resourceIDs holds the per-stream resource identifiers discovered for the
// account. A nil entry means the metering setup does not expose that stream.
type resourceIDs struct {
	consumption map[models.Utility]string
	cost        map[models.Utility]string
}

// Client talks to the Glowmarkt API with a session token obtained at
// construction. Resource discovery also happens at construction so a Client
// that exists is ready to serve.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	resources  resourceIDs
	log        *logger.Logger
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

// New authenticates and discovers the account's DCC resources. It fails when
// the credentials are rejected or discovery cannot complete; individual
// streams being absent is not an error.
func New(ctx context.Context, username, password string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		log:        logger.Default().WithPrefix("glowmarkt"),
		resources: resourceIDs{
			consumption: make(map[models.Utility]string),
			cost:        make(map[models.Utility]string),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.authenticate(ctx, username, password); err != nil {
		return nil, err
	}
	if err := c.discoverResources(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Name() string {
	return "glowmarkt"
}

func (c *Client) Window() provider.WindowPolicy {
	return provider.CalendarMonthWindow()
}

// TestConnection verifies the session token is still accepted by listing
// the account's resources.
func (c *Client) TestConnection(ctx context.Context) error {
	var resources []resourceResp
	return c.get(ctx, "/resource", nil, &resources)
}

type authResp struct {
	Valid bool   `json:"valid"`
	Token string `json:"token"`
}

func (c *Client) authenticate(ctx context.Context, username, password string) error {
	log := logger.FromContext(ctx).WithPrefix("glowmarkt")
	log.Debug("authenticating as %s", username)

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("applicationId", applicationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("auth request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("auth rejected: status=%d, body=%s", resp.StatusCode, string(respBody))
		return fmt.Errorf("glowmarkt auth status %d", resp.StatusCode)
	}

	var out authResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode auth response: %v", err)
		return &provider.MalformedResponseError{Provider: c.Name(), Err: err}
	}
	if !out.Valid || out.Token == "" {
		return fmt.Errorf("glowmarkt auth rejected for %s", username)
	}

	c.token = out.Token
	log.Info("authenticated against glowmarkt")
	return nil
}

type resourceResp struct {
	ResourceID string `json:"resourceId"`
	Name       string `json:"name"`
}

type virtualEntityResp struct {
	Name      string `json:"name"`
	Resources []struct {
		ResourceID string `json:"resourceId"`
	} `json:"resources"`
}

func (c *Client) discoverResources(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("glowmarkt")
	log.Debug("discovering DCC resources")

	var resources []resourceResp
	if err := c.get(ctx, "/resource", nil, &resources); err != nil {
		return err
	}

	var entities []virtualEntityResp
	if err := c.get(ctx, "/virtualentity", nil, &entities); err != nil {
		return err
	}

	byID := make(map[string]resourceResp, len(resources))
	for _, r := range resources {
		byID[r.ResourceID] = r
	}

	for _, entity := range entities {
		if entity.Name != dccEntityName {
			continue
		}
		for _, ref := range entity.Resources {
			r, ok := byID[ref.ResourceID]
			if !ok {
				continue
			}
			switch r.Name {
			case "electricity consumption":
				c.resources.consumption[models.UtilityElectricity] = r.ResourceID
			case "electricity cost":
				c.resources.cost[models.UtilityElectricity] = r.ResourceID
			case "gas consumption":
				c.resources.consumption[models.UtilityGas] = r.ResourceID
			case "gas cost":
				c.resources.cost[models.UtilityGas] = r.ResourceID
			}
		}
		break
	}

	log.Info("discovered %d consumption and %d cost resources", len(c.resources.consumption), len(c.resources.cost))
	return nil
}

func (c *Client) HasConsumption(ctx context.Context, utility models.Utility) bool {
	_, ok := c.resources.consumption[utility]
	return ok
}

func (c *Client) HasTariffHistory(ctx context.Context, utility models.Utility) bool {
	_, ok := c.resources.cost[utility]
	return ok
}

type readingsResp struct {
	Data [][2]*float64 `json:"data"`
}

func (c *Client) Consumption(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("glowmarkt").WithField("utility", utility)

	resourceID, ok := c.resources.consumption[utility]
	if !ok {
		return nil, &provider.MissingResourceError{Resource: string(utility) + " consumption"}
	}

	log.Debug("fetching readings: start=%s, end=%s", start.Format(time.DateOnly), end.Format(time.DateOnly))

	params := url.Values{}
	params.Set("from", start.UTC().Format("2006-01-02T15:04:05"))
	params.Set("to", end.UTC().Format("2006-01-02T15:04:05"))
	params.Set("period", "PT30M")
	params.Set("function", "sum")

	var out readingsResp
	if err := c.get(ctx, "/resource/"+resourceID+"/readings", params, &out); err != nil {
		return nil, err
	}

	records := make([]models.ConsumptionRecord, 0, len(out.Data))
	for _, row := range out.Data {
		// Rows with a null value are intervals the meter has not reported yet.
		if row[0] == nil || row[1] == nil {
			continue
		}
		records = append(records, models.ConsumptionRecord{
			Timestamp: time.Unix(int64(*row[0]), 0).UTC(),
			Value:     *row[1],
		})
	}

	log.Info("fetched %d %s readings", len(records), utility)
	return records, nil
}

type tariffEntry struct {
	ID            string          `json:"id"`
	From          string          `json:"from"`
	EffectiveDate string          `json:"effectiveDate"`
	DisplayName   string          `json:"displayName"`
	Structure     json.RawMessage `json:"structure"`
}

type tariffResp struct {
	Data []tariffEntry `json:"data"`
}

// TariffHistory returns the account's full plan history. The range arguments
// are ignored: the tariff endpoint is not pageable, and re-ingesting the same
// plans is absorbed by upserts.
func (c *Client) TariffHistory(ctx context.Context, utility models.Utility, _, _ time.Time) (*models.TariffData, error) {
	log := logger.FromContext(ctx).WithPrefix("glowmarkt").WithField("utility", utility)

	resourceID, ok := c.resources.cost[utility]
	if !ok {
		return nil, &provider.MissingResourceError{Resource: string(utility) + " cost"}
	}

	log.Debug("fetching tariff plans")

	var out tariffResp
	if err := c.get(ctx, "/resource/"+resourceID+"/tariff", nil, &out); err != nil {
		return nil, err
	}

	data := &models.TariffData{}
	for _, entry := range out.Data {
		plan, err := c.toPlan(entry)
		if err != nil {
			log.Error("unusable tariff plan %s: %v", entry.ID, err)
			return nil, &provider.MalformedResponseError{Provider: c.Name(), Err: err}
		}
		data.Plans = append(data.Plans, plan)

		charge, price, ok := extractRates(entry.Structure)
		if !ok {
			log.Warn("plan %s carries no standing/rate detail, skipping rate extraction", entry.ID)
			continue
		}
		data.StandingCharges = append(data.StandingCharges, models.StandingCharge{
			StartDate: plan.EffectiveDate,
			Pence:     charge,
		})
		data.UnitPrices = append(data.UnitPrices, models.UnitPrice{
			EffectiveTime: plan.EffectiveDate,
			Pence:         price,
		})
	}

	log.Info("fetched %d tariff plans for %s", len(data.Plans), utility)
	return data, nil
}

func (c *Client) toPlan(entry tariffEntry) (models.TariffPlan, error) {
	effective := entry.EffectiveDate
	if effective == "" {
		effective = entry.From
	}
	// Plans missing any date sort before all real history.
	date := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	if effective != "" {
		parsed, err := time.ParseInLocation("2006-01-02T15:04:05", effective, time.UTC)
		if err != nil {
			return models.TariffPlan{}, err
		}
		date = parsed
	}

	displayName := entry.DisplayName
	if displayName == "" {
		displayName = "<unknown>"
	}

	return models.TariffPlan{
		TariffID:      entry.ID,
		Plan:          string(entry.Structure),
		EffectiveDate: date,
		DisplayName:   displayName,
	}, nil
}

// extractRates pulls the daily standing charge and single-tier unit rate out
// of a plan structure. Multi-rate plans without a flat rate yield ok=false.
func extractRates(structure json.RawMessage) (standing, rate float64, ok bool) {
	var tiers []struct {
		PlanDetail []struct {
			Standing *float64 `json:"standing"`
			Rate     *float64 `json:"rate"`
		} `json:"planDetail"`
	}
	if err := json.Unmarshal(structure, &tiers); err != nil {
		return 0, 0, false
	}

	var haveStanding, haveRate bool
	for _, tier := range tiers {
		for _, detail := range tier.PlanDetail {
			if detail.Standing != nil && !haveStanding {
				standing = *detail.Standing
				haveStanding = true
			}
			if detail.Rate != nil && !haveRate {
				rate = *detail.Rate
				haveRate = true
			}
		}
	}
	return standing, rate, haveStanding && haveRate
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	log := logger.FromContext(ctx).WithPrefix("glowmarkt")

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
	req.Header.Set("applicationId", applicationID)
	req.Header.Set("token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response for %s received in %v, status=%d", path, time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return fmt.Errorf("glowmarkt status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return &provider.MalformedResponseError{Provider: c.Name(), Err: err}
	}
	return nil
}
