// Package catalog talks to the remote pricing rule catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/httpclient"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/types"
)

// CalculateRequest is the wire payload of a remote price calculation
type CalculateRequest struct {
	DressID       string `json:"dress_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PricingRuleID string `json:"pricing_rule_id,omitempty"`
	CustomerType  string `json:"customer_type,omitempty"`
	Season        string `json:"season,omitempty"`
}

// ListRulesResponse is the wire payload of a rule listing
type ListRulesResponse struct {
	Items []*pricingrule.PricingRule `json:"items"`
}

// Client prices dresses and lists rules through the remote catalog service
type Client struct {
	baseURL string
	http    httpclient.Client
	logger  *logger.Logger
}

// NewClient creates a catalog client from configuration
func NewClient(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Catalog.BaseURL, "/"),
		http:    client,
		logger:  log,
	}
}

// CalculatePrice asks the catalog to select and evaluate a rule for req
func (c *Client) CalculatePrice(ctx context.Context, req calculation.Request) (*calculation.PriceCalculation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(CalculateRequest{
		DressID:       req.DressID,
		StartDate:     req.StartDate.Format(calculation.DateLayout),
		EndDate:       req.EndDate.Format(calculation.DateLayout),
		PricingRuleID: req.PricingRuleID,
		CustomerType:  req.CustomerType,
		Season:        req.Season,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Price calculation request could not be encoded").
			Mark(ierr.ErrSystem)
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/pricing-rules/calculate",
		Headers: c.headers(ctx),
		Body:    body,
	})
	if err != nil {
		c.logger.WithContext(ctx).Warnw("remote price calculation failed",
			"dress_id", req.DressID,
			"pricing_rule_id", req.PricingRuleID,
			"error", err,
		)
		return nil, mapError(err, req.PricingRuleID)
	}

	var calc calculation.PriceCalculation
	if err := json.Unmarshal(resp.Body, &calc); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Pricing catalog returned an unreadable price").
			Mark(ierr.ErrUpstreamUnavailable)
	}
	if calc.DressID == "" {
		calc.DressID = req.DressID
	}
	return &calc, nil
}

// Get fetches a single rule
func (c *Client) Get(ctx context.Context, id string) (*pricingrule.PricingRule, error) {
	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.baseURL + "/pricing-rules/" + url.PathEscape(id),
		Headers: c.headers(ctx),
	})
	if err != nil {
		return nil, mapError(err, id)
	}

	var rule pricingrule.PricingRule
	if err := json.Unmarshal(resp.Body, &rule); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Pricing catalog returned an unreadable rule %s", id).
			Mark(ierr.ErrUpstreamUnavailable)
	}
	return &rule, nil
}

// List fetches the rules matching filter
func (c *Client) List(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	endpoint := c.baseURL + "/pricing-rules"
	if q := query(filter); q != "" {
		endpoint += "?" + q
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     endpoint,
		Headers: c.headers(ctx),
	})
	if err != nil {
		return nil, mapError(err, "")
	}

	var list ListRulesResponse
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Pricing catalog returned an unreadable rule list").
			Mark(ierr.ErrUpstreamUnavailable)
	}
	return list.Items, nil
}

func (c *Client) headers(ctx context.Context) map[string]string {
	headers := map[string]string{}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		headers[types.HeaderRequestID] = requestID
	}
	return headers
}

func query(filter *types.PricingRuleFilter) string {
	if filter == nil {
		return ""
	}
	values := url.Values{}
	if filter.ActiveOnly {
		values.Set("active_only", strconv.FormatBool(true))
	}
	if filter.ServiceTypeID != "" {
		values.Set("service_type_id", filter.ServiceTypeID)
	}
	if filter.Strategy != nil {
		values.Set("strategy", filter.Strategy.String())
	}
	return values.Encode()
}

// mapError translates transport failures into the pricing taxonomy
func mapError(err error, ruleID string) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return ierr.WithError(err).
			WithHint("Pricing catalog is unreachable").
			Mark(ierr.ErrUpstreamUnavailable)
	}

	switch {
	case httpErr.StatusCode == http.StatusNotFound:
		return ierr.WithError(err).
			WithHintf("Pricing rule %s was not found", ruleID).
			WithReportableDetails(map[string]any{"pricing_rule_id": ruleID}).
			Mark(ierr.ErrRuleNotFound)
	case httpErr.StatusCode == http.StatusBadRequest || httpErr.StatusCode == http.StatusUnprocessableEntity:
		return ierr.WithError(err).
			WithHint(remoteMessage(httpErr.Response)).
			Mark(ierr.ErrValidation)
	default:
		return ierr.WithError(err).
			WithHintf("Pricing catalog answered with status %d", httpErr.StatusCode).
			Mark(ierr.ErrUpstreamUnavailable)
	}
}

// remoteMessage extracts the message of an error envelope, if any
func remoteMessage(body []byte) string {
	var envelope ierr.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Display != "" {
		return envelope.Error.Display
	}
	return fmt.Sprintf("Pricing catalog rejected the request: %s", strings.TrimSpace(string(body)))
}
