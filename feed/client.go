package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stockwatch/indicator"
	"stockwatch/model"
	"stockwatch/utils/log"
	"stockwatch/utils/resty"
)

var (
	ErrNotFound   = errors.New("instrument not found")
	ErrSuperseded = errors.New("request superseded by a newer one")
	ErrDecode     = errors.New("supplier response could not be decoded")
	ErrSupplier   = errors.New("supplier request failed")
)

// Quote : a daily series together with the instrument it belongs to
type Quote struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Bars []model.Bar `json:"bars"`
}

// Supplier : source of daily series and instrument metadata
type Supplier interface {
	Series(ctx context.Context, code string) (Quote, error)
	Instrument(ctx context.Context, code string) (model.Instrument, error)
}

// Client : HTTP/JSON client of the data backend
type Client struct {
	rest     resty.RestyClient
	baseURL  string
	backfill bool
}

type ClientOption func(*Client)

// WithBackfill : compute CCI/KDJ locally when the supplier sent none
func WithBackfill(enabled bool) ClientOption {
	return func(c *Client) { c.backfill = enabled }
}

func NewClient(rest resty.RestyClient, baseURL string, opts ...ClientOption) *Client {
	c := &Client{rest: rest, baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Series : GET /stocks/{code}/integrated-data, bars come back ascending by date
func (c *Client) Series(ctx context.Context, code string) (Quote, error) {
	code = model.NormalizeCode(code)
	var body seriesResponse
	if err := c.get(ctx, fmt.Sprintf("/stocks/%s/integrated-data", code), &body,
		resty.QueryParam{Key: "fields", Value: strings.Join(seriesFields, ",")},
	); err != nil {
		return Quote{}, err
	}

	quote, err := body.toQuote(code)
	if err != nil {
		return Quote{}, err
	}
	if c.backfill && !indicator.HasIndicators(quote.Bars) {
		log.Debugf("feed: backfilling indicators for %s (%d bars)", code, len(quote.Bars))
		quote.Bars = indicator.Backfill(quote.Bars)
	}
	return quote, nil
}

// Instrument : GET /stocks/{code}/detailed-info, with or without the data envelope
func (c *Client) Instrument(ctx context.Context, code string) (model.Instrument, error) {
	code = model.NormalizeCode(code)
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/stocks/%s/detailed-info", code), &raw); err != nil {
		return model.Instrument{}, err
	}

	var envelope detailResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return model.Instrument{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if envelope.Data != nil {
		return envelope.Data.toInstrument(code), nil
	}
	var bare detailDTO
	if err := json.Unmarshal(raw, &bare); err != nil {
		return model.Instrument{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return bare.toInstrument(code), nil
}

func (c *Client) get(ctx context.Context, path string, out any, params ...resty.QueryParam) error {
	resp, err := c.rest.MakeRequest(ctx, nil).Get(c.baseURL+path, params...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: GET %s: %v", ErrSupplier, path, err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: GET %s: status %d", ErrSupplier, path, status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
