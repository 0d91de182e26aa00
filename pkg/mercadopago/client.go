package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

const autoReturnApproved = "approved"

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

// Item is one checkout line as shown on the gateway page.
type Item struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PreferenceInput describes a payment preference keyed by our order id.
type PreferenceInput struct {
	ExternalReference string
	Items             []Item
	SuccessURL        string
	PendingURL        string
	FailureURL        string
}

// Client creates checkout preferences and returns the buyer redirect URL.
type Client struct {
	prefs    preferenceCreator
	currency string
}

func NewClient(accessToken, currency string) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mercadopago access token is required")
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &Client{prefs: preference.NewClient(cfg), currency: currency}, nil
}

// CreatePreference registers the order with the gateway and returns its init point.
func (c *Client) CreatePreference(ctx context.Context, in PreferenceInput) (string, error) {
	if c == nil || c.prefs == nil {
		return "", errors.New("mercadopago client not initialized")
	}
	if in.ExternalReference == "" {
		return "", errors.New("external reference is required")
	}
	if len(in.Items) == 0 {
		return "", errors.New("at least one item is required")
	}

	items := make([]preference.ItemRequest, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, preference.ItemRequest{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: c.currency,
		})
	}

	resp, err := c.prefs.Create(ctx, preference.Request{
		Items: items,
		BackURLs: &preference.BackURLsRequest{
			Success: in.SuccessURL,
			Pending: in.PendingURL,
			Failure: in.FailureURL,
		},
		AutoReturn:        autoReturnApproved,
		ExternalReference: in.ExternalReference,
	})
	if err != nil {
		return "", fmt.Errorf("create preference: %w", err)
	}
	if resp == nil || resp.InitPoint == "" {
		return "", errors.New("gateway returned no init point")
	}
	return resp.InitPoint, nil
}
