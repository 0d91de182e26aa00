package mercadopago

import (
	"context"
	"errors"
	"testing"

	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrefs struct {
	got  preference.Request
	resp *preference.Response
	err  error
}

func (s *stubPrefs) Create(_ context.Context, req preference.Request) (*preference.Response, error) {
	s.got = req
	return s.resp, s.err
}

func TestCreatePreferenceMapsItemsAndBackURLs(t *testing.T) {
	stub := &stubPrefs{resp: &preference.Response{InitPoint: "https://mp.example/init/abc"}}
	client := &Client{prefs: stub, currency: "MXN"}

	url, err := client.CreatePreference(context.Background(), PreferenceInput{
		ExternalReference: "41",
		Items: []Item{
			{Title: "Biblia de estudio", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		SuccessURL: "https://api.example/verificar-pago",
		PendingURL: "https://api.example/verificar-pago",
		FailureURL: "https://api.example/verificar-pago",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://mp.example/init/abc", url)

	assert.Equal(t, "41", stub.got.ExternalReference)
	assert.Equal(t, "approved", stub.got.AutoReturn)
	require.NotNil(t, stub.got.BackURLs)
	assert.Equal(t, "https://api.example/verificar-pago", stub.got.BackURLs.Success)
	require.Len(t, stub.got.Items, 1)
	assert.Equal(t, "MXN", stub.got.Items[0].CurrencyID)
	assert.Equal(t, 2, stub.got.Items[0].Quantity)
	assert.InDelta(t, 10.0, stub.got.Items[0].UnitPrice, 0.0001)
}

func TestCreatePreferenceErrors(t *testing.T) {
	client := &Client{prefs: &stubPrefs{err: errors.New("401 unauthorized")}, currency: "MXN"}
	in := PreferenceInput{ExternalReference: "1", Items: []Item{{Title: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}}

	_, err := client.CreatePreference(context.Background(), in)
	require.ErrorContains(t, err, "401")

	client.prefs = &stubPrefs{resp: &preference.Response{}}
	_, err = client.CreatePreference(context.Background(), in)
	require.Error(t, err)

	_, err = client.CreatePreference(context.Background(), PreferenceInput{ExternalReference: "1"})
	require.Error(t, err)

	_, err = NewClient(" ", "MXN")
	require.Error(t, err)
}
