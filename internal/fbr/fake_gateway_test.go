package fbr

import (
	"context"
	"testing"

	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeGateway_Flow(t *testing.T) {
	ctx := context.Background()
	gw := NewFakeGateway()

	_, err := gw.RequestToken(ctx, models.EnvironmentSandbox, TokenRequest{GrantType: GrantTypeClientCredentials})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	token, err := gw.RequestToken(ctx, models.EnvironmentSandbox, TokenRequest{
		ClientID: "id", ClientSecret: "secret", GrantType: GrantTypeClientCredentials,
	})
	require.NoError(t, err)

	_, err = gw.SubmitInvoice(ctx, models.EnvironmentSandbox, "bogus", samplePayload())
	assert.True(t, IsUnauthorized(err))

	first, err := gw.SubmitInvoice(ctx, models.EnvironmentSandbox, token.AccessToken, samplePayload())
	require.NoError(t, err)
	second, err := gw.SubmitInvoice(ctx, models.EnvironmentSandbox, token.AccessToken, samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "FBR-MOCK-1", first.InvoiceID)
	assert.Equal(t, "FBR-MOCK-2", second.InvoiceID)

	var statuses []string
	for i := 0; i < 4; i++ {
		resp, err := gw.InvoiceStatus(ctx, models.EnvironmentSandbox, token.AccessToken, first.InvoiceID)
		require.NoError(t, err)
		statuses = append(statuses, resp.Status)
	}
	assert.Equal(t, []string{"submitted", "processing", "accepted", "accepted"}, statuses)

	_, err = gw.InvoiceStatus(ctx, models.EnvironmentSandbox, token.AccessToken, "FBR-MOCK-99")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}
