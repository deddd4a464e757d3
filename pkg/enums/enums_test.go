package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscriptionStatus(t *testing.T) {
	status, err := ParseSubscriptionStatus("CANCELED")
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatusCanceled, status)

	_, err = ParseSubscriptionStatus("canceled")
	assert.Error(t, err)
	assert.False(t, SubscriptionStatus("TRIALING").IsValid())
}

func TestInvitationStatusTerminal(t *testing.T) {
	assert.True(t, InvitationStatusRedeemed.IsTerminal())
	assert.True(t, InvitationStatusExpired.IsTerminal())
	assert.False(t, InvitationStatusPending.IsTerminal())

	_, err := ParseInvitationStatus("USED")
	assert.Error(t, err)
}

func TestParseQualityNameIsCaseInsensitive(t *testing.T) {
	q, err := ParseQualityName(" uhd ")
	require.NoError(t, err)
	assert.Equal(t, QualityUHD, q)
	assert.Greater(t, QualityUHD.Rank(), QualityHD.Rank())
	assert.Greater(t, QualityHD.Rank(), QualitySD.Rank())
	assert.Zero(t, QualityName("4K").Rank())

	_, err = ParseQualityName("4K")
	assert.Error(t, err)
}

func TestParseTitleType(t *testing.T) {
	tt, err := ParseTitleType("SERIES")
	require.NoError(t, err)
	assert.Equal(t, TitleTypeSeries, tt)
	assert.False(t, TitleType("SHORT").IsValid())
}

func TestSubscriptionStatusIsOpen(t *testing.T) {
	assert.True(t, SubscriptionStatusActive.IsOpen())
	assert.True(t, SubscriptionStatusPastDue.IsOpen())
	assert.False(t, SubscriptionStatusCanceled.IsOpen())
	assert.False(t, SubscriptionStatus("").IsOpen())
	assert.Equal(t,
		[]SubscriptionStatus{SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusExpired},
		OpenSubscriptionStatuses(),
	)
}

func TestCurrencyFormatMinor(t *testing.T) {
	c, err := ParseCurrency(" eur ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyEUR, c)
	assert.Equal(t, "7.99", c.FormatMinor(799))
	assert.Equal(t, "15.00", c.FormatMinor(1500))
	assert.Equal(t, "0.05", c.FormatMinor(5))

	_, err = ParseCurrency("BTC")
	assert.Error(t, err)
}

func TestTitleTypeHasSeasons(t *testing.T) {
	assert.True(t, TitleTypeSeries.HasSeasons())
	assert.False(t, TitleTypeMovie.HasSeasons())
}
