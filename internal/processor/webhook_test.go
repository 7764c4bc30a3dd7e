package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const secret = "whsec_abc123"

var payload = []byte(`{"id":"evt_1","type":"customer.subscription.updated","created":1767225600,"data":{"object":{"id":"sub_1","status":"active"}}}`)

func TestVerifyAndParseRoundTrip(t *testing.T) {
	sig := SignPayload(payload, secret, time.Now().Unix())

	event, err := VerifyAndParse(payload, sig, secret)
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, "customer.subscription.updated", event.Type)
	require.NotEmpty(t, event.Data.Raw)
}

func TestVerifyAndParseWrongSecret(t *testing.T) {
	sig := SignPayload(payload, "whsec_other", time.Now().Unix())

	_, err := VerifyAndParse(payload, sig, secret)
	var verification *VerificationError
	require.ErrorAs(t, err, &verification)
}

func TestVerifyAndParseTamperedPayload(t *testing.T) {
	sig := SignPayload(payload, secret, time.Now().Unix())

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = 'x'

	_, err := VerifyAndParse(tampered, sig, secret)
	require.Error(t, err)
}

func TestVerifyAndParseMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "t=123", "v1=deadbeef", "garbage"} {
		_, err := VerifyAndParse(payload, header, secret)
		require.Error(t, err, "header %q", header)
	}
}

func TestVerifyAndParseEmptySecretFailsClosed(t *testing.T) {
	sig := SignPayload(payload, "", time.Now().Unix())
	_, err := VerifyAndParse(payload, sig, "")
	require.Error(t, err)
}
