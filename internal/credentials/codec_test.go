package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	secrets := []string{
		"user@netflix.com | Pass: H3lloWorld",
		"",
		"akun bersama: pwd#123",
	}
	for _, secret := range secrets {
		encoded := Encode(secret)
		require.True(t, len(encoded) >= len("enc_"))
		require.Equal(t, "enc_", encoded[:4])
		require.Equal(t, secret, Decode(encoded))
	}
}

func TestDecodeTolerantOfBadInput(t *testing.T) {
	// Values that never went through Encode come back unchanged.
	require.Equal(t, "not base64 !!", Decode("not base64 !!"))
	require.Equal(t, "enc_%%%", Decode("enc_%%%"))
}
