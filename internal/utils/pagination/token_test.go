package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	rowID := "9f2c1e60-1111-2222-3333-444455556666"

	token := EncodeToken(createdAt, rowID)
	gotTime, gotID, err := DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime), "decoded time should match encoded time")
	assert.Equal(t, rowID, gotID)
}

func TestDecodeTokenInvalidBase64(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err)
}

func TestDecodeTokenMissingSeparator(t *testing.T) {
	// Valid base64, but the payload has no separator.
	_, _, err := DecodeToken("aGVsbG8=")
	assert.Error(t, err)
}
