package utils

import (
	"net/url"
	"testing"

	"blink-builder-sol/internal/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFields(t *testing.T) {
	data, err := EncodeFields(3, map[string]interface{}{
		"kind":     "donate",
		"lamports": "50000000",
	})
	require.NoError(t, err)

	eventType, fields, err := DecodeFields(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), eventType)
	assert.Equal(t, "donate", fields["kind"])
	assert.Equal(t, "50000000", fields["lamports"])

	// 确定性编码
	again, err := EncodeFields(3, map[string]interface{}{"lamports": "50000000", "kind": "donate"})
	require.NoError(t, err)
	assert.Equal(t, data, again)

	_, _, err = DecodeFields([]byte{1, 2})
	assert.Error(t, err)
}

func TestPayerPartition(t *testing.T) {
	p := PayerPartition(consts.JUPMint, 8)
	assert.GreaterOrEqual(t, p, int32(0))
	assert.Less(t, p, int32(8))
	assert.Equal(t, p, PayerPartition(consts.JUPMint, 8))
	assert.Equal(t, int32(0), PayerPartition(consts.JUPMint, 1))
	assert.Equal(t, int32(0), PayerPartition(consts.JUPMint, 0))
}

func TestBlinkURLs(t *testing.T) {
	q := url.Values{}
	q.Set("mint", "abc")
	action := ActionURL("https://blinks.example/", "/api/actions/nft", q)
	assert.Equal(t, "https://blinks.example/api/actions/nft?mint=abc", action)
	assert.Equal(t, "https://blinks.example/api/actions/donate", ActionURL("https://blinks.example", "api/actions/donate", nil))

	dial := DialBlinkURL(action)
	u, err := url.Parse(dial)
	require.NoError(t, err)
	assert.Equal(t, "dial.to", u.Host)
	assert.Equal(t, "solana-action:"+action, u.Query().Get("action"))
}
