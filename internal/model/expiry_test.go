package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Totarae/batchshortener/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiry_Never(t *testing.T) {
	e := model.Never()

	assert.False(t, e.IsSet())
	assert.False(t, e.Expired(time.Now().Add(1000*time.Hour)))
	assert.Equal(t, "N/A", e.String())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestExpiry_At(t *testing.T) {
	at := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	e := model.At(at)

	got, ok := e.Time()
	require.True(t, ok)
	assert.Equal(t, at, got)
	assert.Equal(t, "2030-05-06T07:08:09Z", e.String())
	assert.False(t, e.Expired(at.Add(-time.Second)))
	assert.True(t, e.Expired(at))
}

func TestRecord_JSON(t *testing.T) {
	rec := model.ShortenedRecord{
		OriginalURL:  "http://a.com",
		Shortcode:    "go",
		ShortenedURL: "https://short.url/go",
		Expiry:       model.At(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"original_url": "http://a.com",
		"shortcode": "go",
		"shortened_url": "https://short.url/go",
		"expiry_timestamp": "2030-01-01T00:00:00Z"
	}`, string(data))

	var decoded model.ShortenedRecord
	require.NoError(t, json.Unmarshal([]byte(`{"shortcode":"x","expiry_timestamp":null}`), &decoded))
	assert.False(t, decoded.Expiry.IsSet())

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Expiry.IsSet())
}

func TestShortenRequest_Accessors(t *testing.T) {
	r := model.ShortenRequest{ValidityMinutes: " 7 "}

	assert.True(t, r.IsEmpty())
	_, ok := r.Preferred()
	assert.False(t, ok)
	assert.Equal(t, "7", r.Validity())

	r.PreferredShortcode = "abc"
	code, ok := r.Preferred()
	assert.True(t, ok)
	assert.Equal(t, "abc", code)
}
