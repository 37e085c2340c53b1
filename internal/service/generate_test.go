package service

import (
	"testing"
	"time"

	"github.com/Totarae/batchshortener/internal/model"
	"github.com/Totarae/batchshortener/internal/shortcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortenBatch_AllGeneratorsFail(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewShortener(DefaultBaseURL, DefaultBatchSize,
		WithGenerator(shortcode.NewSequence()),
		WithClock(func() time.Time { return now }),
	)
	s.fallback = shortcode.NewSequence()

	records := s.ShortenBatch([]model.ShortenRequest{
		{OriginalURL: "http://a.com"},
		{OriginalURL: "http://b.com"},
	})

	require.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, shortcode.Valid(r.Shortcode, shortcode.DefaultLength), r.Shortcode)
		assert.Equal(t, DefaultBaseURL+r.Shortcode, r.ShortenedURL)
	}
	assert.NotEqual(t, records[0].Shortcode, records[1].Shortcode)
}

func TestShortenBatch_EmptyGeneratedCodeIsReplaced(t *testing.T) {
	s := NewShortener(DefaultBaseURL, DefaultBatchSize, WithGenerator(shortcode.NewSequence("")))

	records := s.ShortenBatch([]model.ShortenRequest{{OriginalURL: "http://a.com"}})

	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Shortcode)
}
