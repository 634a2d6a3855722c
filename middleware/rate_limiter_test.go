package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	// Negligible refill rate so the burst is all we get
	tb := NewTokenBucket(0.0001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d within burst", i+1)
	}
	assert.False(t, tb.Allow(), "burst exhausted")
}

func TestTokenBucketCapsAtCapacity(t *testing.T) {
	tb := NewTokenBucket(1000, 2)
	tb.tokens = 0
	tb.lastRefill = time.Now().Add(-time.Hour)

	// However long the bucket idles, the refill never exceeds capacity
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}
