package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamBufferAppendAndAsBytes(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("hello"))
	assert.Equal(t, []byte("hello"), b.AsBytes())
	assert.Equal(t, 5, b.Len())
	assert.False(t, b.IsEmpty())
}

func TestStreamBufferConsumeAdvancesCursor(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("hello world"))
	b.Consume(6)
	assert.Equal(t, []byte("world"), b.AsBytes())
	assert.Equal(t, 6, b.Stats().TotalBytesProcessed)
}

func TestStreamBufferConsumeClampsToLength(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("hi"))
	b.Consume(100)
	assert.True(t, b.IsEmpty())
}

func TestStreamBufferFullyDrainedReclaimsWithoutHysteresis(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("hi"))
	b.Consume(2)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Stats().Size)
}

func TestStreamBufferGrowsPastInitialCapacity(t *testing.T) {
	b := NewStreamBuffer(4, 0, 4)
	b.Append([]byte("this is longer than four bytes"))
	assert.Equal(t, 30, b.Len())
	assert.True(t, b.Stats().GrowthOperations > 0)
}

func TestStreamBufferRespectsMaxCapacityHint(t *testing.T) {
	b := NewStreamBuffer(4, 16, 4)
	b.Append([]byte("0123456789abcdef"))
	assert.GreaterOrEqual(t, b.Stats().Capacity, 16)
}

func TestStreamBufferGetByteAtInRangeAndOutOfRange(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("ab"))
	c, ok := b.GetByteAt(0)
	require.True(t, ok)
	assert.Equal(t, byte('a'), c)

	_, ok = b.GetByteAt(5)
	assert.False(t, ok)
}

func TestStreamBufferFindObjectBoundariesIgnoresBracesInStrings(t *testing.T) {
	b := NewStreamBuffer(64, 0, 4)
	b.Append([]byte(`{"a":"{ not a brace }"}{"b":1}`))
	closes := b.FindObjectBoundaries()
	require.Len(t, closes, 2)
}

func TestStreamBufferFindObjectBoundariesHandlesEscapedQuotes(t *testing.T) {
	b := NewStreamBuffer(64, 0, 4)
	b.Append([]byte(`{"a":"she said \"hi\""}`))
	closes := b.FindObjectBoundaries()
	require.Len(t, closes, 1)
}

func TestStreamBufferShrinkAfterHysteresisAndLowOccupancy(t *testing.T) {
	b := NewStreamBuffer(4, 0, 1)
	// Force several growth operations so growthOperations >= hysteresisThreshold.
	b.Append([]byte("0123456789012345678901234567890123456789"))
	capacityBeforeConsume := b.Stats().Capacity
	// Consume almost everything, dropping occupancy below the 0.25 shrink threshold.
	b.Consume(b.Len() - 1)
	stats := b.Stats()
	assert.LessOrEqual(t, stats.Capacity, capacityBeforeConsume)
}

func TestStreamBufferStatsUtilizationRatio(t *testing.T) {
	b := NewStreamBuffer(8, 0, 4)
	b.Append([]byte("abcd"))
	stats := b.Stats()
	assert.InDelta(t, float64(4)/float64(8), stats.UtilizationRatio, 0.001)
}
