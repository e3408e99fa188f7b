package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthetic_StrictPrefixMatch(t *testing.T) {
	b := NewSynthetic([]string{
		"good morning!",
		"good night",
		"morning standup notes",
	}, 0, 0)

	out, err := b.Lookup(context.Background(), "good")
	require.NoError(t, err)
	require.Len(t, out, 2, "substring-only matches are excluded")
	for _, s := range out {
		assert.Equal(t, SourceCanned, s.Source)
	}
}

func TestSynthetic_RanksLongerCoverageFirst(t *testing.T) {
	b := NewSynthetic([]string{
		"thanks a lot!",
		"thanks so much for the detailed writeup",
	}, 0, 0)

	out, err := b.Lookup(context.Background(), "thanks")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "thanks a lot!", out[0].Text, "shorter phrase is closer to complete")
}

func TestSynthetic_EmptyQueryYieldsNothing(t *testing.T) {
	b := NewSynthetic(DefaultPhrases(), 0, 0)

	out, err := b.Lookup(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSynthetic_CaseInsensitivePrefix(t *testing.T) {
	b := NewSynthetic([]string{"How are you doing today?"}, 0, 0)

	out, err := b.Lookup(context.Background(), "how ARE")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestSynthetic_CancelledDuringLatency(t *testing.T) {
	b := NewSynthetic(DefaultPhrases(), time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Lookup(ctx, "good")
	assert.ErrorIs(t, err, context.Canceled)
}
