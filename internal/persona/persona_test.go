package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPersona(t *testing.T) {
	p, err := Get("sherlock")
	require.NoError(t, err)
	assert.Equal(t, "Sherlock Holmes", p.Name)
	assert.NotEmpty(t, p.SystemPrompt)
	assert.NotEmpty(t, p.CannedLines)
}

func TestGetIsCaseAndSpaceInsensitive(t *testing.T) {
	p, err := Get("  Einstein ")
	require.NoError(t, err)
	assert.Equal(t, "einstein", p.ID)
}

func TestGetUnknownPersona(t *testing.T) {
	_, err := Get("elvis")
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestListIsSortedAndComplete(t *testing.T) {
	all := List()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestReplyIsDeterministic(t *testing.T) {
	p, err := Get("cleopatra")
	require.NoError(t, err)

	a := p.Reply("what should I do about rome?")
	b := p.Reply("what should I do about rome?")
	assert.Equal(t, a, b)
	assert.Contains(t, p.CannedLines, a)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(""))
	assert.True(t, Valid("shakespeare"))
	assert.False(t, Valid("nobody"))
}
