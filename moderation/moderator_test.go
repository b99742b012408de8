package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot", "moron"}, '*')
	req.NoError(err)

	// When the text contains blacklisted words
	censored := moderator.Censor("you idiot, listen")

	// Then only those words are masked and the length is preserved
	req.Equal("you *****, listen", censored)
	req.Len(censored, len("you idiot, listen"))
}

func TestModerator_Censor_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	req.Equal("you *****", moderator.Censor("you IdIoT"))
}

func TestModerator_Censor_Clean_Text(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	req.Equal("hello there", moderator.Censor("hello there"))
}

func TestModerator_Censor_Multiple_Matches(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"idiot", "moron"}, '*')
	req.NoError(err)

	req.Equal("***** and *****", moderator.Censor("idiot and moron"))
}

func TestDefaultWords(t *testing.T) {
	req := require.New(t)

	words, err := DefaultWords()
	req.NoError(err)
	req.NotEmpty(words)
	req.Contains(words, "idiot")
	req.NotContains(words, "")
}
