package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardOnly(t *testing.T) {
	allowed := map[[2]State]bool{
		{StateNew, StateRejected}:            true,
		{StateNew, StateApproved}:            true,
		{StateRejected, StateRejectedMailed}: true,
		{StateApproved, StateApprovedMailed}: true,
	}
	for _, from := range States {
		for _, to := range States {
			assert.Equal(t, allowed[[2]State{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseState(t *testing.T) {
	s, ok := ParseState("")
	assert.True(t, ok)
	assert.Equal(t, StateNew, s)

	s, ok = ParseState("approved-and-emailed")
	assert.True(t, ok)
	assert.Equal(t, StateApprovedMailed, s)

	_, ok = ParseState("pending")
	assert.False(t, ok)
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateRejectedMailed.Terminal())
	assert.True(t, StateApprovedMailed.Terminal())
	assert.False(t, StateNew.Terminal())
	assert.False(t, StateApproved.Terminal())
}

func TestMember_IsAuthenticated(t *testing.T) {
	var nilMember *Member
	assert.False(t, nilMember.IsAuthenticated())

	m := &Member{Active: true}
	assert.False(t, m.IsAuthenticated())
	assert.True(t, m.IsAnonymous())

	empty := ""
	m.SlackID = &empty
	assert.False(t, m.IsAuthenticated())

	id := "U123"
	m.SlackID = &id
	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsAnonymous())
}
