package quotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSent},
		{StatusSent, StatusViewed},
		{StatusSent, StatusAccepted},
		{StatusSent, StatusRejected},
		{StatusViewed, StatusAccepted},
		{StatusViewed, StatusRejected},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	forbidden := []struct{ from, to Status }{
		{StatusDraft, StatusViewed},
		{StatusDraft, StatusAccepted},
		{StatusDraft, StatusRejected},
		{StatusSent, StatusDraft},
		{StatusViewed, StatusSent},
		{StatusViewed, StatusDraft},
		{StatusAccepted, StatusRejected},
		{StatusAccepted, StatusSent},
		{StatusAccepted, StatusDraft},
		{StatusRejected, StatusAccepted},
		{StatusRejected, StatusViewed},
	}
	for _, tt := range forbidden {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatesNeverMove(t *testing.T) {
	all := []Status{StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected}
	for _, terminal := range []Status{StatusAccepted, StatusRejected} {
		for _, to := range all {
			if to == terminal {
				continue
			}
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("cancelled").Valid())
	assert.False(t, Status("").Valid())
}
