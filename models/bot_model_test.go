package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BotStatus
		to      BotStatus
		allowed bool
	}{
		{BotStatusPending, BotStatusDeploying, true},
		{BotStatusPending, BotStatusFailed, true},
		{BotStatusPending, BotStatusDeployed, false},
		{BotStatusDeploying, BotStatusDeployed, true},
		{BotStatusDeploying, BotStatusFailed, true},
		{BotStatusDeploying, BotStatusPending, false},
		{BotStatusDeployed, BotStatusStopped, true},
		{BotStatusDeployed, BotStatusFailed, true},
		{BotStatusFailed, BotStatusDeploying, false},
		{BotStatusStopped, BotStatusDeploying, false},
		{BotStatusStopped, BotStatusDeployed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBotStatusValid(t *testing.T) {
	for _, s := range []BotStatus{BotStatusPending, BotStatusDeploying, BotStatusDeployed, BotStatusFailed, BotStatusStopped} {
		assert.True(t, s.Valid())
	}
	assert.False(t, BotStatus("rebooting").Valid())
	assert.False(t, BotStatus("").Valid())
}
