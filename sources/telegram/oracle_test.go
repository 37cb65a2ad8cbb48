package telegram

import (
	"errors"
	"testing"

	"lingvovault/sources/gate"
	"lingvovault/sources/tracing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictOfStatus(t *testing.T) {
	tests := []struct {
		status string
		want   gate.MembershipStatus
	}{
		{"creator", gate.StatusMember},
		{"administrator", gate.StatusMember},
		{"member", gate.StatusMember},
		{"restricted", gate.StatusMember},
		{"left", gate.StatusAbsent},
		{"kicked", gate.StatusAbsent},
		{"", gate.StatusIndeterminate},
		{"unknown_future_status", gate.StatusIndeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, verdictOfStatus(tt.status).Status)
		})
	}
}

func TestClassifyOracleError(t *testing.T) {
	log := tracing.NewConsoleLogger()

	t.Run("gone channel is a confirmed absence", func(t *testing.T) {
		verdict := classifyOracleError(log, -100, errors.New("Bad Request: chat not found"))
		assert.Equal(t, gate.StatusAbsent, verdict.Status)
		assert.True(t, verdict.ChannelGone)
	})

	t.Run("unknown user is a confirmed absence", func(t *testing.T) {
		verdict := classifyOracleError(log, -100, errors.New("Bad Request: user not found"))
		assert.Equal(t, gate.StatusAbsent, verdict.Status)
		assert.False(t, verdict.ChannelGone)
	})

	t.Run("anything else stays indeterminate", func(t *testing.T) {
		for _, err := range []error{
			errors.New("Forbidden: bot is not a member of the channel chat"),
			errors.New("Too Many Requests: retry after 5"),
			errors.New("connection reset by peer"),
		} {
			verdict := classifyOracleError(log, -100, err)
			assert.Equal(t, gate.StatusIndeterminate, verdict.Status, err.Error())
		}
	})
}
