package telegram

import (
	"strings"
	"time"

	"lingvovault/sources/configuration"
	"lingvovault/sources/gate"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultOracleTimeout = 5 * time.Second

// ChatOracle answers membership questions through getChatMember. Exactly one
// API call per question; a call that outlives the deadline yields an
// indeterminate verdict while the request finishes in the background.
type ChatOracle struct {
	bot    *tgbotapi.BotAPI
	config *configuration.Config
}

func NewChatOracle(bot *tgbotapi.BotAPI, config *configuration.Config) gate.MembershipOracle {
	return &ChatOracle{bot: bot, config: config}
}

func (x *ChatOracle) Check(log *tracing.Logger, channelID int64, identity int64) gate.Verdict {
	defer tracing.ProfilePoint(log, "Membership check completed", "telegram.oracle.check", tracing.ChannelId, channelID, tracing.UserId, identity)()

	timeout := x.config.Gate.OracleTimeout
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}

	type answer struct {
		member tgbotapi.ChatMember
		err    error
	}

	done := make(chan answer, 1)
	go func() {
		member, err := x.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: channelID,
				UserID: identity,
			},
		})
		done <- answer{member: member, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return classifyOracleError(log, channelID, res.err)
		}
		return verdictOfStatus(res.member.Status)
	case <-time.After(timeout):
		log.W("Membership check timed out", tracing.ChannelId, channelID, tracing.UserId, identity)
		return gate.Verdict{Status: gate.StatusIndeterminate}
	}
}

// verdictOfStatus maps getChatMember statuses. Restricted members are still
// members.
func verdictOfStatus(status string) gate.Verdict {
	switch status {
	case "creator", "administrator", "member", "restricted":
		return gate.Verdict{Status: gate.StatusMember}
	case "left", "kicked":
		return gate.Verdict{Status: gate.StatusAbsent}
	default:
		return gate.Verdict{Status: gate.StatusIndeterminate}
	}
}

func classifyOracleError(log *tracing.Logger, channelID int64, err error) gate.Verdict {
	text := strings.ToLower(err.Error())

	switch {
	case strings.Contains(text, "chat not found"):
		// The channel is gone or the bot was never in it. The requirement
		// can not be satisfied until an admin fixes the list.
		log.W("Required channel inaccessible", tracing.ChannelId, channelID, tracing.InnerError, err)
		return gate.Verdict{Status: gate.StatusAbsent, ChannelGone: true}
	case strings.Contains(text, "user not found"):
		return gate.Verdict{Status: gate.StatusAbsent}
	default:
		// Missing rights, kicked bot, rate limits, transport failures. We
		// can not tell either way, and the gate never treats that as
		// satisfied.
		log.W("Membership check failed", tracing.ChannelId, channelID, tracing.InnerError, err)
		return gate.Verdict{Status: gate.StatusIndeterminate}
	}
}
