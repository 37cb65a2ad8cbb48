package gate

import "lingvovault/sources/tracing"

type MembershipStatus int

const (
	// StatusMember covers every "still present" state, including restricted.
	StatusMember MembershipStatus = iota
	// StatusAbsent means the user verifiably left or was removed.
	StatusAbsent
	// StatusIndeterminate means the oracle could not confirm either way:
	// missing bot rights, a transient failure, or a timeout. Never treated
	// as satisfied.
	StatusIndeterminate
)

func (s MembershipStatus) String() string {
	switch s {
	case StatusMember:
		return "member"
	case StatusAbsent:
		return "absent"
	default:
		return "indeterminate"
	}
}

// Verdict is the oracle's answer for one (identity, channel) pair. It is
// recomputed on every gate evaluation; membership can change between updates
// and a stale allow is worse than an extra call.
type Verdict struct {
	Status MembershipStatus

	// ChannelGone marks a channel that no longer exists or is permanently
	// inaccessible. The requirement can never be satisfied, so the status is
	// Absent, and the admin-facing channel list surfaces the entry as stale.
	ChannelGone bool
}

// MembershipOracle asks the transport whether an identity belongs to a
// channel. Implementations perform exactly one bounded call; retry policy
// belongs to the caller.
type MembershipOracle interface {
	Check(log *tracing.Logger, channelID int64, identity int64) Verdict
}
