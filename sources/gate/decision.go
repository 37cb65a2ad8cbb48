package gate

import "lingvovault/sources/repository"

type DenyReason string

const (
	DenyBlocked       DenyReason = "blocked"
	DenyNotSubscribed DenyReason = "not_subscribed"
	DenyUnverifiable  DenyReason = "unverifiable"
	DenyAdminOnly     DenyReason = "admin_only"
	DenyInternal      DenyReason = "internal"
)

// Decision is the explicit result of one gate stage. Denial is a value, not
// an exception: stages return it and the chain short-circuits on the first
// one.
type Decision struct {
	Allowed bool
	Reason  DenyReason

	// Missing holds the channels the user is confirmed absent from; denial
	// text lists only these, never the already satisfied ones.
	Missing []repository.RequiredChannel
	// Unverifiable holds the channels the oracle could not confirm either
	// way. Populated only when nothing is confirmed missing; the resulting
	// denial blames bot rights, not the user.
	Unverifiable []repository.RequiredChannel
}

func Allowed() Decision {
	return Decision{Allowed: true}
}

func Denied(reason DenyReason) Decision {
	return Decision{Reason: reason}
}
