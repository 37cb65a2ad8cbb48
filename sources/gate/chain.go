package gate

import (
	"errors"

	"lingvovault/sources/configuration"
	"lingvovault/sources/metrics"
	"lingvovault/sources/platform"
	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"
)

// ConfirmJoinedAction is the callback token bound to the "I have joined"
// button under a subscription denial.
const ConfirmJoinedAction = "fsub_confirm"

// SubscriberRegistry is the slice of the users repository the chain needs to
// provision subscribers.
type SubscriberRegistry interface {
	GetUserByEid(logger *tracing.Logger, euid int64) (*entities.User, error)
	CreateUser(logger *tracing.Logger, euid int64, uname *string, ufullname *string, language string) (*entities.User, error)
}

// ChannelSource yields the current required channel list. Read fresh on
// every evaluation.
type ChannelSource interface {
	List(logger *tracing.Logger) ([]repository.RequiredChannel, error)
}

type CapabilityChecker interface {
	HasCapability(logger *tracing.Logger, user *entities.User, scope string) bool
}

// Passport is the per-update unit of work the chain hands to the router. It
// carries the provisioned subscriber and the locale every later reply uses.
type Passport struct {
	User     *entities.User
	Language platform.Language
}

type stage struct {
	name string
	run  func(logger *tracing.Logger, upd *Update, passport *Passport) *Decision
}

// Chain runs the fixed interceptor pipeline over every inbound update:
// provision, block, locale, mandatory subscription. Capability authorization
// is the last stage but needs the matched route, so the router invokes
// Authorize separately after the subscription stage has already passed.
type Chain struct {
	users    SubscriberRegistry
	rights   CapabilityChecker
	channels ChannelSource
	oracle   MembershipOracle
	config   *configuration.Config
	metrics  *metrics.MetricsService

	stages []stage
}

func NewChain(
	users SubscriberRegistry,
	rights CapabilityChecker,
	channels ChannelSource,
	oracle MembershipOracle,
	config *configuration.Config,
	metrics *metrics.MetricsService,
) *Chain {
	chain := &Chain{
		users:    users,
		rights:   rights,
		channels: channels,
		oracle:   oracle,
		config:   config,
		metrics:  metrics,
	}
	chain.stages = []stage{
		{"provision", chain.provision},
		{"block", chain.block},
		{"locale", chain.locale},
		{"subscription", chain.subscription},
	}
	return chain
}

// Evaluate runs the stages in order and stops at the first denial. The
// passport is returned even on denial so the caller can render the denial in
// the user's locale.
func (c *Chain) Evaluate(logger *tracing.Logger, upd *Update) (*Passport, Decision) {
	defer tracing.ProfilePoint(logger, "Gate evaluation completed", "gate.chain.evaluate", tracing.UserId, upd.Identity)()

	passport := &Passport{Language: platform.Language(c.config.Localization.DefaultLanguage)}

	for _, stage := range c.stages {
		if decision := stage.run(logger, upd, passport); decision != nil {
			logger.I("Gate denied update", tracing.GateStage, stage.name, tracing.GateReason, string(decision.Reason), tracing.UserId, upd.Identity)
			c.metrics.RecordGateDenial(stage.name, string(decision.Reason))
			return passport, *decision
		}
	}

	return passport, Allowed()
}

// provision loads the subscriber record, creating it on first contact. A
// registry failure that survives the repository's own retry denies the update
// with a retriable reason instead of letting an unprovisioned user through.
func (c *Chain) provision(logger *tracing.Logger, upd *Update, passport *Passport) *Decision {
	user, err := c.users.GetUserByEid(logger, upd.Identity)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = c.users.CreateUser(logger, upd.Identity, userName(upd), userFullname(upd), c.config.Localization.DefaultLanguage)
	}
	if err != nil {
		logger.E("Subscriber provisioning failed", tracing.InnerError, err, tracing.UserId, upd.Identity)
		decision := Denied(DenyInternal)
		return &decision
	}

	passport.User = user
	return nil
}

func (c *Chain) block(logger *tracing.Logger, upd *Update, passport *Passport) *Decision {
	if platform.BoolValue(passport.User.IsBlocked, false) {
		decision := Denied(DenyBlocked)
		return &decision
	}
	return nil
}

// locale never denies; it pins the reply language for the rest of the
// pipeline, including denial texts produced by later stages.
func (c *Chain) locale(logger *tracing.Logger, upd *Update, passport *Passport) *Decision {
	if supported(passport.User.Language, c.config.Localization.SupportedLanguages) {
		passport.Language = platform.Language(passport.User.Language)
	}
	return nil
}

func (c *Chain) subscription(logger *tracing.Logger, upd *Update, passport *Passport) *Decision {
	if c.isPrivileged(passport) {
		return nil
	}
	if upd.IsConfirmJoined() {
		// The confirmation handler re-runs the identical membership check
		// and answers the user itself. Denying it here would leave no way
		// back in after joining.
		return nil
	}

	required, err := c.channels.List(logger)
	if err != nil {
		logger.E("Required channels unavailable", tracing.InnerError, err)
		decision := Denied(DenyInternal)
		return &decision
	}
	if len(required) == 0 {
		return nil
	}

	missing, unverifiable := c.Inspect(logger, upd.Identity, required)

	if len(missing) > 0 {
		decision := Denied(DenyNotSubscribed)
		decision.Missing = missing
		return &decision
	}
	if len(unverifiable) > 0 {
		decision := Denied(DenyUnverifiable)
		decision.Unverifiable = unverifiable
		return &decision
	}
	return nil
}

// Inspect asks the oracle about every required channel and partitions the
// answers. Indeterminate never counts as satisfied. Exported for the
// confirmation handler, which performs the same check as the gate stage.
func (c *Chain) Inspect(logger *tracing.Logger, identity int64, required []repository.RequiredChannel) (missing, unverifiable []repository.RequiredChannel) {
	for _, channel := range required {
		verdict := c.oracle.Check(logger, channel.ChannelID, identity)
		c.metrics.RecordMembershipVerdict(verdict.Status.String())

		switch verdict.Status {
		case StatusAbsent:
			if verdict.ChannelGone {
				logger.W("Required channel is gone, membership can not be satisfied", tracing.ChannelId, channel.ChannelID)
			}
			missing = append(missing, channel)
		case StatusIndeterminate:
			logger.W("Membership unverifiable", tracing.ChannelId, channel.ChannelID, tracing.UserId, identity, tracing.Verdict, verdict.Status.String())
			unverifiable = append(unverifiable, channel)
		}
	}
	return missing, unverifiable
}

// RequiredChannels exposes the current requirement list for the confirmation
// handler. Always a fresh read, never cached.
func (c *Chain) RequiredChannels(logger *tracing.Logger) ([]repository.RequiredChannel, error) {
	return c.channels.List(logger)
}

// Authorize is the capability stage. The router calls it after route matching
// because the required capability is a property of the matched operation.
func (c *Chain) Authorize(logger *tracing.Logger, upd *Update, passport *Passport, capability string) Decision {
	if capability == "" {
		return Allowed()
	}
	if upd.Identity == c.config.Gate.SuperuserID {
		return Allowed()
	}

	if !c.rights.HasCapability(logger, passport.User, capability) {
		logger.I("Capability denied", tracing.UserId, upd.Identity, tracing.Capability, capability)
		c.metrics.RecordGateDenial("permission", string(DenyAdminOnly))
		return Denied(DenyAdminOnly)
	}
	return Allowed()
}

func (c *Chain) isPrivileged(passport *Passport) bool {
	if passport.User == nil {
		return false
	}
	if passport.User.UserID == c.config.Gate.SuperuserID {
		return true
	}
	return platform.BoolValue(passport.User.IsAdmin, false)
}

func supported(language string, languages []string) bool {
	for _, candidate := range languages {
		if candidate == language {
			return true
		}
	}
	return false
}

func userName(upd *Update) *string {
	switch {
	case upd.Message != nil && upd.Message.From.UserName != "":
		return platform.StrPtr(upd.Message.From.UserName)
	case upd.Callback != nil && upd.Callback.From.UserName != "":
		return platform.StrPtr(upd.Callback.From.UserName)
	}
	return nil
}

func userFullname(upd *Update) *string {
	var first, last string
	switch {
	case upd.Message != nil:
		first, last = upd.Message.From.FirstName, upd.Message.From.LastName
	case upd.Callback != nil:
		first, last = upd.Callback.From.FirstName, upd.Callback.From.LastName
	}
	full := first
	if last != "" {
		full += " " + last
	}
	if full == "" {
		return nil
	}
	return platform.StrPtr(full)
}
