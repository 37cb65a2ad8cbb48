package telegram

import (
	"runtime/debug"
	"strings"

	"lingvovault/sources/gate"
	"lingvovault/sources/localization"
	"lingvovault/sources/metrics"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"
)

type HandlerFunc func(log *tracing.Logger, upd *gate.Update, passport *gate.Passport)

type commandRoute struct {
	command    string
	buttonID   string
	capability string
	handler    HandlerFunc
}

type callbackRoute struct {
	prefix     string
	capability string
	handler    HandlerFunc
}

type stateRoute struct {
	step       string
	contents   []platform.ContentKind
	repromptID string
	handler    HandlerFunc
}

// courier is the slice of the diplomat the router needs for denials,
// reprompts and callback acknowledgements.
type courier interface {
	Reply(logger *tracing.Logger, upd *gate.Update, text string)
	ReplyWithMarkup(logger *tracing.Logger, upd *gate.Update, text string, markup interface{})
	SendText(logger *tracing.Logger, chatID int64, text string) error
	AnswerCallback(logger *tracing.Logger, callbackID string, text string)
}

// flowStore is the slice of the conversation state repository dispatch needs.
type flowStore interface {
	GetState(logger *tracing.Logger, identity int64) (*repository.ConvState, error)
	ClearState(logger *tracing.Logger, identity int64) error
}

// Router owns dispatch: gate first, then active conversation state, then the
// command registry in registration order, then the menu fallback. A handler
// panic is confined to its update.
type Router struct {
	chain        *gate.Chain
	conv         flowStore
	diplomat     courier
	localization *localization.LocalizationManager
	metrics      *metrics.MetricsService

	commands  []commandRoute
	callbacks []callbackRoute
	states    map[string]stateRoute
	buttons   map[string]int
	fallback  HandlerFunc
}

func NewRouter(
	chain *gate.Chain,
	conv flowStore,
	diplomat courier,
	localization *localization.LocalizationManager,
	metrics *metrics.MetricsService,
) *Router {
	return &Router{
		chain:        chain,
		conv:         conv,
		diplomat:     diplomat,
		localization: localization,
		metrics:      metrics,
		states:       make(map[string]stateRoute),
		buttons:      make(map[string]int),
	}
}

// Command registers a command route. Registration order is match order.
// A non-empty buttonID also binds the route to that menu button's text in
// every supported language.
func (x *Router) Command(command string, buttonID string, capability string, handler HandlerFunc) {
	x.commands = append(x.commands, commandRoute{command: command, buttonID: buttonID, capability: capability, handler: handler})
	if buttonID != "" {
		// Indices stay valid across later appends; pointers would not.
		index := len(x.commands) - 1
		for _, variant := range x.localization.ButtonVariants(buttonID) {
			x.buttons[variant] = index
		}
	}
}

func (x *Router) Callback(prefix string, capability string, handler HandlerFunc) {
	x.callbacks = append(x.callbacks, callbackRoute{prefix: prefix, capability: capability, handler: handler})
}

func (x *Router) State(step string, contents []platform.ContentKind, repromptID string, handler HandlerFunc) {
	x.states[step] = stateRoute{step: step, contents: contents, repromptID: repromptID, handler: handler}
}

func (x *Router) Fallback(handler HandlerFunc) {
	x.fallback = handler
}

func (x *Router) Dispatch(log *tracing.Logger, upd *gate.Update) {
	defer tracing.ProfilePoint(log, "Dispatch completed", "telegram.router.dispatch")()
	defer x.recoverPanic(log, upd)

	if upd.Kind == gate.KindCallback {
		// The token expires within seconds while the handler may be slow.
		// Results always arrive as follow-up messages.
		x.diplomat.AnswerCallback(log, upd.Callback.ID, "")
	}

	passport, decision := x.chain.Evaluate(log, upd)
	if !decision.Allowed {
		x.renderDenial(log, upd, passport, decision)
		return
	}

	if upd.Kind == gate.KindCallback {
		x.dispatchCallback(log, upd, passport)
		return
	}

	x.dispatchMessage(log, upd, passport)
}

func (x *Router) dispatchCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	for i := range x.callbacks {
		route := &x.callbacks[i]
		if upd.Data != route.prefix && !strings.HasPrefix(upd.Data, route.prefix+":") {
			continue
		}

		if decision := x.chain.Authorize(log, upd, passport, route.capability); !decision.Allowed {
			x.renderDenial(log, upd, passport, decision)
			return
		}

		route.handler(log, upd, passport)
		return
	}

	log.W("Unrouted callback", tracing.CallbackData, upd.Data)
}

func (x *Router) dispatchMessage(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil {
		log.W("Conversation state unavailable, routing as stateless", tracing.InnerError, err, tracing.UserId, upd.Identity)
		state = nil
	}

	if state != nil {
		if x.dispatchState(log, upd, passport, state) {
			return
		}
	}

	if route := x.matchCommand(upd); route != nil {
		log = log.With(tracing.CommandIssued, route.command)
		x.metrics.RecordCommandUsed(route.command)

		if decision := x.chain.Authorize(log, upd, passport, route.capability); !decision.Allowed {
			x.renderDenial(log, upd, passport, decision)
			return
		}

		route.handler(log, upd, passport)
		return
	}

	if upd.Content == platform.ContentText && x.fallback != nil {
		x.fallback(log, upd, passport)
		return
	}

	log.I("Ignoring unroutable update", tracing.UpdateKind, string(upd.Kind))
	x.metrics.RecordUpdateHandled("ignored")
}

// dispatchState resolves an update against the active flow. Returns false
// when the update should continue to command routing instead.
func (x *Router) dispatchState(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, state *repository.ConvState) bool {
	route, known := x.states[state.Step]
	if !known {
		log.W("Stale conversation step, clearing", tracing.FlowStep, state.Step)
		_ = x.conv.ClearState(log, upd.Identity)
		return false
	}

	// Cancel always escapes, whatever the mode.
	if upd.IsCommand() && upd.Command() == "cancel" {
		return false
	}

	if state.Mode == repository.FlowFreeText {
		// Free-text prompts never trap the user: a command or a recognized
		// menu button abandons the flow and routes normally.
		if upd.IsCommand() {
			_ = x.conv.ClearState(log, upd.Identity)
			return false
		}
		if _, isButton := x.buttons[upd.Text]; isButton {
			_ = x.conv.ClearState(log, upd.Identity)
			return false
		}
	}

	if !contentAccepted(route.contents, upd.Content) {
		// Wrong payload for this step. Accumulated fields stay untouched.
		x.diplomat.Reply(log, upd, x.localization.Localize(passport.Language, route.repromptID))
		return true
	}

	log = log.With(tracing.FlowStep, state.Step)
	x.metrics.RecordConversationStep(state.Step)
	route.handler(log, upd, passport)
	return true
}

func (x *Router) matchCommand(upd *gate.Update) *commandRoute {
	if upd.IsCommand() {
		command := upd.Command()
		for i := range x.commands {
			if x.commands[i].command == command {
				return &x.commands[i]
			}
		}
		return nil
	}

	if upd.Content == platform.ContentText {
		if index, ok := x.buttons[upd.Text]; ok {
			return &x.commands[index]
		}
	}
	return nil
}

func (x *Router) renderDenial(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, decision gate.Decision) {
	lang := passport.Language

	switch decision.Reason {
	case gate.DenyBlocked:
		x.diplomat.Reply(log, upd, x.localization.Localize(lang, "MsgBlocked"))
	case gate.DenyNotSubscribed:
		text := x.localization.LocalizeTd(lang, "MsgFsubRequired", map[string]interface{}{
			"Channels": channelLines(decision.Missing),
		})
		x.diplomat.ReplyWithMarkup(log, upd, text, joinKeyboard(x.localization, lang, decision.Missing))
	case gate.DenyUnverifiable:
		x.diplomat.Reply(log, upd, x.localization.Localize(lang, "MsgFsubUnverifiable"))
	case gate.DenyAdminOnly:
		x.diplomat.Reply(log, upd, x.localization.Localize(lang, "MsgAdminOnly"))
	default:
		x.diplomat.Reply(log, upd, x.localization.Localize(lang, "MsgTryAgain"))
	}
}

func (x *Router) recoverPanic(log *tracing.Logger, upd *gate.Update) {
	rec := recover()
	if rec == nil {
		return
	}

	log.E("Handler panicked", "panic", rec, "stack", string(debug.Stack()))
	x.metrics.RecordHandlerPanic()
	x.metrics.RecordUpdateHandled("panic")

	if upd.ChatID != 0 {
		_ = x.diplomat.SendText(log, upd.ChatID, x.localization.Localize(platform.LanguageUzbek, "MsgErrorResponse"))
	}
}

func contentAccepted(accepted []platform.ContentKind, content platform.ContentKind) bool {
	for _, kind := range accepted {
		if kind == content {
			return true
		}
	}
	return false
}

func channelLines(channels []repository.RequiredChannel) string {
	lines := make([]string, 0, len(channels))
	for _, channel := range channels {
		lines = append(lines, "• "+channel.Display())
	}
	return strings.Join(lines, "\n")
}
