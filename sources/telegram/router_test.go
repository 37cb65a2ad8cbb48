package telegram

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lingvovault/sources/configuration"
	"lingvovault/sources/gate"
	"lingvovault/sources/localization"
	"lingvovault/sources/metrics"
	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID int64
	text   string
	markup interface{}
}

type fakeCourier struct {
	sent []sentMessage
	acks []string
}

func (f *fakeCourier) Reply(logger *tracing.Logger, upd *gate.Update, text string) {
	f.sent = append(f.sent, sentMessage{chatID: upd.ChatID, text: text})
}

func (f *fakeCourier) ReplyWithMarkup(logger *tracing.Logger, upd *gate.Update, text string, markup interface{}) {
	f.sent = append(f.sent, sentMessage{chatID: upd.ChatID, text: text, markup: markup})
}

func (f *fakeCourier) SendText(logger *tracing.Logger, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeCourier) AnswerCallback(logger *tracing.Logger, callbackID string, text string) {
	f.acks = append(f.acks, callbackID)
}

type stubRegistry struct {
	users map[int64]*entities.User
}

func (f *stubRegistry) GetUserByEid(logger *tracing.Logger, euid int64) (*entities.User, error) {
	if user, ok := f.users[euid]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *stubRegistry) CreateUser(logger *tracing.Logger, euid int64, uname *string, ufullname *string, language string) (*entities.User, error) {
	user := &entities.User{UserID: euid, Username: uname, Fullname: ufullname, Language: language}
	f.users[euid] = user
	return user, nil
}

type stubChannels struct {
	channels []repository.RequiredChannel
}

func (f *stubChannels) List(logger *tracing.Logger) ([]repository.RequiredChannel, error) {
	return f.channels, nil
}

type stubRights struct {
	grants map[string]bool
}

func (f *stubRights) HasCapability(logger *tracing.Logger, user *entities.User, scope string) bool {
	return f.grants[scope]
}

type stubOracle struct {
	verdicts map[int64]gate.Verdict
}

func (f *stubOracle) Check(logger *tracing.Logger, channelID int64, identity int64) gate.Verdict {
	if verdict, ok := f.verdicts[channelID]; ok {
		return verdict
	}
	return gate.Verdict{Status: gate.StatusMember}
}

type routerFixture struct {
	router  *Router
	conv    *repository.ConvStateRepository
	courier *fakeCourier
	rights  *stubRights
	loc     *localization.LocalizationManager
	log     *tracing.Logger
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	log := tracing.NewConsoleLogger()
	config := &configuration.Config{}
	config.Localization.DefaultLanguage = "uz"
	config.Localization.SupportedLanguages = []string{"uz", "en", "ru"}

	loc, err := localization.NewLocalizationManager(config, log)
	require.NoError(t, err)

	rights := &stubRights{grants: map[string]bool{}}
	chain := gate.NewChain(
		&stubRegistry{users: map[int64]*entities.User{}},
		rights,
		&stubChannels{},
		&stubOracle{},
		config,
		metrics.NewMetricsService(log),
	)

	courier := &fakeCourier{}
	conv := repository.NewConvStateRepository(nil, log)
	router := NewRouter(chain, conv, courier, loc, metrics.NewMetricsService(log))

	return &routerFixture{router: router, conv: conv, courier: courier, rights: rights, loc: loc, log: log}
}

func commandUpdate(identity int64, text string) *gate.Update {
	length := len(text)
	if space := strings.Index(text, " "); space > 0 {
		length = space
	}
	return gate.FromMessage(&tgbotapi.Message{
		From:     &tgbotapi.User{ID: identity, UserName: "tester", FirstName: "Test"},
		Chat:     &tgbotapi.Chat{ID: identity},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	})
}

func textUpdate(identity int64, text string) *gate.Update {
	return gate.FromMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: identity, UserName: "tester", FirstName: "Test"},
		Chat: &tgbotapi.Chat{ID: identity},
		Text: text,
	})
}

func callbackUpdate(identity int64, data string) *gate.Update {
	return gate.FromCallback(&tgbotapi.CallbackQuery{
		ID:      "cbq",
		From:    &tgbotapi.User{ID: identity, FirstName: "Test"},
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: identity}},
	})
}

func probe(called *int, lastText *string) HandlerFunc {
	return func(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
		*called++
		if lastText != nil {
			*lastText = upd.Text
		}
	}
}

func TestStructuredFlowKeepsFieldsOnStrayCommand(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled, searchCalled int
	var stepText string
	fixture.router.State(repository.StepUploadTitle, []platform.ContentKind{platform.ContentText}, "MsgAwaitingText", probe(&stepCalled, &stepText))
	fixture.router.Command("search", "", "", probe(&searchCalled, nil))

	state := repository.NewConvState(repository.StepUploadTitle, repository.FlowStructured).WithField("file_id", "abc")
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/search"))

	assert.Equal(t, 1, stepCalled)
	assert.Equal(t, 0, searchCalled)
	assert.Equal(t, "/search", stepText)

	remaining, err := fixture.conv.GetState(fixture.log, 1)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, repository.StepUploadTitle, remaining.Step)
	assert.Equal(t, "abc", remaining.Fields["file_id"])
}

func TestCancelEscapesStructuredFlow(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled, cancelCalled int
	fixture.router.State(repository.StepUploadTitle, []platform.ContentKind{platform.ContentText}, "MsgAwaitingText", probe(&stepCalled, nil))
	fixture.router.Command("cancel", "", "", probe(&cancelCalled, nil))

	state := repository.NewConvState(repository.StepUploadTitle, repository.FlowStructured)
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/cancel"))

	assert.Equal(t, 0, stepCalled)
	assert.Equal(t, 1, cancelCalled)
}

func TestFreeTextPromptEscapesOnCommand(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled, helpCalled int
	fixture.router.State(repository.StepSearchQuery, []platform.ContentKind{platform.ContentText}, "MsgAwaitingText", probe(&stepCalled, nil))
	fixture.router.Command("help", "", "", probe(&helpCalled, nil))

	state := repository.NewConvState(repository.StepSearchQuery, repository.FlowFreeText)
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/help"))

	assert.Equal(t, 0, stepCalled)
	assert.Equal(t, 1, helpCalled)

	remaining, err := fixture.conv.GetState(fixture.log, 1)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestFreeTextPromptEscapesOnMenuButton(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled, savedCalled int
	fixture.router.State(repository.StepSearchQuery, []platform.ContentKind{platform.ContentText}, "MsgAwaitingText", probe(&stepCalled, nil))
	fixture.router.Command("saved", "BtnMyFiles", "", probe(&savedCalled, nil))

	state := repository.NewConvState(repository.StepSearchQuery, repository.FlowFreeText)
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	button := fixture.loc.Localize("uz", "BtnMyFiles")
	fixture.router.Dispatch(fixture.log, textUpdate(1, button))

	assert.Equal(t, 0, stepCalled)
	assert.Equal(t, 1, savedCalled)

	remaining, err := fixture.conv.GetState(fixture.log, 1)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestFreeTextPromptConsumesPlainText(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled int
	var stepText string
	fixture.router.State(repository.StepSearchQuery, []platform.ContentKind{platform.ContentText}, "MsgAwaitingText", probe(&stepCalled, &stepText))

	state := repository.NewConvState(repository.StepSearchQuery, repository.FlowFreeText)
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, textUpdate(1, "ingliz tili grammatikasi"))

	assert.Equal(t, 1, stepCalled)
	assert.Equal(t, "ingliz tili grammatikasi", stepText)
}

func TestContentMismatchRepromptsWithoutTouchingFields(t *testing.T) {
	fixture := newRouterFixture(t)

	var stepCalled int
	fixture.router.State(repository.StepUploadFile,
		[]platform.ContentKind{platform.ContentDocument, platform.ContentAudio, platform.ContentVideo},
		"MsgAwaitingFile", probe(&stepCalled, nil))

	state := repository.NewConvState(repository.StepUploadFile, repository.FlowStructured).WithField("draft", "kept")
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, textUpdate(1, "not a file"))

	assert.Equal(t, 0, stepCalled)
	require.Len(t, fixture.courier.sent, 1)
	assert.Equal(t, fixture.loc.Localize("uz", "MsgAwaitingFile"), fixture.courier.sent[0].text)

	remaining, err := fixture.conv.GetState(fixture.log, 1)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, "kept", remaining.Fields["draft"])
}

func TestStaleStepFallsThroughToCommands(t *testing.T) {
	fixture := newRouterFixture(t)

	var helpCalled int
	fixture.router.Command("help", "", "", probe(&helpCalled, nil))

	state := repository.NewConvState("legacy:retired_step", repository.FlowStructured)
	require.NoError(t, fixture.conv.SetState(fixture.log, 1, state))

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/help"))

	assert.Equal(t, 1, helpCalled)

	remaining, err := fixture.conv.GetState(fixture.log, 1)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestPanicConfinedToUpdate(t *testing.T) {
	fixture := newRouterFixture(t)

	var okCalled int
	fixture.router.Command("boom", "", "", func(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
		panic("handler exploded")
	})
	fixture.router.Command("help", "", "", probe(&okCalled, nil))

	assert.NotPanics(t, func() {
		fixture.router.Dispatch(fixture.log, commandUpdate(1, "/boom"))
	})
	require.NotEmpty(t, fixture.courier.sent)

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/help"))
	assert.Equal(t, 1, okCalled)
}

func TestPlainTextFallsBackToMenu(t *testing.T) {
	fixture := newRouterFixture(t)

	var fallbackCalled int
	fixture.router.Fallback(probe(&fallbackCalled, nil))

	fixture.router.Dispatch(fixture.log, textUpdate(1, "qanday ishlataman"))

	assert.Equal(t, 1, fallbackCalled)
}

func TestCallbackAcknowledgedAndRoutedByPrefix(t *testing.T) {
	fixture := newRouterFixture(t)

	var fileCalled int
	fixture.router.Callback("file", "", probe(&fileCalled, nil))

	fixture.router.Dispatch(fixture.log, callbackUpdate(1, "file:3e7c9a"))

	assert.Equal(t, []string{"cbq"}, fixture.courier.acks)
	assert.Equal(t, 1, fileCalled)
}

func TestMenuButtonBindingSurvivesLaterRegistrations(t *testing.T) {
	fixture := newRouterFixture(t)

	var savedCalled, noopCalled int
	fixture.router.Command("saved", "BtnMyFiles", "", probe(&savedCalled, nil))
	for i := 0; i < 32; i++ {
		fixture.router.Command(fmt.Sprintf("noop%d", i), "", "", probe(&noopCalled, nil))
	}

	button := fixture.loc.Localize("uz", "BtnMyFiles")
	fixture.router.Dispatch(fixture.log, textUpdate(1, button))

	assert.Equal(t, 1, savedCalled)
	assert.Equal(t, 0, noopCalled)
}

type failingFlowStore struct{}

func (f *failingFlowStore) GetState(logger *tracing.Logger, identity int64) (*repository.ConvState, error) {
	return nil, errors.New("corrupt state blob")
}

func (f *failingFlowStore) ClearState(logger *tracing.Logger, identity int64) error {
	return nil
}

func TestStateReadFailureFallsThroughToCommands(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.router.conv = &failingFlowStore{}

	var helpCalled int
	fixture.router.Command("help", "", "", probe(&helpCalled, nil))

	fixture.router.Dispatch(fixture.log, commandUpdate(1, "/help"))

	assert.Equal(t, 1, helpCalled)
}

func TestCallbackCapabilityDenied(t *testing.T) {
	fixture := newRouterFixture(t)

	var removeCalled int
	fixture.router.Callback("remove_fsub", repository.CapabilityManageChannels, probe(&removeCalled, nil))

	fixture.router.Dispatch(fixture.log, callbackUpdate(1, "remove_fsub:42"))

	assert.Equal(t, 0, removeCalled)
	require.NotEmpty(t, fixture.courier.sent)
	assert.Equal(t, fixture.loc.Localize("uz", "MsgAdminOnly"), fixture.courier.sent[len(fixture.courier.sent)-1].text)
}
