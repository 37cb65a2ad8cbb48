package gate

import (
	"errors"
	"testing"

	"lingvovault/sources/configuration"
	"lingvovault/sources/metrics"
	"lingvovault/sources/platform"
	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const superuserID int64 = 900001

type fakeRegistry struct {
	users   map[int64]*entities.User
	created int
	fail    bool
}

func (f *fakeRegistry) GetUserByEid(logger *tracing.Logger, euid int64) (*entities.User, error) {
	if f.fail {
		return nil, errors.New("registry unavailable")
	}
	if user, ok := f.users[euid]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeRegistry) CreateUser(logger *tracing.Logger, euid int64, uname *string, ufullname *string, language string) (*entities.User, error) {
	if f.fail {
		return nil, errors.New("registry unavailable")
	}
	user := &entities.User{UserID: euid, Username: uname, Fullname: ufullname, Language: language}
	f.users[euid] = user
	f.created++
	return user, nil
}

type fakeChannels struct {
	channels []repository.RequiredChannel
	err      error
}

func (f *fakeChannels) List(logger *tracing.Logger) ([]repository.RequiredChannel, error) {
	return f.channels, f.err
}

type fakeRights struct {
	grants map[string]bool
}

func (f *fakeRights) HasCapability(logger *tracing.Logger, user *entities.User, scope string) bool {
	return f.grants[scope]
}

type fakeOracle struct {
	verdicts map[int64]Verdict
	calls    int
}

func (f *fakeOracle) Check(logger *tracing.Logger, channelID int64, identity int64) Verdict {
	f.calls++
	if verdict, ok := f.verdicts[channelID]; ok {
		return verdict
	}
	return Verdict{Status: StatusMember}
}

type chainFixture struct {
	chain    *Chain
	registry *fakeRegistry
	channels *fakeChannels
	rights   *fakeRights
	oracle   *fakeOracle
	log      *tracing.Logger
}

func newChainFixture() *chainFixture {
	log := tracing.NewConsoleLogger()
	fixture := &chainFixture{
		registry: &fakeRegistry{users: map[int64]*entities.User{}},
		channels: &fakeChannels{},
		rights:   &fakeRights{grants: map[string]bool{}},
		oracle:   &fakeOracle{verdicts: map[int64]Verdict{}},
		log:      log,
	}
	config := &configuration.Config{}
	config.Gate.SuperuserID = superuserID
	config.Localization.DefaultLanguage = "uz"
	config.Localization.SupportedLanguages = []string{"uz", "en", "ru"}

	fixture.chain = NewChain(fixture.registry, fixture.rights, fixture.channels, fixture.oracle, config, metrics.NewMetricsService(log))
	return fixture
}

func messageFrom(identity int64, text string) *Update {
	return FromMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: identity, UserName: "tester", FirstName: "Test"},
		Chat: &tgbotapi.Chat{ID: identity},
		Text: text,
	})
}

func callbackFrom(identity int64, data string) *Update {
	return FromCallback(&tgbotapi.CallbackQuery{
		ID:      "cbq",
		From:    &tgbotapi.User{ID: identity, FirstName: "Test"},
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: identity}},
	})
}

func requiredChannel(id int64, title string) repository.RequiredChannel {
	return repository.RequiredChannel{ChannelID: id, Title: title}
}

func TestFirstContactProvisionsSubscriber(t *testing.T) {
	fixture := newChainFixture()

	passport, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.True(t, decision.Allowed)
	require.NotNil(t, passport.User)
	assert.Equal(t, 1, fixture.registry.created)
	assert.Equal(t, "uz", passport.User.Language)
	assert.Equal(t, platform.LanguageUzbek, passport.Language)
}

func TestBlockedUserIsDenied(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "en", IsBlocked: platform.BoolPtr(true)}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}

	passport, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "/search"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyBlocked, decision.Reason)
	assert.Equal(t, platform.LanguageEnglish, passport.Language, "denial must render in the user's locale")
	assert.Zero(t, fixture.oracle.calls, "block stage precedes subscription, no oracle calls")
}

func TestNoRequiredChannelsSkipsOracle(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.True(t, decision.Allowed)
	assert.Zero(t, fixture.oracle.calls)
}

func TestMissingChannelDeniesWithOnlyUnsatisfied(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{
		requiredChannel(-100200, "News"),
		requiredChannel(-100300, "Updates"),
	}
	fixture.oracle.verdicts[-100300] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNotSubscribed, decision.Reason)
	require.Len(t, decision.Missing, 1)
	assert.Equal(t, int64(-100300), decision.Missing[0].ChannelID)
	assert.Equal(t, 2, fixture.oracle.calls)
}

func TestIndeterminateVerdictFailsClosed(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusIndeterminate}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyUnverifiable, decision.Reason)
	require.Len(t, decision.Unverifiable, 1)
	assert.Empty(t, decision.Missing)
}

func TestConfirmedAbsenceOutranksIndeterminate(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{
		requiredChannel(-100200, "News"),
		requiredChannel(-100300, "Updates"),
	}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusIndeterminate}
	fixture.oracle.verdicts[-100300] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.Equal(t, DenyNotSubscribed, decision.Reason)
	require.Len(t, decision.Missing, 1)
	assert.Equal(t, int64(-100300), decision.Missing[0].ChannelID)
}

func TestGoneChannelCountsAsMissing(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "Stale")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusAbsent, ChannelGone: true}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.Equal(t, DenyNotSubscribed, decision.Reason)
	require.Len(t, decision.Missing, 1)
}

func TestAdminBypassesSubscription(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz", IsAdmin: platform.BoolPtr(true)}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.True(t, decision.Allowed)
	assert.Zero(t, fixture.oracle.calls)
}

func TestSuperuserBypassesSubscription(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[superuserID] = &entities.User{UserID: superuserID, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(superuserID, "hello"))

	assert.True(t, decision.Allowed)
	assert.Zero(t, fixture.oracle.calls)
}

func TestConfirmJoinedCallbackPassesSubscription(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, callbackFrom(42, ConfirmJoinedAction))

	assert.True(t, decision.Allowed, "the retry callback must reach its handler even while unsubscribed")
}

func TestOtherCallbacksStayGated(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.channels = []repository.RequiredChannel{requiredChannel(-100200, "News")}
	fixture.oracle.verdicts[-100200] = Verdict{Status: StatusAbsent}

	_, decision := fixture.chain.Evaluate(fixture.log, callbackFrom(42, "download:abc"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNotSubscribed, decision.Reason)
}

func TestUnsupportedLanguageFallsBackToDefault(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "de"}

	passport, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.True(t, decision.Allowed)
	assert.Equal(t, platform.LanguageUzbek, passport.Language)
}

func TestRegistryFailureDeniesRetriable(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.fail = true

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyInternal, decision.Reason)
}

func TestChannelListFailureDeniesRetriable(t *testing.T) {
	fixture := newChainFixture()
	fixture.registry.users[42] = &entities.User{UserID: 42, Language: "uz"}
	fixture.channels.err = errors.New("settings unavailable")

	_, decision := fixture.chain.Evaluate(fixture.log, messageFrom(42, "hello"))

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyInternal, decision.Reason)
}

func TestAuthorize(t *testing.T) {
	fixture := newChainFixture()
	user := &entities.User{UserID: 42, Language: "uz", IsAdmin: platform.BoolPtr(true)}
	passport := &Passport{User: user, Language: platform.LanguageUzbek}

	upd := messageFrom(42, "/upload")

	decision := fixture.chain.Authorize(fixture.log, upd, passport, "")
	assert.True(t, decision.Allowed, "routes without a capability are public")

	decision = fixture.chain.Authorize(fixture.log, upd, passport, repository.CapabilityManageFiles)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyAdminOnly, decision.Reason)

	fixture.rights.grants[repository.CapabilityManageFiles] = true
	decision = fixture.chain.Authorize(fixture.log, upd, passport, repository.CapabilityManageFiles)
	assert.True(t, decision.Allowed)

	superUpd := messageFrom(superuserID, "/upload")
	superPassport := &Passport{User: &entities.User{UserID: superuserID, Language: "uz"}, Language: platform.LanguageUzbek}
	decision = fixture.chain.Authorize(fixture.log, superUpd, superPassport, repository.CapabilityManageBroadcast)
	assert.True(t, decision.Allowed, "superuser holds every capability")
}
