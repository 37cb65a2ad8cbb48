package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"github.com/redis/go-redis/v9"
)

// Step tags for the multi-step conversation flows. One flow step at most per
// identity at any time.
const (
	StepSearchQuery = "search:awaiting_query"

	StepUploadFile  = "upload:awaiting_file"
	StepUploadTitle = "upload:awaiting_title"
	StepUploadTags  = "upload:awaiting_tags"

	StepFsubChannel = "fsub:awaiting_channel"

	StepBroadcastText = "broadcast:awaiting_text"
)

type FlowMode string

const (
	// FlowFreeText prompts for arbitrary text; a command or recognized menu
	// button escapes the flow so the user is never trapped.
	FlowFreeText FlowMode = "free_text"
	// FlowStructured collects fields across steps; only an explicit /cancel
	// aborts it, so accumulated input survives a stray command.
	FlowStructured FlowMode = "structured"
)

// ConvState is the per-identity record of an in-flight flow: the current step
// tag plus the fields accumulated so far.
type ConvState struct {
	Step      string            `json:"step"`
	Mode      FlowMode          `json:"mode"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewConvState(step string, mode FlowMode) *ConvState {
	return &ConvState{Step: step, Mode: mode, Fields: map[string]string{}}
}

func (s *ConvState) WithField(key, value string) *ConvState {
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}
	s.Fields[key] = value
	return s
}

const (
	convStateTTL = 30 * time.Minute
	// While degraded, one call per interval is allowed through to redis so
	// recovery is detected without every call paying the connection timeout.
	redisProbeInterval = 15 * time.Second
)

// stateStore is the slice of the redis client the repository drives. Tests
// substitute a controllable fake.
type stateStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ConvStateRepository keeps conversation state in redis so it survives
// restarts, with a transparent in-memory tier underneath. When redis is
// unreachable the repository degrades to local-only storage and keeps the
// dispatch loop alive; periodic probes notice when redis is back and migrate
// the local entries over. A failed write never clobbers the previously
// stored state.
type ConvStateRepository struct {
	redis stateStore
	log   *tracing.Logger

	mu        sync.RWMutex
	local     map[int64]*ConvState
	degraded  bool
	lastProbe time.Time
}

func NewConvStateRepository(client *redis.Client, log *tracing.Logger) *ConvStateRepository {
	repo := &ConvStateRepository{
		log:   log,
		local: make(map[int64]*ConvState),
	}
	if client != nil {
		repo.redis = client
	}
	return repo
}

func (r *ConvStateRepository) key(identity int64) string {
	return fmt.Sprintf("conv_state:%d", identity)
}

func (r *ConvStateRepository) GetState(logger *tracing.Logger, identity int64) (*ConvState, error) {
	defer tracing.ProfilePoint(logger, "ConvState get completed", "repository.convstate.get", tracing.UserId, identity)()

	if r.useLocal() {
		return r.localGet(identity), nil
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 5*time.Second)
	defer cancel()

	data, err := r.redis.Get(ctx, r.key(identity)).Result()
	if err != nil && err != redis.Nil {
		r.degrade(logger, err)
		return r.localGet(identity), nil
	}

	// Entries written locally during an outage are newer than whatever redis
	// holds for them; answer from the local tier and let the migration carry
	// them over.
	if r.isDegraded() {
		if state := r.localGet(identity); state != nil {
			r.recover(logger)
			return state, nil
		}
	}
	r.recover(logger)

	if err == redis.Nil {
		return nil, nil
	}

	var state ConvState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		logger.E("Failed to unmarshal conversation state", tracing.InnerError, err)
		return nil, err
	}

	return &state, nil
}

func (r *ConvStateRepository) SetState(logger *tracing.Logger, identity int64, state *ConvState) error {
	defer tracing.ProfilePoint(logger, "ConvState set completed", "repository.convstate.set", tracing.UserId, identity, tracing.FlowStep, state.Step)()

	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now()
	}

	if r.useLocal() {
		r.localSet(identity, state)
		logger.I("Conversation state set", tracing.FlowStep, state.Step, tracing.StorageTier, "local")
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		logger.E("Failed to marshal conversation state", tracing.InnerError, err)
		return err
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.redis.Set(ctx, r.key(identity), data, convStateTTL).Err(); err != nil {
		r.degrade(logger, err)
		r.localSet(identity, state)
		return nil
	}

	// This write supersedes any entry parked locally during an outage; drop
	// it before the migration so the stale copy can not win.
	r.mu.Lock()
	delete(r.local, identity)
	r.mu.Unlock()
	r.recover(logger)

	logger.I("Conversation state set", tracing.FlowStep, state.Step, tracing.StorageTier, "redis")
	return nil
}

func (r *ConvStateRepository) ClearState(logger *tracing.Logger, identity int64) error {
	defer tracing.ProfilePoint(logger, "ConvState clear completed", "repository.convstate.clear", tracing.UserId, identity)()

	r.mu.Lock()
	delete(r.local, identity)
	r.mu.Unlock()

	if r.useLocal() {
		return nil
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.redis.Del(ctx, r.key(identity)).Err(); err != nil {
		r.degrade(logger, err)
		return nil
	}
	r.recover(logger)

	logger.I("Conversation state cleared", tracing.UserId, identity)
	return nil
}

func (r *ConvStateRepository) localGet(identity int64) *ConvState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.local[identity]
	if !ok {
		return nil
	}
	if time.Since(state.CreatedAt) > convStateTTL {
		return nil
	}
	return state
}

func (r *ConvStateRepository) localSet(identity int64, state *ConvState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[identity] = state
}

func (r *ConvStateRepository) isDegraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

// useLocal reports whether this call should skip redis entirely. While
// degraded it lets one call per probe interval through, so the repository
// notices a recovered redis on its own instead of staying local forever.
func (r *ConvStateRepository) useLocal() bool {
	if r.redis == nil {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.degraded {
		return false
	}
	if time.Since(r.lastProbe) < redisProbeInterval {
		return true
	}
	r.lastProbe = time.Now()
	return false
}

func (r *ConvStateRepository) degrade(logger *tracing.Logger, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.degraded {
		logger.E("Shared conversation state tier unreachable, degrading to local-only storage", tracing.InnerError, err, tracing.StorageTier, "local")
		r.degraded = true
	}
	r.lastProbe = time.Now()
}

// recover migrates local entries back to redis after an outage. A migration
// failure leaves the repository on the local tier; nothing is lost.
func (r *ConvStateRepository) recover(logger *tracing.Logger) {
	r.mu.Lock()
	if !r.degraded {
		r.mu.Unlock()
		return
	}
	r.degraded = false
	pending := make(map[int64]*ConvState, len(r.local))
	for identity, state := range r.local {
		pending[identity] = state
	}
	r.mu.Unlock()

	for identity, state := range pending {
		data, err := json.Marshal(state)
		if err != nil {
			continue
		}

		ctx, cancel := platform.ContextTimeoutVal(context.Background(), 5*time.Second)
		err = r.redis.Set(ctx, r.key(identity), data, convStateTTL).Err()
		cancel()

		if err != nil {
			r.degrade(logger, err)
			return
		}

		r.mu.Lock()
		delete(r.local, identity)
		r.mu.Unlock()
	}

	logger.W("Shared conversation state tier recovered, local entries migrated", tracing.StorageTier, "redis")
}
