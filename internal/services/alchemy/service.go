package alchemy

//go:generate mockgen -destination=mock/mock_service.go -package=mockalchemy -source=service.go

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"goa.design/clue/log"

	"github.com/KirkDiggler/cultivation-idle/internal/audit"
	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/locks"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/recipes"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/sessions"
	"github.com/KirkDiggler/cultivation-idle/internal/retry"
	"github.com/KirkDiggler/cultivation-idle/internal/uuid"
)

// DefaultMaxConcurrentSessions caps in-progress sessions per character
const DefaultMaxConcurrentSessions = 3

// DefaultStoreTimeout bounds a single store call
const DefaultStoreTimeout = 2 * time.Second

// Service runs time-gated alchemy sessions
type Service interface {
	// StartOperation pays the recipe cost and starts a session
	StartOperation(ctx context.Context, characterID, recipeID string) (*SessionView, error)

	// CollectResult resolves a due session and credits the character once
	CollectResult(ctx context.Context, characterID, sessionID string) (*ResultView, error)

	// GetSession returns the progress of one of the character's sessions
	GetSession(ctx context.Context, characterID, sessionID string) (*SessionView, error)

	// ListSessions returns every session of the character
	ListSessions(ctx context.Context, characterID string) ([]*SessionView, error)

	// Sweep reports due sessions of the given characters without mutating them
	Sweep(ctx context.Context, characterIDs []string, now time.Time) ([]DueNotice, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Characters characters.Repository // Required
	Sessions   sessions.Repository   // Required
	Recipes    recipes.Repository    // Required

	Source        dice.Source    // Optional, defaults to a random source
	Clock         clock.Clock    // Optional, defaults to wall clock
	UUIDGenerator uuid.Generator // Optional, defaults to google uuid
	Audit         audit.Recorder // Optional, defaults to logging
	Locks         *locks.Keyed   // Optional, share with the scheduler
	Retry         *retry.Policy  // Optional, defaults to retry.DefaultPolicy
	StoreTimeout  time.Duration  // Optional, defaults to DefaultStoreTimeout

	MaxConcurrentSessions int                         // Optional, defaults to 3
	MinDuration           time.Duration               // Optional, defaults to 60s
	UpgradeChances        map[alchemy.Quality]float64 // Optional, defaults to alchemy.DefaultUpgradeChances
}

type service struct {
	characters characters.Repository
	sessions   sessions.Repository
	recipes    recipes.Repository

	source        dice.Source
	clock         clock.Clock
	uuidGenerator uuid.Generator
	audit         audit.Recorder
	locks         *locks.Keyed
	retry         retry.Policy
	storeTimeout  time.Duration

	maxSessions    int
	minDuration    time.Duration
	upgradeChances map[alchemy.Quality]float64

	// notified holds, per character, the due sessions already announced by
	// Sweep. Each sweep replaces a character's set with what it saw due, so
	// sessions collected elsewhere drop out.
	notifiedMu sync.Mutex
	notified   map[string]map[string]struct{}
}

// NewService creates a new alchemy service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Characters == nil {
		panic("character repository is required")
	}
	if cfg.Sessions == nil {
		panic("session repository is required")
	}
	if cfg.Recipes == nil {
		panic("recipe repository is required")
	}

	svc := &service{
		characters:     cfg.Characters,
		sessions:       cfg.Sessions,
		recipes:        cfg.Recipes,
		source:         cfg.Source,
		clock:          cfg.Clock,
		uuidGenerator:  cfg.UUIDGenerator,
		audit:          cfg.Audit,
		locks:          cfg.Locks,
		retry:          retry.DefaultPolicy(),
		storeTimeout:   cfg.StoreTimeout,
		maxSessions:    cfg.MaxConcurrentSessions,
		minDuration:    cfg.MinDuration,
		upgradeChances: cfg.UpgradeChances,
		notified:       make(map[string]map[string]struct{}),
	}

	if svc.source == nil {
		svc.source = dice.NewRandomSource()
	}
	if svc.clock == nil {
		svc.clock = clock.New()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.audit == nil {
		svc.audit = audit.LogRecorder{}
	}
	if svc.locks == nil {
		svc.locks = locks.NewKeyed()
	}
	if cfg.Retry != nil {
		svc.retry = *cfg.Retry
	}
	if svc.storeTimeout <= 0 {
		svc.storeTimeout = DefaultStoreTimeout
	}
	if svc.maxSessions <= 0 {
		svc.maxSessions = DefaultMaxConcurrentSessions
	}
	if svc.minDuration <= 0 {
		svc.minDuration = alchemy.DefaultMinDuration
	}
	if svc.upgradeChances == nil {
		svc.upgradeChances = alchemy.DefaultUpgradeChances()
	}

	return svc
}

// StartOperation pays the recipe cost and starts a session
func (s *service) StartOperation(ctx context.Context, characterID, recipeID string) (*SessionView, error) {
	if characterID == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}
	if recipeID == "" {
		return nil, engerr.InvalidArgument("recipe ID is required")
	}

	unlock := s.locks.Lock(characterID)
	defer unlock()

	ch, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipes.Get(recipeID)
	if err != nil {
		return nil, err
	}

	active, err := retry.Value(ctx, s.retry, func(ctx context.Context) (int, error) {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		return s.sessions.CountActive(ctx, characterID)
	})
	if err != nil {
		return nil, engerr.Wrap(err, "failed to count active sessions")
	}
	if active >= s.maxSessions {
		return nil, engerr.Newf(engerr.CodeCapacityExceeded,
			"character %s already has %d active sessions", characterID, active).
			WithMeta("character_id", characterID).
			WithMeta("active", active).
			WithMeta("max", s.maxSessions)
	}

	if ch.Level < recipe.MinLevel {
		return nil, engerr.Newf(engerr.CodeRequirementNotMet,
			"%s requires level %d", recipe.Name, recipe.MinLevel).
			WithMeta("character_id", characterID).
			WithMeta("required_level", recipe.MinLevel).
			WithMeta("level", ch.Level)
	}

	if missing := ch.MissingMaterials(recipe.Materials); len(missing) > 0 {
		return nil, engerr.Newf(engerr.CodeInsufficientMaterials,
			"not enough materials for %s", recipe.Name).
			WithMeta("character_id", characterID).
			WithMeta("missing", missing)
	}

	now := s.clock.Now()
	sess := alchemy.NewSession(
		s.uuidGenerator.New(),
		characterID,
		recipe.ID,
		now,
		now.Add(alchemy.Duration(recipe, ch, s.minDuration)),
		alchemy.SuccessRate(recipe, ch),
	)

	// The store treats a replayed start as a no-op, so a lost reply is safe
	// to retry with the same session.
	err = retry.Do(ctx, s.retry, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		_, err := s.sessions.CreateWithDeduction(ctx, sess, recipe.Materials, s.maxSessions)
		return err
	})
	if err != nil {
		return nil, engerr.Wrap(err, "failed to start alchemy session")
	}

	s.audit.Record(ctx, characterID, audit.EventAlchemyStarted, "started "+recipe.Name, map[string]any{
		"session_id":   sess.ID,
		"recipe_id":    recipe.ID,
		"finish_at":    sess.FinishAt,
		"success_rate": sess.SuccessRate,
	})

	view := newSessionView(sess, now)
	view.Cost = maps.Clone(recipe.Materials)
	return view, nil
}

// CollectResult resolves a due session and credits the character once
func (s *service) CollectResult(ctx context.Context, characterID, sessionID string) (*ResultView, error) {
	if characterID == "" || sessionID == "" {
		return nil, engerr.InvalidArgument("character ID and session ID are required")
	}

	unlock := s.locks.Lock(characterID)
	defer unlock()

	sess, err := s.loadOwnedSession(ctx, characterID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Status.IsTerminal() {
		return nil, engerr.Newf(engerr.CodeAlreadyCollected, "session %s was already collected", sessionID).
			WithMeta("session_id", sessionID).
			WithMeta("status", string(sess.Status))
	}

	now := s.clock.Now()
	if !sess.IsDue(now) {
		remaining := sess.Remaining(now)
		return nil, engerr.Newf(engerr.CodeNotYetDue, "session %s finishes in %s", sessionID, remaining.Round(time.Second)).
			WithMeta("session_id", sessionID).
			WithMeta("remaining_seconds", remainingSeconds(remaining))
	}

	recipe, err := s.recipes.Get(sess.RecipeID)
	if err != nil {
		return nil, err
	}

	ch, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}

	out := s.resolve(sess, recipe, ch)

	// out and now are fixed across attempts so a replay matches the stored
	// outcome and credits nothing twice
	var (
		resolved *alchemy.Session
		owner    *character.Character
	)
	err = retry.Do(ctx, s.retry, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		var err error
		resolved, owner, err = s.sessions.Complete(ctx, characterID, sessionID, out, now)
		return err
	})
	if err != nil {
		return nil, engerr.Wrap(err, "failed to collect alchemy session")
	}

	s.forget(characterID, sessionID)

	result := &ResultView{
		SessionID:   resolved.ID,
		Success:     out.Success,
		Quality:     out.Quality,
		ExpGained:   out.ExpGained,
		CollectedAt: now,
		Experience:  owner.Experience,
	}
	details := map[string]any{
		"session_id": sessionID,
		"recipe_id":  recipe.ID,
		"success":    out.Success,
		"exp_gained": out.ExpGained,
	}
	if out.Success {
		result.ItemKey = alchemy.ItemKey(out.ItemID, *out.Quality)
		details["item"] = result.ItemKey
	}
	s.audit.Record(ctx, characterID, audit.EventAlchemyCollected, "collected "+recipe.Name, details)

	return result, nil
}

// resolve rolls success then walks the quality chain
func (s *service) resolve(sess *alchemy.Session, recipe *alchemy.Recipe, ch *character.Character) alchemy.Outcome {
	if !dice.Chance(s.source, luck.Probability(sess.SuccessRate)) {
		return alchemy.Outcome{
			Success:   false,
			ExpGained: alchemy.FailureExp(recipe.ExpReward),
		}
	}

	bonus := luck.DropEffectFor(ch.Luck).QualityUpgradeChance
	quality := alchemy.ResolveQuality(s.source, recipe.BaseQuality, s.upgradeChances, bonus)
	return alchemy.Outcome{
		Success:   true,
		Quality:   &quality,
		ItemID:    recipe.OutputItem,
		ExpGained: recipe.ExpReward,
	}
}

// GetSession returns the progress of one of the character's sessions
func (s *service) GetSession(ctx context.Context, characterID, sessionID string) (*SessionView, error) {
	sess, err := s.loadOwnedSession(ctx, characterID, sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionView(sess, s.clock.Now()), nil
}

// ListSessions returns every session of the character
func (s *service) ListSessions(ctx context.Context, characterID string) ([]*SessionView, error) {
	if characterID == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}

	list, err := s.listSessions(ctx, characterID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]*SessionView, 0, len(list))
	for _, sess := range list {
		views = append(views, newSessionView(sess, now))
	}
	return views, nil
}

// Sweep reports due sessions and announces each one once through audit
func (s *service) Sweep(ctx context.Context, characterIDs []string, now time.Time) ([]DueNotice, error) {
	var (
		notices []DueNotice
		errs    []error
	)

	for _, id := range characterIDs {
		if err := ctx.Err(); err != nil {
			return notices, err
		}

		list, err := s.listSessions(ctx, id)
		if err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "sweep failed to list sessions"}, log.KV{K: "character_id", V: id})
			errs = append(errs, err)
			continue
		}

		var due []*alchemy.Session
		for _, sess := range list {
			if !sess.IsDue(now) {
				continue
			}
			due = append(due, sess)
			notices = append(notices, DueNotice{
				CharacterID: id,
				SessionID:   sess.ID,
				RecipeID:    sess.RecipeID,
				FinishAt:    sess.FinishAt,
			})
		}

		for _, sess := range s.rememberDue(id, due) {
			s.audit.Record(ctx, id, audit.EventAlchemyDue, "alchemy session ready for collection", map[string]any{
				"session_id": sess.ID,
				"recipe_id":  sess.RecipeID,
			})
		}
	}

	return notices, errors.Join(errs...)
}

// rememberDue replaces the character's announced set with due and returns
// the sessions that were not announced before
func (s *service) rememberDue(characterID string, due []*alchemy.Session) []*alchemy.Session {
	s.notifiedMu.Lock()
	defer s.notifiedMu.Unlock()

	prev := s.notified[characterID]
	if len(due) == 0 {
		delete(s.notified, characterID)
		return nil
	}

	var fresh []*alchemy.Session
	next := make(map[string]struct{}, len(due))
	for _, sess := range due {
		next[sess.ID] = struct{}{}
		if _, seen := prev[sess.ID]; !seen {
			fresh = append(fresh, sess)
		}
	}
	s.notified[characterID] = next
	return fresh
}

func (s *service) forget(characterID, sessionID string) {
	s.notifiedMu.Lock()
	defer s.notifiedMu.Unlock()

	set := s.notified[characterID]
	delete(set, sessionID)
	if len(set) == 0 {
		delete(s.notified, characterID)
	}
}

func (s *service) loadCharacter(ctx context.Context, id string) (*character.Character, error) {
	return retry.Value(ctx, s.retry, func(ctx context.Context) (*character.Character, error) {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		return s.characters.Get(ctx, id)
	})
}

func (s *service) listSessions(ctx context.Context, ownerID string) ([]*alchemy.Session, error) {
	return retry.Value(ctx, s.retry, func(ctx context.Context) ([]*alchemy.Session, error) {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		return s.sessions.ListByOwner(ctx, ownerID)
	})
}

// loadOwnedSession hides sessions of other owners behind not_found
func (s *service) loadOwnedSession(ctx context.Context, characterID, sessionID string) (*alchemy.Session, error) {
	sess, err := retry.Value(ctx, s.retry, func(ctx context.Context) (*alchemy.Session, error) {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		return s.sessions.Get(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != characterID {
		return nil, engerr.NotFoundf("session not found: %s", sessionID).
			WithMeta("session_id", sessionID).
			WithMeta("character_id", characterID)
	}
	return sess, nil
}
