// Package session owns live games. A Session serializes every operation on
// its game, persists the game after each applied action and pushes the new
// view to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/scoundrel/engine"
	"github.com/jason-s-yu/scoundrel/internal/save"
	"github.com/jason-s-yu/scoundrel/internal/store"
	"github.com/sirupsen/logrus"
)

// saveTimeout bounds a single snapshot write.
const saveTimeout = 5 * time.Second

// SubscriberFn receives the view after every applied action. It is called
// with the session lock held and must not block or call back into the session.
type SubscriberFn func(View)

// Session is one player's game bound to a save slot.
type Session struct {
	ID   uuid.UUID
	Slot string

	mu    sync.Mutex
	game  engine.Game
	store store.Store
	log   *logrus.Entry
	// unsaved is set while the live game is ahead of its stored snapshot.
	unsaved bool

	subMu   sync.Mutex
	subs    map[int]SubscriberFn
	nextSub int
}

// Load restores the game saved under slot. A missing slot yields a blank
// unstarted game seeded with seed. A snapshot that fails to decode is
// discarded with a warning and also yields a blank game. Store failures are
// returned.
func Load(ctx context.Context, slot string, st store.Store, seed uint64, log *logrus.Entry) (*Session, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	s := &Session{
		ID:    id,
		Slot:  slot,
		store: st,
		log:   log.WithFields(logrus.Fields{"session": id, "slot": slot}),
		subs:  make(map[int]SubscriberFn),
	}

	data, err := st.Load(ctx, slot)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.game = engine.New(seed)
		s.log.Debug("no saved game, starting blank")
	case err != nil:
		return nil, fmt.Errorf("load slot %s: %w", slot, err)
	default:
		g, derr := save.Decode(data)
		if derr != nil {
			s.log.WithError(derr).Warn("discarding unreadable save")
			g = engine.New(seed)
		} else {
			s.log.WithFields(logrus.Fields{
				"started": g.Started, "gameOver": g.GameOver, "room": g.CurrentRoom,
			}).Info("resumed saved game")
		}
		s.game = g
	}
	return s, nil
}

// View returns the current projection.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Game returns a deep copy of the underlying game.
func (s *Session) Game() engine.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	g.State = g.State.Clone()
	if g.History != nil {
		g.History = make([]engine.State, len(s.game.History))
		for i, h := range s.game.History {
			g.History[i] = h.Clone()
		}
	}
	return g
}

func (s *Session) viewLocked() View {
	v := BuildView(&s.game)
	v.SessionID = s.ID
	v.Slot = s.Slot
	return v
}

// Subscribe registers fn for view updates. Call the returned func to stop.
func (s *Session) Subscribe(fn SubscriberFn) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Subscribers reports how many subscribers are registered.
func (s *Session) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Session) broadcast(v View) {
	s.subMu.Lock()
	fns := make([]SubscriberFn, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// run applies op under the lock. A rejected op leaves the game untouched and
// returns the unchanged view with the engine error.
func (s *Session) run(ctx context.Context, op string, fn func(g *engine.Game) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.game); err != nil {
		s.log.WithError(err).WithField("op", op).Debug("action rejected")
		return s.viewLocked(), err
	}
	s.log.WithFields(logrus.Fields{
		"op": op, "health": s.game.Health, "room": s.game.CurrentRoom, "deck": s.game.DeckCount(),
	}).Debug("action applied")
	if s.game.GameOver {
		s.log.WithField("won", s.game.Won).Info("game over")
	}
	s.persistLocked(ctx)

	v := s.viewLocked()
	s.broadcast(v)
	return v, nil
}

// persistLocked writes the snapshot. Failures are logged; the live game stays
// authoritative, is not evicted, and the next applied action retries the write.
func (s *Session) persistLocked(ctx context.Context) {
	s.unsaved = true
	data, err := save.Encode(s.game)
	if err != nil {
		s.log.WithError(err).Error("encode save")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, s.Slot, data); err != nil {
		s.log.WithError(err).Error("write save")
		return
	}
	s.unsaved = false
}

// NewGame deals a fresh game, discarding the one in progress.
func (s *Session) NewGame(ctx context.Context) (View, error) {
	return s.run(ctx, "new_game", func(g *engine.Game) error {
		g.NewGame()
		return nil
	})
}

func (s *Session) Drink(ctx context.Context, cardID int) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionDrink, CardID: cardID})
}

func (s *Session) Equip(ctx context.Context, cardID int) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionEquip, CardID: cardID})
}

func (s *Session) FightBareHands(ctx context.Context, cardID int) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionFightBareHands, CardID: cardID})
}

func (s *Session) FightWithWeapon(ctx context.Context, cardID int) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionFightWithWeapon, CardID: cardID})
}

func (s *Session) NextRoom(ctx context.Context) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionNextRoom})
}

func (s *Session) Forfeit(ctx context.Context) (View, error) {
	return s.Apply(ctx, engine.Action{Kind: engine.ActionForfeit})
}

// Undo reverts the most recent action.
func (s *Session) Undo(ctx context.Context) (View, error) {
	return s.run(ctx, "undo", func(g *engine.Game) error { return g.Undo() })
}

// Apply runs any engine action.
func (s *Session) Apply(ctx context.Context, a engine.Action) (View, error) {
	return s.run(ctx, a.Kind.String(), func(g *engine.Game) error { return g.Apply(a) })
}

// IsRejection reports whether err is a rule rejection from the engine rather
// than a fault.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var rejections = []error{
	engine.ErrNotStarted,
	engine.ErrGameOver,
	engine.ErrCardNotInRoom,
	engine.ErrWrongKind,
	engine.ErrNoWeapon,
	engine.ErrWeaponTooWeak,
	engine.ErrRoomNotCleared,
	engine.ErrForfeitCooldown,
	engine.ErrNoHistory,
	engine.ErrUnknownAction,
}
