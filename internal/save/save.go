// Package save converts a game to and from the opaque string written to a
// save slot.
//
// The record is JSON. Cards carry their label, numeric value and kind next to
// the suit so a stored game stays readable without the engine; Decode checks
// all of them for consistency and rejects anything it cannot trust.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/scoundrel/engine"
)

// Version is the current record layout.
const Version = 1

// ErrCorrupt is returned for any record that cannot be restored.
var ErrCorrupt = errors.New("corrupt save")

type savedCard struct {
	ID           int    `json:"id"`
	Suit         string `json:"suit"`
	Value        string `json:"value"`
	NumericValue int    `json:"numericValue"`
	Type         string `json:"type"`
}

type savedWeapon struct {
	savedCard
	LastUsedAttack *savedCard `json:"lastUsedAttack"`
}

type savedState struct {
	Deck                  []savedCard  `json:"deck"`
	Room                  []savedCard  `json:"room"`
	Health                int          `json:"health"`
	EquippedWeapon        *savedWeapon `json:"equippedWeapon"`
	CurrentRoomNumber     int          `json:"currentRoomNumber"`
	LastRanAwayRoomNumber int          `json:"lastRanAwayRoomNumber"`
	GameOver              bool         `json:"gameOver"`
	Won                   bool         `json:"won"`
}

type savedGame struct {
	Version int `json:"version"`
	savedState
	History     []savedState `json:"history"`
	GameStarted bool         `json:"gameStarted"`
	RNG         uint64       `json:"rng,string"`
}

// Encode serializes the whole game, history included.
func Encode(g engine.Game) (string, error) {
	rec := savedGame{
		Version:     Version,
		savedState:  encodeState(g.State),
		History:     make([]savedState, 0, len(g.History)),
		GameStarted: g.Started,
		RNG:         uint64(g.RNG),
	}
	for _, h := range g.History {
		rec.History = append(rec.History, encodeState(h))
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode save: %w", err)
	}
	return string(b), nil
}

// Decode restores a game produced by Encode. Every failure wraps ErrCorrupt.
func Decode(data string) (engine.Game, error) {
	var rec savedGame
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return engine.Game{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Version != Version {
		return engine.Game{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, rec.Version)
	}
	if rec.RNG == 0 {
		return engine.Game{}, fmt.Errorf("%w: missing rng state", ErrCorrupt)
	}

	state, err := decodeState(rec.savedState)
	if err != nil {
		return engine.Game{}, err
	}
	g := engine.Game{
		State:   state,
		Started: rec.GameStarted,
		RNG:     engine.RNG(rec.RNG),
	}
	for i, h := range rec.History {
		s, err := decodeState(h)
		if err != nil {
			return engine.Game{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		g.History = append(g.History, s)
	}
	if !g.Started && (len(g.Deck) > 0 || len(g.Room) > 0 || len(g.History) > 0) {
		return engine.Game{}, fmt.Errorf("%w: unstarted game carries cards", ErrCorrupt)
	}
	return g, nil
}

func encodeCard(c engine.Card) savedCard {
	return savedCard{
		ID:           c.ID,
		Suit:         c.Suit.String(),
		Value:        c.Rank.String(),
		NumericValue: c.Value(),
		Type:         c.Kind().String(),
	}
}

func encodeCards(cards []engine.Card) []savedCard {
	out := make([]savedCard, len(cards))
	for i, c := range cards {
		out[i] = encodeCard(c)
	}
	return out
}

func encodeState(s engine.State) savedState {
	out := savedState{
		Deck:                  encodeCards(s.Deck),
		Room:                  encodeCards(s.Room),
		Health:                s.Health,
		CurrentRoomNumber:     s.CurrentRoom,
		LastRanAwayRoomNumber: s.LastForfeitRoom,
		GameOver:              s.GameOver,
		Won:                   s.Won,
	}
	if s.Weapon != nil {
		w := &savedWeapon{savedCard: encodeCard(s.Weapon.Card)}
		if s.Weapon.LastSlain != nil {
			slain := encodeCard(*s.Weapon.LastSlain)
			w.LastUsedAttack = &slain
		}
		out.EquippedWeapon = w
	}
	return out
}

func decodeCard(sc savedCard) (engine.Card, error) {
	suit, ok := engine.ParseSuit(sc.Suit)
	if !ok {
		return engine.Card{}, fmt.Errorf("%w: card %d: unknown suit %q", ErrCorrupt, sc.ID, sc.Suit)
	}
	rank, ok := engine.ParseRank(sc.Value)
	if !ok {
		return engine.Card{}, fmt.Errorf("%w: card %d: unknown value %q", ErrCorrupt, sc.ID, sc.Value)
	}
	c := engine.Card{ID: sc.ID, Suit: suit, Rank: rank}
	if sc.NumericValue != c.Value() {
		return engine.Card{}, fmt.Errorf("%w: card %d: numericValue %d does not match %s", ErrCorrupt, sc.ID, sc.NumericValue, sc.Value)
	}
	if sc.Type != c.Kind().String() {
		return engine.Card{}, fmt.Errorf("%w: card %d: type %q does not match suit %s", ErrCorrupt, sc.ID, sc.Type, sc.Suit)
	}
	if c.Kind() != engine.KindMonster && c.Rank > engine.RankTen {
		return engine.Card{}, fmt.Errorf("%w: card %d: %s cannot be a face card", ErrCorrupt, sc.ID, c.Kind())
	}
	if sc.ID < 0 || sc.ID >= engine.DeckSize {
		return engine.Card{}, fmt.Errorf("%w: card id %d out of range", ErrCorrupt, sc.ID)
	}
	return c, nil
}

// decodeCards returns nil for an empty pile, matching the engine.
func decodeCards(scs []savedCard, seen map[int]bool) ([]engine.Card, error) {
	var out []engine.Card
	for _, sc := range scs {
		c, err := decodeCard(sc)
		if err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: card id %d appears twice", ErrCorrupt, c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

func decodeState(ss savedState) (engine.State, error) {
	seen := make(map[int]bool)
	deck, err := decodeCards(ss.Deck, seen)
	if err != nil {
		return engine.State{}, err
	}
	room, err := decodeCards(ss.Room, seen)
	if err != nil {
		return engine.State{}, err
	}
	switch {
	case len(room) > engine.RoomSize:
		return engine.State{}, fmt.Errorf("%w: room holds %d cards", ErrCorrupt, len(room))
	case ss.Health > engine.MaxHealth:
		return engine.State{}, fmt.Errorf("%w: health %d above %d", ErrCorrupt, ss.Health, engine.MaxHealth)
	case ss.CurrentRoomNumber < 0:
		return engine.State{}, fmt.Errorf("%w: negative room number", ErrCorrupt)
	case ss.LastRanAwayRoomNumber < engine.NeverForfeited || ss.LastRanAwayRoomNumber > ss.CurrentRoomNumber:
		return engine.State{}, fmt.Errorf("%w: last forfeit room %d", ErrCorrupt, ss.LastRanAwayRoomNumber)
	case ss.Won && !ss.GameOver:
		return engine.State{}, fmt.Errorf("%w: won without game over", ErrCorrupt)
	}

	s := engine.State{
		Deck:            deck,
		Room:            room,
		Health:          ss.Health,
		CurrentRoom:     ss.CurrentRoomNumber,
		LastForfeitRoom: ss.LastRanAwayRoomNumber,
		GameOver:        ss.GameOver,
		Won:             ss.Won,
	}
	if ss.EquippedWeapon != nil {
		wc, err := decodeCard(ss.EquippedWeapon.savedCard)
		if err != nil {
			return engine.State{}, err
		}
		if wc.Kind() != engine.KindWeapon {
			return engine.State{}, fmt.Errorf("%w: equipped %s is not a weapon", ErrCorrupt, wc)
		}
		w := &engine.Weapon{Card: wc}
		if ss.EquippedWeapon.LastUsedAttack != nil {
			slain, err := decodeCard(*ss.EquippedWeapon.LastUsedAttack)
			if err != nil {
				return engine.State{}, err
			}
			if slain.Kind() != engine.KindMonster {
				return engine.State{}, fmt.Errorf("%w: weapon slew non-monster %s", ErrCorrupt, slain)
			}
			w.LastSlain = &slain
		}
		s.Weapon = w
	}
	return s, nil
}
