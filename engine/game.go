// Package engine implements the Scoundrel solo card game rules.
//
// The engine owns all game state. Every operation validates its preconditions
// first and returns a sentinel error without touching state when they do not
// hold, so callers can treat any error as a rejected input.
package engine

const (
	DeckSize  = 44
	MaxHealth = 20
	RoomSize  = 4

	// NeverForfeited is the LastForfeitRoom sentinel for a game without a forfeit.
	NeverForfeited = -1
)

// State is the undoable part of a game. History entries are States, so the
// history log never nests.
type State struct {
	Deck            []Card
	Room            []Card
	Health          int
	Weapon          *Weapon
	CurrentRoom     int
	LastForfeitRoom int
	GameOver        bool
	Won             bool
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Deck = cloneCards(s.Deck)
	out.Room = cloneCards(s.Room)
	out.Weapon = s.Weapon.clone()
	return out
}

// cloneCards copies cards into a fresh slice. Empty piles are always nil.
func cloneCards(cards []Card) []Card {
	if len(cards) == 0 {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// Game is the complete state of one Scoundrel session.
type Game struct {
	State
	History []State
	Started bool
	RNG     RNG
}

// New returns an unstarted game whose shuffles are driven by seed.
// Call NewGame to deal.
func New(seed uint64) Game {
	return Game{
		State: State{LastForfeitRoom: NeverForfeited},
		RNG:   NewRNG(seed),
	}
}

// NewGame discards any game in progress and deals a fresh one.
// It always succeeds.
func (g *Game) NewGame() {
	deck := NewDeck(&g.RNG)
	g.State = State{
		Deck:            deck,
		Health:          MaxHealth,
		LastForfeitRoom: NeverForfeited,
	}
	g.History = nil
	g.Started = true
	g.fillRoom()
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal returns true when the game is over.
func (g *Game) IsTerminal() bool { return g.GameOver }

// DeckCount returns the number of cards left to draw.
func (g *Game) DeckCount() int { return len(g.Deck) }

// RoomCards returns a copy of the current room.
func (g *Game) RoomCards() []Card { return cloneCards(g.Room) }

// EquippedWeapon returns a copy of the equipped weapon, if any.
func (g *Game) EquippedWeapon() (Weapon, bool) {
	if g.Weapon == nil {
		return Weapon{}, false
	}
	return *g.Weapon.clone(), true
}

// HistoryDepth returns how many actions can be undone.
func (g *Game) HistoryDepth() int { return len(g.History) }

// roomIndex returns the position of card id in the room, or -1.
func (g *Game) roomIndex(id int) int {
	for i, c := range g.Room {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RoomCard returns the room card with the given id.
func (g *Game) RoomCard(id int) (Card, bool) {
	i := g.roomIndex(id)
	if i < 0 {
		return Card{}, false
	}
	return g.Room[i], true
}

// ---------------------------------------------------------------------------
// Snapshot Undo
// ---------------------------------------------------------------------------

// pushHistory records the current state before a mutation.
func (g *Game) pushHistory() {
	g.History = append(g.History, g.State.Clone())
}

// Undo restores the state recorded before the most recent action.
// Undo itself is not recorded.
func (g *Game) Undo() error {
	n := len(g.History)
	if n == 0 {
		return ErrNoHistory
	}
	g.State = g.History[n-1]
	g.History[n-1] = State{}
	g.History = g.History[:n-1]
	if len(g.History) == 0 {
		g.History = nil
	}
	return nil
}
