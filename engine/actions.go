package engine

import (
	"errors"
	"fmt"
)

// Rejection reasons. Every one of them leaves the game untouched.
var (
	ErrNotStarted      = errors.New("game has not started")
	ErrGameOver        = errors.New("game is already over")
	ErrCardNotInRoom   = errors.New("card is not in the room")
	ErrWrongKind       = errors.New("card kind does not allow this action")
	ErrNoWeapon        = errors.New("no weapon equipped")
	ErrWeaponTooWeak   = errors.New("weapon can only fight monsters weaker than its last kill")
	ErrRoomNotCleared  = errors.New("room must hold at most one card to advance")
	ErrForfeitCooldown = errors.New("cannot run from two rooms in a row")
	ErrNoHistory       = errors.New("nothing to undo")
	ErrUnknownAction   = errors.New("unknown action")
)

// Apply dispatches an Action to the matching operation.
func (g *Game) Apply(a Action) error {
	switch a.Kind {
	case ActionDrink:
		return g.Drink(a.CardID)
	case ActionEquip:
		return g.Equip(a.CardID)
	case ActionFightBareHands:
		return g.FightBareHands(a.CardID)
	case ActionFightWithWeapon:
		return g.FightWithWeapon(a.CardID)
	case ActionNextRoom:
		return g.NextRoom()
	case ActionForfeit:
		return g.Forfeit()
	}
	return fmt.Errorf("%w: %d", ErrUnknownAction, a.Kind)
}

// checkPlayable rejects actions on a game that is not running.
func (g *Game) checkPlayable() error {
	if !g.Started {
		return ErrNotStarted
	}
	if g.GameOver {
		return ErrGameOver
	}
	return nil
}

// roomCardOfKind resolves a room card and checks its kind.
func (g *Game) roomCardOfKind(id int, want Kind) (Card, error) {
	if err := g.checkPlayable(); err != nil {
		return Card{}, err
	}
	c, ok := g.RoomCard(id)
	if !ok {
		return Card{}, fmt.Errorf("%w: id %d", ErrCardNotInRoom, id)
	}
	if c.Kind() != want {
		return Card{}, fmt.Errorf("%w: %s is a %s, want %s", ErrWrongKind, c, c.Kind(), want)
	}
	return c, nil
}

// removeFromRoom drops card id from the room into a fresh slice, so history
// snapshots never share a backing array with the live room.
func (g *Game) removeFromRoom(id int) {
	var room []Card
	for _, c := range g.Room {
		if c.ID != id {
			room = append(room, c)
		}
	}
	g.Room = room
}

// Drink consumes a potion, healing up to MaxHealth.
func (g *Game) Drink(id int) error {
	c, err := g.roomCardOfKind(id, KindPotion)
	if err != nil {
		return err
	}
	g.pushHistory()
	g.Health = min(MaxHealth, g.Health+c.Value())
	g.removeFromRoom(id)
	g.Evaluate()
	return nil
}

// Equip wields a weapon card. Any previously equipped weapon and its kill
// record are discarded.
func (g *Game) Equip(id int) error {
	c, err := g.roomCardOfKind(id, KindWeapon)
	if err != nil {
		return err
	}
	g.pushHistory()
	g.Weapon = &Weapon{Card: c}
	g.removeFromRoom(id)
	g.Evaluate()
	return nil
}

// FightBareHands takes the monster's full value as damage.
func (g *Game) FightBareHands(id int) error {
	c, err := g.roomCardOfKind(id, KindMonster)
	if err != nil {
		return err
	}
	g.pushHistory()
	g.Health -= c.Value()
	g.removeFromRoom(id)
	g.Evaluate()
	return nil
}

// FightWithWeapon fights a monster with the equipped weapon, taking only the
// damage the weapon does not absorb.
func (g *Game) FightWithWeapon(id int) error {
	c, err := g.roomCardOfKind(id, KindMonster)
	if err != nil {
		return err
	}
	if g.Weapon == nil {
		return ErrNoWeapon
	}
	if !g.Weapon.CanSlay(c) {
		return fmt.Errorf("%w: %s against last kill %s", ErrWeaponTooWeak, c, g.Weapon.LastSlain)
	}
	g.pushHistory()
	g.Health -= max(0, c.Value()-g.Weapon.Value())
	slain := c
	g.Weapon = &Weapon{Card: g.Weapon.Card, LastSlain: &slain}
	g.removeFromRoom(id)
	g.Evaluate()
	return nil
}

// NextRoom refills the room once it holds at most one card.
func (g *Game) NextRoom() error {
	if err := g.checkPlayable(); err != nil {
		return err
	}
	if len(g.Room) > 1 {
		return fmt.Errorf("%w: %d cards remain", ErrRoomNotCleared, len(g.Room))
	}
	g.pushHistory()
	g.advanceRoom()
	g.Evaluate()
	return nil
}

// Forfeit runs from the current room: its cards are shuffled onto the bottom
// of the deck and the next room is drawn immediately.
func (g *Game) Forfeit() error {
	if err := g.checkPlayable(); err != nil {
		return err
	}
	if !g.forfeitOffCooldown() {
		return fmt.Errorf("%w: last ran at room %d, now room %d", ErrForfeitCooldown, g.LastForfeitRoom, g.CurrentRoom)
	}
	g.pushHistory()
	fled := cloneCards(g.Room)
	Shuffle(fled, &g.RNG)
	g.Deck = append(cloneCards(g.Deck), fled...)
	g.Room = nil
	g.LastForfeitRoom = g.CurrentRoom
	g.advanceRoom()
	g.Evaluate()
	return nil
}

// ---------------------------------------------------------------------------
// Room draws
// ---------------------------------------------------------------------------

// fillRoom tops the room up to RoomSize from the front of the deck without
// touching the room counter. Used for the opening deal.
func (g *Game) fillRoom() {
	n := min(RoomSize-len(g.Room), len(g.Deck))
	if n <= 0 {
		return
	}
	room := make([]Card, 0, len(g.Room)+n)
	room = append(room, g.Room...)
	g.Room = append(room, g.Deck[:n]...)
	g.Deck = cloneCards(g.Deck[n:])
}

// advanceRoom draws the next room, keeping a lone surviving card.
func (g *Game) advanceRoom() {
	g.fillRoom()
	g.CurrentRoom++
}

// ---------------------------------------------------------------------------
// End detection
// ---------------------------------------------------------------------------

// Evaluate sets the terminal flags. A game is lost once health drops to zero
// and won once a started game has an empty deck and an empty room.
func (g *Game) Evaluate() {
	if g.GameOver {
		return
	}
	switch {
	case g.Health <= 0:
		g.GameOver = true
		g.Won = false
	case g.Started && len(g.Deck) == 0 && len(g.Room) == 0:
		g.GameOver = true
		g.Won = true
	}
}
