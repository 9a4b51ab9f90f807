package engine

// Suit is one of the four standard suits.
type Suit uint8

// Suit constants. Spades and Clubs are black, Hearts and Diamonds are red.
const (
	SuitSpades   Suit = 0
	SuitClubs    Suit = 1
	SuitHearts   Suit = 2
	SuitDiamonds Suit = 3
)

// Suits lists every suit in deck-construction order.
var Suits = [4]Suit{SuitSpades, SuitClubs, SuitHearts, SuitDiamonds}

// String returns the suit symbol.
func (s Suit) String() string {
	switch s {
	case SuitSpades:
		return "♠"
	case SuitClubs:
		return "♣"
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	}
	return "?"
}

// IsRed reports whether the suit is Hearts or Diamonds.
func (s Suit) IsRed() bool { return s == SuitHearts || s == SuitDiamonds }

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool { return s <= SuitDiamonds }

// ParseSuit maps a suit symbol back to a Suit.
func ParseSuit(sym string) (Suit, bool) {
	for _, s := range Suits {
		if s.String() == sym {
			return s, true
		}
	}
	return 0, false
}

// Rank holds the card's numeric value directly: 2 to 10, then J=11, Q=12, K=13, Ace=14.
type Rank uint8

// Rank constants.
const (
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

// String returns the face label used on the card ("2".."10", "J", "Q", "K", "Ace").
func (r Rank) String() string {
	switch r {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "Ace"
	}
	if r >= RankTwo && r <= RankTen {
		if r == RankTen {
			return "10"
		}
		return string(rune('0' + r))
	}
	return "?"
}

// Valid reports whether r is within 2..Ace.
func (r Rank) Valid() bool { return r >= RankTwo && r <= RankAce }

// ParseRank maps a face label back to a Rank.
func ParseRank(label string) (Rank, bool) {
	for r := RankTwo; r <= RankAce; r++ {
		if r.String() == label {
			return r, true
		}
	}
	return 0, false
}

// Kind is the role a card plays, derived from its suit.
type Kind uint8

const (
	KindMonster Kind = iota // Spades, Clubs
	KindPotion              // Hearts
	KindWeapon              // Diamonds
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindMonster:
		return "monster"
	case KindPotion:
		return "potion"
	case KindWeapon:
		return "weapon"
	}
	return "unknown"
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range [3]Kind{KindMonster, KindPotion, KindWeapon} {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// KindOf returns the kind every card of suit s has.
func KindOf(s Suit) Kind {
	switch s {
	case SuitHearts:
		return KindPotion
	case SuitDiamonds:
		return KindWeapon
	}
	return KindMonster
}

// Card is an immutable playing card. ID is unique within a deck.
type Card struct {
	ID   int
	Suit Suit
	Rank Rank
}

// Value returns the card's numeric value (2..14).
func (c Card) Value() int { return int(c.Rank) }

// Kind returns the card's role, derived from its suit.
func (c Card) Kind() Kind { return KindOf(c.Suit) }

// String renders the card as rank followed by suit symbol, e.g. "Q♠".
func (c Card) String() string { return c.Rank.String() + c.Suit.String() }

// Weapon is the equipped weapon card together with the last monster it slew.
// LastSlain is nil until the weapon is first used; it bounds which monsters the
// weapon may fight next.
type Weapon struct {
	Card      Card
	LastSlain *Card
}

// Value returns the weapon's attack value.
func (w Weapon) Value() int { return w.Card.Value() }

// CanSlay reports whether the weapon may be used against monster m.
func (w Weapon) CanSlay(m Card) bool {
	return w.LastSlain == nil || m.Value() < w.LastSlain.Value()
}

// clone returns a copy that shares no pointers with w.
func (w *Weapon) clone() *Weapon {
	if w == nil {
		return nil
	}
	out := &Weapon{Card: w.Card}
	if w.LastSlain != nil {
		slain := *w.LastSlain
		out.LastSlain = &slain
	}
	return out
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// ActionKind identifies one of the player actions.
type ActionKind uint8

const (
	ActionDrink ActionKind = iota
	ActionEquip
	ActionFightBareHands
	ActionFightWithWeapon
	ActionNextRoom
	ActionForfeit
)

// String returns the wire name of the action.
func (k ActionKind) String() string {
	switch k {
	case ActionDrink:
		return "drink"
	case ActionEquip:
		return "equip"
	case ActionFightBareHands:
		return "fight"
	case ActionFightWithWeapon:
		return "fight_weapon"
	case ActionNextRoom:
		return "next_room"
	case ActionForfeit:
		return "forfeit"
	}
	return "unknown"
}

// ParseActionKind maps a wire name back to an ActionKind.
func ParseActionKind(name string) (ActionKind, bool) {
	for k := ActionDrink; k <= ActionForfeit; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// TargetsCard reports whether the action acts on a room card.
func (k ActionKind) TargetsCard() bool { return k <= ActionFightWithWeapon }

// Action is a single player intent. CardID is ignored for room-level actions.
type Action struct {
	Kind   ActionKind
	CardID int
}
