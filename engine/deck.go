package engine

// NewDeck builds the 44-card Scoundrel deck and shuffles it with rng.
//
// Spades and Clubs contribute 2 through Ace as monsters; Hearts (potions) and
// Diamonds (weapons) contribute 2 through 10 only. IDs are assigned in
// construction order starting at 0.
func NewDeck(rng *RNG) []Card {
	deck := make([]Card, 0, DeckSize)
	id := 0
	for _, suit := range Suits {
		top := RankTen
		if KindOf(suit) == KindMonster {
			top = RankAce
		}
		for r := RankTwo; r <= top; r++ {
			deck = append(deck, Card{ID: id, Suit: suit, Rank: r})
			id++
		}
	}
	Shuffle(deck, rng)
	return deck
}
