package engine

import (
	"errors"
	"reflect"
	"testing"
)

// riggedGame returns a started game with a fixed room, deck and health.
func riggedGame(t *testing.T, room, deck []Card, health int) Game {
	t.Helper()
	g := New(7)
	g.Started = true
	g.Room = room
	g.Deck = deck
	g.Health = health
	return g
}

func monster(id int, r Rank) Card { return Card{ID: id, Suit: SuitSpades, Rank: r} }
func potion(id int, r Rank) Card  { return Card{ID: id, Suit: SuitHearts, Rank: r} }
func weapon(id int, r Rank) Card  { return Card{ID: id, Suit: SuitDiamonds, Rank: r} }

// TestNewDeckComposition verifies the 44-card suit and rank distribution.
func TestNewDeckComposition(t *testing.T) {
	r := NewRNG(42)
	deck := NewDeck(&r)

	if len(deck) != DeckSize {
		t.Fatalf("len(deck) = %d, want %d", len(deck), DeckSize)
	}

	seenID := make(map[int]bool)
	seenCard := make(map[[2]uint8]bool)
	perSuit := make(map[Suit]int)
	kinds := make(map[Kind]int)
	for _, c := range deck {
		if seenID[c.ID] {
			t.Errorf("duplicate id %d", c.ID)
		}
		seenID[c.ID] = true
		key := [2]uint8{uint8(c.Suit), uint8(c.Rank)}
		if seenCard[key] {
			t.Errorf("duplicate card %s", c)
		}
		seenCard[key] = true
		perSuit[c.Suit]++
		kinds[c.Kind()]++

		if !c.Rank.Valid() {
			t.Errorf("card %d has invalid rank %d", c.ID, c.Rank)
		}
		if c.Kind() != KindMonster && c.Rank > RankTen {
			t.Errorf("%s %s has a face rank", c.Kind(), c)
		}
	}
	for id := 0; id < DeckSize; id++ {
		if !seenID[id] {
			t.Errorf("id %d missing", id)
		}
	}

	want := map[Suit]int{SuitSpades: 13, SuitClubs: 13, SuitHearts: 9, SuitDiamonds: 9}
	for s, n := range want {
		if perSuit[s] != n {
			t.Errorf("%s count = %d, want %d", s, perSuit[s], n)
		}
	}
	if kinds[KindMonster] != 26 || kinds[KindPotion] != 9 || kinds[KindWeapon] != 9 {
		t.Errorf("kinds = %v, want 26 monsters, 9 potions, 9 weapons", kinds)
	}
}

func TestNewDeckShuffledBySeed(t *testing.T) {
	a, b, c := NewRNG(1), NewRNG(1), NewRNG(2)
	d1, d2, d3 := NewDeck(&a), NewDeck(&b), NewDeck(&c)
	if !reflect.DeepEqual(d1, d2) {
		t.Error("same seed produced different decks")
	}
	if reflect.DeepEqual(d1, d3) {
		t.Error("different seeds produced identical decks")
	}
}

func TestNewUnstarted(t *testing.T) {
	g := New(3)
	if g.Started || g.GameOver || g.Won {
		t.Errorf("New: started=%v over=%v won=%v, want all false", g.Started, g.GameOver, g.Won)
	}
	if g.LastForfeitRoom != NeverForfeited {
		t.Errorf("LastForfeitRoom = %d, want %d", g.LastForfeitRoom, NeverForfeited)
	}
	if err := g.NextRoom(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("NextRoom on unstarted game = %v, want ErrNotStarted", err)
	}
	g.Evaluate()
	if g.GameOver {
		t.Error("an unstarted empty game must not be won")
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := New(11)
	g.NewGame()

	if !g.Started {
		t.Error("Started = false after NewGame")
	}
	if g.Health != MaxHealth {
		t.Errorf("Health = %d, want %d", g.Health, MaxHealth)
	}
	if len(g.Room) != RoomSize {
		t.Errorf("len(Room) = %d, want %d", len(g.Room), RoomSize)
	}
	if g.DeckCount() != DeckSize-RoomSize {
		t.Errorf("DeckCount = %d, want %d", g.DeckCount(), DeckSize-RoomSize)
	}
	if g.CurrentRoom != 0 || g.LastForfeitRoom != NeverForfeited {
		t.Errorf("counters = %d/%d, want 0/%d", g.CurrentRoom, g.LastForfeitRoom, NeverForfeited)
	}
	if _, ok := g.EquippedWeapon(); ok {
		t.Error("weapon equipped after NewGame")
	}
	if g.HistoryDepth() != 0 {
		t.Errorf("HistoryDepth = %d, want 0", g.HistoryDepth())
	}
}

func TestNewGameResetsEverything(t *testing.T) {
	g := New(11)
	g.NewGame()
	g.Health = -3
	g.GameOver = true
	g.Weapon = &Weapon{Card: weapon(99, RankNine)}
	g.CurrentRoom = 8
	g.LastForfeitRoom = 6
	g.History = append(g.History, g.State.Clone())

	g.NewGame()
	if g.GameOver || g.Won || g.Health != MaxHealth || g.Weapon != nil {
		t.Errorf("NewGame left stale state: %+v", g.State)
	}
	if g.CurrentRoom != 0 || g.LastForfeitRoom != NeverForfeited || g.HistoryDepth() != 0 {
		t.Errorf("NewGame left stale counters or history: room=%d last=%d hist=%d", g.CurrentRoom, g.LastForfeitRoom, g.HistoryDepth())
	}
}

func TestRoomCardsIsACopy(t *testing.T) {
	g := New(8)
	g.NewGame()
	cards := g.RoomCards()
	cards[0] = Card{ID: 1000}
	if g.Room[0].ID == 1000 {
		t.Error("RoomCards exposed the live room")
	}
}

// ---------------------------------------------------------------------------
// Evaluate
// ---------------------------------------------------------------------------

func TestEvaluateWin(t *testing.T) {
	g := riggedGame(t, nil, nil, 5)
	g.Evaluate()
	if !g.GameOver || !g.Won {
		t.Errorf("over=%v won=%v, want true/true", g.GameOver, g.Won)
	}
}

func TestEvaluateLoss(t *testing.T) {
	for _, hp := range []int{0, -4} {
		g := riggedGame(t, nil, nil, hp)
		g.Evaluate()
		if !g.GameOver || g.Won {
			t.Errorf("health %d: over=%v won=%v, want true/false", hp, g.GameOver, g.Won)
		}
	}
}

func TestEvaluateInProgress(t *testing.T) {
	g := riggedGame(t, []Card{monster(0, RankTwo)}, nil, 5)
	g.Evaluate()
	if g.GameOver {
		t.Error("game with a card left in the room should continue")
	}
}

// ---------------------------------------------------------------------------
// Undo
// ---------------------------------------------------------------------------

func TestUndoRevertsExactlyOneAction(t *testing.T) {
	actions := []struct {
		name string
		do   func(g *Game) error
	}{
		{"drink", func(g *Game) error { return g.Drink(1) }},
		{"equip", func(g *Game) error { return g.Equip(2) }},
		{"fight", func(g *Game) error { return g.FightBareHands(3) }},
		{"fight_weapon", func(g *Game) error { return g.FightWithWeapon(3) }},
		{"forfeit", func(g *Game) error { return g.Forfeit() }},
	}
	for _, tc := range actions {
		t.Run(tc.name, func(t *testing.T) {
			g := riggedGame(t,
				[]Card{potion(1, RankFour), weapon(2, RankSix), monster(3, RankNine), monster(4, RankThree)},
				[]Card{monster(5, RankTen), potion(6, RankTwo), weapon(7, RankTwo), monster(8, RankAce), monster(9, RankFive)},
				12)
			g.Weapon = &Weapon{Card: weapon(10, RankFour)}
			before := g.State.Clone()

			if err := tc.do(&g); err != nil {
				t.Fatalf("action failed: %v", err)
			}
			if reflect.DeepEqual(before, g.State) {
				t.Fatal("action did not change state")
			}
			if g.HistoryDepth() != 1 {
				t.Fatalf("HistoryDepth = %d, want 1", g.HistoryDepth())
			}
			if err := g.Undo(); err != nil {
				t.Fatalf("Undo: %v", err)
			}
			if !reflect.DeepEqual(before, g.State) {
				t.Errorf("state after undo\n got %+v\nwant %+v", g.State, before)
			}
			if err := g.Undo(); !errors.Is(err, ErrNoHistory) {
				t.Errorf("second Undo = %v, want ErrNoHistory", err)
			}
		})
	}
}

func TestUndoNextRoom(t *testing.T) {
	g := riggedGame(t, []Card{monster(1, RankTwo)}, []Card{monster(2, RankThree), potion(3, RankFour)}, 20)
	before := g.State.Clone()
	if err := g.NextRoom(); err != nil {
		t.Fatalf("NextRoom: %v", err)
	}
	if err := g.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !reflect.DeepEqual(before, g.State) {
		t.Errorf("state after undo\n got %+v\nwant %+v", g.State, before)
	}
}

func TestUndoRevivesLostGame(t *testing.T) {
	g := riggedGame(t, []Card{monster(1, RankAce), monster(2, RankTwo)}, nil, 10)
	if err := g.FightBareHands(1); err != nil {
		t.Fatalf("FightBareHands: %v", err)
	}
	if !g.GameOver || g.Won {
		t.Fatalf("expected loss, got over=%v won=%v", g.GameOver, g.Won)
	}
	if err := g.Undo(); err != nil {
		t.Fatalf("Undo after loss: %v", err)
	}
	if g.GameOver || g.Health != 10 {
		t.Errorf("after undo: over=%v health=%d, want false/10", g.GameOver, g.Health)
	}
}

func TestHistorySnapshotsDoNotAlias(t *testing.T) {
	g := riggedGame(t, []Card{potion(1, RankTwo), potion(2, RankThree), monster(3, RankFour)}, nil, 10)
	if err := g.Drink(1); err != nil {
		t.Fatal(err)
	}
	g.Room[0] = Card{ID: 500}
	if g.History[0].Room[1].ID == 500 || g.History[0].Room[0].ID != 1 {
		t.Errorf("history snapshot shares memory with live room: %v", g.History[0].Room)
	}
}
