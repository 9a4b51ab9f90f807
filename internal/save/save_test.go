package save

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jason-s-yu/scoundrel/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedGame returns a game several actions deep with a forfeit on record and
// a non-trivial history.
func playedGame(t *testing.T) engine.Game {
	t.Helper()
	g := engine.New(2024)
	g.NewGame()
	require.NoError(t, g.Forfeit())
	picker := engine.NewRNG(9)
	for i := 0; i < 12 && !g.GameOver; i++ {
		legal := g.LegalActions()
		require.NotEmpty(t, legal)
		require.NoError(t, g.Apply(legal[picker.IntN(len(legal))]))
	}
	return g
}

func TestRoundTripPlayedGame(t *testing.T) {
	g := playedGame(t)
	data, err := Encode(g)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestRoundTripBlankGame(t *testing.T) {
	g := engine.New(5)
	data, err := Encode(g)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, g, got)
	assert.False(t, got.Started)
}

func TestRoundTripWeaponWithKill(t *testing.T) {
	g := engine.New(3)
	g.NewGame()
	slain := engine.Card{ID: 12, Suit: engine.SuitSpades, Rank: engine.RankAce}
	g.Weapon = &engine.Weapon{Card: engine.Card{ID: 43, Suit: engine.SuitDiamonds, Rank: engine.RankTen}, LastSlain: &slain}
	// Keep ids unique: drop the cards reused above from the piles.
	g.Deck = without(g.Deck, 12, 43)
	g.Room = without(g.Room, 12, 43)

	data, err := Encode(g)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, got.Weapon)
	require.NotNil(t, got.Weapon.LastSlain)
	assert.Equal(t, *g.Weapon.LastSlain, *got.Weapon.LastSlain)
	assert.Equal(t, g, got)
}

func without(cards []engine.Card, ids ...int) []engine.Card {
	var out []engine.Card
outer:
	for _, c := range cards {
		for _, id := range ids {
			if c.ID == id {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}

// TestResumeIsBitIdentical plays on from a decoded copy and from the original
// and expects the same results, shuffles included.
func TestResumeIsBitIdentical(t *testing.T) {
	g := playedGame(t)
	data, err := Encode(g)
	require.NoError(t, err)
	resumed, err := Decode(data)
	require.NoError(t, err)

	drive := func(g *engine.Game) {
		picker := engine.NewRNG(77)
		for i := 0; i < 60 && !g.GameOver; i++ {
			legal := g.LegalActions()
			_ = g.Apply(legal[picker.IntN(len(legal))])
		}
		if !g.GameOver {
			g.NewGame()
		}
	}
	drive(&g)
	drive(&resumed)
	assert.Equal(t, g, resumed)
}

func TestRecordLayout(t *testing.T) {
	g := playedGame(t)
	data, err := Encode(g)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	for _, key := range []string{
		"version", "deck", "room", "health", "equippedWeapon", "currentRoomNumber",
		"lastRanAwayRoomNumber", "gameOver", "won", "history", "gameStarted", "rng",
	} {
		assert.Contains(t, raw, key)
	}

	var history []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["history"], &history))
	require.NotEmpty(t, history)
	assert.NotContains(t, history[0], "history", "history entries must not nest")

	var deck []savedCard
	require.NoError(t, json.Unmarshal(raw["deck"], &deck))
	require.NotEmpty(t, deck)
	assert.NotEmpty(t, deck[0].Suit)
	assert.NotEmpty(t, deck[0].Type)
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	g := playedGame(t)
	good, err := Encode(g)
	require.NoError(t, err)

	mutate := func(fn func(m map[string]any)) string {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(good), &m))
		fn(m)
		b, err := json.Marshal(m)
		require.NoError(t, err)
		return string(b)
	}
	firstDeckCard := func(m map[string]any) map[string]any {
		return m["deck"].([]any)[0].(map[string]any)
	}

	cases := map[string]string{
		"not json":      "{{{",
		"empty":         "",
		"wrong version": mutate(func(m map[string]any) { m["version"] = 99 }),
		"zero rng":      mutate(func(m map[string]any) { m["rng"] = "0" }),
		"bad suit":      mutate(func(m map[string]any) { firstDeckCard(m)["suit"] = "★" }),
		"bad value":     mutate(func(m map[string]any) { firstDeckCard(m)["value"] = "Joker" }),
		"bad numeric":   mutate(func(m map[string]any) { firstDeckCard(m)["numericValue"] = 99 }),
		"bad type":      mutate(func(m map[string]any) { firstDeckCard(m)["type"] = "dragon" }),
		"duplicate id": mutate(func(m map[string]any) {
			deck := m["deck"].([]any)
			m["deck"] = append(deck, deck[0])
		}),
		"health above max": mutate(func(m map[string]any) { m["health"] = 25 }),
		"won not over":     mutate(func(m map[string]any) { m["won"] = true; m["gameOver"] = false }),
		"bad forfeit room": mutate(func(m map[string]any) { m["lastRanAwayRoomNumber"] = -5 }),
		"oversized room": mutate(func(m map[string]any) {
			deck := m["deck"].([]any)
			m["room"] = deck[:5]
			m["deck"] = deck[5:]
		}),
		"bad history": mutate(func(m map[string]any) {
			m["history"].([]any)[0].(map[string]any)["health"] = 99
		}),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecodeRejectsNonWeaponEquipped(t *testing.T) {
	g := engine.New(4)
	g.NewGame()
	g.Room = nil
	g.Deck = nil
	g.Weapon = &engine.Weapon{Card: engine.Card{ID: 1, Suit: engine.SuitSpades, Rank: engine.RankTwo}}
	data, err := Encode(g)
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.True(t, strings.Contains(err.Error(), "not a weapon"))
}
