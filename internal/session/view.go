package session

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/scoundrel/engine"
)

// CardView is a room or weapon card as presented to the UI.
type CardView struct {
	ID           int    `json:"id"`
	Suit         string `json:"suit"`
	Value        string `json:"value"`
	NumericValue int    `json:"numericValue"`
	Type         string `json:"type"`
	Red          bool   `json:"red"`
	Label        string `json:"label"`
	// CanFightWithWeapon is set on monsters the equipped weapon may still slay.
	CanFightWithWeapon bool `json:"canFightWithWeapon,omitempty"`
}

// WeaponView is the equipped weapon and the last monster it killed.
type WeaponView struct {
	Card      CardView  `json:"card"`
	LastSlain *CardView `json:"lastSlain,omitempty"`
}

// ActionView is one action the player may take right now.
type ActionView struct {
	Type   string `json:"type"`
	CardID *int   `json:"cardId,omitempty"`
}

// View is the read-only projection of a session sent to clients.
type View struct {
	SessionID      uuid.UUID    `json:"sessionId"`
	Slot           string       `json:"slot"`
	Started        bool         `json:"started"`
	GameOver       bool         `json:"gameOver"`
	Won            bool         `json:"won"`
	Health         int          `json:"health"`
	MaxHealth      int          `json:"maxHealth"`
	DeckCount      int          `json:"deckCount"`
	Room           []CardView   `json:"room"`
	Weapon         *WeaponView  `json:"weapon,omitempty"`
	CurrentRoom    int          `json:"currentRoom"`
	CanAdvanceRoom bool         `json:"canAdvanceRoom"`
	CanForfeit     bool         `json:"canForfeit"`
	HistoryDepth   int          `json:"historyDepth"`
	CanUndo        bool         `json:"canUndo"`
	LegalActions   []ActionView `json:"legalActions"`
}

func cardView(c engine.Card) CardView {
	return CardView{
		ID:           c.ID,
		Suit:         c.Suit.String(),
		Value:        c.Rank.String(),
		NumericValue: c.Value(),
		Type:         c.Kind().String(),
		Red:          c.Suit.IsRed(),
		Label:        c.String(),
	}
}

// BuildView projects g. Slices are never nil so they encode as [].
func BuildView(g *engine.Game) View {
	v := View{
		Started:        g.Started,
		GameOver:       g.GameOver,
		Won:            g.Won,
		Health:         g.Health,
		MaxHealth:      engine.MaxHealth,
		DeckCount:      g.DeckCount(),
		Room:           make([]CardView, 0, len(g.Room)),
		CurrentRoom:    g.CurrentRoom,
		CanAdvanceRoom: g.CanAdvanceRoom(),
		CanForfeit:     g.CanForfeit(),
		HistoryDepth:   g.HistoryDepth(),
		CanUndo:        g.HistoryDepth() > 0,
		LegalActions:   []ActionView{},
	}
	for _, c := range g.Room {
		cv := cardView(c)
		cv.CanFightWithWeapon = c.Kind() == engine.KindMonster && g.CanFightWithWeapon(c.ID)
		v.Room = append(v.Room, cv)
	}
	if w, ok := g.EquippedWeapon(); ok {
		wv := &WeaponView{Card: cardView(w.Card)}
		if w.LastSlain != nil {
			slain := cardView(*w.LastSlain)
			wv.LastSlain = &slain
		}
		v.Weapon = wv
	}
	for _, a := range g.LegalActions() {
		av := ActionView{Type: a.Kind.String()}
		if a.Kind.TargetsCard() {
			id := a.CardID
			av.CardID = &id
		}
		v.LegalActions = append(v.LegalActions, av)
	}
	return v
}
