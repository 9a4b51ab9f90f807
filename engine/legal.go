package engine

// CanAdvanceRoom reports whether NextRoom would be accepted.
func (g *Game) CanAdvanceRoom() bool {
	return g.checkPlayable() == nil && len(g.Room) <= 1
}

// CanForfeit reports whether Forfeit would be accepted. A player may not run
// from two rooms in direct succession.
func (g *Game) CanForfeit() bool {
	return g.checkPlayable() == nil && g.forfeitOffCooldown()
}

func (g *Game) forfeitOffCooldown() bool {
	return g.LastForfeitRoom == NeverForfeited || g.CurrentRoom-g.LastForfeitRoom >= 2
}

// CanFightWithWeapon reports whether the equipped weapon may fight the room
// card with the given id.
func (g *Game) CanFightWithWeapon(id int) bool {
	if g.checkPlayable() != nil || g.Weapon == nil {
		return false
	}
	c, ok := g.RoomCard(id)
	return ok && c.Kind() == KindMonster && g.Weapon.CanSlay(c)
}

// LegalActions returns every action the player may take right now, card
// actions first in room order.
func (g *Game) LegalActions() []Action {
	if g.checkPlayable() != nil {
		return nil
	}
	actions := make([]Action, 0, len(g.Room)*2+2)
	for _, c := range g.Room {
		switch c.Kind() {
		case KindPotion:
			actions = append(actions, Action{Kind: ActionDrink, CardID: c.ID})
		case KindWeapon:
			actions = append(actions, Action{Kind: ActionEquip, CardID: c.ID})
		case KindMonster:
			actions = append(actions, Action{Kind: ActionFightBareHands, CardID: c.ID})
			if g.Weapon != nil && g.Weapon.CanSlay(c) {
				actions = append(actions, Action{Kind: ActionFightWithWeapon, CardID: c.ID})
			}
		}
	}
	if g.CanAdvanceRoom() {
		actions = append(actions, Action{Kind: ActionNextRoom})
	}
	if g.CanForfeit() {
		actions = append(actions, Action{Kind: ActionForfeit})
	}
	return actions
}

// IsLegal reports whether a is currently among LegalActions.
func (g *Game) IsLegal(a Action) bool {
	for _, l := range g.LegalActions() {
		if l.Kind == a.Kind && (!a.Kind.TargetsCard() || l.CardID == a.CardID) {
			return true
		}
	}
	return false
}
