package game

// Fire resolves one shot from attacker at target inside matchID.
// The engine never ends the match; callers poll CanEndMatch.
func (w *World) Fire(matchID int, attacker, target string, weapon Weapon) (*FireResult, error) {
	match, err := w.Match(matchID)
	if err != nil || match.Status != MatchRunning {
		return nil, ErrNotInMatch
	}

	spec, ok := WeaponSpecFor(weapon)
	if !ok {
		return nil, ErrInvalidItem
	}

	shooter := w.Ship(matchID, attacker)
	if shooter == nil {
		return nil, ErrNotInMatch
	}
	victim := w.Ship(matchID, target)
	if victim == nil {
		return nil, ErrTargetNotInMatch
	}
	if shooter.TeamID == victim.TeamID {
		return nil, ErrFriendlyFire
	}
	if shooter.IsSunk() {
		return nil, ErrShipSunk
	}
	if victim.IsSunk() {
		return nil, ErrTargetSunk
	}
	if shooter.Ammo[weapon] <= 0 {
		return nil, ErrOutOfAmmo
	}

	shooter.Ammo[weapon]--
	applyDamage(victim, spec.Damage)

	return &FireResult{
		Attacker:    attacker,
		Target:      target,
		Weapon:      weapon,
		Damage:      spec.Damage,
		TargetHP:    victim.HP,
		TargetArmor: victim.TotalArmor(),
		Sunk:        victim.IsSunk(),
	}, nil
}

// applyDamage drains armor slot 2, then slot 1, then hp. Values are clamped at
// zero and an emptied slot goes back to ArmorNone.
func applyDamage(ship *Ship, damage int) {
	remaining := damage

	for i := ArmorSlots - 1; i >= 0 && remaining > 0; i-- {
		slot := &ship.Armor[i]
		if slot.Type == ArmorNone {
			continue
		}

		absorbed := slot.Value
		if absorbed > remaining {
			absorbed = remaining
		}
		slot.Value -= absorbed
		remaining -= absorbed

		if slot.Value <= 0 {
			*slot = ArmorSlot{Type: ArmorNone}
		}
	}

	ship.HP -= remaining
	if ship.HP < 0 {
		ship.HP = 0
	}
}
