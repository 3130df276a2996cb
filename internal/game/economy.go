package game

// BuyArmor equips username's ship with a plate in the first free slot and
// debits its price. Returns the 1-based slot used and the new balance.
func (w *World) BuyArmor(username string, matchID int, armor ArmorType) (int, *Ship, int64, error) {
	ship, err := w.shipForPurchase(username, matchID)
	if err != nil {
		return 0, nil, 0, err
	}

	spec, ok := ArmorSpecFor(armor)
	if !ok {
		return 0, nil, 0, ErrInvalidItem
	}

	slot := -1
	for i := range ship.Armor {
		if ship.Armor[i].Type == ArmorNone {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, nil, 0, ErrArmorSlotsFull
	}

	balance, err := w.users.AdjustCoin(username, -spec.Price)
	if err != nil {
		return 0, nil, balance, err
	}

	ship.Armor[slot] = ArmorSlot{Type: armor, Value: spec.Absorb}
	return slot + 1, ship, balance, nil
}

// BuyWeapon adds one ammo pack of the weapon class to username's ship.
// Returns the new ammo count and balance.
func (w *World) BuyWeapon(username string, matchID int, weapon Weapon) (int, int64, error) {
	ship, err := w.shipForPurchase(username, matchID)
	if err != nil {
		return 0, 0, err
	}

	spec, ok := WeaponSpecFor(weapon)
	if !ok {
		return 0, 0, ErrInvalidItem
	}

	balance, err := w.users.AdjustCoin(username, -spec.Price)
	if err != nil {
		return 0, balance, err
	}

	ship.Ammo[weapon] += spec.PackSize
	return ship.Ammo[weapon], balance, nil
}

func (w *World) shipForPurchase(username string, matchID int) (*Ship, error) {
	match, err := w.Match(matchID)
	if err != nil || match.Status != MatchRunning {
		return nil, ErrNotInMatch
	}
	ship := w.Ship(matchID, username)
	if ship == nil {
		return nil, ErrNotInMatch
	}
	if ship.IsSunk() {
		return nil, ErrShipSunk
	}
	return ship, nil
}
