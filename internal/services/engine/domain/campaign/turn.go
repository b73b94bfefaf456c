package campaign

import "sort"

// TurnOrder returns the canonical speaking order for a roster: dm actors
// sorted by id, then every other actor sorted by id.
func TurnOrder(actors []Actor) []string {
	dms := make([]string, 0, len(actors))
	rest := make([]string, 0, len(actors))
	for _, actor := range actors {
		if actor.IsDM() {
			dms = append(dms, actor.ID)
		} else {
			rest = append(rest, actor.ID)
		}
	}
	sort.Strings(dms)
	sort.Strings(rest)
	return append(dms, rest...)
}

// InitialOwner returns the head of the canonical order, or "" for an empty
// roster.
func InitialOwner(actors []Actor) string {
	order := TurnOrder(actors)
	if len(order) == 0 {
		return ""
	}
	return order[0]
}

// NextOwner returns the successor of current in the canonical order,
// wrapping at the end. An owner missing from the order restarts the round
// at position 0. An empty roster yields "".
func NextOwner(actors []Actor, current string) string {
	order := TurnOrder(actors)
	if len(order) == 0 {
		return ""
	}
	for i, actorID := range order {
		if actorID == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
