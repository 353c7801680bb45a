package badges

import "slices"

// Evaluate returns every badge in set that is not yet achieved and whose
// condition holds. All matches are returned together, in set order.
func Evaluate(set []Badge, ctx Context) []Badge {
	var unlocked []Badge
	for _, b := range set {
		if slices.Contains(ctx.AchievedBadges, b.ID) {
			continue
		}
		if b.Condition == nil || !b.Condition.Met(ctx) {
			continue
		}
		unlocked = append(unlocked, b)
	}
	return unlocked
}

// IDs returns the ids of the given badges.
func IDs(set []Badge) []string {
	ids := make([]string, len(set))
	for i, b := range set {
		ids[i] = b.ID
	}
	return ids
}
