package hierarchy

// ConfidentialityGuard is the entity-level visibility override. It only
// ever restricts: a work item the tree denied stays denied regardless of
// what the guard would say.
type ConfidentialityGuard struct{}

func NewConfidentialityGuard() ConfidentialityGuard {
	return ConfidentialityGuard{}
}

// IsVisible reports whether the actor may see the work item at all. A
// non-confidential item is visible to anyone with an access path. A
// confidential item is visible only to Owners and to users in the item's
// owner or team set; hierarchy-derived permission does not override
// confidentiality.
func (ConfidentialityGuard) IsVisible(actor Actor, item WorkItem) bool {
	if !item.Confidential {
		return true
	}
	if actor.Role == RoleOwner {
		return true
	}
	for _, id := range item.OwnerIDs {
		if id == actor.ID {
			return true
		}
	}
	for _, id := range item.TeamIDs {
		if id == actor.ID {
			return true
		}
	}
	return false
}
