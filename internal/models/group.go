package models

// Group represents a named collection of members sharing expenses in one currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// OwnerID is the user who created the group. Only the owner can see it.
	OwnerID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// Members is the ordered list of member names in this group.
	// Names are unique within a group; the order breaks ties when
	// suggesting settlements.
	Members []string

	// Currency is the ISO code every amount in the group is expressed in.
	Currency string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// IsActive is false for archived groups.
	IsActive bool
}

// HasMember reports whether name is one of the group's members.
func (g *Group) HasMember(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}
