package domain

import "fmt"

// Phase represents the lifecycle stage of a Doudizhu match.
type Phase string

const (
	// PhaseDealing is the state before cards have been distributed.
	PhaseDealing Phase = "dealing"
	// PhasePlaying is the active game state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseFinished is the state after a role has emptied its hand.
	PhaseFinished Phase = "finished"
)

// Role identifies one of the three fixed seats at the table.
type Role int

const (
	Landlord Role = iota
	FarmerA
	FarmerB
)

var roleNames = [RoleCount]string{"landlord", "farmer_a", "farmer_b"}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid reports whether r is one of the three seated roles.
func (r Role) Valid() bool {
	return r >= Landlord && r <= FarmerB
}

// Next returns the role that acts after r: Landlord, FarmerA, FarmerB, Landlord...
func (r Role) Next() Role {
	return (r + 1) % RoleCount
}

// IsFarmer reports whether r plays on the farmers' side.
func (r Role) IsFarmer() bool {
	return r == FarmerA || r == FarmerB
}

// Teammate reports whether a and b play on the same side.
func Teammate(a, b Role) bool {
	return a == b || (a.IsFarmer() && b.IsFarmer())
}

// ParseRole converts a role name such as "landlord" back into a Role.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
