package internal

import "doudizhu/internal/domain"

// GamePhase describes the current strategic stage of a match.
type GamePhase int

const (
	// PhaseOpening indicates every role still holds its full deal.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no one has reached the endgame threshold yet.
	PhaseMid
	// PhaseEnd indicates some role holds EndgameCards or fewer.
	PhaseEnd
)

// EndgameCards is the hand size at which the match is considered to be closing.
const EndgameCards = 5

// DetectPhase infers the phase from the observed hand counts.
func DetectPhase(obs domain.Observation) GamePhase {
	opening := true
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		count := obs.HandCounts[r]
		if count <= EndgameCards {
			return PhaseEnd
		}
		full := domain.HandSize
		if r == domain.Landlord {
			full += domain.BottomSize
		}
		if count != full {
			opening = false
		}
	}
	if opening {
		return PhaseOpening
	}
	return PhaseMid
}

// DetectThreat reports whether any opponent of obs.Role is at or below the
// supplied card threshold.
func DetectThreat(obs domain.Observation, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		if domain.Teammate(r, obs.Role) {
			continue
		}
		if n := obs.HandCounts[r]; n > 0 && n <= threshold {
			return true
		}
	}
	return false
}
