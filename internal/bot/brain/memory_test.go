package brain

import (
	"testing"

	"doudizhu/internal/domain"
)

func cardsOf(t *testing.T, tokens ...string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(tokens)
	if err != nil {
		t.Fatalf("ParseCards(%v) failed: %v", tokens, err)
	}
	return cards
}

// playedMatch returns a match where the landlord led a single 9, farmer_a
// passed and farmer_b answered with a K.
func playedMatch(t *testing.T) *domain.Match {
	t.Helper()
	m := domain.NewMatchFromHands([domain.RoleCount]domain.Hand{
		domain.NewHand(cardsOf(t, "3", "9", "2", "2")...),
		domain.NewHand(cardsOf(t, "4", "5", "6")...),
		domain.NewHand(cardsOf(t, "7", "K", "A")...),
	}, nil, domain.Landlord)

	steps := []struct {
		role  domain.Role
		cards []domain.Card
	}{
		{domain.Landlord, cardsOf(t, "9")},
		{domain.FarmerA, domain.PassPlay()},
		{domain.FarmerB, cardsOf(t, "K")},
	}
	for _, s := range steps {
		if _, err := m.ApplyPlay(s.role, s.cards); err != nil {
			t.Fatalf("%v %v failed: %v", s.role, s.cards, err)
		}
	}
	return m
}

func TestGameMemory_Sync(t *testing.T) {
	m := NewMemory()
	m.Sync(playedMatch(t).ObserveAs(domain.Landlord))

	if m.Mine != domain.NewHand(cardsOf(t, "3", "2", "2")...) {
		t.Errorf("Mine = %v", m.Mine)
	}
	if m.Played != domain.NewHand(cardsOf(t, "9", "K")...) {
		t.Errorf("Played = %v", m.Played)
	}
	if m.CurrentCombo.Type != domain.Single || m.CurrentCombo.Value != int32(domain.King) {
		t.Errorf("CurrentCombo = %v, want single K", m.CurrentCombo)
	}
	if len(m.Opponents) != 2 {
		t.Fatalf("expected profiles for both opponents, got %d", len(m.Opponents))
	}
	if got := m.Opponents[domain.FarmerA].Weaknesses[domain.Single]; got != int32(domain.Nine) {
		t.Errorf("farmer_a weakness = %d, want 9", got)
	}
	if m.Opponents[domain.FarmerB].PlayedStats[domain.Single] != 1 {
		t.Errorf("farmer_b played stats = %v", m.Opponents[domain.FarmerB].PlayedStats)
	}

	unseen := m.Unseen()
	if unseen.Len() != domain.DeckSize-3-2 {
		t.Errorf("unseen holds %d cards", unseen.Len())
	}
	if unseen.Count(domain.Two) != 2 || unseen.Count(domain.King) != 3 {
		t.Errorf("unseen = %v", unseen)
	}

	m.Reset()
	if !m.Mine.Empty() || !m.Played.Empty() || len(m.Opponents) != 0 {
		t.Error("Reset left state behind")
	}
}

func TestGameMemory_PassOnTeammateIsIgnored(t *testing.T) {
	m := domain.NewMatchFromHands([domain.RoleCount]domain.Hand{
		domain.NewHand(cardsOf(t, "3", "4")...),
		domain.NewHand(cardsOf(t, "8", "J")...),
		domain.NewHand(cardsOf(t, "5", "6")...),
	}, nil, domain.FarmerA)
	if _, err := m.ApplyPlay(domain.FarmerA, cardsOf(t, "8")); err != nil {
		t.Fatalf("farmer_a play failed: %v", err)
	}
	if _, err := m.ApplyPlay(domain.FarmerB, domain.PassPlay()); err != nil {
		t.Fatalf("farmer_b pass failed: %v", err)
	}

	mem := NewMemory()
	mem.Sync(m.ObserveAs(domain.Landlord))
	if len(mem.Opponents[domain.FarmerB].Weaknesses) != 0 {
		t.Errorf("pass on a teammate recorded as weakness: %v", mem.Opponents[domain.FarmerB].Weaknesses)
	}
}
