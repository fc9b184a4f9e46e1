package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func handOf(t *testing.T, tokens ...string) Hand {
	t.Helper()
	return NewHand(mustCards(t, tokens...)...)
}

func TestDeal_PartitionsDeck(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		m := NewMatch()
		m.Deal(rand.New(rand.NewSource(seed)))

		if m.Phase() != PhasePlaying {
			t.Fatalf("seed %d: phase = %v, want playing", seed, m.Phase())
		}
		if m.Acting() != Landlord {
			t.Fatalf("seed %d: landlord must act first, got %v", seed, m.Acting())
		}
		if got := m.Hand(Landlord).Len(); got != HandSize+BottomSize {
			t.Fatalf("seed %d: landlord holds %d cards", seed, got)
		}
		for _, r := range []Role{FarmerA, FarmerB} {
			if got := m.Hand(r).Len(); got != HandSize {
				t.Fatalf("seed %d: %v holds %d cards", seed, r, got)
			}
		}
		if len(m.Bottom()) != BottomSize {
			t.Fatalf("seed %d: bottom has %d cards", seed, len(m.Bottom()))
		}

		var all Hand
		for r := Landlord; r <= FarmerB; r++ {
			all.Add(m.Hand(r).Cards()...)
		}
		if all != NewHand(NewDeck()...) {
			t.Fatalf("seed %d: hands do not partition the deck", seed)
		}
		if !m.Hand(Landlord).Contains(m.Bottom()) {
			t.Fatalf("seed %d: bottom not merged into landlord hand", seed)
		}
	}
}

func TestDealFrom_RejectsIncompleteDeck(t *testing.T) {
	deck := NewDeck()
	deck[0] = Four
	if err := NewMatch().DealFrom(deck); !errors.Is(err, ErrBadDeck) {
		t.Fatalf("expected ErrBadDeck, got %v", err)
	}
}

func TestDealFrom_Slices(t *testing.T) {
	deck := NewDeck()
	m := NewMatch()
	if err := m.DealFrom(deck); err != nil {
		t.Fatalf("DealFrom failed: %v", err)
	}
	want := NewHand(deck[:HandSize]...)
	want.Add(deck[DeckSize-BottomSize:]...)
	if m.Hand(Landlord) != want {
		t.Errorf("landlord hand = %v, want %v", m.Hand(Landlord), want)
	}
	if m.Hand(FarmerA) != NewHand(deck[HandSize:2*HandSize]...) {
		t.Errorf("farmer_a hand = %v", m.Hand(FarmerA))
	}
	if m.Hand(FarmerB) != NewHand(deck[2*HandSize:3*HandSize]...) {
		t.Errorf("farmer_b hand = %v", m.Hand(FarmerB))
	}
}

func newTestMatch(t *testing.T) *Match {
	t.Helper()
	return NewMatchFromHands([RoleCount]Hand{
		handOf(t, "3", "3", "5", "9", "K", "K", "K", "K"),
		handOf(t, "4", "4", "6", "10", "A"),
		handOf(t, "7", "8", "J", "Q", "2"),
	}, mustCards(t, "5", "9", "K"), Landlord)
}

func TestApplyPlay_RejectionLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m *Match)
		role  Role
		cards []string
		want  error
	}{
		{name: "Invalid shape", role: Landlord, cards: []string{"3", "5"}, want: ErrInvalidShape},
		{name: "Cards not in hand", role: Landlord, cards: []string{"A"}, want: ErrCardsNotInHand},
		{name: "Pass while leading", role: Landlord, cards: []string{"PASS"}, want: ErrPassNotAllowed},
		{name: "Wrong role", role: FarmerA, cards: []string{"4"}, want: ErrNotActingPlayer},
		{
			name: "Does not beat",
			setup: func(t *testing.T, m *Match) {
				if _, err := m.ApplyPlay(Landlord, mustCards(t, "9")); err != nil {
					t.Fatalf("setup play failed: %v", err)
				}
			},
			role:  FarmerA,
			cards: []string{"6"},
			want:  ErrDoesNotBeat,
		},
		{
			name: "Wrong shape against incumbent",
			setup: func(t *testing.T, m *Match) {
				if _, err := m.ApplyPlay(Landlord, mustCards(t, "3", "3")); err != nil {
					t.Fatalf("setup play failed: %v", err)
				}
				if _, err := m.ApplyPlay(FarmerA, PassPlay()); err != nil {
					t.Fatalf("setup pass failed: %v", err)
				}
			},
			role:  FarmerB,
			cards: []string{"2"},
			want:  ErrDoesNotBeat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatch(t)
			if tt.setup != nil {
				tt.setup(t, m)
			}
			before := m.Clone()

			_, err := m.ApplyPlay(tt.role, mustCards(t, tt.cards...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("ApplyPlay error = %v, want %v", err, tt.want)
			}
			var rejection *Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("expected *Rejection, got %T", err)
			}
			if !reflect.DeepEqual(before, m) {
				t.Fatalf("rejected play mutated the match:\nbefore %+v\nafter  %+v", before, m)
			}
		})
	}
}

func TestApplyPlay_TwoPassesClearIncumbent(t *testing.T) {
	m := newTestMatch(t)

	if _, err := m.ApplyPlay(Landlord, mustCards(t, "9")); err != nil {
		t.Fatalf("landlord play failed: %v", err)
	}
	if _, err := m.ApplyPlay(FarmerA, PassPlay()); err != nil {
		t.Fatalf("farmer_a pass failed: %v", err)
	}
	if m.Passes() != 1 || len(m.Incumbent()) == 0 {
		t.Fatalf("after one pass: passes=%d incumbent=%v", m.Passes(), m.Incumbent())
	}
	if _, err := m.ApplyPlay(FarmerB, PassPlay()); err != nil {
		t.Fatalf("farmer_b pass failed: %v", err)
	}

	if m.Passes() != 0 {
		t.Errorf("passes = %d, want 0", m.Passes())
	}
	if len(m.Incumbent()) != 0 {
		t.Errorf("incumbent = %v, want none", m.Incumbent())
	}
	if m.Round() != 1 {
		t.Errorf("round = %d, want 1", m.Round())
	}
	if m.Acting() != Landlord {
		t.Errorf("acting = %v, want landlord to lead again", m.Acting())
	}
	if _, err := m.ApplyPlay(Landlord, PassPlay()); !errors.Is(err, ErrPassNotAllowed) {
		t.Errorf("expected leading pass to be refused, got %v", err)
	}
}

func TestApplyPlay_PlayResetsPassCounter(t *testing.T) {
	m := newTestMatch(t)
	steps := []struct {
		role  Role
		cards []string
	}{
		{Landlord, []string{"5"}},
		{FarmerA, []string{"PASS"}},
		{FarmerB, []string{"7"}},
		{Landlord, []string{"PASS"}},
	}
	for _, s := range steps {
		if _, err := m.ApplyPlay(s.role, mustCards(t, s.cards...)); err != nil {
			t.Fatalf("%v %v failed: %v", s.role, s.cards, err)
		}
	}
	if m.Passes() != 1 {
		t.Fatalf("passes = %d, want 1", m.Passes())
	}
	if role, ok := m.IncumbentRole(); !ok || role != FarmerB {
		t.Fatalf("incumbent role = %v (%v), want farmer_b", role, ok)
	}
	if len(m.History()) != len(steps) {
		t.Fatalf("history length = %d, want %d", len(m.History()), len(steps))
	}
}

func TestApplyPlay_RemovesCardsAndDetectsWinner(t *testing.T) {
	m := NewMatchFromHands([RoleCount]Hand{
		handOf(t, "3", "3"),
		handOf(t, "4"),
		handOf(t, "5"),
	}, nil, Landlord)

	if _, err := m.ApplyPlay(Landlord, mustCards(t, "3")); err != nil {
		t.Fatalf("landlord play failed: %v", err)
	}
	if m.Hand(Landlord).Len() != 1 {
		t.Fatalf("landlord should hold 1 card, holds %v", m.Hand(Landlord))
	}
	if m.IsFinished() {
		t.Fatal("match finished early")
	}

	record, err := m.ApplyPlay(FarmerA, mustCards(t, "4"))
	if err != nil {
		t.Fatalf("farmer_a play failed: %v", err)
	}
	if record.Combination.Type != Single || record.Role != FarmerA {
		t.Errorf("unexpected record %v", record)
	}
	if !m.IsFinished() {
		t.Fatal("expected match to finish once farmer_a is out of cards")
	}
	if winner, ok := m.Winner(); !ok || winner != FarmerA {
		t.Errorf("winner = %v (%v), want farmer_a", winner, ok)
	}
	if m.Acting() != FarmerB {
		t.Errorf("acting = %v, rotation continues after the final play", m.Acting())
	}
	if _, err := m.ApplyPlay(FarmerB, mustCards(t, "5")); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("expected ErrNotPlaying after finish, got %v", err)
	}
}

func TestObserve(t *testing.T) {
	m := newTestMatch(t)

	obs := m.Observe()
	if obs.Acting != Landlord || obs.Role != Landlord {
		t.Fatalf("unexpected acting role %v", obs.Acting)
	}
	if len(obs.LegalMoves) == 0 {
		t.Fatal("acting role should receive legal moves")
	}
	if !obs.Leading() {
		t.Error("expected a free lead")
	}
	if obs.HandCounts != [RoleCount]int{8, 5, 5} {
		t.Errorf("hand counts = %v", obs.HandCounts)
	}
	if obs.State == "" {
		t.Error("expected a readable state summary")
	}

	other := m.ObserveAs(FarmerA)
	if len(other.LegalMoves) != 0 {
		t.Error("non-acting role must not receive legal moves")
	}
	if !reflect.DeepEqual(other.Hand, m.Hand(FarmerA).Cards()) {
		t.Errorf("observed hand = %v", other.Hand)
	}

	again := m.Observe()
	if !reflect.DeepEqual(obs, again) {
		t.Error("Observe must be repeatable without side effects")
	}
}

func TestApplyPlay_SnapshotsDoNotShareCards(t *testing.T) {
	m := newTestMatch(t)
	played := mustCards(t, "9")
	if _, err := m.ApplyPlay(Landlord, played); err != nil {
		t.Fatalf("lead failed: %v", err)
	}
	want := mustCards(t, "9")

	played[0] = BigJoker
	obs := m.ObserveAs(FarmerA)
	obs.History[0].Combination.Cards[0] = BigJoker
	obs.Incumbent[0] = BigJoker
	m.History()[0].Combination.Cards[0] = BigJoker

	if got := m.Incumbent(); !reflect.DeepEqual(got, want) {
		t.Fatalf("incumbent = %v, want %v", got, want)
	}
	if got := m.History()[0].Combination.Cards; !reflect.DeepEqual(got, want) {
		t.Fatalf("history cards = %v, want %v", got, want)
	}
	if got := m.Clone().History()[0].Combination.Cards; !reflect.DeepEqual(got, want) {
		t.Fatalf("cloned history cards = %v, want %v", got, want)
	}
}

func TestUnknownRoleSeesNoHand(t *testing.T) {
	m := newTestMatch(t)
	for _, r := range []Role{Role(-1), Role(RoleCount), Role(7)} {
		if n := m.Hand(r).Len(); n != 0 {
			t.Errorf("Hand(%d) has %d cards", int(r), n)
		}
		obs := m.ObserveAs(r)
		if len(obs.Hand) != 0 || len(obs.LegalMoves) != 0 {
			t.Errorf("ObserveAs(%d) exposed hand %v, moves %d", int(r), obs.Hand, len(obs.LegalMoves))
		}
		if obs.HandCounts != [RoleCount]int{8, 5, 5} {
			t.Errorf("ObserveAs(%d) hand counts = %v", int(r), obs.HandCounts)
		}
	}
}
