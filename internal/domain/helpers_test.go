package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		token string
		want  Card
	}{
		{token: "3", want: Three},
		{token: "10", want: Ten},
		{token: "t", want: Ten},
		{token: "j", want: Jack},
		{token: " A ", want: Ace},
		{token: "2", want: Two},
		{token: "sj", want: SmallJoker},
		{token: "小王", want: SmallJoker},
		{token: "大王", want: BigJoker},
		{token: "pass", want: PassCard},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseCard(tt.token)
			if err != nil {
				t.Fatalf("ParseCard(%q) failed: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseCard(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}

	if _, err := ParseCard("11"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("expected ErrUnknownCard, got %v", err)
	}
}

func TestParsePlay(t *testing.T) {
	cards, err := ParsePlay(FarmerA, []string{"10", "j"})
	if err != nil || len(cards) != 2 {
		t.Fatalf("ParsePlay = %v, %v", cards, err)
	}

	_, err = ParsePlay(FarmerA, []string{"3", "11"})
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected *Rejection, got %T", err)
	}
	if rejection.Role != FarmerA {
		t.Errorf("rejection role = %v, want farmer_a", rejection.Role)
	}
	if !errors.Is(err, ErrInvalidShape) || !errors.Is(err, ErrUnknownCard) {
		t.Errorf("expected invalid shape caused by an unknown card, got %v", err)
	}
	if kind := RejectionKind(err); kind != "InvalidShape" {
		t.Errorf("RejectionKind = %q", kind)
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	hand := NewHand(deck...)
	for c := Three; c <= Two; c++ {
		if hand.Count(c) != SuitsPerRank {
			t.Errorf("rank %v count = %d, want %d", c, hand.Count(c), SuitsPerRank)
		}
	}
	if hand.Count(SmallJoker) != 1 || hand.Count(BigJoker) != 1 {
		t.Errorf("expected one of each joker, got %d and %d", hand.Count(SmallJoker), hand.Count(BigJoker))
	}
}

func TestHand_ContainsAndRemove(t *testing.T) {
	hand := NewHand(Three, Three, Four, BigJoker)

	tests := []struct {
		name  string
		cards []Card
		want  bool
	}{
		{name: "Subset", cards: []Card{Three, Four}, want: true},
		{name: "Too many copies", cards: []Card{Three, Three, Three}, want: false},
		{name: "Missing rank", cards: []Card{Five}, want: false},
		{name: "Pass", cards: PassPlay(), want: true},
		{name: "Pass token inside play", cards: []Card{PassCard, Three}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hand.Contains(tt.cards); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.cards, got, tt.want)
			}
		})
	}

	before := hand
	if hand.RemoveCards([]Card{Five}) {
		t.Fatal("RemoveCards succeeded for a missing card")
	}
	if hand != before {
		t.Fatal("failed RemoveCards modified the hand")
	}
	if !hand.RemoveCards([]Card{Three, BigJoker}) {
		t.Fatal("RemoveCards failed for held cards")
	}
	if want := []Card{Three, Four}; !reflect.DeepEqual(hand.Cards(), want) {
		t.Errorf("Cards() = %v, want %v", hand.Cards(), want)
	}
}

func TestRole_Rotation(t *testing.T) {
	if Landlord.Next() != FarmerA || FarmerA.Next() != FarmerB || FarmerB.Next() != Landlord {
		t.Fatal("rotation must be landlord, farmer_a, farmer_b")
	}
	if !Teammate(FarmerA, FarmerB) || Teammate(Landlord, FarmerA) {
		t.Fatal("farmers are teammates, the landlord plays alone")
	}
	r, err := ParseRole("farmer_b")
	if err != nil || r != FarmerB {
		t.Fatalf("ParseRole(farmer_b) = %v, %v", r, err)
	}
}
