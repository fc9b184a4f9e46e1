package domain

import (
	"math/rand"
	"testing"
)

func moveKeys(t *testing.T, moves []CardCombination) map[Hand]CardCombination {
	t.Helper()
	keys := make(map[Hand]CardCombination, len(moves))
	for _, m := range moves {
		if m.Type == Pass {
			continue
		}
		key := NewHand(m.Cards...)
		if prev, dup := keys[key]; dup {
			t.Fatalf("duplicate move %v and %v", prev, m)
		}
		keys[key] = m
	}
	return keys
}

// subMultisets lists every non-empty sub-multiset of hand.
func subMultisets(hand Hand) [][]Card {
	var out [][]Card
	var walk func(c Card, chosen []Card)
	walk = func(c Card, chosen []Card) {
		if c > BigJoker {
			if len(chosen) > 0 {
				out = append(out, chosen)
			}
			return
		}
		for k := 0; k <= int(hand[c]); k++ {
			next := append(append([]Card(nil), chosen...), repeat(c, k)...)
			walk(c+1, next)
		}
	}
	walk(Three, nil)
	return out
}

func TestGetValidMoves_Lead(t *testing.T) {
	hand := NewHand(mustCards(t, "3", "3", "3", "4", "4", "4", "5", "6", "7", "8")...)
	moves := GetValidMoves(hand, nil)
	keys := moveKeys(t, moves)

	for _, m := range moves {
		if m.Type == Pass {
			t.Fatal("Pass offered while leading")
		}
	}

	airplane := NewHand(mustCards(t, "3", "3", "3", "4", "4", "4")...)
	if got, ok := keys[airplane]; !ok || got.Type != Airplane || got.Value != 4 {
		t.Errorf("expected airplane 333444 with value 4, got %v (present=%v)", got, ok)
	}
	straight := NewHand(mustCards(t, "4", "5", "6", "7", "8")...)
	if got, ok := keys[straight]; !ok || got.Type != Straight || got.Value != 8 {
		t.Errorf("expected straight 45678 with value 8, got %v (present=%v)", got, ok)
	}
	withKickers := NewHand(mustCards(t, "3", "3", "3", "4", "4", "4", "7", "8")...)
	if got, ok := keys[withKickers]; !ok || got.Type != AirplaneWithSingles {
		t.Errorf("expected airplane with singles 333444+78, got %v (present=%v)", got, ok)
	}
}

func TestGetValidMoves_RespondListsPassFirst(t *testing.T) {
	hand := NewHand(mustCards(t, "3", "9", "K")...)
	moves := GetValidMoves(hand, mustCards(t, "10"))
	if len(moves) != 2 {
		t.Fatalf("expected PASS and K, got %v", moves)
	}
	if moves[0].Type != Pass {
		t.Errorf("expected PASS first, got %v", moves[0])
	}
	if moves[1].Type != Single || moves[1].Cards[0] != King {
		t.Errorf("expected single K, got %v", moves[1])
	}
}

func TestGetValidMoves_BombWithKickers(t *testing.T) {
	hand := NewHand(mustCards(t, "6", "6", "6", "6", "3", "3", "4", "4", "SJ")...)
	keys := moveKeys(t, GetValidMoves(hand, nil))

	tests := []struct {
		name  string
		cards []string
		want  CardCombinationType
	}{
		{name: "Two singles", cards: []string{"6", "6", "6", "6", "3", "SJ"}, want: BombWithSingles},
		{name: "One pair", cards: []string{"6", "6", "6", "6", "4", "4"}, want: BombWithPair},
		{name: "Two pairs", cards: []string{"6", "6", "6", "6", "3", "3", "4", "4"}, want: BombWithPair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keys[NewHand(mustCards(t, tt.cards...)...)]
			if !ok || got.Type != tt.want {
				t.Fatalf("expected %v for %v, got %v (present=%v)", tt.want, tt.cards, got, ok)
			}
		})
	}
}

func TestGetValidMoves_MatchesBruteForce(t *testing.T) {
	incumbents := [][]string{
		nil,
		{"5"},
		{"2"},
		{"3", "3"},
		{"4", "4", "4"},
		{"3", "3", "3", "K"},
		{"3", "3", "3", "4", "4"},
		{"3", "4", "5", "6", "7"},
		{"3", "3", "4", "4", "5", "5"},
		{"3", "3", "3", "4", "4", "4"},
		{"3", "3", "3", "4", "4", "4", "8", "9"},
		{"3", "3", "3", "4", "4", "4", "8", "8", "9", "9"},
		{"3", "3", "3", "3"},
		{"3", "3", "3", "3", "5", "7"},
		{"3", "3", "3", "3", "5", "5"},
		{"SJ", "BJ"},
	}

	hands := [][]string{
		{"3", "3", "3", "4", "4", "4", "5", "6", "7", "8"},
		{"3", "3", "3", "4", "4", "4", "5", "5", "6", "6"},
		{"6", "6", "6", "6", "3", "3", "4", "4", "SJ", "BJ"},
		{"3", "3", "3", "3", "4", "4", "4", "4", "5", "5"},
		{"5", "5", "5", "6", "6", "6", "7", "7", "7", "8"},
		{"9", "10", "J", "Q", "K", "A", "2", "SJ", "BJ"},
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 60; i++ {
		deck := ShuffleDeck(rng, NewDeck())
		hands = append(hands, FormatCards(deck[:1+rng.Intn(10)]))
	}

	for _, handTokens := range hands {
		hand := NewHand(mustCards(t, handTokens...)...)
		subsets := subMultisets(hand)
		for _, incTokens := range incumbents {
			incumbent := mustCards(t, incTokens...)

			want := make(map[Hand]bool)
			for _, s := range subsets {
				if CanBeat(incumbent, s) {
					want[NewHand(s...)] = true
				}
			}

			moves := GetValidMoves(hand, incumbent)
			got := moveKeys(t, moves)
			for key, combo := range got {
				if !want[key] {
					t.Fatalf("hand %v vs %v: unsound move %v", hand, incTokens, combo)
				}
				if !hand.Contains(combo.Cards) {
					t.Fatalf("hand %v: move %v uses missing cards", hand, combo)
				}
			}
			for key := range want {
				if _, ok := got[key]; !ok {
					t.Fatalf("hand %v vs %v: missing move %v", hand, incTokens, key)
				}
			}

			hasPass := len(moves) > 0 && moves[0].Type == Pass
			if hasPass == (len(incumbent) == 0) {
				t.Fatalf("hand %v vs %v: pass presence = %v", hand, incTokens, hasPass)
			}
		}
	}
}

func TestChooseMultisets(t *testing.T) {
	pool := NewHand(Three, Three, Four)
	got := chooseMultisets(pool, 2)
	// {3,3} and {3,4}
	if len(got) != 2 {
		t.Fatalf("expected 2 multisets, got %v", got)
	}
}

func TestLowestMove(t *testing.T) {
	tests := []struct {
		name      string
		hand      []string
		incumbent []string
		want      []string
		wantOK    bool
	}{
		{name: "Lead sheds the triple with the lowest value", hand: []string{"3", "3", "3", "9", "2"}, want: []string{"3", "3", "3", "9"}, wantOK: true},
		{name: "Respond with the lowest beating single", hand: []string{"4", "6", "2"}, incumbent: []string{"5"}, want: []string{"6"}, wantOK: true},
		{name: "Bomb only when nothing else beats", hand: []string{"3", "3", "3", "3", "4"}, incumbent: []string{"2"}, want: []string{"3", "3", "3", "3"}, wantOK: true},
		{name: "Only pass", hand: []string{"3"}, incumbent: []string{"4"}, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves := GetValidMoves(NewHand(mustCards(t, tt.hand...)...), mustCards(t, tt.incumbent...))
			got, ok := LowestMove(moves)
			if ok != tt.wantOK {
				t.Fatalf("LowestMove ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && NewHand(got.Cards...) != NewHand(mustCards(t, tt.want...)...) {
				t.Errorf("LowestMove = %v, want %v", got, tt.want)
			}
		})
	}
}
