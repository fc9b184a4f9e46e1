package llm

import (
	"fmt"
	"strings"

	"doudizhu/internal/domain"
)

const systemPrompt = `You are playing Doudizhu, a three-player climbing card game: one landlord against two farmers.
Suits do not matter. Ranks from low to high: 3 4 5 6 7 8 9 10 J Q K A 2 SJ BJ.
A play must beat the combination in play with the same shape and size and a higher rank,
a plain bomb beats any non-bomb, and the rocket (SJ BJ) beats everything.
With nothing in play you must lead; otherwise you may answer PASS.
Think briefly, then finish with exactly one line of the form:
[ACTION]: ['8','9','10','J','Q']
or
[ACTION]: ['PASS']`

// BuildPrompt renders an observation as the user message sent to the model.
func BuildPrompt(obs domain.Observation, lastErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s.\n", obs.Role)
	fmt.Fprintf(&b, "State: %s\n", obs.State)

	b.WriteString("History:\n")
	if len(obs.History) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, rec := range obs.History {
		fmt.Fprintf(&b, "  %s\n", rec)
	}

	if obs.Leading() {
		b.WriteString("Nothing is in play; you lead.\n")
	} else {
		fmt.Fprintf(&b, "In play: %s by %s\n", quoteCards(obs.Incumbent), obs.IncumbentRole)
	}
	fmt.Fprintf(&b, "Your hand: %s\n", quoteCards(obs.Hand))

	b.WriteString("Legal moves:\n")
	for _, m := range obs.LegalMoves {
		fmt.Fprintf(&b, "  %s\n", quoteCards(m.Cards))
	}
	if lastErr != nil {
		fmt.Fprintf(&b, "Your previous answer was rejected: %v. Choose one of the legal moves.\n", lastErr)
	}
	return b.String()
}

func quoteCards(cards []domain.Card) string {
	quoted := make([]string, len(cards))
	for i, c := range cards {
		quoted[i] = "'" + c.String() + "'"
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
