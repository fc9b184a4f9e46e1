// Package console lets a person take a seat from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"doudizhu/internal/domain"
)

// ErrQuit is returned when the player asks to leave the match.
var ErrQuit = errors.New("player quit")

// Human proposes plays typed as 1-based hand indices.
type Human struct {
	Name    string
	in      *bufio.Scanner
	out     io.Writer
	confirm bool
}

// NewHuman reads answers from r and writes prompts to w. With confirm set,
// every selection must be acknowledged before it is submitted.
func NewHuman(name string, r io.Reader, w io.Writer, confirm bool) *Human {
	return &Human{Name: name, in: bufio.NewScanner(r), out: w, confirm: confirm}
}

func (h *Human) ProposePlay(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error) {
	moves := obs.LegalMoves
	if len(moves) == 1 && moves[0].Type == domain.Pass {
		fmt.Fprintf(h.out, "%s cannot beat [%s], passing.\n", h.Name, strings.Join(domain.FormatCards(obs.Incumbent), " "))
		return domain.PassPlay(), nil
	}

	h.render(obs, lastErr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := h.prompt(fmt.Sprintf("%s> ", h.Name))
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "q", "quit", "exit":
			return nil, ErrQuit
		case "h", "help":
			h.renderHand(obs.Hand)
			continue
		case "p", "pass", "不要":
			return domain.PassPlay(), nil
		case "":
			continue
		}

		cards, err := selectCards(obs.Hand, line)
		if err != nil {
			fmt.Fprintf(h.out, "%v\n", err)
			continue
		}
		if h.confirm {
			fmt.Fprintf(h.out, "Play [%s]? (y/n, enter confirms) ", strings.Join(domain.FormatCards(cards), " "))
			answer, err := h.prompt("")
			if err != nil {
				return nil, err
			}
			if a := strings.ToLower(answer); a != "" && a != "y" && a != "yes" {
				fmt.Fprintln(h.out, "Cancelled.")
				continue
			}
		}
		return cards, nil
	}
}

func (h *Human) prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprint(h.out, label)
	}
	if !h.in.Scan() {
		if err := h.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(h.in.Text()), nil
}

func (h *Human) render(obs domain.Observation, lastErr error) {
	fmt.Fprintf(h.out, "\n== %s (%s) to play ==\n", h.Name, obs.Role)
	fmt.Fprintln(h.out, obs.State)
	for _, rec := range obs.History {
		fmt.Fprintf(h.out, "  %s\n", rec)
	}
	if !obs.Leading() {
		fmt.Fprintf(h.out, "To beat: [%s] by %s\n", strings.Join(domain.FormatCards(obs.Incumbent), " "), obs.IncumbentRole)
	}
	h.renderHand(obs.Hand)
	fmt.Fprintf(h.out, "%d legal moves.\n", len(obs.LegalMoves))
	if lastErr != nil {
		fmt.Fprintf(h.out, "Last attempt rejected: %v\n", lastErr)
	}
	fmt.Fprintln(h.out, "Enter card numbers (e.g. 1 2 3 or 1,2,3), p to pass, h for your hand, q to quit.")
}

func (h *Human) renderHand(hand []domain.Card) {
	var b strings.Builder
	for i, c := range hand {
		fmt.Fprintf(&b, "%2d.%-3s", i+1, c)
		if (i+1)%8 == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintln(h.out, strings.TrimRight(b.String(), "\n"))
}

// selectCards resolves 1-based indices separated by spaces or commas.
func selectCards(hand []domain.Card, line string) ([]domain.Card, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	used := make(map[int]bool, len(fields))
	cards := make([]domain.Card, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("not a card number: %q", f)
		}
		if idx < 1 || idx > len(hand) {
			return nil, fmt.Errorf("card number %d out of range 1-%d", idx, len(hand))
		}
		if used[idx] {
			return nil, fmt.Errorf("card number %d chosen twice", idx)
		}
		used[idx] = true
		cards = append(cards, hand[idx-1])
	}
	return cards, nil
}
