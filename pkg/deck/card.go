package deck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Suit represents a card suit as the ledger encodes it
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
)

// face card values as they appear on the wire
const (
	Jack  = "J"
	Queen = "Q"
	King  = "K"
	Ace   = "A"
)

// Card is an individual playing card as decoded from a table snapshot.
// Value is the wire string: "2".."10", "J", "Q", "K" or "A".
type Card struct {
	Value string `json:"value"`
	Suit  Suit   `json:"suit"`
}

// IsAce returns true if the card is an ace
func (c Card) IsAce() bool {
	return c.Value == Ace
}

// PointValue returns the blackjack point value of the card, counting an ace
// as 1. The soft-ace promotion is handled in Score, not per card.
func (c Card) PointValue() int {
	switch c.Value {
	case Jack, Queen, King:
		return 10
	case Ace:
		return 1
	default:
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			panic(fmt.Sprintf("unknown card value: %s", c.Value))
		}

		return n
	}
}

func (c Card) String() string {
	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		panic("unknown suit")
	}

	return fmt.Sprintf("%s%s", c.Value, suit)
}

var validValues = map[string]bool{
	"2": true, "3": true, "4": true, "5": true, "6": true,
	"7": true, "8": true, "9": true, "10": true,
	Jack: true, Queen: true, King: true, Ace: true,
}

var validSuits = map[Suit]bool{
	Hearts: true, Clubs: true, Diamonds: true, Spades: true,
}

// UnmarshalJSON decodes a card, rejecting values the ledger could never
// have dealt
func (c *Card) UnmarshalJSON(data []byte) error {
	type rawCard Card
	var raw rawCard
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !validValues[raw.Value] {
		return fmt.Errorf("unknown card value: %s", raw.Value)
	}

	if !validSuits[raw.Suit] {
		return fmt.Errorf("unknown card suit: %s", raw.Suit)
	}

	*c = Card(raw)
	return nil
}

// CardFromString returns a Card from a string in the format <value><suit>
// where value is 2-10, J, Q, K, or A and suit is one of [cdhs]
func CardFromString(s string) Card {
	if len(s) < 2 {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	value := s[:len(s)-1]
	if !validValues[value] {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	var suit Suit
	switch strings.ToLower(s[len(s)-1:]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	default:
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	return Card{Value: value, Suit: suit}
}

// CardsFromString returns a slice of cards from a comma-separated list
func CardsFromString(s string) []Card {
	if s == "" {
		return []Card{}
	}

	parts := strings.Split(s, ",")
	cards := make([]Card, len(parts))
	for i, part := range parts {
		cards[i] = CardFromString(strings.TrimSpace(part))
	}

	return cards
}
