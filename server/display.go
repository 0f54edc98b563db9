package server

import (
	"fmt"
	"html/template"
	"time"
	"unicode/utf16"

	"github.com/jrsteele09/office-roster/roster"
)

// DayCard is one column of the dashboard.
type DayCard struct {
	Date     string
	DayName  string
	MonthDay string
	People   []PersonChip
}

// PersonChip is a person rendered with their name colours.
type PersonChip struct {
	Name       string
	Email      string
	Background string
	Foreground string
	Style      template.CSS
}

// DayLabel splits a YYYY-MM-DD date into a short weekday ("Mon") and month/day ("Jun 9").
// Unparseable input is returned unchanged as the day name.
func DayLabel(date string) (string, string) {
	day, err := time.Parse(roster.DateLayout, date)
	if err != nil {
		return date, ""
	}
	return day.Format("Mon"), day.Format("Jan 2")
}

// NameColour derives a stable pastel background and dark foreground from a name,
// so the same person keeps the same colour on every day and every page load.
func NameColour(name string) (string, string) {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	hue := hash % 360
	return fmt.Sprintf("hsl(%d, 70%%, 90%%)", hue), fmt.Sprintf("hsl(%d, 30%%, 30%%)", hue)
}

// buildDayCards lays out the displayed week. Dates without people get an empty card.
// Chip styles are built only from NameColour output, so they are safe to mark as CSS.
func buildDayCards(dates []string, weekly roster.RosterByDate) []DayCard {
	cards := make([]DayCard, 0, len(dates))
	for _, date := range dates {
		dayName, monthDay := DayLabel(date)
		card := DayCard{Date: date, DayName: dayName, MonthDay: monthDay}
		for _, person := range weekly[date] {
			background, foreground := NameColour(person.Name)
			chip := PersonChip{
				Name:       person.Name,
				Background: background,
				Foreground: foreground,
				Style:      template.CSS("background-color: " + background + "; color: " + foreground),
			}
			if person.Email != nil {
				chip.Email = *person.Email
			}
			card.People = append(card.People, chip)
		}
		cards = append(cards, card)
	}
	return cards
}
