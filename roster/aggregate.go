package roster

import "github.com/jrsteele09/office-roster/upstream"

// Aggregate folds accepted pieces into a RosterByDate. The first piece seen for a
// (date, key) pair decides the person's name and email; later repeats are ignored.
func Aggregate(pieces []Piece) RosterByDate {
	roster := make(RosterByDate)
	seen := make(map[string]map[string]struct{})

	for _, p := range pieces {
		if p.Status != PieceAccepted {
			continue
		}
		keys, ok := seen[p.Date]
		if !ok {
			keys = make(map[string]struct{})
			seen[p.Date] = keys
		}
		if _, dup := keys[p.Key]; dup {
			continue
		}
		keys[p.Key] = struct{}{}
		roster[p.Date] = append(roster[p.Date], Person{Name: p.Name, Email: p.Email})
	}
	return roster
}

// AggregatePayload parses and aggregates an upstream payload. It never fails;
// a nil or empty payload gives an empty roster.
func AggregatePayload(payload *upstream.Payload) RosterByDate {
	return Aggregate(Parse(payload))
}

// Summarise counts pieces per status.
func Summarise(pieces []Piece) map[PieceStatus]int {
	counts := make(map[PieceStatus]int)
	for _, p := range pieces {
		counts[p.Status]++
	}
	return counts
}
