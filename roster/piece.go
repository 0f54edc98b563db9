// Package roster turns upstream delivery records into the per-date list of people
// expected in the office.
package roster

import (
	"encoding/json"
	"strconv"

	"github.com/jrsteele09/office-roster/internal/utils"
	"github.com/jrsteele09/office-roster/upstream"
)

const unknownName = "Unknown"

// PieceStatus tags a parsed order line with whether it can be placed on the roster.
type PieceStatus int

const (
	// PieceAccepted is confirmed, dated and identified; it goes on the roster
	PieceAccepted PieceStatus = iota
	// PieceUnconfirmed has isConfirmed absent or false
	PieceUnconfirmed
	// PieceMissingDate has no usable date
	PieceMissingDate
	// PieceMissingIdentity has neither a user id nor an email
	PieceMissingIdentity
	// PieceMalformed had a field of the wrong type in the upstream record
	PieceMalformed
)

func (s PieceStatus) String() string {
	switch s {
	case PieceAccepted:
		return "accepted"
	case PieceUnconfirmed:
		return "unconfirmed"
	case PieceMissingDate:
		return "missing_date"
	case PieceMissingIdentity:
		return "missing_identity"
	case PieceMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Piece is one normalised order line. Only Status is meaningful unless it is PieceAccepted.
type Piece struct {
	Date   string
	Key    string
	Name   string
	Email  *string
	Status PieceStatus
}

// Person is a single roster entry.
type Person struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// RosterByDate maps a YYYY-MM-DD date to the people ordering for it, in first-seen order.
type RosterByDate map[string][]Person

// Parse flattens deliveries, orders and pieces into tagged Pieces. Missing levels are skipped.
func Parse(payload *upstream.Payload) []Piece {
	if payload == nil {
		return nil
	}

	var pieces []Piece
	for _, delivery := range payload.Deliveries {
		for _, order := range delivery.Orders {
			for _, raw := range order.Pieces {
				pieces = append(pieces, parsePiece(raw))
			}
		}
	}
	return pieces
}

func parsePiece(raw upstream.RawPiece) Piece {
	if raw.Malformed {
		return Piece{Status: PieceMalformed}
	}
	if !utils.Value(raw.IsConfirmed) {
		return Piece{Status: PieceUnconfirmed}
	}

	date := utils.Value(raw.Date)
	if date == "" {
		return Piece{Status: PieceMissingDate}
	}

	var email *string
	if raw.User != nil {
		email = utils.NonEmpty(raw.User.Email)
	}

	// Numeric ids win over email so two people sharing a name stay distinct
	key := ""
	if raw.UserID != nil {
		key = userIDKey(*raw.UserID)
	}
	if key == "" {
		key = utils.Value(email)
	}
	if key == "" {
		return Piece{Date: date, Status: PieceMissingIdentity}
	}

	name := utils.Value(raw.UserFullName)
	if name == "" {
		name = unknownName
	}

	return Piece{
		Date:   date,
		Key:    key,
		Name:   name,
		Email:  email,
		Status: PieceAccepted,
	}
}

// userIDKey gives numerically equal ids the same key, so 1 and 1.0 are one person.
func userIDKey(id json.Number) string {
	if i, err := id.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := id.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return id.String()
}
