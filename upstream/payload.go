package upstream

import "encoding/json"

// Payload is the deliveries response as returned by the upstream admin API.
// Every level is optional; consumers must tolerate missing fields. Below the
// top-level object decoding never fails: a delivery or order of the wrong shape
// is read as empty, and a piece with a field of the wrong type is flagged Malformed.
type Payload struct {
	Deliveries []Delivery `json:"deliveries"`
}

type Delivery struct {
	Orders []Order `json:"orders"`
}

type Order struct {
	Pieces []RawPiece `json:"pieces"`
}

// RawPiece is one order line for one person on one date.
type RawPiece struct {
	Date         *string      `json:"date"`
	UserID       *json.Number `json:"userId"`
	User         *RawUser     `json:"user"`
	UserFullName *string      `json:"userFullName"`
	IsConfirmed  *bool        `json:"isConfirmed"`

	// Malformed is set when a present field could not be decoded
	Malformed bool `json:"-"`
}

type RawUser struct {
	Email *string `json:"email"`
}

func (d *Delivery) UnmarshalJSON(data []byte) error {
	var fields struct {
		Orders json.RawMessage `json:"orders"`
	}
	*d = Delivery{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	d.Orders = decodeList[Order](fields.Orders)
	return nil
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var fields struct {
		Pieces json.RawMessage `json:"pieces"`
	}
	*o = Order{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	o.Pieces = decodeList[RawPiece](fields.Pieces)
	return nil
}

// UnmarshalJSON decodes each field on its own so one bad value only spoils its piece.
func (p *RawPiece) UnmarshalJSON(data []byte) error {
	*p = RawPiece{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		p.Malformed = true
		return nil
	}

	p.Date = decodeField[string](fields, "date", &p.Malformed)
	p.UserID = decodeField[json.Number](fields, "userId", &p.Malformed)
	p.User = decodeField[RawUser](fields, "user", &p.Malformed)
	p.UserFullName = decodeField[string](fields, "userFullName", &p.Malformed)
	p.IsConfirmed = decodeField[bool](fields, "isConfirmed", &p.Malformed)
	return nil
}

// decodeField returns nil for an absent or null field and flags malformed when
// the value does not fit T.
func decodeField[T any](fields map[string]json.RawMessage, name string, malformed *bool) *T {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		*malformed = true
		return nil
	}
	return &value
}

// decodeList reads a JSON array, returning nil when raw is absent or not an array.
// Element decoders never fail, so a bad element cannot discard its siblings.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// Credentials identify the admin account used to log in upstream.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type deliveriesRequest struct {
	ClubIDs []int  `json:"clubIds"`
	From    string `json:"from"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type createSessionResponse struct {
	Data struct {
		CreateSession *struct {
			ErrorAttributes json.RawMessage `json:"errorAttributes"`
			User            *struct {
				ID    json.Number `json:"id"`
				Email string      `json:"email"`
			} `json:"user"`
		} `json:"createSession"`
	} `json:"data"`
}
