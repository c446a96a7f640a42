package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// FormText accepts a JSON string or number and keeps its text form, so
// {"participants": 25} and {"participants": "25"} decode alike.
type FormText string

func (f *FormText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FormText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("must be a string or number")
	}
	*f = FormText(n.String())
	return nil
}

// CreateEventReq leaves field checks to the domain so the HTTP and terminal
// paths report the same message.
type CreateEventReq struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	Participants FormText `json:"participants"`
}

type AddCommentReq struct {
	Text   string `json:"text" validate:"max=2000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

type CommentResp struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type EventResp struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Date          string        `json:"date"`
	Participants  int           `json:"participants"`
	CreatedAt     time.Time     `json:"created_at"`
	Attendees     []string      `json:"attendees"`
	Comments      []CommentResp `json:"comments"`
	AverageRating float64       `json:"average_rating"`

	// caller-relative
	Attending  bool `json:"attending"`
	CanConfirm bool `json:"can_confirm"`
}

type EventSummaryResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

type DeleteResp struct {
	Deleted bool `json:"deleted"`
}

type CountResp struct {
	Count int `json:"count"`
}
