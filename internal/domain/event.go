package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	MinRating = 1
	MaxRating = 5
)

type Comment struct {
	UserID string
	Text   string
	Rating int
}

type Event struct {
	ID           string
	Name         string
	Description  string
	Date         string // YYYY-MM-DD
	Participants int    // capacity
	CreatedAt    time.Time

	Attendees []string
	Comments  []Comment
}

// NewDraft validates raw form input and builds an event that is not yet stored.
// Every field is required; participants must be a non-negative integer.
func NewDraft(name, description, date, participants string) (*Event, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	date = strings.TrimSpace(date)
	participants = strings.TrimSpace(participants)

	missing := map[string]string{}
	if name == "" {
		missing["name"] = "required"
	}
	if description == "" {
		missing["description"] = "required"
	}
	if date == "" {
		missing["date"] = "required"
	}
	if participants == "" {
		missing["participants"] = "required"
	}
	if len(missing) > 0 {
		return nil, ErrValidationMeta("please fill out all fields", missing)
	}

	n, err := ParseParticipants(participants)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ErrValidationMeta("invalid date", map[string]string{
			"date": "must be YYYY-MM-DD",
		})
	}

	return &Event{
		Name:         name,
		Description:  description,
		Date:         date,
		Participants: n,
	}, nil
}

// ParseParticipants accepts base-10 non-negative integers only.
func ParseParticipants(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, ErrValidationMeta("participants must be a valid number", map[string]string{
			"participants": "must be a non-negative integer",
		})
	}
	return n, nil
}

func NewComment(userID, text string, rating int) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrValidationMeta("comment cannot be empty", map[string]string{
			"comment": "required",
		})
	}
	if rating < MinRating || rating > MaxRating {
		return Comment{}, ErrValidationMeta("invalid rating", map[string]string{
			"rating": "must be between 1 and 5",
		})
	}
	if strings.TrimSpace(userID) == "" {
		return Comment{}, ErrUnauthorized("missing user")
	}
	return Comment{UserID: userID, Text: text, Rating: rating}, nil
}

func (e *Event) HasAttendee(userID string) bool {
	return slices.Contains(e.Attendees, userID)
}

// CanConfirm is false once the user already attends.
func (e *Event) CanConfirm(userID string) bool {
	return strings.TrimSpace(userID) != "" && !e.HasAttendee(userID)
}

func (e *Event) AverageRating() float64 { return AverageRating(e.Comments) }

// AverageRating is the mean rating rounded half-up to one decimal, 0 without comments.
func AverageRating(comments []Comment) float64 {
	n := len(comments)
	if n == 0 {
		return 0
	}
	total := 0
	for _, c := range comments {
		total += c.Rating
	}
	// tenths = round(total*10/n), kept in integers
	tenths := (total*20 + n) / (2 * n)
	return float64(tenths) / 10
}
