package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/domain"
)

// Stored field names of the events collection.
const (
	fieldName         = "eventName"
	fieldDescription  = "description"
	fieldDate         = "date"
	fieldParticipants = "participants"
	fieldCreatedAt    = "createdAt"
	fieldAttendees    = "attendees"
	fieldComments     = "comments"

	fieldCommentUser   = "userId"
	fieldCommentText   = "comment"
	fieldCommentRating = "rating"
)

func encodeDraft(e *domain.Event) docstore.Record {
	return docstore.Record{
		fieldName:         e.Name,
		fieldDescription:  e.Description,
		fieldDate:         e.Date,
		fieldParticipants: e.Participants,
		fieldCreatedAt:    docstore.ServerTimestamp(),
		fieldAttendees:    []any{},
		fieldComments:     []any{},
	}
}

func encodeComment(c domain.Comment) map[string]any {
	return map[string]any{
		fieldCommentUser:   c.UserID,
		fieldCommentText:   c.Text,
		fieldCommentRating: c.Rating,
	}
}

// decodeEvent turns a stored record into a typed event. It is the only place
// raw records are read.
func decodeEvent(doc docstore.Document) (*domain.Event, error) {
	d := doc.Data
	e := &domain.Event{ID: doc.ID}

	var err error
	if e.Name, err = stringField(d, fieldName, true); err != nil {
		return nil, err
	}
	if e.Description, err = stringField(d, fieldDescription, false); err != nil {
		return nil, err
	}
	if e.Date, err = stringField(d, fieldDate, false); err != nil {
		return nil, err
	}
	if e.Participants, err = intField(d[fieldParticipants], fieldParticipants); err != nil {
		return nil, err
	}

	if raw, ok := d[fieldCreatedAt]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected timestamp string, got %T", fieldCreatedAt, raw)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fieldCreatedAt, err)
		}
		e.CreatedAt = t.UTC()
	}

	attendees, err := arrayField(d, fieldAttendees)
	if err != nil {
		return nil, err
	}
	e.Attendees = make([]string, 0, len(attendees))
	for i, a := range attendees {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("field %q[%d]: expected string, got %T", fieldAttendees, i, a)
		}
		e.Attendees = append(e.Attendees, s)
	}

	comments, err := arrayField(d, fieldComments)
	if err != nil {
		return nil, err
	}
	e.Comments = make([]domain.Comment, 0, len(comments))
	for i, raw := range comments {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q[%d]: expected object, got %T", fieldComments, i, raw)
		}
		var c domain.Comment
		if c.UserID, err = stringField(m, fieldCommentUser, false); err != nil {
			return nil, err
		}
		if c.Text, err = stringField(m, fieldCommentText, false); err != nil {
			return nil, err
		}
		if c.Rating, err = intField(m[fieldCommentRating], fieldCommentRating); err != nil {
			return nil, err
		}
		e.Comments = append(e.Comments, c)
	}

	return e, nil
}

func stringField(d map[string]any, key string, required bool) (string, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("field %q: missing", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	return s, nil
}

// intField accepts integral numbers and numeric strings; older records stored
// ratings as text.
func intField(raw any, key string) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("field %q: %v is not an integer", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q: expected number, got %T", key, raw)
	}
}

func arrayField(d map[string]any, key string) ([]any, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected array, got %T", key, raw)
	}
	return arr, nil
}
