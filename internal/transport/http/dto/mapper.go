package dto

import "github.com/baechuer/community-events/internal/domain"

// ToEventResp maps an event as seen by userID.
func ToEventResp(e *domain.Event, userID string) EventResp {
	comments := make([]CommentResp, 0, len(e.Comments))
	for _, c := range e.Comments {
		comments = append(comments, CommentResp{UserID: c.UserID, Text: c.Text, Rating: c.Rating})
	}
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	return EventResp{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		Date:          e.Date,
		Participants:  e.Participants,
		CreatedAt:     e.CreatedAt,
		Attendees:     attendees,
		Comments:      comments,
		AverageRating: e.AverageRating(),
		Attending:     e.HasAttendee(userID),
		CanConfirm:    e.CanConfirm(userID),
	}
}

func ToEventSummaries(events []*domain.Event) []EventSummaryResp {
	out := make([]EventSummaryResp, 0, len(events))
	for _, e := range events {
		out = append(out, EventSummaryResp{
			ID:           e.ID,
			Name:         e.Name,
			Date:         e.Date,
			Participants: e.Participants,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}

func ToCommentResp(c domain.Comment) CommentResp {
	return CommentResp{UserID: c.UserID, Text: c.Text, Rating: c.Rating}
}
