package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/baechuer/community-events/internal/application/event"
)

func (c *Console) login(ctx context.Context) (screen, error) {
	c.printf("\n== Sign in ==\n")
	email, err := c.prompt("Email (q to quit): ")
	if err != nil {
		return screenQuit, err
	}
	if strings.TrimSpace(email) == "q" {
		return screenQuit, nil
	}
	c.printf("Password: ")
	password, err := c.readPassword()
	if err != nil {
		return screenQuit, err
	}

	s, err := c.sessions.SignIn(ctx, email, password)
	if err != nil {
		c.fail(err)
		return screenLogin, nil
	}
	c.session = s
	c.count.Store(0)
	c.startWatch(ctx)
	return screenHome, nil
}

func (c *Console) home(ctx context.Context) (screen, error) {
	// set first so a change landing mid-render is still shown
	c.onHome.Store(true)
	c.printf("\n== Home ==\nSigned in as %s\nEvents: %d\n", c.session.Identity.Email, c.count.Load())
	c.printf("1) Browse events\n2) Create event\n3) Sign out\nq) Quit\n")

	choice, err := c.prompt("> ")
	c.onHome.Store(false)
	if err != nil {
		return screenQuit, err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return screenList, nil
	case "2":
		return screenCreate, nil
	case "3":
		return c.signOut(ctx), nil
	case "q":
		return screenQuit, nil
	default:
		c.printf("! invalid choice\n")
		return screenHome, nil
	}
}

func (c *Console) signOut(ctx context.Context) screen {
	c.stopWatch()
	c.SignOut(ctx)
	c.printf("Signed out.\n")
	return screenLogin
}

func (c *Console) list(ctx context.Context) (screen, error) {
	c.printf("\n== Events ==\n")
	items, err := c.events.List(ctx)
	if err != nil {
		c.fail(err)
	}
	if len(items) == 0 {
		c.printf("(no events yet)\n")
	}
	for i, e := range items {
		c.printf("%2d. %s (%s, %d participants)\n", i+1, e.Name, e.Date, e.Participants)
	}

	choice, err := c.prompt("Open # (blank to go back): ")
	if err != nil {
		return screenQuit, err
	}
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return screenHome, nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(items) {
		c.printf("! invalid choice\n")
		return screenList, nil
	}
	c.selected = items[n-1].ID
	return screenDetails, nil
}

func (c *Console) create(ctx context.Context) (screen, error) {
	c.printf("\n== New event ==\n")
	var cmd event.CreateCmd
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name: ", &cmd.Name},
		{"Description: ", &cmd.Description},
		{"Date (YYYY-MM-DD): ", &cmd.Date},
		{"Participants: ", &cmd.Participants},
	}
	for _, f := range fields {
		v, err := c.prompt(f.label)
		if err != nil {
			return screenQuit, err
		}
		*f.dst = v
	}

	e, err := c.events.Create(ctx, cmd)
	if err != nil {
		c.fail(err)
		return screenHome, nil
	}
	c.printf("Event %q created.\n", e.Name)
	return screenHome, nil
}

func (c *Console) details(ctx context.Context) (screen, error) {
	e, err := c.events.Get(ctx, c.selected)
	if err != nil {
		c.fail(err)
		return screenList, nil
	}
	if e == nil {
		c.printf("! event no longer exists\n")
		return screenList, nil
	}

	userID := c.session.Identity.UserID
	c.printf("\n== %s ==\n%s\nDate: %s\nParticipants: %d\nAttending: %d\n",
		e.Name, e.Description, e.Date, e.Participants, len(e.Attendees))
	c.printf("Average rating: %.1f (%d comments)\n", e.AverageRating(), len(e.Comments))
	for _, cm := range e.Comments {
		c.printf("  - %s (%d/5): %s\n", cm.UserID, cm.Rating, cm.Text)
	}
	if e.HasAttendee(userID) {
		c.printf("You are attending.\n")
	}

	canConfirm := e.CanConfirm(userID)
	if canConfirm {
		c.printf("a) Confirm attendance\n")
	}
	c.printf("c) Comment\nd) Delete\nb) Back\n")

	choice, err := c.prompt("> ")
	if err != nil {
		return screenQuit, err
	}
	switch strings.TrimSpace(choice) {
	case "a":
		if !canConfirm {
			break
		}
		if _, err := c.events.ConfirmAttendance(ctx, e.ID, userID); err != nil {
			c.fail(err)
		} else {
			c.printf("Attendance confirmed.\n")
		}
		return screenDetails, nil
	case "c":
		return c.comment(ctx, e.ID)
	case "d":
		return c.delete(ctx, e.ID)
	case "b", "":
		return screenList, nil
	}
	c.printf("! invalid choice\n")
	return screenDetails, nil
}

func (c *Console) comment(ctx context.Context, eventID string) (screen, error) {
	text, err := c.prompt("Comment: ")
	if err != nil {
		return screenQuit, err
	}
	raw, err := c.prompt("Rating (1-5): ")
	if err != nil {
		return screenQuit, err
	}
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.printf("! rating must be a whole number from 1 to 5\n")
		return screenDetails, nil
	}

	_, err = c.events.AddComment(ctx, event.AddCommentCmd{
		EventID: eventID,
		UserID:  c.session.Identity.UserID,
		Text:    text,
		Rating:  rating,
	})
	if err != nil {
		c.fail(err)
	} else {
		c.printf("Comment added.\n")
	}
	return screenDetails, nil
}

func (c *Console) delete(ctx context.Context, eventID string) (screen, error) {
	answer, err := c.prompt("Delete this event? [y/N]: ")
	if err != nil {
		return screenQuit, err
	}

	confirm := event.Cancel
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		confirm = event.Confirm
	}

	deleted, err := c.events.Delete(ctx, eventID, confirm)
	if err != nil {
		c.fail(err)
		return screenDetails, nil
	}
	if !deleted {
		c.printf("Cancelled.\n")
		return screenDetails, nil
	}
	c.printf("Event deleted.\n")
	return screenList, nil
}
