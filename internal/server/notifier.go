package server

import (
	"context"
	"fmt"

	"github.com/gedemagt/booking/internal/booking"
	"github.com/gedemagt/booking/internal/email"
	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/logger"
	"github.com/gedemagt/booking/internal/timeslot"
	"github.com/gedemagt/booking/internal/user"
)

// bookingNotifier resolves the recipient and zone behind a committed booking
// and hands the confirmation off to the email queue.
type bookingNotifier struct {
	email *email.Service
	users user.Repository
	gyms  gym.Repository
}

func newBookingNotifier(emailService *email.Service, users user.Repository, gyms gym.Repository) booking.Notifier {
	return &bookingNotifier{email: emailService, users: users, gyms: gyms}
}

func (n *bookingNotifier) SendBookingConfirmation(ctx context.Context, userID int, b *booking.Booking) {
	u, err := n.users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("confirmation skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}

	zoneName := fmt.Sprintf("zone %d", b.ZoneID)
	if z, err := n.gyms.GetZoneByID(ctx, b.ZoneID); err == nil {
		zoneName = z.Name
	}

	length := timeslot.FormatSlots(timeslot.InSlots(b.End.Sub(b.Start)))
	details := fmt.Sprintf("%d spot(s) for %s", b.Number, length)

	if err := n.email.SendBookingConfirmation(ctx, u.Email, u.Username, zoneName, details, b.Start); err != nil {
		logger.Error("failed to queue booking confirmation", "user_id", userID, "error", err)
	}
}
