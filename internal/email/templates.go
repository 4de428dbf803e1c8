package email

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "Jan 2, 2006"

func (s *Service) PaymentConfirmed(ctx context.Context, to, name, planName string, endDate time.Time, pin string) error {
	subject := "Membership Activated - " + planName
	body := fmt.Sprintf(`Hi %s,

Your payment has been confirmed and your membership is now active.

Plan: %s
Valid until: %s
`, name, planName, endDate.Format(dateLayout))

	if pin != "" {
		body += fmt.Sprintf(`
Your kiosk PIN is %s. Enter it at the front desk kiosk to check in and out.
`, pin)
	}
	body += `
See you at the gym!

- Rhose Gym`

	return s.Send(ctx, TypePaymentConfirmed, to, name, subject, body)
}

func (s *Service) PaymentRejected(ctx context.Context, to, name, planName, reason string) error {
	subject := "Payment Not Accepted - " + planName
	if reason == "" {
		reason = "No reason was given."
	}
	body := fmt.Sprintf(`Hi %s,

We could not confirm your payment for %s.

Reason: %s

Please contact the front desk if you believe this is a mistake.

- Rhose Gym`, name, planName, reason)

	return s.Send(ctx, TypePaymentRejected, to, name, subject, body)
}

func (s *Service) MembershipExpiring(ctx context.Context, to, name, planName string, endDate time.Time, daysLeft int) error {
	subject := fmt.Sprintf("Your membership ends in %d day(s)", daysLeft)
	body := fmt.Sprintf(`Hi %s,

This is a reminder that your %s membership ends on %s.

Renew before then to keep your access to the gym.

- Rhose Gym`, name, planName, endDate.Format(dateLayout))

	return s.Send(ctx, TypeMembershipExpiring, to, name, subject, body)
}
