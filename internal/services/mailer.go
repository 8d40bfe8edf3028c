package services

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
)

// MailerService sends transactional mail. Every send is best-effort: a
// failed dispatch is logged and reported to the caller as metadata, never
// treated as a failure of the operation that triggered it.
type MailerService struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	storeName string
}

// NewMailerService creates a MailerService.
func NewMailerService(host string, port int, username, password, from, storeName string) *MailerService {
	return &MailerService{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		from:      from,
		storeName: storeName,
	}
}

func (s *MailerService) send(to, subject, htmlBody string) error {
	if s.host == "" {
		log.Println("[Mailer] SMTP not configured, skipping send")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", s.storeName, s.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mailer] Failed to send %q to %s: %v", subject, to, err)
		return err
	}

	return nil
}

// SendOrderConfirmation mails the paid-order receipt to the shipping email.
func (s *MailerService) SendOrderConfirmation(order *models.Order) error {
	to := order.ShippingEmail
	if to == "" {
		to = order.GuestEmail
	}
	if to == "" {
		return fmt.Errorf("order %s has no recipient email", order.OrderNumber)
	}

	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "<tr><td>%s</td><td>%d</td><td>₹%.2f</td></tr>", item.ProductName, item.Quantity, item.LineTotal)
	}

	body := fmt.Sprintf(`<h2>Thank you for your order!</h2>
<p>Order <b>%s</b> has been confirmed and is being processed.</p>
<table border="0" cellpadding="6">
<tr><th>Item</th><th>Qty</th><th>Amount</th></tr>
%s
</table>
<p><b>Total: ₹%.2f</b></p>
<p>%s</p>`, order.OrderNumber, lines.String(), order.TotalAmount, s.storeName)

	return s.send(to, fmt.Sprintf("Order %s confirmed", order.OrderNumber), body)
}

// SendPasswordReset mails a reset link token to the customer.
func (s *MailerService) SendPasswordReset(email, token string) error {
	body := fmt.Sprintf(`<p>We received a request to reset your %s account password.</p>
<p>Your reset token is: <b>%s</b></p>
<p>The token expires in 10 minutes. If you did not request this, ignore this mail.</p>`, s.storeName, token)

	return s.send(email, "Password reset request", body)
}
