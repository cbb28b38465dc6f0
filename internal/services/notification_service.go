// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/models"
)

// OrderNotifier is told about every freshly persisted order.
type OrderNotifier interface {
	SendOrderConfirmation(order *models.Order, lines []ConfirmationLine) error
}

// ConfirmationLine is one rendered row of the confirmation email.
type ConfirmationLine struct {
	Name     string
	Quantity int
}

type NotificationService struct {
	config   *config.Config
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Thanks for your order{{if .CustomerName}}, {{.CustomerName}}{{end}}!</h2>
	<p>We received your payment of {{.Amount}} {{.Currency}}.</p>
	<ul>
	{{range .Lines}}<li>{{.Quantity}} x {{.Name}}</li>
	{{end}}</ul>
	{{with .Shipping}}<p>Shipping to:<br>{{.Name}}<br>{{.Line1}}{{if .Line2}}<br>{{.Line2}}{{end}}<br>{{.City}} {{.State}} {{.PostalCode}}<br>{{.Country}}</p>{{end}}
	<p>Order reference: {{.Reference}}</p>
	<p>Best regards,<br>{{.ShopName}}</p>
</body>
</html>`))

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config:   config,
		sendMail: smtp.SendMail,
	}
}

func (s *NotificationService) Enabled() bool {
	return s.config.Email.SMTPHost != ""
}

func (s *NotificationService) SendOrderConfirmation(order *models.Order, lines []ConfirmationLine) error {
	if order.CustomerEmail == "" {
		return nil
	}

	body, err := s.renderOrderConfirmation(order, lines)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("%s order confirmation", s.config.Email.FromName)
	return s.sendEmail(order.CustomerEmail, subject, body)
}

func (s *NotificationService) renderOrderConfirmation(order *models.Order, lines []ConfirmationLine) (string, error) {
	data := map[string]interface{}{
		"CustomerName": order.CustomerName,
		"Amount":       models.FormatAmount(order.Amount, order.Currency),
		"Currency":     currencyCode(order.Currency),
		"Lines":        lines,
		"Shipping":     order.ShippingAddress,
		"Reference":    order.StripeSessionID,
		"ShopName":     s.config.Email.FromName,
	}

	var buf bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if !s.Enabled() {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Debug("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return s.sendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func currencyCode(c string) string {
	if c == "" {
		return "USD"
	}
	return strings.ToUpper(c)
}
