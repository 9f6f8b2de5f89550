package utils

import (
	"errors"
	"fmt"
	"html"
	"net/smtp"
	"net/url"
	"strings"
	"sync"

	"farmstore-backend/config"

	"go.uber.org/zap"
)

var ErrSMTPNotConfigured = errors.New("SMTP not configured")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends the storefront's transactional emails. The Send* helpers are
// fire-and-forget; Wait blocks until those in flight are done.
type Mailer struct {
	cfg  config.SMTP
	log  *zap.Logger
	send sendFunc
	wg   sync.WaitGroup
}

func NewMailer(cfg config.SMTP, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled()
}

func (m *Mailer) SendEmail(to, subject, htmlBody string) error {
	if !m.cfg.Enabled() {
		return ErrSMTPNotConfigured
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		m.cfg.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	return m.send(addr, auth, m.cfg.From, []string{to}, msg)
}

func (m *Mailer) sendAsync(to, subject, body, kind string) {
	if !m.cfg.Enabled() {
		m.log.Debug("SMTP not configured, skipping email", zap.String("kind", kind))
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.SendEmail(to, subject, body); err != nil {
			m.log.Error("failed to send email", zap.String("kind", kind), zap.String("to", to), zap.Error(err))
			return
		}
		m.log.Info("email sent", zap.String("kind", kind), zap.String("to", to))
	}()
}

// Wait blocks until every email started so far has been handed to SMTP.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func firstName(name string) string {
	return html.EscapeString(strings.Split(strings.TrimSpace(name), " ")[0])
}

func (m *Mailer) SendNewsletterConfirmation(email, name, unsubscribeToken, frontendURL string) {
	unsubscribeLink := fmt.Sprintf("%s/newsletter/unsubscribe?email=%s&token=%s",
		frontendURL, url.QueryEscape(email), url.QueryEscape(unsubscribeToken))

	subject := "Welcome to the Farm Newsletter!"
	body := fmt.Sprintf(`<h2>Thanks for subscribing, %s!</h2>
<p>You will now receive our newsletter with:</p>
<ul>
<li>Poultry care tips and vaccination schedules</li>
<li>Market prices and farming news</li>
<li>Special offers on chicks, vaccines and supplies</li>
</ul>
<p>Changed your mind? <a href="%s">Unsubscribe</a> at any time.</p>
<p>Happy farming!</p>`, firstName(name), html.EscapeString(unsubscribeLink))

	m.sendAsync(email, subject, body, "newsletter_confirmation")
}

// ContactNotification is what the shop needs to follow up an inquiry.
type ContactNotification struct {
	Name     string
	Phone    string
	Quantity int
	Message  string
}

func (m *Mailer) SendContactNotification(shopEmail string, n ContactNotification) {
	if shopEmail == "" {
		return
	}

	subject := fmt.Sprintf("New order inquiry from %s", n.Name)
	body := fmt.Sprintf(`<h2>New Order Inquiry</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Number of chicks:</strong> %d</p>
<pre style="background:#f5f5f5;padding:15px;border-radius:8px;">%s</pre>`,
		html.EscapeString(n.Name),
		html.EscapeString(n.Phone),
		n.Quantity,
		html.EscapeString(n.Message))

	m.sendAsync(shopEmail, subject, body, "contact_notification")
}
