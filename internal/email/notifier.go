// Package email envía la notificación de cuenta vinculada por SMTP.
// Opcional: sin SMTP configurado se usa el notifier NoOp. Las fallas de envío
// se loguean y nunca se propagan al flujo de auth.
package email

import (
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/opsdeck/garrison/internal/observability/logger"
)

// Notifier notifica eventos de cuenta.
type Notifier interface {
	// AccountLinked avisa que se vinculó una cuenta de Discord.
	AccountLinked(to, username string)
}

// NoOp descarta toda notificación.
type NoOp struct{}

func (NoOp) AccountLinked(string, string) {}

// SMTPNotifier implementa Notifier usando SMTP.
type SMTPNotifier struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPNotifier(host string, port int, from, user, pass string) *SMTPNotifier {
	if port == 0 {
		port = 587
	}
	return &SMTPNotifier{Host: host, Port: port, From: from, User: user, Pass: pass}
}

func (s *SMTPNotifier) AccountLinked(to, username string) {
	if to == "" {
		return
	}
	log := logger.L().With(
		logger.Component("email.notifier"),
		logger.String("to", to),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your Discord account is now linked")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour Discord account was linked successfully. "+
			"Your community roles will be reflected the next time you sign in.\n", username))

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		// Best effort: el link ya quedó persistido, no se reintenta acá.
		log.Warn("account-linked notification failed", logger.Err(err))
		return
	}
	log.Debug("account-linked notification sent")
}
