// Package service contains background and outbound collaborator glue
package service

import (
	"errors"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional mail through the configured SMTP relay.
// It satisfies the Mailer contract consumed by the auth flows.
type SMTPMailer struct {
	host string
	port int
	from string
	pass string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		host: viper.GetString("mail.host"),
		port: viper.GetInt("mail.port"),
		from: viper.GetString("mail.sender_address"),
		pass: viper.GetString("mail.password"),
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if to == m.from {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.from, m.pass)

	return d.DialAndSend(msg)
}
