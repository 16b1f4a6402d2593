package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional mail over plain SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "TamirciBul - Şifre Sıfırlama")
	msg.SetBody("text/html", fmt.Sprintf(`
		<p>Merhaba,</p>
		<p>Şifrenizi sıfırlamak için aşağıdaki bağlantıya tıklayın. Bağlantı 1 saat geçerlidir.</p>
		<p><a href="%s">Şifremi Sıfırla</a></p>
		<p>Bu isteği siz yapmadıysanız bu e-postayı yok sayabilirsiniz.</p>
	`, link))
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	return nil
}
