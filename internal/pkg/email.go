package pkg

import (
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // 显示的发件人，可与 Username 相同
}

// SMTPMailer 通过 SMTP 发送 HTML 邮件
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}
	return d.DialAndSend(msg)
}

// LogMailer 未配置 SMTP 时只打印邮件
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("[mail] to=%s subject=%q body=%s", to, subject, htmlBody)
	return nil
}

func VerificationEmailHTML(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; padding: 20px;">
<h2>Verify your EchoSpace account</h2>
<p>Your 6-digit verification code is:</p>
<h1 style="letter-spacing: 4px;">%s</h1>
<p>This code will expire in %d minutes.</p>
</div>`, code, int(ttl.Minutes()))
}
