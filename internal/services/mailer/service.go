package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// Config holds SMTP configuration loaded from KeyValue storage.
// Credentials live under smtp_* keys so they survive storage resets that
// re-seed from variables files.
type Config struct {
	Host     string `json:"smtp_host"`
	Port     int    `json:"smtp_port"`
	Username string `json:"smtp_username"`
	Password string `json:"smtp_password"`
	From     string `json:"smtp_from"`
	FromName string `json:"smtp_from_name"`
	UseTLS   bool   `json:"smtp_use_tls"`
}

// Service sends plain text notification emails with user SMTP credentials
type Service struct {
	kvStorage interfaces.KeyValueStorage
	logger    arbor.ILogger
}

// NewService creates a new mailer service
func NewService(kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		kvStorage: kvStorage,
		logger:    logger,
	}
}

// GetConfig retrieves SMTP configuration from KeyValue storage
func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	config := &Config{
		Port:     587,
		UseTLS:   true,
		FromName: "Respondo",
	}

	if host, err := s.kvStorage.Get(ctx, "smtp_host"); err == nil && host != "" {
		config.Host = host
	}
	if portStr, err := s.kvStorage.Get(ctx, "smtp_port"); err == nil && portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if username, err := s.kvStorage.Get(ctx, "smtp_username"); err == nil {
		config.Username = username
	}
	if password, err := s.kvStorage.Get(ctx, "smtp_password"); err == nil {
		config.Password = password
	}
	if from, err := s.kvStorage.Get(ctx, "smtp_from"); err == nil && from != "" {
		config.From = from
	}
	if fromName, err := s.kvStorage.Get(ctx, "smtp_from_name"); err == nil && fromName != "" {
		config.FromName = fromName
	}
	if tlsStr, err := s.kvStorage.Get(ctx, "smtp_use_tls"); err == nil && tlsStr != "" {
		config.UseTLS = strings.ToLower(tlsStr) == "true" || tlsStr == "1"
	}

	return config, nil
}

// IsConfigured checks if SMTP is configured with minimum required settings
func (s *Service) IsConfigured(ctx context.Context) bool {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return false
	}
	return config.Host != "" && config.Username != "" && config.Password != "" && config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get mail config: %w", err)
	}

	if config.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if config.Username == "" || config.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if config.From == "" {
		return fmt.Errorf("from email not configured")
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", config.FromName, config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	if config.UseTLS {
		return s.sendWithTLS(addr, auth, config.From, to, msg.String())
	}
	return smtp.SendMail(addr, auth, config.From, []string{to}, []byte(msg.String()))
}

// sendWithTLS sends email over a direct TLS connection, falling back to
// STARTTLS when the server does not accept TLS on connect.
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName: host,
	})
	if err != nil {
		return s.sendWithSTARTTLS(addr, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return transmit(client, auth, from, to, msg)
}

// sendWithSTARTTLS sends email using STARTTLS upgrade
func (s *Service) sendWithSTARTTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: host,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return transmit(client, auth, from, to, msg)
}

func transmit(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
