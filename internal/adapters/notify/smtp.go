// Package notify delivers drift reports over SMTP.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/OlderMutt/Surface-Minder/internal/config"
	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// PDFExporter renders a check result as a PDF attachment.
type PDFExporter interface {
	ExportDriftReport(result *domain.CheckResult) ([]byte, error)
}

// SMTPNotifier mails drift reports. It speaks implicit TLS (use_ssl,
// typically port 465) or plain SMTP with STARTTLS when the server announces
// it (or when forced), and only authenticates when a user is configured.
type SMTPNotifier struct {
	cfg config.SMTPConfig

	// PDF is optional; when set the drift report is attached as PDF.
	PDF PDFExporter
}

// NewSMTPNotifier creates a notifier from SMTP config.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Notify formats and sends the check result to the configured recipients.
func (n *SMTPNotifier) Notify(ctx context.Context, result *domain.CheckResult) error {
	if len(n.cfg.To) == 0 {
		return fmt.Errorf("no smtp recipients configured")
	}

	var attachment []byte
	if n.PDF != nil {
		data, err := n.PDF.ExportDriftReport(result)
		if err != nil {
			// Report still goes out as text.
			slog.Warn("PDF export failed, sending without attachment", "error", err)
		} else {
			attachment = data
		}
	}

	msg, err := buildMessage(n.cfg.From, n.cfg.To, Subject(result), FormatReport(result), attachment,
		fmt.Sprintf("surfaceminder-%s.pdf", result.RunID))
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SMTPNotifier) send(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	var (
		client *smtp.Client
		err    error
	)
	dialer := &net.Dialer{}
	if n.cfg.UseSSL {
		conn, dialErr := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: n.cfg.Host})
		if dialErr != nil {
			return fmt.Errorf("smtp ssl dial: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, n.cfg.Host)
	} else {
		conn, dialErr := dialer.DialContext(ctx, "tcp", addr)
		if dialErr != nil {
			return fmt.Errorf("smtp dial: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, n.cfg.Host)
	}
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if !n.cfg.UseSSL {
		announced, _ := client.Extension("STARTTLS")
		if n.cfg.StartTLSForce || (n.cfg.StartTLS && announced) {
			if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if n.cfg.User != "" {
		auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range n.cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

// buildMessage assembles an RFC 5322 message, multipart when an attachment
// is present.
func buildMessage(from string, to []string, subject, body string, attachment []byte, filename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", "application/pdf")
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	part, err = mw.CreatePart(attHeader)
	if err != nil {
		return nil, err
	}
	enc := base64.NewEncoder(base64.StdEncoding, part)
	if _, err := enc.Write(attachment); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ ports.Notifier = (*SMTPNotifier)(nil)
