package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// LineInfo is one invoice line rendered into notification emails.
type LineInfo struct {
	Title  string
	Detail string // e.g. "2024-03-01 → 2024-03-03 (2 nights)"
	Amount float64
}

// SendBookingEmail sends a confirmation or cancellation email for an
// invoice snapshot. When SMTP is not configured the send is mocked to the
// log so dev environments keep working.
func SendBookingEmail(kind, recipientEmail, bookingCode, guestName string, lines []LineInfo, total float64) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := EnvOrDefault("SMTP_FROM_NAME", "Four Seasons Resort")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] kind:%s to:%s booking:%s total:%.0f lines:%d",
			kind, recipientEmail, bookingCode, total, len(lines))
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	guestName = safe(guestName)
	bookingCode = safe(bookingCode)

	var subject, intro string
	if kind == "cancellation" {
		subject = fmt.Sprintf("Booking Cancelled — %s", bookingCode)
		intro = "Your booking has been cancelled. Details below for your records:"
	} else {
		subject = fmt.Sprintf("Booking Confirmation — %s", bookingCode)
		intro = "Thank you for booking with us! Here are your booking details:"
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	boundary := "----=_RESORT_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n%s\n\nBooking Reference: %s\n%s\nTotal: %.0f\n\nIf you have any questions, feel free to contact us.\n\nBest regards,\n%s",
		guestName, intro, bookingCode, linesText(lines), total, fromName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:700px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.label { font-weight:700; width:160px; display:inline-block; vertical-align:top; }
.line-list { margin:12px 0 18px 0; padding-left:18px; }
.line-item { margin:6px 0; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>%s</h2>
    <p>Dear %s,</p>
    <p>%s</p>
    <p><span class="label">Booking Reference:</span> %s</p>
    %s
    <p><span class="label">Total:</span> %.0f</p>
    <p>If you have any questions, feel free to contact us.</p>
    <p>Best regards,<br>%s</p>
  </div>
</div>
</body>
</html>`,
		subject, subject, htmlEscape(guestName), htmlEscape(intro),
		htmlEscape(bookingCode), linesHTML(lines), total, htmlEscape(fromName),
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("❌ Failed to send %s email to %s: %v", kind, recipientEmail, err)
		return err
	}

	log.Printf("📨 %s email sent to %s (booking %s)", kind, recipientEmail, bookingCode)
	return nil
}

func linesText(lines []LineInfo) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range lines {
		if l.Detail != "" {
			b.WriteString(fmt.Sprintf(" - %s — %s: %.0f\n", l.Title, l.Detail, l.Amount))
		} else {
			b.WriteString(fmt.Sprintf(" - %s: %.0f\n", l.Title, l.Amount))
		}
	}
	return b.String()
}

func linesHTML(lines []LineInfo) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul class=\"line-list\">")
	for _, l := range lines {
		if l.Detail != "" {
			b.WriteString(fmt.Sprintf("<li class=\"line-item\">%s — %s: %.0f</li>",
				htmlEscape(l.Title), htmlEscape(l.Detail), l.Amount))
		} else {
			b.WriteString(fmt.Sprintf("<li class=\"line-item\">%s: %.0f</li>", htmlEscape(l.Title), l.Amount))
		}
	}
	b.WriteString("</ul>")
	return b.String()
}

// minimal html escaper for the small strings we use
func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
