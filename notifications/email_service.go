package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/codewithedgar/bothost/configs"
)

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

type email struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

// Mailer delivers email through a background worker. Enqueue never blocks
// and never fails the caller: delivery problems are logged, not surfaced.
type Mailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	queue       chan email
}

func NewMailer() *Mailer {
	m := &Mailer{
		apiKey:      config.Config("BREVO_API_KEY"),
		senderEmail: config.Config("EMAIL_SENDER"),
		senderName:  config.Config("EMAIL_SENDER_NAME"),
		queue:       make(chan email, 256),
	}

	if !m.configured() {
		log.Println("⚠️ Email service not configured. Outgoing mail will be dropped.")
	} else {
		log.Println("✅ Email service initialized successfully.")
	}

	go m.run()
	return m
}

func (m *Mailer) configured() bool {
	return m.apiKey != "" && m.senderEmail != "" && m.senderName != ""
}

func (m *Mailer) Enqueue(toName, toEmail, subject, htmlContent string) {
	select {
	case m.queue <- email{ToName: toName, ToEmail: toEmail, Subject: subject, HTML: htmlContent}:
	default:
		log.Printf("🔥 Mail queue full, dropping email to %s", toEmail)
	}
}

func (m *Mailer) run() {
	for msg := range m.queue {
		if !m.configured() {
			continue
		}
		if err := m.send(msg); err != nil {
			log.Printf("🔥 Failed to send email to %s: %v", msg.ToEmail, err)
			continue
		}
		log.Printf("✅ Email sent successfully to %s", msg.ToEmail)
	}
}

func (m *Mailer) send(msg email) error {
	url := "https://api.brevo.com/v3/smtp/email"

	if msg.ToEmail == "" || !strings.Contains(msg.ToEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", msg.ToEmail)
	}

	recipientName := msg.ToName
	if recipientName == "" {
		recipientName = msg.ToEmail[:strings.Index(msg.ToEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": m.senderName, "email": m.senderEmail},
		To:          []map[string]string{{"email": msg.ToEmail, "name": recipientName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("content-type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	return nil
}
