package smtp

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/couchcryptid/climate-alert-service/internal/config"
	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<h2>Resumo de Alertas Climáticos</h2>
<p>Os seguintes alertas foram emitidos para as suas cidades monitoradas:</p>
{{range .}}<div style="border-left: 4px solid #cc0000; padding: 8px 12px; margin-bottom: 12px;">
  <strong>{{.CityName}}</strong> &#8212; {{.AlertDate}}<br>
  <em>{{.AlertType}}</em> (severidade: {{.Severity}})<br>
  {{.Description}}
</div>
{{end}}<p>Equipe de Monitoramento Climático</p>
`))

// Notifier delivers grouped alert digests over SMTP. When credentials are
// absent it logs the digest and reports success, so local runs work without
// a mail account.
type Notifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger

	// sendMail is swapped out in tests.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotifier creates an SMTP digest notifier.
func NewNotifier(cfg config.SMTPConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// SendDigest sends one email to a recipient summarizing all alerts raised
// for their subscribed cities in this run.
func (n *Notifier) SendDigest(to string, alerts []domain.AlertDetail) error {
	if len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Resumo de Alertas Climáticos (%d alerta(s))", len(alerts))

	body, err := renderDigest(alerts)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	if !n.cfg.Configured() {
		n.logger.Info("smtp not configured, skipping email", "to", to, "subject", subject, "alerts", len(alerts))
		return nil
	}

	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	if err := n.sendMail(addr, auth, from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send digest to %s: %w", to, err)
	}

	return nil
}

func renderDigest(alerts []domain.AlertDetail) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, alerts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
