package smtp

import (
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-alert-service/internal/config"
	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "alerts@example.com",
		Password: "secret",
		From:     "alerts@example.com",
	}
}

func sampleAlerts() []domain.AlertDetail {
	return []domain.AlertDetail{
		{
			CityName:    "São José do Rio Preto",
			AlertDate:   "15/01/2026",
			AlertType:   "Onda de Calor",
			Description: "Temperatura atual elevada de 41.2°C.",
			Severity:    domain.SeverityHigh,
		},
		{
			CityName:    "Mirassol",
			AlertDate:   "16/01/2026",
			AlertType:   "Chuvas Fortes",
			Description: "Previsão de 80% de chance de chuva.",
			Severity:    domain.SeverityMedium,
		},
	}
}

func TestNotifier_SendDigest(t *testing.T) {
	n := NewNotifier(configuredSMTP(), testLogger())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	err := n.SendDigest("ana@example.com", sampleAlerts())
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "alerts@example.com", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Resumo de Alertas Climáticos (2 alerta(s))")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.Contains(t, body, "São José do Rio Preto")
	assert.Contains(t, body, "15/01/2026")
	assert.Contains(t, body, "Onda de Calor")
	assert.Contains(t, body, "Chuvas Fortes")
	assert.Contains(t, body, "severidade: alta")
}

func TestNotifier_SendDigest_EmptyIsNoop(t *testing.T) {
	n := NewNotifier(configuredSMTP(), testLogger())

	called := false
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	require.NoError(t, n.SendDigest("ana@example.com", nil))
	assert.False(t, called)
}

func TestNotifier_SendDigest_NotConfiguredSkips(t *testing.T) {
	n := NewNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, testLogger())

	called := false
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	require.NoError(t, n.SendDigest("ana@example.com", sampleAlerts()))
	assert.False(t, called, "missing credentials must skip delivery, not fail")
}

func TestNotifier_SendDigest_DeliveryFailure(t *testing.T) {
	n := NewNotifier(configuredSMTP(), testLogger())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := n.SendDigest("ana@example.com", sampleAlerts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestNotifier_SendDigest_FallsBackToUsernameFrom(t *testing.T) {
	cfg := configuredSMTP()
	cfg.From = ""
	n := NewNotifier(cfg, testLogger())

	var gotFrom string
	n.sendMail = func(_ string, _ smtp.Auth, from string, _ []string, _ []byte) error {
		gotFrom = from
		return nil
	}

	require.NoError(t, n.SendDigest("ana@example.com", sampleAlerts()))
	assert.Equal(t, "alerts@example.com", gotFrom)
}
