package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	event := domain.AlertEvent{
		ID:          42,
		CityID:      "rio-preto",
		CityName:    "São José do Rio Preto",
		TypeID:      domain.AlertTypeHeatWave,
		TypeName:    "Onda de Calor",
		Date:        "2026-01-15",
		Description: "Temperatura atual elevada de 41.2°C.",
		Severity:    domain.SeverityHigh,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("rio-preto|onda_calor|2026-01-15"), msg.Key)
	assert.Contains(t, string(msg.Value), `"alert_type_id":"onda_calor"`)
	assert.Contains(t, string(msg.Value), `"alert_date":"2026-01-15"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, kafkago.Header{Key: "alert_type", Value: []byte("onda_calor")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: "severity", Value: []byte("alta")}, msg.Headers[1])
}

func TestSerializeToMessage_SameNaturalKeySameKey(t *testing.T) {
	a := domain.AlertEvent{CityID: "c1", TypeID: domain.AlertTypeHeavyRain, Date: "2026-01-16", Description: "first"}
	b := domain.AlertEvent{CityID: "c1", TypeID: domain.AlertTypeHeavyRain, Date: "2026-01-16", Description: "second"}

	ma, err := serializeToMessage(a)
	require.NoError(t, err)
	mb, err := serializeToMessage(b)
	require.NoError(t, err)

	assert.Equal(t, ma.Key, mb.Key, "partitioning must follow the natural key")
}
