package mq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerConfigDefaults(t *testing.T) {
	conf := producerConfig(KafkaProducerOption{Brokers: "localhost:9092", LingerMs: -1})

	v, err := conf.Get("batch.size", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, v)

	v, _ = conf.Get("linger.ms", nil)
	assert.Equal(t, defaultLingerMs, v)

	v, _ = conf.Get("client.id", nil)
	assert.True(t, strings.HasPrefix(v.(string), defaultClientID+"-"))

	v, _ = conf.Get("security.protocol", nil)
	assert.Nil(t, v)
}

func TestProducerConfigSecurity(t *testing.T) {
	conf := producerConfig(KafkaProducerOption{
		Brokers:          "localhost:9092",
		ClientID:         "yieldd",
		SecurityProtocol: "SASL_SSL",
		SaslMechanism:    "SCRAM-SHA-256",
		SaslUsername:     "user",
		SaslPassword:     "secret",
	})

	v, _ := conf.Get("security.protocol", nil)
	assert.Equal(t, "SASL_SSL", v)
	v, _ = conf.Get("sasl.mechanisms", nil)
	assert.Equal(t, "SCRAM-SHA-256", v)
	v, _ = conf.Get("client.id", nil)
	assert.True(t, strings.HasPrefix(v.(string), "yieldd-"))
}
