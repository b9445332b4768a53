package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
logger:
  format: json
  level: info
rpc:
  endpoint: http://localhost:8899
kafka_producer:
  brokers: localhost:9092
  client_id: yieldd
  topics:
    yield: ray-yield
  partitions:
    yield: 8
redis:
  addr: localhost:6379
  ttl_sec: 120
yield:
  interval_sec: 30
  registry_file: etc/registry.yaml
  price_file: etc/prices.yaml
submit:
  max_retries: 2
  base_delay_ms: 200
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	var c Config
	require.NoError(t, Load(writeConfig(t, sample), &c))

	assert.Equal(t, "json", c.LogConf.ToLogOption().Format)
	assert.Equal(t, 10*time.Second, c.RpcConf.Timeout())
	assert.Equal(t, 30*time.Second, c.YieldConf.Interval())
	assert.Equal(t, 4, c.YieldConf.Workers)
	assert.Equal(t, 2*time.Minute, c.RedisConf.TTL())

	opt := c.KafkaProducerConf.ToKafkaOption()
	require.Len(t, opt.Topics, 1)
	assert.Equal(t, "ray-yield", opt.Topics[0].Topic)
	assert.Equal(t, 8, opt.Topics[0].Partitions)
	assert.Equal(t, "yieldd", opt.ClientID)
	assert.Equal(t, 5*time.Second, c.KafkaProducerConf.SendTimeout())

	so := c.SubmitConf.ToSubmitOptions()
	assert.Equal(t, 2, so.Retry.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, so.Retry.BaseDelay)
	assert.Equal(t, 500*time.Millisecond, so.PollInterval)
	assert.Equal(t, time.Minute, so.ConfirmTimeout)
}

func TestLoadFillsDefaults(t *testing.T) {
	var c Config
	content := "rpc:\n  endpoint: x\nyield:\n  registry_file: r.yaml\n"
	require.NoError(t, Load(writeConfig(t, content), &c))

	assert.Equal(t, "console", c.LogConf.Format)
	assert.Equal(t, "info", c.LogConf.Level)
	assert.Equal(t, 10*time.Second, c.RpcConf.Timeout())
	assert.Equal(t, time.Minute, c.YieldConf.Interval())
	assert.Equal(t, 4, c.YieldConf.Workers)
	assert.Equal(t, 20*time.Second, c.YieldConf.FetchTimeout())
	assert.Equal(t, 10*time.Minute, c.RedisConf.TTL())
	assert.Equal(t, 1, c.KafkaProducerConf.Partitions.Yield)
	assert.Equal(t, 5*time.Second, c.KafkaProducerConf.SendTimeout())
	assert.Empty(t, c.KafkaProducerConf.Brokers)
	assert.Empty(t, c.RedisConf.Addr)

	so := c.SubmitConf.ToSubmitOptions()
	assert.Equal(t, 0, so.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, so.PollInterval)
	assert.Equal(t, time.Minute, so.ConfirmTimeout)
}

func TestLoadRequiresEndpoint(t *testing.T) {
	var c Config
	err := Load(writeConfig(t, "rpc:\n  timeout_ms: 100\nyield:\n  registry_file: r.yaml\n"), &c)
	assert.ErrorContains(t, err, "rpc.endpoint")

	// 整个 rpc 段缺失
	err = Load(writeConfig(t, "yield:\n  registry_file: r.yaml\n"), &c)
	assert.ErrorContains(t, err, "rpc")
}

func TestLoadRequiresRegistryFile(t *testing.T) {
	var c Config
	err := Load(writeConfig(t, "rpc:\n  endpoint: x\nyield:\n  workers: 2\n"), &c)
	assert.ErrorContains(t, err, "yield.registry_file")
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := map[string]string{
		"negative retries": "rpc:\n  endpoint: x\nyield:\n  registry_file: r.yaml\nsubmit:\n  max_retries: -1\n",
		"zero workers":     "rpc:\n  endpoint: x\nyield:\n  registry_file: r.yaml\n  workers: 0\n",
		"zero timeout":     "rpc:\n  endpoint: x\n  timeout_ms: 0\nyield:\n  registry_file: r.yaml\n",
		"unknown format":   "logger:\n  format: xml\nrpc:\n  endpoint: x\nyield:\n  registry_file: r.yaml\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var c Config
			assert.Error(t, Load(writeConfig(t, content), &c))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	var c Config
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &c))
}
