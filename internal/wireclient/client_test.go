package wireclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdentityProducesMatchingKeys(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)
	assert.NotEmpty(t, id.SecretKey)
	assert.NotEmpty(t, id.PubKey)

	derived, err := IdentityFromSecretKey(id.SecretKey)
	require.NoError(t, err)
	assert.Equal(t, id.PubKey, derived.PubKey)
}

func TestCircuitRegistryStartsClosed(t *testing.T) {
	r := newCircuitRegistry()
	assert.Equal(t, "closed", r.state("wss://relay.example"))
}

func TestCircuitRegistryOpensAfterFailures(t *testing.T) {
	r := newCircuitRegistry()
	for i := 0; i < 10; i++ {
		_, _ = r.execute("wss://relay.example", func() (any, error) {
			return nil, assertErr
		})
	}
	assert.Equal(t, "open", r.state("wss://relay.example"))
}

func TestCircuitRegistryPerRelayIsolation(t *testing.T) {
	r := newCircuitRegistry()
	for i := 0; i < 10; i++ {
		_, _ = r.execute("wss://bad.relay", func() (any, error) {
			return nil, assertErr
		})
	}
	assert.Equal(t, "open", r.state("wss://bad.relay"))
	assert.Equal(t, "closed", r.state("wss://good.relay"))
}

func TestRelayStatusesBeforeConnectReportsDisconnected(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)

	c := New(id, []string{"wss://relay.example"})
	statuses := c.RelayStatuses()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Connected)
	assert.Equal(t, "closed", statuses[0].CircuitOpen)
	assert.False(t, c.HasConnectedRelay())
}

var assertErr = errTestFailure{}

type errTestFailure struct{}

func (errTestFailure) Error() string { return "simulated relay failure" }
