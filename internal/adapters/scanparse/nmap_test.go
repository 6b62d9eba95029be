package scanparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

func TestParse(t *testing.T) {
	doc := `<?xml version="1.0"?>
<nmaprun>
  <host>
    <address addr="203.0.113.10" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
      <port protocol="tcp" portid="443"><state state="open"/><service name="https"/></port>
    </ports>
  </host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []domain.Observation{
		{Host: "203.0.113.10", Port: 22, Proto: "tcp", State: "open", Service: "ssh"},
		{Host: "203.0.113.10", Port: 443, Proto: "tcp", State: "open", Service: "https"},
	}, observations)
}

func TestParse_HostWithoutAddressSkipped(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/></port>
    </ports>
  </host>
  <host>
    <address addr="203.0.113.11" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="80"><state state="open"/></port>
    </ports>
  </host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, observations, 1)
	assert.Equal(t, "203.0.113.11", observations[0].Host)
}

func TestParse_HostWithoutPortsSkipped(t *testing.T) {
	doc := `<nmaprun>
  <host><address addr="203.0.113.12" addrtype="ipv4"/></host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, observations)
}

func TestParse_BadPortIDSkipped(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <address addr="203.0.113.13" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="not-a-port"><state state="open"/></port>
      <port protocol="tcp" portid="8080"><state state="open"/></port>
    </ports>
  </host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, observations, 1)
	assert.Equal(t, 8080, observations[0].Port)
}

func TestParse_MissingStateAndServiceDefaultEmpty(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <address addr="203.0.113.14" addrtype="ipv4"/>
    <ports>
      <port protocol="udp" portid="123"/>
    </ports>
  </host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, observations, 1)
	assert.Equal(t, "", observations[0].State)
	assert.Equal(t, "", observations[0].Service)
}

func TestParse_PrefersIPv4Address(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <address addr="AA:BB:CC:DD:EE:FF" addrtype="mac"/>
    <address addr="203.0.113.15" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="25"><state state="open"/><service name="smtp"/></port>
    </ports>
  </host>
</nmaprun>`

	observations, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, observations, 1)
	assert.Equal(t, "203.0.113.15", observations[0].Host)
}

func TestParse_CorruptDocumentReturnsError(t *testing.T) {
	_, err := Parse(strings.NewReader("<nmaprun><host>"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan-1-tcp-a.xml")
	doc := `<nmaprun>
  <host>
    <address addr="203.0.113.16" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
    </ports>
  </host>
</nmaprun>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	observations, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, observations, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}
