package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_URL", "STUN_SERVER", "TURN_SERVER", "TURN_USERNAME", "TURN_PASSWORD",
		"FORCE_RELAY", "CODEC", "LISTEN_ADDR", "CERT_FILE", "KEY_FILE", "ALLOWED_ORIGINS", "METRICS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/ws", cfg.WebSocketURL)
	assert.Equal(t, DefaultSTUN, cfg.STUNServer)
	assert.Nil(t, cfg.GetTURNServers())

	t.Setenv("SERVER_URL", "https://relay.example.com")
	t.Setenv("STUN_SERVER", "stun:env.example.com:3478")
	cfg, err = Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.example.com/ws", cfg.WebSocketURL)
	assert.Equal(t, "stun:env.example.com:3478", cfg.STUNServer)

	cfg, err = Load(Options{Server: "10.0.0.5:4000", STUNServer: "stun:flag.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ws://10.0.0.5:4000/ws", cfg.WebSocketURL)
	assert.Equal(t, "stun:flag.example.com", cfg.STUNServer)
}

func TestLoadForceRelayNeedsTURN(t *testing.T) {
	clearEnv(t)

	_, err := Load(Options{ForceRelay: true})
	assert.ErrorIs(t, err, ErrRelayWithoutTURN)

	cfg, err := Load(Options{ForceRelay: true, TURNServer: "turn.example.com", TURNUser: "u", TURNPass: "p"})
	require.NoError(t, err)
	assert.True(t, cfg.ForceRelay)
	assert.Equal(t, []string{
		"turn:turn.example.com:3478?transport=udp",
		"turn:turn.example.com:3478?transport=tcp",
		"turns:turn.example.com:5349?transport=tcp",
	}, cfg.GetTURNServers())
	user, pass := cfg.GetTURNCredentials()
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
}

func TestLoadBinaryFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODEC", "msgpack")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.True(t, cfg.Binary)
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "given host port when converted then ws with /ws", in: "localhost:3000", want: "ws://localhost:3000/ws"},
		{name: "given http url when converted then ws", in: "http://relay.local:8080", want: "ws://relay.local:8080/ws"},
		{name: "given https url when converted then wss", in: "https://relay.example.com/", want: "wss://relay.example.com/ws"},
		{name: "given explicit path when converted then path kept", in: "wss://relay.example.com/signal", want: "wss://relay.example.com/signal"},
		{name: "given ftp scheme when converted then error", in: "ftp://relay.example.com", wantErr: true},
		{name: "given no host when converted then error", in: "ws://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WebSocketURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoomLink(t *testing.T) {
	cfg := &Config{WebSocketURL: "wss://relay.example.com/ws"}
	assert.Equal(t, "https://relay.example.com/r/happy-otter-taco", cfg.GetRoomLink("happy-otter-taco"))
	assert.Equal(t, "https://relay.example.com/rooms", cfg.HTTPURL("/rooms"))

	cfg = &Config{WebSocketURL: "ws://localhost:3000/ws"}
	assert.Equal(t, "http://localhost:3000/r/lobby", cfg.GetRoomLink("lobby"))
}

func TestServerValidate(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0o600))

	tests := []struct {
		name    string
		conf    Server
		wantErr error
	}{
		{name: "given default addr when validated then ok", conf: Server{Addr: ":3000"}},
		{name: "given host and port when validated then ok", conf: Server{Addr: "127.0.0.1:8080"}},
		{name: "given missing port when validated then invalid addr", conf: Server{Addr: "localhost"}, wantErr: ErrInvalidAddr},
		{name: "given port out of range when validated then invalid port", conf: Server{Addr: ":70000"}, wantErr: ErrInvalidPort},
		{name: "given cert without key when validated then incomplete tls", conf: Server{Addr: ":3000", CertFile: cert}, wantErr: ErrIncompleteTLS},
		{name: "given missing cert file when validated then invalid cert", conf: Server{Addr: ":3000", CertFile: filepath.Join(dir, "nope.pem"), KeyFile: key}, wantErr: ErrInvalidCertFile},
		{name: "given missing key file when validated then invalid key", conf: Server{Addr: ":3000", CertFile: cert, KeyFile: filepath.Join(dir, "nope.pem")}, wantErr: ErrInvalidKeyFile},
		{name: "given existing cert and key when validated then ok", conf: Server{Addr: ":3000", CertFile: cert, KeyFile: key}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadServer(t *testing.T) {
	clearEnv(t)

	conf, err := LoadServer(ServerOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, conf.Addr)
	assert.Equal(t, []string{"*"}, conf.AllowedOrigins)
	assert.True(t, conf.Metrics)
	assert.False(t, conf.TLS())

	t.Setenv("LISTEN_ADDR", ":4000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("METRICS", "false")
	conf, err = LoadServer(ServerOptions{})
	require.NoError(t, err)
	assert.Equal(t, ":4000", conf.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, conf.AllowedOrigins)
	assert.False(t, conf.Metrics)

	conf, err = LoadServer(ServerOptions{Addr: ":5000", DisableMetrics: true})
	require.NoError(t, err)
	assert.Equal(t, ":5000", conf.Addr)

	_, err = LoadServer(ServerOptions{Addr: "nope"})
	assert.ErrorIs(t, err, ErrInvalidAddr)
}
