package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// DefaultListenAddr is where the relay listens when nothing else is given.
const DefaultListenAddr = ":3000"

var (
	ErrInvalidAddr     = errors.New("invalid listen address")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidCertFile = errors.New("invalid cert file")
	ErrInvalidKeyFile  = errors.New("invalid key file")
	ErrIncompleteTLS   = errors.New("cert and key must be given together")
)

// Server is the relay configuration.
type Server struct {
	Addr           string
	CertFile       string
	KeyFile        string
	AllowedOrigins []string
	Metrics        bool
}

// ServerOptions carries CLI flag overrides for the relay.
type ServerOptions struct {
	Addr           string
	CertFile       string
	KeyFile        string
	AllowedOrigins []string
	DisableMetrics bool
}

// LoadServer resolves the relay configuration (flags > env > defaults) and
// validates it.
func LoadServer(opts ServerOptions) (Server, error) {
	conf := Server{
		Addr:     firstNonEmpty(opts.Addr, os.Getenv("LISTEN_ADDR"), DefaultListenAddr),
		CertFile: firstNonEmpty(opts.CertFile, os.Getenv("CERT_FILE")),
		KeyFile:  firstNonEmpty(opts.KeyFile, os.Getenv("KEY_FILE")),
		Metrics:  true,
	}

	conf.AllowedOrigins = opts.AllowedOrigins
	if len(conf.AllowedOrigins) == 0 {
		conf.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	}
	if len(conf.AllowedOrigins) == 0 {
		conf.AllowedOrigins = []string{"*"}
	}

	if opts.DisableMetrics {
		conf.Metrics = false
	} else if v, err := strconv.ParseBool(os.Getenv("METRICS")); err == nil {
		conf.Metrics = v
	}

	if err := conf.Validate(); err != nil {
		return Server{}, err
	}
	return conf, nil
}

// TLS reports whether the relay serves HTTPS.
func (s Server) TLS() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// Validate validates the listen address and the files for certification.
func (s Server) Validate() error {
	_, port, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return fmt.Errorf("%q: %w", s.Addr, ErrInvalidAddr)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("must be between 0 and 65535, given %q: %w", port, ErrInvalidPort)
	}

	if s.CertFile == "" && s.KeyFile == "" {
		return nil
	}
	if s.CertFile == "" || s.KeyFile == "" {
		return ErrIncompleteTLS
	}

	if _, err := os.Stat(s.CertFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist: %w", s.CertFile, ErrInvalidCertFile)
		}
		return fmt.Errorf("unable to access %s: %w", s.CertFile, ErrInvalidCertFile)
	}

	if _, err := os.Stat(s.KeyFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist: %w", s.KeyFile, ErrInvalidKeyFile)
		}
		return fmt.Errorf("unable to access %s: %w", s.KeyFile, ErrInvalidKeyFile)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
