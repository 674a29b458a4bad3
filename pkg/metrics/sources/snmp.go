package sources

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/metrics"
)

const (
	defaultSNMPPort    = 161
	defaultSNMPTimeout = 5 * time.Second
	defaultSNMPRetries = 3

	snmpVersion1  = "v1"
	snmpVersion2c = "v2c"
)

// SNMPConfig describes one device polled with SNMP GET.
type SNMPConfig struct {
	Name      string          `json:"name" toml:"name"`
	Host      string          `json:"host" toml:"host"`
	Port      uint16          `json:"port" toml:"port"`
	Community string          `json:"community" toml:"community"`
	Version   string          `json:"version" toml:"version"`
	Timeout   config.Duration `json:"timeout" toml:"timeout"`
	Retries   int             `json:"retries" toml:"retries"`
	Critical  bool            `json:"critical" toml:"critical"`
	OIDs      []OIDConfig     `json:"oids" toml:"oids"`
}

// OIDConfig maps an OID to a metric name. Scale multiplies the raw value
// when non-zero.
type OIDConfig struct {
	OID   string  `json:"oid" toml:"oid"`
	Name  string  `json:"name" toml:"name"`
	Scale float64 `json:"scale,omitempty" toml:"scale"`
}

// Validate implements config.Validator and fills defaults.
func (c *SNMPConfig) Validate() error {
	if c.Host == "" {
		return errHostRequired
	}

	if len(c.OIDs) == 0 {
		return fmt.Errorf("%w: %s", errNoOIDs, c.Host)
	}

	switch c.Version {
	case "":
		c.Version = snmpVersion2c
	case snmpVersion1, snmpVersion2c:
	default:
		return fmt.Errorf("%w: %s", errUnsupportedVersion, c.Version)
	}

	if c.Name == "" {
		c.Name = "snmp_" + c.Host
	}

	if c.Port == 0 {
		c.Port = defaultSNMPPort
	}

	if c.Community == "" {
		c.Community = "public"
	}

	if c.Retries == 0 {
		c.Retries = defaultSNMPRetries
	}

	return nil
}

// snmpClient is the subset of *gosnmp.GoSNMP used here.
type snmpClient interface {
	Connect() error
	Get(oids []string) (*gosnmp.SnmpPacket, error)
}

// SNMPSource polls a fixed OID set on one device.
type SNMPSource struct {
	cfg    SNMPConfig
	byOID  map[string]OIDConfig
	oids   []string
	client snmpClient
	conn   *gosnmp.GoSNMP

	mu        sync.Mutex
	connected bool
}

var _ metrics.Source = (*SNMPSource)(nil)

// NewSNMPSource validates cfg and prepares a gosnmp client. The UDP socket is
// opened lazily on the first Collect.
func NewSNMPSource(cfg SNMPConfig) (*SNMPSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snmp source: %w", err)
	}

	g := &gosnmp.GoSNMP{
		Target:             cfg.Host,
		Port:               cfg.Port,
		Community:          cfg.Community,
		Timeout:            cfg.Timeout.Or(defaultSNMPTimeout),
		Retries:            cfg.Retries,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
		Version:            gosnmp.Version2c,
	}

	if cfg.Version == snmpVersion1 {
		g.Version = gosnmp.Version1
	}

	s := newSNMPSource(cfg, g)
	s.conn = g

	return s, nil
}

func newSNMPSource(cfg SNMPConfig, client snmpClient) *SNMPSource {
	s := &SNMPSource{
		cfg:    cfg,
		byOID:  make(map[string]OIDConfig, len(cfg.OIDs)),
		oids:   make([]string, 0, len(cfg.OIDs)),
		client: client,
	}

	for _, o := range cfg.OIDs {
		oid := normalizeOID(o.OID)
		s.byOID[oid] = o
		s.oids = append(s.oids, oid)
	}

	return s
}

func (s *SNMPSource) Name() string { return s.cfg.Name }

func (s *SNMPSource) Critical() bool { return s.cfg.Critical }

// Collect GETs the configured OIDs in chunks of gosnmp.MaxOids. Any GET
// failure drops the connection so the next call reconnects.
func (s *SNMPSource) Collect(ctx context.Context) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		if err := s.client.Connect(); err != nil {
			return nil, fmt.Errorf("snmp connect to %s: %w", s.cfg.Host, err)
		}

		s.connected = true
	}

	out := make(map[string]float64, len(s.oids))

	for i := 0; i < len(s.oids); i += gosnmp.MaxOids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(i+gosnmp.MaxOids, len(s.oids))

		packet, err := s.client.Get(s.oids[i:end])
		if err != nil {
			s.connected = false
			return nil, fmt.Errorf("snmp get from %s: %w", s.cfg.Host, err)
		}

		for _, pdu := range packet.Variables {
			o, ok := s.byOID[normalizeOID(pdu.Name)]
			if !ok {
				continue
			}

			v, ok, err := convertPDU(pdu)
			if err != nil {
				return nil, fmt.Errorf("snmp %s on %s: %w", o.Name, s.cfg.Host, err)
			}

			if !ok {
				continue
			}

			if o.Scale != 0 {
				v *= o.Scale
			}

			out[o.Name] = v
		}
	}

	return out, nil
}

// Close releases the UDP socket.
func (s *SNMPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.conn == nil || s.conn.Conn == nil {
		return nil
	}

	s.connected = false

	return s.conn.Conn.Close()
}

// convertPDU returns the numeric value of pdu. ok is false for absent
// objects, which are skipped rather than failing the whole poll.
func convertPDU(pdu gosnmp.SnmpPDU) (v float64, ok bool, err error) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return 0, false, nil
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Counter64, gosnmp.Uinteger32:
		f, _ := new(big.Float).SetInt(gosnmp.ToBigInt(pdu.Value)).Float64()
		return f, true, nil
	case gosnmp.TimeTicks:
		// hundredths of a second
		f, _ := new(big.Float).SetInt(gosnmp.ToBigInt(pdu.Value)).Float64()
		return f / 100, true, nil
	case gosnmp.OpaqueFloat:
		f, _ := pdu.Value.(float32)
		return float64(f), true, nil
	case gosnmp.OpaqueDouble:
		f, _ := pdu.Value.(float64)
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %v", errUnsupportedType, pdu.Type)
	}
}

func normalizeOID(oid string) string {
	return strings.TrimPrefix(oid, ".")
}
