package sources

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/gosnmp/gosnmp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNMP struct {
	connectErr error
	getErr     error
	connects   int
	requests   [][]string
	values     map[string]gosnmp.SnmpPDU
}

func (f *fakeSNMP) Connect() error {
	f.connects++
	return f.connectErr
}

func (f *fakeSNMP) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	f.requests = append(f.requests, append([]string(nil), oids...))

	if f.getErr != nil {
		return nil, f.getErr
	}

	packet := &gosnmp.SnmpPacket{}

	for _, oid := range oids {
		if pdu, ok := f.values["."+oid]; ok {
			packet.Variables = append(packet.Variables, pdu)
		}
	}

	return packet, nil
}

func TestSNMPConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SNMPConfig
		wantErr error
	}{
		{
			name:    "missing host",
			cfg:     SNMPConfig{OIDs: []OIDConfig{{OID: "1.3", Name: "x"}}},
			wantErr: errHostRequired,
		},
		{
			name:    "no oids",
			cfg:     SNMPConfig{Host: "10.0.0.1"},
			wantErr: errNoOIDs,
		},
		{
			name:    "v3 unsupported",
			cfg:     SNMPConfig{Host: "10.0.0.1", Version: "v3", OIDs: []OIDConfig{{OID: "1.3", Name: "x"}}},
			wantErr: errUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	cfg := SNMPConfig{Host: "10.0.0.1", OIDs: []OIDConfig{{OID: "1.3", Name: "x"}}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "snmp_10.0.0.1", cfg.Name)
	assert.Equal(t, uint16(161), cfg.Port)
	assert.Equal(t, "public", cfg.Community)
	assert.Equal(t, "v2c", cfg.Version)
	assert.Equal(t, 3, cfg.Retries)
}

func TestSNMPSourceCollect(t *testing.T) {
	client := &fakeSNMP{values: map[string]gosnmp.SnmpPDU{
		".1.3.6.1.2.1.1.3.0":         {Name: ".1.3.6.1.2.1.1.3.0", Type: gosnmp.TimeTicks, Value: uint32(12345)},
		".1.3.6.1.2.1.2.2.1.10.1":    {Name: ".1.3.6.1.2.1.2.2.1.10.1", Type: gosnmp.Counter32, Value: uint(2048)},
		".1.3.6.1.2.1.31.1.1.1.6.1":  {Name: ".1.3.6.1.2.1.31.1.1.1.6.1", Type: gosnmp.Counter64, Value: uint64(1 << 40)},
		".1.3.6.1.4.1.2021.10.1.5.1": {Name: ".1.3.6.1.4.1.2021.10.1.5.1", Type: gosnmp.Integer, Value: 42},
		".1.3.6.1.4.1.9.9.1":         {Name: ".1.3.6.1.4.1.9.9.1", Type: gosnmp.NoSuchObject},
	}}

	cfg := SNMPConfig{
		Name: "edge",
		Host: "10.0.0.1",
		OIDs: []OIDConfig{
			{OID: ".1.3.6.1.2.1.1.3.0", Name: "edge_uptime_seconds"},
			{OID: "1.3.6.1.2.1.2.2.1.10.1", Name: "edge_in_kb", Scale: 1.0 / 1024},
			{OID: "1.3.6.1.2.1.31.1.1.1.6.1", Name: "edge_in_octets"},
			{OID: "1.3.6.1.4.1.2021.10.1.5.1", Name: "edge_load"},
			{OID: "1.3.6.1.4.1.9.9.1", Name: "edge_missing"},
		},
	}
	require.NoError(t, cfg.Validate())

	src := newSNMPSource(cfg, client)

	values, err := src.Collect(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 123.45, values["edge_uptime_seconds"], 1e-9)
	assert.InDelta(t, 2.0, values["edge_in_kb"], 1e-9)
	assert.InDelta(t, float64(1<<40), values["edge_in_octets"], 1)
	assert.InDelta(t, 42.0, values["edge_load"], 1e-9)
	assert.NotContains(t, values, "edge_missing")
	assert.Equal(t, "edge", src.Name())
	assert.False(t, src.Critical())

	_, err = src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, client.connects, "connection is reused")
}

func TestSNMPSourceChunksRequests(t *testing.T) {
	client := &fakeSNMP{values: map[string]gosnmp.SnmpPDU{}}

	oids := make([]OIDConfig, gosnmp.MaxOids+3)
	for i := range oids {
		oids[i] = OIDConfig{OID: "1.3.6.1." + string(rune('a'+i%26)), Name: "m"}
	}

	src := newSNMPSource(SNMPConfig{Host: "h", OIDs: oids}, client)

	_, err := src.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, client.requests, 2)
	assert.Len(t, client.requests[0], gosnmp.MaxOids)
	assert.Len(t, client.requests[1], 3)
}

func TestSNMPSourceReconnectsAfterFailure(t *testing.T) {
	client := &fakeSNMP{getErr: errors.New("timeout")}
	src := newSNMPSource(SNMPConfig{Host: "h", OIDs: []OIDConfig{{OID: "1.3", Name: "x"}}}, client)

	_, err := src.Collect(context.Background())
	require.Error(t, err)

	client.getErr = nil

	_, err = src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, client.connects)
}

func TestSNMPSourceConnectFailure(t *testing.T) {
	client := &fakeSNMP{connectErr: errors.New("no route")}
	src := newSNMPSource(SNMPConfig{Host: "h", OIDs: []OIDConfig{{OID: "1.3", Name: "x"}}}, client)

	_, err := src.Collect(context.Background())
	require.ErrorContains(t, err, "no route")
}

func TestConvertPDU(t *testing.T) {
	tests := []struct {
		name    string
		pdu     gosnmp.SnmpPDU
		want    float64
		wantOK  bool
		wantErr bool
	}{
		{name: "gauge", pdu: gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(7)}, want: 7, wantOK: true},
		{name: "negative integer", pdu: gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: -3}, want: -3, wantOK: true},
		{name: "opaque float", pdu: gosnmp.SnmpPDU{Type: gosnmp.OpaqueFloat, Value: float32(1.5)}, want: 1.5, wantOK: true},
		{name: "no such instance", pdu: gosnmp.SnmpPDU{Type: gosnmp.NoSuchInstance}},
		{name: "octet string", pdu: gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("x")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := convertPDU(tt.pdu)
			if tt.wantErr {
				require.ErrorIs(t, err, errUnsupportedType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

type fakePinger struct {
	err   error
	stats sql.DBStats
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func (f *fakePinger) Stats() sql.DBStats { return f.stats }

func TestDatabaseSource(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	src := NewDatabaseSource("alerts_db", db)
	assert.True(t, src.Critical())

	values, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, values["alerts_db_available"], 0)
	assert.Contains(t, values, "alerts_db_open_connections")

	down := NewDatabaseSource("primary", &fakePinger{err: errors.New("refused"), stats: sql.DBStats{InUse: 4}})

	values, err = down.Collect(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, values["primary_available"], 0)
	assert.InDelta(t, 4.0, values["primary_in_use"], 0)
}

func TestRuntimeSource(t *testing.T) {
	src := NewRuntimeSource(false)

	values, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Positive(t, values["runtime_goroutines"])
	assert.Positive(t, values["runtime_heap_alloc_bytes"])
	assert.Equal(t, "runtime", src.Name())
}

func TestFuncSource(t *testing.T) {
	src := NewFuncSource("queue", true, func(context.Context) (map[string]float64, error) {
		return map[string]float64{"queue_depth": 12}, nil
	})

	values, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"queue_depth": 12}, values)
	assert.True(t, src.Critical())

	_, err = NewFuncSource("empty", false, nil).Collect(context.Background())
	require.ErrorIs(t, err, errNilFunc)
}
