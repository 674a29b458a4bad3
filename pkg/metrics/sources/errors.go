package sources

import "errors"

var (
	errHostRequired       = errors.New("snmp host is required")
	errNoOIDs             = errors.New("snmp source has no oids")
	errUnsupportedVersion = errors.New("unsupported snmp version")
	errUnsupportedType    = errors.New("unsupported snmp type")
	errNilFunc            = errors.New("func source has no collect function")
)
