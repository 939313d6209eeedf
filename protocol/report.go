package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rillian/sta-rs/crypto"
)

// reportHeaderLen is the length prefix for measurement and aux.
const reportHeaderLen = 8

// ErrMalformedReport is returned when a recovered secret does not parse
// back into a (measurement, aux) report.
var ErrMalformedReport = errors.New("malformed report payload")

// EncodeReport packs a measurement and its auxiliary payload into a
// secret suitable for dealing: explicit lengths followed by the two
// byte strings, zero-padded up to a whole number of field-element
// chunks. The dealer rejects non-chunked input, so padding here is the
// documented policy rather than silent truncation.
func EncodeReport(measurement, aux []byte) []byte {
	payload := make([]byte, reportHeaderLen, reportHeaderLen+len(measurement)+len(aux))
	binary.BigEndian.PutUint32(payload[0:4], uint32(len(measurement)))
	binary.BigEndian.PutUint32(payload[4:8], uint32(len(aux)))
	payload = append(payload, measurement...)
	payload = append(payload, aux...)

	if rem := len(payload) % crypto.FieldElementLen; rem != 0 {
		payload = append(payload, make([]byte, crypto.FieldElementLen-rem)...)
	}
	return payload
}

// DecodeReport splits a recovered secret back into its measurement and
// auxiliary components.
func DecodeReport(secret []byte) (measurement []byte, aux []byte, err error) {
	if len(secret) < reportHeaderLen {
		return nil, nil, fmt.Errorf("%w: too short", ErrMalformedReport)
	}

	mLen := int(binary.BigEndian.Uint32(secret[0:4]))
	aLen := int(binary.BigEndian.Uint32(secret[4:8]))
	if mLen < 0 || aLen < 0 || reportHeaderLen+mLen+aLen > len(secret) {
		return nil, nil, fmt.Errorf("%w: lengths exceed payload", ErrMalformedReport)
	}

	measurement = append([]byte(nil), secret[reportHeaderLen:reportHeaderLen+mLen]...)
	aux = append([]byte(nil), secret[reportHeaderLen+mLen:reportHeaderLen+mLen+aLen]...)
	return measurement, aux, nil
}
