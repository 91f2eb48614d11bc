// Package stellar implements strkey encoding for the two identity kinds the
// pipeline sees on operations: ed25519 account IDs (G...) and contract IDs
// (C...). Strkey is base32 over version byte + 32-byte payload + CRC16.
package stellar

import (
	"encoding/base32"
	"errors"

	"filippo.io/edwards25519"
)

// Strkey version bytes (value << 3 per SEP-23).
const (
	versionAccountID byte = 6 << 3 // 'G'
	versionContract  byte = 2 << 3 // 'C'
)

// ErrInvalidStrkey is returned for any malformed or mistyped identity.
var ErrInvalidStrkey = errors.New("invalid strkey")

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DecodeAccountID decodes a G... strkey and returns the 32-byte ed25519
// public key. The payload must decode as a valid curve point: an account ID
// that is not a point cannot sign anything and is treated as malformed.
func DecodeAccountID(s string) ([]byte, error) {
	payload, err := decode(s, versionAccountID)
	if err != nil {
		return nil, err
	}
	if _, err := new(edwards25519.Point).SetBytes(payload); err != nil {
		return nil, ErrInvalidStrkey
	}
	return payload, nil
}

// DecodeContractID decodes a C... strkey and returns the 32-byte contract hash.
func DecodeContractID(s string) ([]byte, error) {
	return decode(s, versionContract)
}

// EncodeAccountID encodes a 32-byte ed25519 public key as a G... strkey.
func EncodeAccountID(raw []byte) (string, error) {
	return encode(raw, versionAccountID)
}

// EncodeContractID encodes a 32-byte contract hash as a C... strkey.
func EncodeContractID(raw []byte) (string, error) {
	return encode(raw, versionContract)
}

// IsAccountID reports whether s is a well-formed account strkey.
func IsAccountID(s string) bool {
	_, err := DecodeAccountID(s)
	return err == nil
}

// IsContractID reports whether s is a well-formed contract strkey.
func IsContractID(s string) bool {
	_, err := DecodeContractID(s)
	return err == nil
}

func encode(raw []byte, version byte) (string, error) {
	if len(raw) != 32 {
		return "", ErrInvalidStrkey
	}
	buf := make([]byte, 0, 35)
	buf = append(buf, version)
	buf = append(buf, raw...)
	crc := crc16(buf)
	buf = append(buf, byte(crc&0xff), byte(crc>>8))
	return encoding.EncodeToString(buf), nil
}

func decode(s string, version byte) ([]byte, error) {
	raw, err := encoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidStrkey
	}
	if len(raw) != 35 {
		return nil, ErrInvalidStrkey
	}
	if raw[0] != version {
		return nil, ErrInvalidStrkey
	}
	payload := raw[1:33]
	want := uint16(raw[33]) | uint16(raw[34])<<8
	if crc16(raw[:33]) != want {
		return nil, ErrInvalidStrkey
	}
	return payload, nil
}

// crc16 computes CRC16-XModem (poly 0x1021, init 0).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
