// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package outputs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/Armor-Network/armor/internal/cncrypto"
)

// AddressPrefix starts every encoded address.
const AddressPrefix = "armr"

const checksumSize = 4

// ErrInvalidAddress is returned for strings that are not Armor addresses
var ErrInvalidAddress = errors.New("invalid address")

// EncodeAddress renders d as prefix + base58(tag ‖ S ‖ Sv ‖ checksum).
func EncodeAddress(d Destination) string {
	body := make([]byte, 0, 1+2*cncrypto.Size+checksumSize)
	body = append(body, d.Tag)
	body = append(body, d.S[:]...)
	body = append(body, d.Sv[:]...)
	sum := cncrypto.FastHash(body)
	body = append(body, sum[:checksumSize]...)
	return AddressPrefix + base58.Encode(body)
}

// DecodeAddress parses an address produced by EncodeAddress. The points are
// not validated.
func DecodeAddress(s string) (Destination, error) {
	rest, ok := strings.CutPrefix(s, AddressPrefix)
	if !ok {
		return Destination{}, fmt.Errorf("%w: missing %q prefix", ErrInvalidAddress, AddressPrefix)
	}
	body, err := base58.Decode(rest)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(body) != 1+2*cncrypto.Size+checksumSize {
		return Destination{}, fmt.Errorf("%w: wrong length %d", ErrInvalidAddress, len(body))
	}
	payload, check := body[:len(body)-checksumSize], body[len(body)-checksumSize:]
	sum := cncrypto.FastHash(payload)
	if !bytes.Equal(sum[:checksumSize], check) {
		return Destination{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	var d Destination
	d.Tag = payload[0]
	if d.Tag > AddressUnlinkableAuditable {
		return Destination{}, fmt.Errorf("%w: unknown tag %d", ErrInvalidAddress, d.Tag)
	}
	copy(d.S[:], payload[1:1+cncrypto.Size])
	copy(d.Sv[:], payload[1+cncrypto.Size:])
	return d, nil
}

// String implements fmt.Stringer.
func (d Destination) String() string { return EncodeAddress(d) }
