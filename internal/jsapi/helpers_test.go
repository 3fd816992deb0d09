// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package jsapi_test

import (
	"testing"

	"github.com/Armor-Network/armor/internal/cncrypto"
)

func hashFromHex(t *testing.T, s string) cncrypto.Hash {
	t.Helper()
	var h cncrypto.Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		t.Fatalf("bad hash %q: %v", s, err)
	}
	return h
}
