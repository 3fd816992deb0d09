// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package cncrypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"testing"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

func TestFastHashEmpty(t *testing.T) {
	got := FastHash()
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got.String() != want {
		t.Fatalf("FastHash() = %s, want %s", got, want)
	}
	if FastHash([]byte("ab"), []byte("c")) != FastHash([]byte("abc")) {
		t.Error("FastHash should hash the concatenation of its arguments")
	}
}

func TestReduceScalarOrder(t *testing.T) {
	l, _ := hex.DecodeString("edd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	var b [Size]byte
	copy(b[:], l)
	if !IsZeroScalar(ReduceScalar(b)) {
		t.Fatal("group order should reduce to zero")
	}

	b[0]++
	one := ReduceScalar(b)
	want := edwards25519.NewScalar()
	var oneBytes [32]byte
	oneBytes[0] = 1
	want.SetCanonicalBytes(oneBytes[:])
	if one.Equal(want) != 1 {
		t.Fatal("group order + 1 should reduce to one")
	}
}

func TestMapConstants(t *testing.T) {
	a := new(field.Element).Mult32(feOne, 486662)
	aa2 := new(field.Element).Add(a, new(field.Element).Mult32(feOne, 2))
	aa2.Multiply(aa2, a)

	tests := []struct {
		name string
		root *field.Element
		want *field.Element
	}{
		{"sqrtm1", feSqrtM1, new(field.Element).Negate(feOne)},
		{"fffb1", feFFFB1, new(field.Element).Negate(new(field.Element).Add(aa2, aa2))},
		{"fffb2", feFFFB2, new(field.Element).Add(aa2, aa2)},
		{"fffb3", feFFFB3, new(field.Element).Negate(new(field.Element).Multiply(feSqrtM1, aa2))},
		{"fffb4", feFFFB4, new(field.Element).Multiply(feSqrtM1, aa2)},
		{"one", mustSqrt(feOne), feOne},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq := new(field.Element).Square(tt.root)
			if sq.Equal(tt.want) != 1 {
				t.Errorf("%s squared does not match", tt.name)
			}
		})
	}
}

func TestBasepointH(t *testing.T) {
	h := BasepointH()
	if h.Equal(edwards25519.NewIdentityPoint()) == 1 {
		t.Fatal("H must not be the identity")
	}
	if hex.EncodeToString(h.Bytes()) != hHex {
		t.Fatal("H does not round trip")
	}
	h.Add(h, h)
	if BasepointH().Equal(h) == 1 {
		t.Fatal("BasepointH should return a copy")
	}
}

func TestHashToPoint(t *testing.T) {
	inputs := [][]byte{nil, []byte("a"), []byte("output_secret_point"), bytes.Repeat([]byte{0xff}, 64)}
	seen := make(map[PublicKey]bool)
	for _, in := range inputs {
		p1 := HashToPoint(in)
		p2 := HashToPoint(in)
		if p1.Equal(p2) != 1 {
			t.Fatalf("HashToPoint(%x) not deterministic", in)
		}
		if p1.Equal(edwards25519.NewIdentityPoint()) == 1 {
			t.Fatalf("HashToPoint(%x) returned identity", in)
		}
		k := PointKey(p1)
		if _, err := ParsePoint(k); err != nil {
			t.Fatalf("HashToPoint(%x) encoding does not decode: %v", in, err)
		}
		if seen[k] {
			t.Fatalf("HashToPoint collision on %x", in)
		}
		seen[k] = true
	}
}

func TestGenerateKeyImageLinear(t *testing.T) {
	a1, _ := RandomScalar(rand.Reader)
	a2, _ := RandomScalar(rand.Reader)
	p := PointKey(SecretKeyToPublicKey(a1))

	sum := edwards25519.NewScalar().Add(a1, a2)
	i1, _ := ParsePoint(PublicKey(GenerateKeyImage(p, a1)))
	i2, _ := ParsePoint(PublicKey(GenerateKeyImage(p, a2)))
	want := KeyImageOf(new(edwards25519.Point).Add(i1, i2))
	if got := GenerateKeyImage(p, sum); got != want {
		t.Fatalf("key image not linear in the secret: %s != %s", got, want)
	}
}

func TestGenerateHDSecretKey(t *testing.T) {
	base, _ := RandomScalar(rand.Reader)
	var aPlusSH PublicKey
	aPlusSH[0] = 1

	k0 := GenerateHDSecretKey(base, aPlusSH, 0)
	k1 := GenerateHDSecretKey(base, aPlusSH, 1)
	if k0.Equal(k1) == 1 {
		t.Fatal("different indexes should yield different keys")
	}
	if GenerateHDSecretKey(base, aPlusSH, 0).Equal(k0) != 1 {
		t.Fatal("derivation should be deterministic")
	}
}

func TestSignatureH(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sH := PointKey(new(edwards25519.Point).ScalarMult(s, BasepointH()))
	prefix := FastHash([]byte("view only export"))

	sig, err := GenerateSignatureH(prefix, sH, s, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateSignatureH: %v", err)
	}
	if !CheckSignatureH(prefix, sH, sig) {
		t.Fatal("valid signature rejected")
	}

	other := FastHash([]byte("something else"))
	if CheckSignatureH(other, sH, sig) {
		t.Error("signature accepted for another prefix")
	}
	bad := sig
	bad.R[0] ^= 1
	if CheckSignatureH(prefix, sH, bad) {
		t.Error("tampered signature accepted")
	}
	// s·G is not the signing key over H
	if CheckSignatureH(prefix, PointKey(SecretKeyToPublicKey(s)), sig) {
		t.Error("signature accepted for the G public key")
	}
}

func TestKeyJSON(t *testing.T) {
	var k PublicKey
	for i := range k {
		k[i] = byte(i)
	}
	data, err := json.Marshal(map[string]PublicKey{"k": k})
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]PublicKey
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out["k"] != k {
		t.Fatalf("round trip mismatch: %s", data)
	}

	if _, err := ParseHash("abcd"); err == nil {
		t.Error("short hex should fail")
	}
	var s SecretKey
	s[0] = 0xaa
	if s.String() != "<secret>" {
		t.Error("secret key String must not reveal bytes")
	}
}
