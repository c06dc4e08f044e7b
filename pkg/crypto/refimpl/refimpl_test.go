package refimpl

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"testing"

	"github.com/openspdm/responder-core/pkg/crypto"
)

func marshalPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pub)
}

func TestSHA384HasherRoundtrip(t *testing.T) {
	h := NewSHA384Hasher()
	state := h.New()
	state.Write([]byte("hello "))
	state.Write([]byte("world"))
	got := state.Sum()
	if len(got) != 48 {
		t.Fatalf("expected 48-byte digest, got %d", len(got))
	}

	direct := h.New()
	direct.Write([]byte("hello world"))
	want := direct.Sum()
	if !bytes.Equal(got, want) {
		t.Errorf("incremental write produced different digest than one-shot write")
	}
}

func TestHashStateCloneIndependent(t *testing.T) {
	h := NewSHA384Hasher()
	state := h.New()
	state.Write([]byte("prefix"))
	clone := state.Clone()

	state.Write([]byte("-original"))
	clone.Write([]byte("-clone"))

	if bytes.Equal(state.Sum(), clone.Sum()) {
		t.Errorf("expected clone to diverge from original after independent writes")
	}
}

func TestAES256GCMSealOpenRoundtrip(t *testing.T) {
	a := NewAES256GCM()
	key := bytes.Repeat([]byte{0x11}, a.KeySize())
	nonce := bytes.Repeat([]byte{0x22}, a.NonceSize())
	plaintext := []byte("secured spdm application data")
	aad := []byte("session-seq-42")

	ct := a.Seal(key, nonce, plaintext, aad)
	pt, err := a.Open(key, nonce, ct, aad)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Errorf("roundtrip mismatch: got %q want %q", pt, plaintext)
	}
}

func TestAES256GCMOpenRejectsTamperedCiphertext(t *testing.T) {
	a := NewAES256GCM()
	key := bytes.Repeat([]byte{0x33}, a.KeySize())
	nonce := bytes.Repeat([]byte{0x44}, a.NonceSize())
	ct := a.Seal(key, nonce, []byte("data"), nil)
	ct[0] ^= 0xFF

	if _, err := a.Open(key, nonce, ct, nil); err != crypto.ErrOpenFailed {
		t.Errorf("expected ErrOpenFailed, got %v", err)
	}
}

func TestECDSAP384SignVerifyRoundtrip(t *testing.T) {
	priv, err := GenerateECDSAP384Key()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	signer := NewECDSAP384Signer(priv)
	hash := bytes.Repeat([]byte{0xAB}, 48)

	sig, err := signer.Sign(hash)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	pub, err := marshalPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal pub key failed: %v", err)
	}
	if err := signer.Verify(pub, hash, sig); err != nil {
		t.Errorf("verify failed: %v", err)
	}
}

func TestECDSAP384VerifyRejectsWrongHash(t *testing.T) {
	priv, _ := GenerateECDSAP384Key()
	signer := NewECDSAP384Signer(priv)
	hash := bytes.Repeat([]byte{0xAB}, 48)
	sig, _ := signer.Sign(hash)
	pub, _ := marshalPublicKey(&priv.PublicKey)

	wrongHash := bytes.Repeat([]byte{0xCD}, 48)
	if err := signer.Verify(pub, wrongHash, sig); err != crypto.ErrVerifyFailed {
		t.Errorf("expected ErrVerifyFailed, got %v", err)
	}
}

func TestHKDFKeyScheduleDeterministic(t *testing.T) {
	ks := NewHKDFKeySchedule()
	secret := bytes.Repeat([]byte{0x01}, 48)
	a := ks.Derive(secret, []byte("spdm key "), []byte("request finished"), 48)
	b := ks.Derive(secret, []byte("spdm key "), []byte("request finished"), 48)
	if !bytes.Equal(a, b) {
		t.Errorf("expected deterministic derivation for identical inputs")
	}
	c := ks.Derive(secret, []byte("spdm key "), []byte("response finished"), 48)
	if bytes.Equal(a, c) {
		t.Errorf("expected different context to produce different output")
	}
}

func TestRegisterWiresAllSlots(t *testing.T) {
	reg := crypto.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := reg.Hasher(NewSHA384Hasher().Algo()); err != nil {
		t.Errorf("hasher not wired: %v", err)
	}
	if _, err := reg.AEAD(NewAES256GCM().Algo()); err != nil {
		t.Errorf("AEAD not wired: %v", err)
	}
	if _, err := reg.CertOps(); err != nil {
		t.Errorf("cert ops not wired: %v", err)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := crypto.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := Register(reg); err == nil {
		t.Errorf("expected second Register to fail on already-filled slots")
	}
}
