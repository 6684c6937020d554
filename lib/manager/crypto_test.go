package manager

import (
	"strings"
	"testing"

	"github.com/tabstore/tabstore/lib/rawstore/memstore"
)

func encryptOpts(secret string) Options {
	return Options{AutoEncrypt: true, SecretKey: secret}
}

func TestEncryptionRoundTrip(t *testing.T) {
	m, _, ec := newTestManager(t)

	payloads := []any{
		"plain string",
		42.0,
		map[string]any{"nested": "object", "n": 1.0},
	}

	for i, payload := range payloads {
		key := strings.Repeat("k", i+1)
		if res := m.SetItem(key, payload, encryptOpts("hunter2")); res != WriteStored {
			t.Fatalf("payload %d: expected WriteStored, got %v", i, res)
		}
		got, ok := GetItem[any](m, key, encryptOpts("hunter2"))
		if !ok {
			t.Fatalf("payload %d: expected decrypt to succeed", i)
		}
		switch want := payload.(type) {
		case string:
			if got != want {
				t.Errorf("payload %d mismatch: %v", i, got)
			}
		case float64:
			if got != want {
				t.Errorf("payload %d mismatch: %v", i, got)
			}
		case map[string]any:
			gm, ok := got.(map[string]any)
			if !ok || gm["nested"] != want["nested"] {
				t.Errorf("payload %d mismatch: %v", i, got)
			}
		}
	}
	if len(ec.errs) != 0 {
		t.Errorf("expected no errors, got %v", ec.errs)
	}
}

func TestCiphertextOnDisk(t *testing.T) {
	raw := memstore.NewMemStore(nil)
	m := New(raw)

	m.SetItem("k", "super-secret-payload", encryptOpts("key"))

	stored, ok := raw.Get(DefaultPrefix + "k")
	if !ok {
		t.Fatalf("expected entry to be stored")
	}
	// no plaintext envelope may ever touch the store
	if strings.Contains(stored, "super-secret-payload") || strings.Contains(stored, `"createdAt"`) {
		t.Errorf("plaintext leaked into the raw store: %s", stored)
	}
}

func TestWrongKeyReadsAsAbsent(t *testing.T) {
	m, _, ec := newTestManager(t)

	m.SetItem("k", "v", encryptOpts("right-key"))

	if _, ok := GetItem[string](m, "k", encryptOpts("wrong-key")); ok {
		t.Fatalf("expected wrong-key read to fail")
	}
	if n := ec.count(ErrCDeserialization); n != 1 {
		t.Errorf("expected one DESERIALIZATION_ERROR, got %d", n)
	}

	// the entry itself is preserved; the right key still works
	if v, ok := GetItem[string](m, "k", encryptOpts("right-key")); !ok || v != "v" {
		t.Errorf("expected original entry to survive, got %q (found=%v)", v, ok)
	}
}

func TestCorruptCiphertextReadsAsAbsent(t *testing.T) {
	raw := memstore.NewMemStore(nil)
	ec := &errorCollector{}
	m := New(raw, WithErrorHandler(ec.handle))

	m.SetItem("k", "v", encryptOpts("key"))

	stored, _ := raw.Get(DefaultPrefix + "k")
	if err := raw.Set(DefaultPrefix+"k", "!!"+stored); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok := GetItem[string](m, "k", encryptOpts("key")); ok {
		t.Errorf("expected corrupt ciphertext to read as absent")
	}
	if n := ec.count(ErrCDeserialization); n != 1 {
		t.Errorf("expected one DESERIALIZATION_ERROR, got %d", n)
	}
}

func TestAutoEncryptWithoutSecretFails(t *testing.T) {
	m, _, ec := newTestManager(t)

	if res := m.SetItem("k", "v", Options{AutoEncrypt: true}); res != WriteFailed {
		t.Fatalf("expected WriteFailed, got %v", res)
	}
	if n := ec.count(ErrCSerialization); n != 1 {
		t.Errorf("expected one SERIALIZATION_ERROR, got %d", n)
	}
}

func TestEncryptDecryptHelpers(t *testing.T) {
	text, err := encryptText([]byte("payload"), "secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	plain, err := decryptText(text, "secret")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(plain) != "payload" {
		t.Errorf("expected round trip, got %q", plain)
	}

	if _, err := decryptText(text, "other"); err == nil {
		t.Errorf("expected authentication failure for wrong key")
	}
	if _, err := decryptText("not base64 at all!", "secret"); err == nil {
		t.Errorf("expected error for invalid base64")
	}

	// nonces are random, so two encryptions of the same payload differ
	text2, err := encryptText([]byte("payload"), "secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if text == text2 {
		t.Errorf("expected distinct ciphertexts for distinct nonces")
	}
}
