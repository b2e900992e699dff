package storage

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"capworks/internal/domain/wages"
)

func TestEncodeDecodeKeepsExactRates(t *testing.T) {
	snap := Snapshot{
		Version: 3,
		SavedAt: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
		Wages: wages.State{
			CapTypes: []wages.CapType{{ID: "c1", Name: "Net Cap", RatePerDozen: decimal.RequireFromString("78.35")}},
			Workers:  []string{"W1"},
		},
	}
	payload, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Version != 3 || !got.SavedAt.Equal(snap.SavedAt) {
		t.Fatalf("unexpected header %+v", got)
	}
	if !got.Wages.CapTypes[0].RatePerDozen.Equal(decimal.RequireFromString("78.35")) {
		t.Fatalf("expected exact rate, got %s", got.Wages.CapTypes[0].RatePerDozen)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCheckNext(t *testing.T) {
	if err := CheckNext(4, 5); err != nil {
		t.Fatalf("expected 5 to follow 4, got %v", err)
	}
	for _, next := range []int64{4, 6, 0} {
		if err := CheckNext(4, next); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected conflict for %d, got %v", next, err)
		}
	}
}

type xorCipher struct{}

func (xorCipher) Seal(plain []byte) ([]byte, error) { return xor(plain), nil }
func (xorCipher) Open(sealed []byte) ([]byte, error) { return xor(sealed), nil }

func xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ 0x5a
	}
	return out
}

func TestCodecSealsPayload(t *testing.T) {
	snap := Snapshot{Version: 2, Wages: wages.State{Workers: []string{"W-secret"}}}
	sealed := Codec{Cipher: xorCipher{}}
	payload, err := sealed.Encode(snap)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(payload, []byte("W-secret")) || !bytes.HasPrefix(payload, []byte(`{"sealed":`)) {
		t.Fatalf("expected sealed payload, got %s", payload)
	}
	got, err := sealed.Decode(payload)
	if err != nil || got.Version != 2 || got.Wages.Workers[0] != "W-secret" {
		t.Fatalf("unexpected decode %+v (%v)", got, err)
	}

	if _, err := (Codec{}).Decode(payload); !errors.Is(err, ErrSealedSnapshot) {
		t.Fatalf("expected sealed error without a key, got %v", err)
	}
}

func TestCodecReadsPlainPayloadWithKey(t *testing.T) {
	plain, _ := Encode(Snapshot{Version: 9})
	got, err := Codec{Cipher: xorCipher{}}.Decode(plain)
	if err != nil || got.Version != 9 {
		t.Fatalf("expected plain payload to decode, got %+v (%v)", got, err)
	}
}
