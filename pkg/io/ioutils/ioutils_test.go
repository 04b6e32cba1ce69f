package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestGzipRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv.gz")
	w, err := CreateMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "a,b\n1,2\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(p)
	if raw[0] != 0x1f || raw[1] != 0x8b {
		t.Fatal("expected gzip magic on disk")
	}
	got, err := ReadAllMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeFallsBack(t *testing.T) {
	latin := []byte("nome\nJo\xe3o\n")
	out, used, err := Decode(latin, "utf-8", DefaultFallbacks)
	if err != nil {
		t.Fatal(err)
	}
	if used != "latin-1" || string(out) != "nome\nJoão\n" {
		t.Fatalf("decoded %q with %s", out, used)
	}
	if _, _, err := Decode(latin, "utf-8", nil); err == nil {
		t.Fatal("utf-8 alone must reject latin-1 bytes")
	}
	out, used, _ = Decode([]byte("\xef\xbb\xbfid\n"), "", nil)
	if used != "utf-8" || string(out) != "id\n" {
		t.Fatalf("bom not stripped: %q", out)
	}
}

func TestEncode(t *testing.T) {
	b, err := Encode([]byte("João"), "latin-1")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Jo\xe3o" {
		t.Fatalf("got %q", b)
	}
}
