package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssetsRoundTrip(t *testing.T) {
	data, err := ArchiveAssets([]Asset{
		{Filename: "spec.json", MIME: "application/json", Data: []byte(`{"a":1}`)},
		{Filename: "plan.svg", MIME: "image/svg+xml", Data: []byte("<svg/>")},
		{Filename: "", Data: []byte("skipped")},
	})
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if zr.File[0].Name != "spec.json" || string(content) != `{"a":1}` {
		t.Fatalf("unexpected first entry: %s %s", zr.File[0].Name, content)
	}
}
