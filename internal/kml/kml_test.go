package kml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	names := []string{"L001", "L002"}
	descriptions := []string{"north strip", "south strip"}
	coords := []Coordinate{
		{Lon: -4.51, Lat: 48.38, Alt: 0},
		{Lon: -4.49, Lat: 48.36, Alt: 12.5},
	}

	if err := Write(&buf, names, descriptions, coords); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<name>L001</name>") {
		t.Error("missing first placemark name")
	}
	if !strings.Contains(out, "<description>south strip</description>") {
		t.Error("missing second description")
	}
	if !strings.Contains(out, "<coordinates>-4.49,48.36,12.5</coordinates>") {
		t.Error("missing coordinate triple")
	}
	if !strings.Contains(out, `xmlns="http://www.opengis.net/kml/2.2"`) {
		t.Error("missing kml namespace")
	}

	// Output must be well-formed XML.
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v", err)
		}
	}
}

func TestWrite_LengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []string{"a", "b"}, []string{"only one"}, []Coordinate{{}, {}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
	if buf.Len() != 0 {
		t.Error("no partial output should be written on invalid input")
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, nil, nil); err != nil {
		t.Fatalf("Write with empty input: %v", err)
	}
	if !strings.Contains(buf.String(), "<Document>") {
		t.Error("empty input should still produce a document shell")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.kml")
	if err := WriteFile(path, []string{"L1"}, []string{""}, []Coordinate{{Lon: 1, Lat: 2}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "<name>L1</name>") {
		t.Error("file missing placemark")
	}
}
