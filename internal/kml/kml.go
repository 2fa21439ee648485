// Package kml exports point sets as KML placemark documents for survey
// planning tools.
package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidInput reports name/description/coordinate slices of differing
// lengths.
var ErrInvalidInput = errors.New("kml: names, descriptions and coordinates must have equal lengths")

// Coordinate is a WGS84 position in KML axis order.
type Coordinate struct {
	Lon, Lat, Alt float64
}

type kmlDoc struct {
	XMLName  xml.Name `xml:"kml"`
	XMLNS    string   `xml:"xmlns,attr"`
	Document document `xml:"Document"`
}

type document struct {
	Placemarks []placemark `xml:"Placemark"`
}

type placemark struct {
	Name        string `xml:"name"`
	Description string `xml:"description,omitempty"`
	Point       point  `xml:"Point"`
}

type point struct {
	Coordinates string `xml:"coordinates"`
}

// Write encodes one placemark per point to w. The three slices pair up by
// index and must be the same length.
func Write(w io.Writer, names, descriptions []string, coords []Coordinate) error {
	if len(names) != len(descriptions) || len(names) != len(coords) {
		return fmt.Errorf("%w: %d names, %d descriptions, %d coordinates",
			ErrInvalidInput, len(names), len(descriptions), len(coords))
	}

	doc := kmlDoc{
		XMLNS: "http://www.opengis.net/kml/2.2",
	}
	for i, name := range names {
		doc.Document.Placemarks = append(doc.Document.Placemarks, placemark{
			Name:        name,
			Description: descriptions[i],
			Point: point{
				Coordinates: fmt.Sprintf("%g,%g,%g", coords[i].Lon, coords[i].Lat, coords[i].Alt),
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("kml: encoding document: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the placemark document to path.
func WriteFile(path string, names, descriptions []string, coords []Coordinate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kml: creating %s: %w", path, err)
	}
	if err := Write(f, names, descriptions, coords); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
