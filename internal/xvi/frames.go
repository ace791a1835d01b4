package xvi

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FrameMetadata holds the acquisition metadata recorded in _Frames.xml.
// Tube settings are pointers because MotionView acquisitions often omit them.
type FrameMetadata struct {
	TreatmentID string
	PresetName  string
	DicomUID    string
	TubeKV      *float64
	TubeMA      *float64
}

type framesDoc struct {
	Treatment struct {
		ID string `xml:"ID"`
	} `xml:"Treatment"`
	Image struct {
		AcquisitionPresetName string `xml:"AcquisitionPresetName"`
		DicomUID              string `xml:"DicomUID"`
		KV                    string `xml:"kV"`
		MA                    string `xml:"mA"`
	} `xml:"Image"`
}

// ParseFrames parses _Frames.xml content. Missing elements leave zero
// values; non-numeric tube settings are dropped rather than failing the
// whole acquisition.
func ParseFrames(data []byte) (*FrameMetadata, error) {
	var doc framesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse frames xml: %w", err)
	}

	meta := &FrameMetadata{
		TreatmentID: strings.TrimSpace(doc.Treatment.ID),
		PresetName:  strings.TrimSpace(doc.Image.AcquisitionPresetName),
		DicomUID:    strings.TrimSpace(doc.Image.DicomUID),
		TubeKV:      parseOptionalFloat(doc.Image.KV),
		TubeMA:      parseOptionalFloat(doc.Image.MA),
	}
	return meta, nil
}

// ParseFramesFile reads and parses a _Frames.xml file.
func ParseFramesFile(path string) (*FrameMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frames xml: %w", err)
	}
	return ParseFrames(data)
}

func parseOptionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
