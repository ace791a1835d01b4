package xvi

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedConfig indicates a key=value document that is structurally
// broken: nothing in it could be parsed, or a required key is absent.
var ErrMalformedConfig = errors.New("malformed key=value config")

// Document is a parsed XVI key=value file.
//
// Duplicate keys are resolved last-write-wins, matching how XVI itself
// appends updated values when a reconstruction is redone.
type Document struct {
	values   map[string]string
	sections []string

	// Skipped counts non-blank lines that were neither a section header,
	// a comment, nor a key=value pair.
	Skipped int
}

// ParseDocument parses XVI INI text. It never fails on individual bad lines;
// it returns ErrMalformedConfig only when the text yields no usable keys.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{values: make(map[string]string)}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			doc.sections = append(doc.sections, strings.TrimSpace(trimmed[1:len(trimmed)-1]))
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) == "" {
			doc.Skipped++
			continue
		}
		doc.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if len(doc.values) == 0 {
		return nil, fmt.Errorf("%w: no key=value pairs found", ErrMalformedConfig)
	}
	return doc, nil
}

// Get returns the raw string value for key.
func (d *Document) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Require returns the value for key or ErrMalformedConfig.
func (d *Document) Require(key string) (string, error) {
	v, ok := d.values[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", ErrMalformedConfig, key)
	}
	return v, nil
}

// Float returns the value for key parsed as a float.
func (d *Document) Float(key string) (float64, bool) {
	raw, ok := d.values[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Len returns the number of distinct keys parsed.
func (d *Document) Len() int {
	return len(d.values)
}

// Sections returns the section header names in file order.
func (d *Document) Sections() []string {
	return d.sections
}

// alignmentSection matches headers like "ALIGNMENT.20230321; 16:54:02".
var alignmentSection = regexp.MustCompile(`^ALIGNMENT\.(\d{8});\s*(\d{2}:\d{2}:\d{2})$`)

// AlignmentTime recovers the registration date/time recorded in the
// [ALIGNMENT.<yyyymmdd>; <hh:mm:ss>] section header, when present.
func (d *Document) AlignmentTime() (time.Time, bool) {
	for _, s := range d.sections {
		m := alignmentSection.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation("20060102 15:04:05", m[1]+" "+m[2], time.Local)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}
