package registration

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// DefaultArchiveTag is the vendor-private element where XVI stores the
// embedded ZIP archive inside an RPS record.
var DefaultArchiveTag = tag.Tag{Group: 0x0021, Element: 0x103A}

// Member is one named file from the embedded archive, fully materialized in
// memory. Archives are bounded by acquisition record size (low single-digit
// megabytes), so no spill-to-disk is needed.
type Member struct {
	Name string
	Data []byte
}

// UnpackDataset locates the private archive element in a parsed DICOM
// record and returns the archive members. It returns ErrArtifactNotFound
// when the element is absent or empty and ErrCorruptArchive when the bytes
// do not parse as a ZIP container.
func UnpackDataset(ds *dicom.Dataset, archiveTag tag.Tag) ([]Member, error) {
	el, err := ds.FindElementByTag(archiveTag)
	if err != nil {
		return nil, fmt.Errorf("%w: element (%04X,%04X) absent",
			ErrArtifactNotFound, archiveTag.Group, archiveTag.Element)
	}

	raw := elementBytes(el)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: element (%04X,%04X) empty",
			ErrArtifactNotFound, archiveTag.Group, archiveTag.Element)
	}
	return UnpackArchive(raw)
}

// UnpackArchive reads every member of an in-memory ZIP archive. No
// temporary files are written.
func UnpackArchive(data []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	members := make([]Member, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open member %q: %v", ErrCorruptArchive, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read member %q: %v", ErrCorruptArchive, f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Data: content})
	}
	return members, nil
}

// elementBytes extracts the raw payload of a private element. Private tags
// parse as OB/UN byte values; some writers store them as padded strings.
func elementBytes(el *dicom.Element) []byte {
	switch v := el.Value.GetValue().(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}
