package dicomweb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// StudyUIDFromPart10 returns the StudyInstanceUID of a DICOM Part 10 file.
func StudyUIDFromPart10(data []byte) (string, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
	if err != nil {
		return "", fmt.Errorf("parse dicom: %w", err)
	}
	elem, err := ds.FindElementByTag(tag.StudyInstanceUID)
	if err != nil {
		return "", fmt.Errorf("find StudyInstanceUID: %w", err)
	}
	values := dicom.MustGetStrings(elem.Value)
	if len(values) == 0 {
		return "", fmt.Errorf("empty StudyInstanceUID")
	}
	uid := strings.TrimRight(strings.TrimSpace(values[0]), "\x00")
	if uid == "" {
		return "", fmt.Errorf("empty StudyInstanceUID")
	}
	return uid, nil
}
