package worklist

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

func TestViewerModeValidate(t *testing.T) {
	mode := NewBasicViewer("Basic Viewer", "viewer", "")

	valid, _ := mode.Validate("CT/SR")
	assert.True(t, valid)

	valid, description := mode.Validate("SR\\PR")
	assert.False(t, valid)
	assert.Contains(t, description, "RTSTRUCT")

	valid, _ = mode.Validate("")
	assert.True(t, valid)
}

func TestViewerModeLaunchURL(t *testing.T) {
	mode := NewBasicViewer("Basic Viewer", "viewer", "/dicomweb")
	preserved := url.Values{"token": {"t1"}, "configUrl": {"dup"}}

	got := mode.LaunchURL("1.2.3", "https://cfg/app.json", preserved)
	assert.Equal(t, "/viewer/dicomweb?configUrl=https%3A%2F%2Fcfg%2Fapp.json&StudyInstanceUIDs=1.2.3&token=t1", got)

	got = mode.LaunchURL("1.2.3", "", nil)
	assert.Equal(t, "/viewer/dicomweb?StudyInstanceUIDs=1.2.3", got)
}

func TestViewerModeLaunchSkipsInvalid(t *testing.T) {
	mode := NewBasicViewer("Basic Viewer", "viewer", "")

	launch := mode.Launch(models.Study{StudyInstanceUID: "9", Modalities: "SEG"}, "", nil)
	assert.False(t, launch.Valid)
	assert.Empty(t, launch.URL)

	launch = mode.Launch(models.Study{StudyInstanceUID: "9", Modalities: "MG"}, "", nil)
	assert.True(t, launch.Valid)
	assert.Equal(t, "/viewer?StudyInstanceUIDs=9", launch.URL)
}
