package worklist

import (
	"net/url"
	"strings"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// NonImagingModalities cannot be opened in the basic viewer on their own.
var NonImagingModalities = []string{"SM", "ECG", "SEG", "RTSTRUCT", "RTPLAN", "PR", "SR"}

// ViewerMode is a viewer route a study can be launched into.
type ViewerMode struct {
	DisplayName string
	RouteName   string
	DataPath    string
	Excluded    []string
}

// NewBasicViewer returns the default viewer mode.
func NewBasicViewer(displayName, routeName, dataPath string) ViewerMode {
	return ViewerMode{
		DisplayName: displayName,
		RouteName:   routeName,
		DataPath:    dataPath,
		Excluded:    NonImagingModalities,
	}
}

// Validate reports whether the study modalities contain anything the mode can display.
// Modalities may be separated by "/" or "\".
func (m ViewerMode) Validate(modalities string) (bool, string) {
	fields := strings.FieldsFunc(modalities, func(r rune) bool { return r == '/' || r == '\\' })
	if len(fields) == 0 {
		return true, ""
	}

	for _, modality := range fields {
		if !m.excludes(strings.TrimSpace(modality)) {
			return true, ""
		}
	}
	return false, "The mode does not support studies that ONLY include the following modalities: " +
		strings.Join(m.Excluded, ", ")
}

func (m ViewerMode) excludes(modality string) bool {
	for _, excluded := range m.Excluded {
		if strings.EqualFold(excluded, modality) {
			return true
		}
	}
	return false
}

// LaunchURL builds the viewer link for one study. configUrl leads, then the study UID,
// then the preserved parameters in key order.
func (m ViewerMode) LaunchURL(studyInstanceUID, configURL string, preserved url.Values) string {
	parts := make([]string, 0, 2+len(preserved))
	if configURL != "" {
		parts = append(parts, "configUrl="+url.QueryEscape(configURL))
	}
	parts = append(parts, "StudyInstanceUIDs="+url.QueryEscape(studyInstanceUID))

	rest := url.Values{}
	for key, values := range preserved {
		if configURL != "" && strings.EqualFold(key, KeyConfigURL) {
			continue
		}
		rest[key] = values
	}
	if encoded := rest.Encode(); encoded != "" {
		parts = append(parts, encoded)
	}

	return "/" + strings.TrimPrefix(m.RouteName, "/") + m.DataPath + "?" + strings.Join(parts, "&")
}

// Launch describes the mode for a study, including the link when the mode is valid.
func (m ViewerMode) Launch(study models.Study, configURL string, preserved url.Values) models.ModeLaunch {
	valid, description := m.Validate(study.Modalities)
	launch := models.ModeLaunch{
		DisplayName: m.DisplayName,
		RouteName:   m.RouteName,
		Valid:       valid,
		Description: description,
	}
	if valid {
		launch.URL = m.LaunchURL(study.StudyInstanceUID, configURL, preserved)
	}
	return launch
}
