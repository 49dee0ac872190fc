package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
)

const studiesFixture = `studies:
  - studyInstanceUid: "1.1"
    patientName: "ALPHA^ANN"
    mrn: "100"
    date: "20240101"
    time: "0930"
    modalities: "CT"
  - studyInstanceUid: "1.2"
    patientName: "BRAVO^BEN"
    mrn: "200"
    date: "20240301"
    time: "1415"
    modalities: "MR"
  - studyInstanceUid: "1.3"
    patientName: "CHARLIE^CY"
    mrn: "300"
    date: "20240201"
    modalities: "CT\\SR"
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(studiesFixture), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPageCommandShowsNewestFirst(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "page", "-f", path, "--limit", "101", "--results-per-page", "2", "-q", "")
	require.NoError(t, err)

	assert.Contains(t, out, "window: offset=0 limit=101 fetched=3")
	assert.Contains(t, out, "sort: studyDate ascending (implicit)")
	march := strings.Index(out, "Mar-01-2024")
	february := strings.Index(out, "Feb-01-2024")
	require.NotEqual(t, -1, march)
	require.NotEqual(t, -1, february)
	assert.Less(t, march, february)
	assert.NotContains(t, out, "Jan-01-2024")
	assert.Contains(t, out, "02:15 PM")
}

func TestPageCommandSecondPage(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "page", "-f", path, "--limit", "101", "--results-per-page", "2", "-q", "pageNumber=2")
	require.NoError(t, err)
	assert.Contains(t, out, "query: pagenumber=2")
	assert.Contains(t, out, "Jan-01-2024")
	assert.NotContains(t, out, "Mar-01-2024")
}

func TestPageCommandRequiresFixture(t *testing.T) {
	_, err := execute(t, "page", "-f", "", "-q", "")
	assert.Error(t, err)
}

func TestQueryCommandCanonicalForm(t *testing.T) {
	out, err := execute(t, "query", "?PatientName=SMITH&configUrl=cfg.json", "--results-per-page", "25")
	require.NoError(t, err)
	assert.Contains(t, out, `"patient_name": "SMITH"`)
	assert.Contains(t, out, "canonical: patientname=SMITH&configUrl=cfg.json")
	assert.Contains(t, out, "filtering: true")
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	out, err := execute(t, "token", "--secret", "cli-secret", "--user", "tech-1", "--role", "TECHNOLOGIST", "--ttl", "10m")
	require.NoError(t, err)

	auth := service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: "cli-secret", AccessTokenExpiry: time.Hour})
	claims, err := auth.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "tech-1", claims.UserID)
	assert.Equal(t, models.RoleTechnologist, claims.Role)
}
