package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/export"
	"github.com/noah-isme/pacs-worklist-api/pkg/storage"
)

const (
	measurementUploadSucceeded = "Measurements successfully sent to the server!"
	measurementUploadFailed    = "An error occurred while sending to the server!"
)

type measurementStore interface {
	List(ctx context.Context, studyInstanceUID string, filter models.MeasurementFilter) ([]models.Measurement, error)
	Delete(ctx context.Context, studyInstanceUID string, filter models.MeasurementFilter) (int64, error)
}

type studyFinder interface {
	FindByUID(ctx context.Context, uid string) (*models.Study, error)
}

type reportFileStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (io.ReadSeekCloser, os.FileInfo, error)
}

// MeasurementConfig configures report links and the downstream upload target.
type MeasurementConfig struct {
	DownloadBasePath string
	PostURL          string
	PostTimeout      time.Duration
}

// ReportFile is an opened report ready to stream.
type ReportFile struct {
	Content     io.ReadSeekCloser
	Info        os.FileInfo
	FileName    string
	ContentType string
}

// MeasurementService renders, clears and forwards study measurements.
type MeasurementService struct {
	repo      measurementStore
	studies   studyFinder
	files     reportFileStore
	signer    *storage.SignedURLSigner
	renderers map[models.ReportFormat]export.Renderer
	http      *http.Client
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       MeasurementConfig
}

// NewMeasurementService constructs a MeasurementService.
func NewMeasurementService(repo measurementStore, studies studyFinder, files reportFileStore, signer *storage.SignedURLSigner, httpClient *http.Client, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg MeasurementConfig) *MeasurementService {
	if cfg.PostTimeout <= 0 {
		cfg.PostTimeout = 10 * time.Second
	}
	if cfg.DownloadBasePath == "" {
		cfg.DownloadBasePath = "/api/v1/exports"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.PostTimeout}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeasurementService{
		repo:    repo,
		studies: studies,
		files:   files,
		signer:  signer,
		renderers: map[models.ReportFormat]export.Renderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		http:      httpClient,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// ExportReport renders the study measurements, stores the file and returns a signed link.
func (s *MeasurementService) ExportReport(ctx context.Context, payload models.MeasurementReportPayload, format models.ReportFormat) (*models.ReportLink, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	study, err := s.studies.FindByUID(ctx, payload.StudyInstanceUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study")
	}

	measurements, err := s.repo.List(ctx, payload.StudyInstanceUID, payload.MeasurementFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load measurements")
	}

	data, err := renderer.Render(export.MeasurementReport(*study, measurements))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	id := uuid.NewString()
	fileName := fmt.Sprintf("%s_measurements.%s", payload.StudyInstanceUID, renderer.Extension())
	stored, err := s.files.Save(path.Join(id, fileName), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(id, stored)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}

	s.logger.Info("measurement report generated",
		zap.String("study_instance_uid", payload.StudyInstanceUID),
		zap.String("format", string(format)),
		zap.Int("rows", len(measurements)))

	return &models.ReportLink{
		FileName:  fileName,
		URL:       strings.TrimRight(s.cfg.DownloadBasePath, "/") + "/" + token,
		ExpiresAt: expiresAt,
		Rows:      len(measurements),
	}, nil
}

// OpenReport resolves a signed token to the stored report.
func (s *MeasurementService) OpenReport(token string) (*ReportFile, error) {
	_, name, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}

	content, info, err := s.files.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrOutsideBase) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}

	fileName := path.Base(name)
	contentType := "application/octet-stream"
	for _, r := range s.renderers {
		if strings.HasSuffix(fileName, "."+r.Extension()) {
			contentType = r.ContentType()
			break
		}
	}
	return &ReportFile{Content: content, Info: info, FileName: fileName, ContentType: contentType}, nil
}

// Clear deletes the measurements matched by the payload.
func (s *MeasurementService) Clear(ctx context.Context, payload models.ClearMeasurementsPayload) (*models.ClearResult, error) {
	deleted, err := s.repo.Delete(ctx, payload.StudyInstanceUID, payload.MeasurementFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear measurements")
	}
	s.logger.Info("measurements cleared",
		zap.String("study_instance_uid", payload.StudyInstanceUID),
		zap.Int64("deleted", deleted))
	return &models.ClearResult{Deleted: deleted}, nil
}

// Upload posts the measurements downstream once and reports the outcome as a notification.
// Only an invalid payload is returned as an error.
func (s *MeasurementService) Upload(ctx context.Context, upload models.MeasurementUpload) (*models.Notification, error) {
	if err := s.validator.Struct(upload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid measurement upload")
	}

	err := s.post(ctx, upload)
	s.metrics.RecordMeasurementUpload(err)

	n := models.Notification{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err != nil {
		s.logger.Warn("measurement upload failed", zap.String("study_instance_uid", upload.StudyInstanceUID), zap.Error(err))
		n.Level, n.Message = models.NotificationError, measurementUploadFailed
	} else {
		n.Level, n.Message = models.NotificationSuccess, measurementUploadSucceeded
	}
	return &n, nil
}

func (s *MeasurementService) post(ctx context.Context, upload models.MeasurementUpload) error {
	body, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("encode measurements: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PostTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.PostURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("post measurements: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed: %d", resp.StatusCode)
	}
	return nil
}
