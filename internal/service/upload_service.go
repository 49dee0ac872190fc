package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/jobs"
)

// JobTypeDICOMStore is the queue job type of one file upload.
const JobTypeDICOMStore = "dicom_store"

type instanceStore interface {
	Store(ctx context.Context, fileName string, data []byte) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type sessionNotifier interface {
	Notify(sessionID string, level models.NotificationLevel, message string)
}

// UploadedFile is one file received from the client.
type UploadedFile struct {
	Name string
	Data []byte
}

type storeJob struct {
	SessionID string
	FileName  string
	Data      []byte
}

// DICOMUploadConfig configures the upload flow.
type DICOMUploadConfig struct {
	Enabled      bool
	StoreTimeout time.Duration
}

// DICOMUploadService accepts DICOM files and stores them in the archive one at a time.
type DICOMUploadService struct {
	store    instanceStore
	queue    jobDispatcher
	notifier sessionNotifier
	parseUID func([]byte) (string, error)
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      DICOMUploadConfig
}

// NewDICOMUploadService constructs the service. The queue is attached later with SetQueue
// because the queue itself is built around HandleJob.
func NewDICOMUploadService(store instanceStore, parseUID func([]byte) (string, error), notify sessionNotifier, metrics *MetricsService, logger *zap.Logger, cfg DICOMUploadConfig) *DICOMUploadService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DICOMUploadService{
		store:    store,
		notifier: notify,
		parseUID: parseUID,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetQueue attaches the dispatcher used by Submit.
func (s *DICOMUploadService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enabled reports whether uploads are accepted.
func (s *DICOMUploadService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.store != nil
}

// Submit queues every file for storage and returns the study UIDs found in them together with
// the query that opens those studies.
func (s *DICOMUploadService) Submit(ctx context.Context, sessionID string, files []UploadedFile) (*models.UploadBatch, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrUploadDisabled
	}
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files uploaded")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "upload queue not configured")
	}

	batch := &models.UploadBatch{
		ID:                uuid.NewString(),
		Files:             make([]models.UploadFile, 0, len(files)),
		StudyInstanceUIDs: []string{},
	}
	seen := make(map[string]struct{})

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := models.UploadFile{JobID: uuid.NewString(), FileName: f.Name, Status: models.UploadQueued}

		if s.parseUID != nil {
			uid, err := s.parseUID(f.Data)
			if err != nil {
				s.logger.Warn("uploaded file is not readable DICOM", zap.String("file", f.Name), zap.Error(err))
			} else {
				entry.StudyInstanceUID = uid
				if _, ok := seen[uid]; !ok {
					seen[uid] = struct{}{}
					batch.StudyInstanceUIDs = append(batch.StudyInstanceUIDs, uid)
				}
			}
		}

		job := jobs.Job{
			ID:      entry.JobID,
			Type:    JobTypeDICOMStore,
			Payload: storeJob{SessionID: sessionID, FileName: f.Name, Data: f.Data},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("failed to enqueue dicom file", zap.String("file", f.Name), zap.Error(err))
			entry.Status = models.UploadFailed
			s.notify(sessionID, models.NotificationError, fmt.Sprintf("Failed to upload %s", f.Name))
		}
		batch.Files = append(batch.Files, entry)
	}

	batch.RedirectQuery = RedirectQuery(batch.StudyInstanceUIDs)
	return batch, nil
}

// RedirectQuery builds the worklist query opening the uploaded studies from the local data source.
func RedirectQuery(studyInstanceUIDs []string) string {
	parts := make([]string, 0, len(studyInstanceUIDs)+1)
	for _, uid := range studyInstanceUIDs {
		parts = append(parts, "StudyInstanceUIDs="+url.QueryEscape(uid))
	}
	parts = append(parts, "datasources=dicomlocal")
	return strings.Join(parts, "&")
}

// HandleJob stores one queued file. It is the queue handler.
func (s *DICOMUploadService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(storeJob)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.store.Store(ctx, payload.FileName, payload.Data)
}

// OnResult turns the final job outcome into a session notification.
func (s *DICOMUploadService) OnResult(job jobs.Job, err error) {
	payload, ok := job.Payload.(storeJob)
	if !ok {
		return
	}
	s.metrics.RecordDICOMStore(err)
	if err != nil {
		s.logger.Warn("dicom store failed", zap.String("file", payload.FileName), zap.String("job_id", job.ID), zap.Error(err))
		s.notify(payload.SessionID, models.NotificationError, fmt.Sprintf("Failed to upload %s", payload.FileName))
		return
	}
	s.notify(payload.SessionID, models.NotificationSuccess, fmt.Sprintf("%s uploaded to the archive", payload.FileName))
}

func (s *DICOMUploadService) notify(sessionID string, level models.NotificationLevel, message string) {
	if s.notifier == nil || sessionID == "" {
		return
	}
	s.notifier.Notify(sessionID, level, message)
}
