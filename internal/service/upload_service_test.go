package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/jobs"
)

type mockInstanceStore struct {
	mu     sync.Mutex
	failOn map[string]bool
	stored []string
}

func (m *mockInstanceStore) Store(ctx context.Context, fileName string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[fileName] {
		return errors.New("archive rejected instance")
	}
	m.stored = append(m.stored, fileName)
	return nil
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type recordedNotification struct {
	session string
	level   models.NotificationLevel
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []recordedNotification
}

func (n *recordingNotifier) Notify(sessionID string, level models.NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, recordedNotification{session: sessionID, level: level, message: message})
}

func (n *recordingNotifier) snapshot() []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedNotification(nil), n.items...)
}

func uidFromName(data []byte) (string, error) {
	if string(data) == "garbage" {
		return "", errors.New("not dicom")
	}
	return string(data), nil
}

func TestDICOMUploadSubmitQueuesFiles(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewDICOMUploadService(&mockInstanceStore{}, uidFromName, nil, nil, nil, DICOMUploadConfig{Enabled: true})
	svc.SetQueue(queue)

	batch, err := svc.Submit(context.Background(), "s1", []UploadedFile{
		{Name: "a.dcm", Data: []byte("1.2.3")},
		{Name: "b.dcm", Data: []byte("1.2.3")},
		{Name: "c.dcm", Data: []byte("4.5.6")},
		{Name: "d.dcm", Data: []byte("garbage")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1.2.3", "4.5.6"}, batch.StudyInstanceUIDs)
	assert.Equal(t, "StudyInstanceUIDs=1.2.3&StudyInstanceUIDs=4.5.6&datasources=dicomlocal", batch.RedirectQuery)
	require.Len(t, batch.Files, 4)
	assert.Equal(t, "", batch.Files[3].StudyInstanceUID)
	assert.Len(t, queue.jobs, 4)
	for _, job := range queue.jobs {
		assert.Equal(t, JobTypeDICOMStore, job.Type)
	}
}

func TestDICOMUploadDisabled(t *testing.T) {
	svc := NewDICOMUploadService(&mockInstanceStore{}, uidFromName, nil, nil, nil, DICOMUploadConfig{Enabled: false})
	svc.SetQueue(&recordingQueue{})

	_, err := svc.Submit(context.Background(), "s1", []UploadedFile{{Name: "a.dcm"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUploadDisabled.Code, appErrors.FromError(err).Code)
}

func TestDICOMUploadEnqueueFailureNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewDICOMUploadService(&mockInstanceStore{}, uidFromName, notifier, nil, nil, DICOMUploadConfig{Enabled: true})
	svc.SetQueue(&recordingQueue{err: errors.New("queue stopped")})

	batch, err := svc.Submit(context.Background(), "s1", []UploadedFile{{Name: "a.dcm", Data: []byte("1.2.3")}})
	require.NoError(t, err)
	assert.Equal(t, models.UploadFailed, batch.Files[0].Status)
	require.Len(t, notifier.snapshot(), 1)
	assert.Equal(t, models.NotificationError, notifier.snapshot()[0].level)
}

func TestDICOMUploadStoresSequentiallyWithoutRetry(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := &mockInstanceStore{failOn: map[string]bool{"b.dcm": true}}
	notifier := &recordingNotifier{}
	svc := NewDICOMUploadService(store, uidFromName, notifier, nil, nil, DICOMUploadConfig{Enabled: true, StoreTimeout: time.Second})
	queue := jobs.NewQueue("dicom-store", svc.HandleJob, jobs.QueueConfig{Workers: 1, BufferSize: 8, OnResult: svc.OnResult})
	svc.SetQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	_, err := svc.Submit(context.Background(), "s1", []UploadedFile{
		{Name: "a.dcm", Data: []byte("1.2.3")},
		{Name: "b.dcm", Data: []byte("1.2.3")},
		{Name: "c.dcm", Data: []byte("1.2.3")},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(notifier.snapshot()) == 3 }, 2*time.Second, 10*time.Millisecond)
	queue.Stop()

	got := notifier.snapshot()
	assert.Equal(t, recordedNotification{"s1", models.NotificationSuccess, "a.dcm uploaded to the archive"}, got[0])
	assert.Equal(t, recordedNotification{"s1", models.NotificationError, "Failed to upload b.dcm"}, got[1])
	assert.Equal(t, recordedNotification{"s1", models.NotificationSuccess, "c.dcm uploaded to the archive"}, got[2])
	assert.Equal(t, []string{"a.dcm", "c.dcm"}, store.stored)
}
