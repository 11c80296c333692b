// internal/workers/archive_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/internal/workers"
	"github.com/LucasDeWerk/vstcount/test/helpers"
	"github.com/LucasDeWerk/vstcount/test/mocks"
)

// fakeStorage records uploads in memory.
type fakeStorage struct {
	objects map[string][]byte
	failKey string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	if key == f.failKey {
		return "", fmt.Errorf("upload rejected")
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.objects[key] = b
	return "s3://test-bucket/" + key, nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return b, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) GetPresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://test-bucket/" + key, nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func evidenceTask(t *testing.T, payload ports.EvidencePayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(workers.TypeArchiveEvidence, data)
}

func TestArchiveProcessor_ProcessEvidence(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	storage := newFakeStorage()
	proc := workers.NewArchiveProcessor(journal, storage, helpers.TestLogger())

	journalID := uuid.New()
	imagePath := helpers.CreateTempFile(t, []byte("jpeg-bytes"), ".jpg")
	annotatedPath := helpers.CreateTempFile(t, []byte("annotated-bytes"), ".jpg")

	payload := ports.EvidencePayload{
		JournalID:     journalID,
		SessionKey:    "ACME:01",
		ProductID:     "P-100",
		ImagePath:     imagePath,
		AnnotatedPath: annotatedPath,
	}

	wantKey := fmt.Sprintf("evidence/ACME:01/%s/capture.jpg", journalID)
	journal.EXPECT().
		SetEvidenceKey(gomock.Any(), journalID, wantKey).
		Return(nil)

	err := proc.ProcessEvidence(context.Background(), evidenceTask(t, payload))
	require.NoError(t, err)

	assert.Equal(t, []byte("jpeg-bytes"), storage.objects[wantKey])
	annotatedKey := fmt.Sprintf("evidence/ACME:01/%s/annotated.jpg", journalID)
	assert.Equal(t, []byte("annotated-bytes"), storage.objects[annotatedKey])

	// Temp files are removed after a successful upload
	_, err = os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(annotatedPath)
	assert.True(t, os.IsNotExist(err))
}

func TestArchiveProcessor_ProcessEvidence_MissingCapture(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	storage := newFakeStorage()
	proc := workers.NewArchiveProcessor(journal, storage, helpers.TestLogger())

	payload := ports.EvidencePayload{
		JournalID:  uuid.New(),
		SessionKey: "ACME:01",
		ProductID:  "P-100",
		ImagePath:  "/nonexistent/capture.jpg",
	}

	// No journal update and no retry when the file is gone
	err := proc.ProcessEvidence(context.Background(), evidenceTask(t, payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, storage.objects)
}

func TestArchiveProcessor_ProcessEvidence_UploadFailureRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	storage := newFakeStorage()
	proc := workers.NewArchiveProcessor(journal, storage, helpers.TestLogger())

	journalID := uuid.New()
	imagePath := helpers.CreateTempFile(t, []byte("jpeg-bytes"), ".jpg")
	storage.failKey = fmt.Sprintf("evidence/ACME:01/%s/capture.jpg", journalID)

	payload := ports.EvidencePayload{
		JournalID:  journalID,
		SessionKey: "ACME:01",
		ProductID:  "P-100",
		ImagePath:  imagePath,
	}

	err := proc.ProcessEvidence(context.Background(), evidenceTask(t, payload))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	// The capture must survive for the retry
	_, statErr := os.Stat(imagePath)
	assert.NoError(t, statErr)
}

func TestArchiveProcessor_ProcessEvidence_BadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	proc := workers.NewArchiveProcessor(journal, newFakeStorage(), helpers.TestLogger())

	task := asynq.NewTask(workers.TypeArchiveEvidence, []byte("{not json"))
	err := proc.ProcessEvidence(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCleanupProcessor_CleanupOldData(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	cfg := helpers.LoadTestConfig()
	proc := workers.NewCleanupProcessor(journal, cfg, helpers.TestLogger())

	journal.EXPECT().
		DeleteOlderThan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int64, error) {
			wantCutoff := time.Now().AddDate(0, 0, -cfg.Journal.RetentionDays)
			assert.WithinDuration(t, wantCutoff, cutoff, time.Minute)
			return 42, nil
		})

	task := asynq.NewTask(workers.TypeCleanupOldData, nil)
	require.NoError(t, proc.CleanupOldData(context.Background(), task))
}

func TestCleanupProcessor_CleanupTempFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	cfg := helpers.LoadTestConfig()
	cfg.App.TempDir = t.TempDir()
	proc := workers.NewCleanupProcessor(journal, cfg, helpers.TestLogger())

	stale := cfg.App.TempDir + "/stale.jpg"
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := cfg.App.TempDir + "/fresh.jpg"
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	task := asynq.NewTask(workers.TypeCleanupTempFiles, nil)
	require.NoError(t, proc.CleanupTempFiles(context.Background(), task))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
