package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

var testPNG = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

type jobFixture struct {
	svc        *JobService
	store      *memoryStore
	objects    *memoryObjects
	notifier   *recordingNotifier
	landlord   Actor
	contractor Actor
	other      Actor
	now        time.Time
}

func newJobFixture() *jobFixture {
	store := newMemoryStore()
	objects := newMemoryObjects()
	notifier := &recordingNotifier{}
	contractor := Actor{ID: uuid.New(), Role: valueobject.RoleContractor}
	users := fakeUsers{contractor.ID: {ID: contractor.ID, FullName: "Carl Contractor", Role: valueobject.RoleContractor}}

	svc := NewJobService(jobView{store}, docView{store}, store, users, objects, NewCacheService(), notifier, JobOptions{
		DueWindow:      48 * time.Hour,
		MaxUploadBytes: 1024,
	})
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &jobFixture{
		svc:        svc,
		store:      store,
		objects:    objects,
		notifier:   notifier,
		landlord:   Actor{ID: uuid.New(), Role: valueobject.RoleLandlord},
		contractor: contractor,
		other:      Actor{ID: uuid.New(), Role: valueobject.RoleContractor},
		now:        now,
	}
}

func (f *jobFixture) postedCase() *models.LegalCase {
	return f.store.seedCase(f.landlord.ID, 8000, valueobject.CaseStatusSubmitted, valueobject.PaymentStatusPaid)
}

func (f *jobFixture) upload(t *testing.T, caseID uuid.UUID, docType valueobject.DocumentType) *models.CaseDocument {
	t.Helper()
	doc, err := f.svc.UploadDocument(context.Background(), f.contractor, caseID, UploadInput{
		DocumentType: string(docType), FileName: "proof.png", ContentType: "image/png", Data: testPNG,
	})
	require.NoError(t, err)
	return doc
}

func TestJobService_ClaimAssignsContractor(t *testing.T) {
	f := newJobFixture()
	c := f.postedCase()

	job, err := f.svc.Claim(context.Background(), f.contractor, c.ID)
	require.NoError(t, err)

	assert.Equal(t, valueobject.ContractorStatusAssigned, job.ContractorStatus)
	require.NotNil(t, job.ContractorID)
	assert.Equal(t, f.contractor.ID, *job.ContractorID)
	require.NotNil(t, job.DueDate)
	assert.Equal(t, f.now.Add(48*time.Hour), *job.DueDate)
	assert.Len(t, job.MissingDocuments, 4)
	assert.Empty(t, job.UploadedDocuments)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, notify.EventJobClaimed, sent.Event)
	assert.Equal(t, f.landlord.ID, sent.UserID)
	assert.Equal(t, "Carl Contractor", sent.Data.ContractorName)
	assert.Contains(t, f.store.historyActions(c.ID), models.HistoryJobClaimed)
}

func TestJobService_ConcurrentClaimHasOneWinner(t *testing.T) {
	f := newJobFixture()
	c := f.postedCase()

	const contenders = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actor := Actor{ID: uuid.New(), Role: valueobject.RoleContractor}
			_, err := f.svc.Claim(context.Background(), actor, c.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperror.ErrJobAlreadyClaimed):
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, contenders-1, conflicts)
	assert.Equal(t, 409, apperror.ErrJobAlreadyClaimed.HTTPStatus)
}

func TestJobService_ClaimFailures(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	_, err := f.svc.Claim(ctx, f.contractor, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	draft := f.store.seedCase(f.landlord.ID, 8000, valueobject.CaseStatusNoticeDraft, valueobject.PaymentStatusUnpaid)
	_, err = f.svc.Claim(ctx, f.contractor, draft.ID)
	assert.True(t, apperror.IsConflict(err))

	_, err = f.svc.Claim(ctx, f.landlord, f.postedCase().ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestJobService_Unclaim(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	err = f.svc.Unclaim(ctx, f.other, c.ID)
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, f.svc.Unclaim(ctx, f.contractor, c.ID))
	stored := f.store.caseCopy(c.ID)
	assert.Equal(t, valueobject.ContractorStatusUnassigned, stored.ContractorStatus)
	assert.Nil(t, stored.ContractorID)
	assert.Nil(t, stored.DueDate)

	_, err = f.svc.Claim(ctx, f.other, c.ID)
	assert.NoError(t, err)
}

func TestJobService_CompleteRequiresAllDocuments(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	job, err := f.svc.UpdateStatus(ctx, f.contractor, c.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractorStatusInProgress, job.ContractorStatus)

	f.upload(t, c.ID, valueobject.DocumentEvictionNotice)
	f.upload(t, c.ID, valueobject.DocumentReceipt)

	_, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "COMPLETED")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "missing documents: photo_of_posted_notice, certificate_of_mailing")

	f.upload(t, c.ID, valueobject.DocumentPhotoOfPostedNotice)

	_, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "COMPLETED")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "missing documents: certificate_of_mailing")
	stored := f.store.caseCopy(c.ID)
	assert.Equal(t, valueobject.ContractorStatusInProgress, stored.ContractorStatus)

	f.upload(t, c.ID, valueobject.DocumentCertificateOfMailing)

	job, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ContractorStatusCompleted, job.ContractorStatus)
	assert.Empty(t, job.MissingDocuments)
	assert.Contains(t, f.notifier.events(), notify.EventJobCompleted)

	err = f.svc.Unclaim(ctx, f.contractor, c.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestJobService_UpdateStatusRejectsInvalidTransitions(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "UNASSIGNED")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "ASSIGNED")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, f.contractor, c.ID, "FINISHED")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, f.other, c.ID, "IN_PROGRESS")
	assert.True(t, apperror.IsForbidden(err))
}

func TestJobService_UploadValidation(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input UploadInput
		check func(error) bool
	}{
		{
			name:  "too large",
			input: UploadInput{DocumentType: "receipt", FileName: "big.png", ContentType: "image/png", Data: append(append([]byte{}, testPNG...), make([]byte, 2048)...)},
			check: func(err error) bool { return apperror.From(err).Code == apperror.ErrCodeTooLarge },
		},
		{
			name:  "unsupported type",
			input: UploadInput{DocumentType: "receipt", FileName: "note.txt", ContentType: "text/plain", Data: []byte("plain text")},
			check: apperror.IsValidation,
		},
		{
			name:  "unknown document type",
			input: UploadInput{DocumentType: "selfie", FileName: "a.png", ContentType: "image/png", Data: testPNG},
			check: apperror.IsValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UploadDocument(ctx, f.contractor, c.ID, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestJobService_DuplicateUploadConflicts(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	doc := f.upload(t, c.ID, valueobject.DocumentReceipt)
	assert.Equal(t, "/api/files/"+doc.StorageKey, doc.URL)
	assert.Equal(t, "image/png", doc.MimeType)
	assert.True(t, f.objects.has(doc.StorageKey))

	_, err = f.svc.UploadDocument(ctx, f.contractor, c.ID, UploadInput{
		DocumentType: "receipt", FileName: "again.png", ContentType: "image/png", Data: testPNG,
	})
	assert.ErrorIs(t, err, apperror.ErrDocumentExists)

	require.NoError(t, f.svc.DeleteDocument(ctx, f.contractor, c.ID, "receipt"))
	assert.False(t, f.objects.has(doc.StorageKey))
	f.upload(t, c.ID, valueobject.DocumentReceipt)
}

func TestJobService_DocumentAccess(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)
	doc := f.upload(t, c.ID, valueobject.DocumentEvictionNotice)

	docs, err := f.svc.ListDocuments(ctx, f.landlord, c.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].URL)

	file, err := f.svc.OpenDocument(ctx, f.landlord, doc.StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, testPNG, data)
	assert.Equal(t, "image/png", file.MimeType)

	_, err = f.svc.OpenDocument(ctx, f.other, doc.StorageKey)
	assert.True(t, apperror.IsForbidden(err))

	stranger := Actor{ID: uuid.New(), Role: valueobject.RoleLandlord}
	_, err = f.svc.ListDocuments(ctx, stranger, c.ID)
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.OpenDocument(ctx, f.landlord, "../../etc/passwd")
	assert.True(t, apperror.IsNotFound(err))

	// объект без записи о документе не отдаётся
	orphan := "cases/" + c.ID.String() + "/receipt_1.html"
	_, err = f.objects.Save(ctx, orphan, bytes.NewReader(testPNG), int64(len(testPNG)), "text/html")
	require.NoError(t, err)
	_, err = f.svc.OpenDocument(ctx, f.landlord, orphan)
	assert.True(t, apperror.IsNotFound(err))
}

func TestJobService_UploadKeyIgnoresClientFileName(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()
	_, err := f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	doc, err := f.svc.UploadDocument(ctx, f.contractor, c.ID, UploadInput{
		DocumentType: "receipt", FileName: "scan.html", ContentType: "image/png", Data: testPNG,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.StorageKey, ".png"), doc.StorageKey)
	assert.Equal(t, "scan.html", doc.FileName)
	assert.Equal(t, "image/png", doc.MimeType)
}

func TestJobService_ListAvailableAndMine(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	open := f.postedCase()
	claimed := f.postedCase()
	f.store.seedCase(f.landlord.ID, 8000, valueobject.CaseStatusNoticeDraft, valueobject.PaymentStatusUnpaid)

	_, err := f.svc.Claim(ctx, f.contractor, claimed.ID)
	require.NoError(t, err)

	pool, err := f.svc.ListAvailable(ctx, f.other, AvailableJobsFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, pool.Jobs, 1)
	assert.Equal(t, open.ID, pool.Jobs[0].ID)

	mine, err := f.svc.ListMine(ctx, f.contractor, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, claimed.ID, mine[0].ID)

	mine, err = f.svc.ListMine(ctx, f.contractor, "completed")
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = f.svc.ListAvailable(ctx, f.landlord, AvailableJobsFilter{})
	assert.True(t, apperror.IsForbidden(err))
}

func TestJobService_ClaimInvalidatesPoolCache(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()
	c := f.postedCase()

	pool, err := f.svc.ListAvailable(ctx, f.other, AvailableJobsFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, pool.Jobs, 1)

	_, err = f.svc.Claim(ctx, f.contractor, c.ID)
	require.NoError(t, err)

	pool, err = f.svc.ListAvailable(ctx, f.other, AvailableJobsFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, pool.Jobs)
}
