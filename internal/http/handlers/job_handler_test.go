package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}

func newJobService(jobs *stubJobs, docs *stubDocs, maxUpload int64) *service.JobService {
	return service.NewJobService(jobs, docs, noopHistory{}, noUsers{}, newMemStore(), service.NewCacheService(), &noopNotifier{}, service.JobOptions{
		MaxUploadBytes: maxUpload,
	})
}

func multipartUpload(t *testing.T, docType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	return multipartUploadAs(t, "notice.png", docType, data)
}

func multipartUploadAs(t *testing.T, fileName, docType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if docType != "" {
		require.NoError(t, mw.WriteField("document_type", docType))
	}
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestJobHandler_Claim_Unauthorized(t *testing.T) {
	r := newTestEngine(uuid.Nil, "")
	handler := &JobHandler{jobs: nil}
	r.POST("/jobs/:id/claim", handler.Claim)

	req, _ := http.NewRequest(http.MethodPost, "/jobs/"+uuid.NewString()+"/claim", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJobHandler_Claim_InvalidID(t *testing.T) {
	r := newTestEngine(uuid.New(), valueobject.RoleContractor)
	handler := &JobHandler{jobs: nil}
	r.POST("/jobs/:id/claim", handler.Claim)

	req, _ := http.NewRequest(http.MethodPost, "/jobs/not-a-uuid/claim", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandler_Claim_SecondContractorGetsConflict(t *testing.T) {
	jobs := newStubJobs(uuid.New())
	handler := NewJobHandler(newJobService(jobs, newStubDocs(), 0))
	path := "/jobs/" + jobs.view.ID.String() + "/claim"

	claim := func(contractorID uuid.UUID) int {
		r := newTestEngine(contractorID, valueobject.RoleContractor)
		r.POST("/jobs/:id/claim", handler.Claim)
		req, _ := http.NewRequest(http.MethodPost, path, nil)
		return serve(r, req).Code
	}

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = claim(uuid.New())
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(codes)-1, conflict)
}

func TestJobHandler_Claim_LandlordForbidden(t *testing.T) {
	jobs := newStubJobs(uuid.New())
	handler := NewJobHandler(newJobService(jobs, newStubDocs(), 0))
	r := newTestEngine(uuid.New(), valueobject.RoleLandlord)
	r.POST("/jobs/:id/claim", handler.Claim)

	req, _ := http.NewRequest(http.MethodPost, "/jobs/"+jobs.view.ID.String()+"/claim", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJobHandler_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	r := newTestEngine(uuid.New(), valueobject.RoleContractor)
	handler := &JobHandler{jobs: nil}
	r.PATCH("/jobs/:id/status", handler.UpdateStatus)

	req, _ := http.NewRequest(http.MethodPatch, "/jobs/"+uuid.NewString()+"/status", bytes.NewBufferString(`{"status":"DONE"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "status")
}

func TestJobHandler_UploadDocument(t *testing.T) {
	contractorID := uuid.New()

	tests := []struct {
		name     string
		docType  string
		data     []byte
		existing bool
		wantCode int
	}{
		{name: "accepted", docType: "receipt", data: pngHeader, wantCode: http.StatusCreated},
		{name: "missing type", docType: "", data: pngHeader, wantCode: http.StatusBadRequest},
		{name: "unknown type", docType: "lease", data: pngHeader, wantCode: http.StatusBadRequest},
		{name: "unsupported content", docType: "receipt", data: []byte("plain text file"), wantCode: http.StatusBadRequest},
		{name: "duplicate type", docType: "receipt", data: pngHeader, existing: true, wantCode: http.StatusConflict},
		{name: "too large", docType: "receipt", data: append(append([]byte{}, pngHeader...), make([]byte, 2048)...), wantCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := newStubJobs(uuid.New())
			jobs.assign(contractorID)
			docs := newStubDocs()
			handler := NewJobHandler(newJobService(jobs, docs, 1024))

			if tt.existing {
				body, contentType := multipartUpload(t, tt.docType, pngHeader)
				r := newTestEngine(contractorID, valueobject.RoleContractor)
				r.POST("/jobs/:id/documents", handler.UploadDocument)
				req, _ := http.NewRequest(http.MethodPost, "/jobs/"+jobs.view.ID.String()+"/documents", body)
				req.Header.Set("Content-Type", contentType)
				require.Equal(t, http.StatusCreated, serve(r, req).Code)
			}

			body, contentType := multipartUpload(t, tt.docType, tt.data)
			r := newTestEngine(contractorID, valueobject.RoleContractor)
			r.POST("/jobs/:id/documents", handler.UploadDocument)
			req, _ := http.NewRequest(http.MethodPost, "/jobs/"+jobs.view.ID.String()+"/documents", body)
			req.Header.Set("Content-Type", contentType)
			w := serve(r, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusCreated {
				var doc map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
				assert.Equal(t, "receipt", doc["document_type"])
				assert.Equal(t, "image/png", doc["mime_type"])
			}
		})
	}
}

func TestJobHandler_UploadDocument_NotAssigned(t *testing.T) {
	jobs := newStubJobs(uuid.New())
	jobs.assign(uuid.New())
	handler := NewJobHandler(newJobService(jobs, newStubDocs(), 1024))

	body, contentType := multipartUpload(t, "receipt", pngHeader)
	r := newTestEngine(uuid.New(), valueobject.RoleContractor)
	r.POST("/jobs/:id/documents", handler.UploadDocument)
	req, _ := http.NewRequest(http.MethodPost, "/jobs/"+jobs.view.ID.String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(r, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJobHandler_DownloadFile_ServesStoredMimeType(t *testing.T) {
	contractorID := uuid.New()
	jobs := newStubJobs(uuid.New())
	jobs.assign(contractorID)
	docs := newStubDocs()
	handler := NewJobHandler(newJobService(jobs, docs, 1024))

	r := newTestEngine(contractorID, valueobject.RoleContractor)
	r.POST("/jobs/:id/documents", handler.UploadDocument)
	r.GET("/files/*key", handler.DownloadFile)

	body, contentType := multipartUploadAs(t, "scan.html", "receipt", pngHeader)
	req, _ := http.NewRequest(http.MethodPost, "/jobs/"+jobs.view.ID.String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusCreated, serve(r, req).Code)

	stored, err := docs.GetByType(context.Background(), jobs.view.ID, valueobject.DocumentReceipt)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.StorageKey, ".png"), stored.StorageKey)

	req, _ = http.NewRequest(http.MethodGet, "/files/"+stored.StorageKey, nil)
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, pngHeader, w.Body.Bytes())
}

func TestJobHandler_DownloadFile_UnknownKey(t *testing.T) {
	contractorID := uuid.New()
	jobs := newStubJobs(uuid.New())
	jobs.assign(contractorID)
	handler := NewJobHandler(newJobService(jobs, newStubDocs(), 1024))

	r := newTestEngine(contractorID, valueobject.RoleContractor)
	r.GET("/files/*key", handler.DownloadFile)
	req, _ := http.NewRequest(http.MethodGet, "/files/cases/"+jobs.view.ID.String()+"/receipt_1.html", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
