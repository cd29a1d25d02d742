package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// buildUploadBody assembles a multipart form with an optional file part and
// extra form fields
func buildUploadBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		assert.NoError(t, err)
		_, err = part.Write([]byte(content))
		assert.NoError(t, err)
	}
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// uploadClientDocument drives the client upload handler and returns the
// persisted row
func uploadClientDocument(t *testing.T, database *gorm.DB, user *models.User, clientID, filename, content string) *models.Document {
	t.Helper()
	body, contentType := buildUploadBody(t, filename, content, nil)
	_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+clientID+"/documents", body)
	c.Request().Header.Set(echo.HeaderContentType, contentType)
	c.SetParamNames("id")
	c.SetParamValues(clientID)
	c.Set("user", user)

	assert.NoError(t, UploadClientDocument(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	var doc models.Document
	assert.NoError(t, database.First(&doc, "id = ?", created.ID).Error)
	return &doc
}

func TestUploadClientDocument(t *testing.T) {
	setup := func(t *testing.T) (*gorm.DB, *models.User, *models.Client) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		return database, admin, client
	}

	t.Run("Success", func(t *testing.T) {
		database, admin, client := setup(t)

		body, contentType := buildUploadBody(t, "evidence.txt", "Signed meeting notes.", map[string]string{
			"description": "Grievance meeting notes",
		})
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+client.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := UploadClientDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "evidence.txt")

		var doc models.Document
		assert.NoError(t, database.First(&doc, "client_id = ?", client.ID).Error)
		assert.Equal(t, "evidence.txt", doc.FileOriginalName)
		assert.Equal(t, int64(len("Signed meeting notes.")), doc.FileSize)
		assert.Equal(t, &admin.ID, doc.UploadedByID)
		assert.True(t, strings.HasPrefix(doc.StorageKey, "clients/"+client.ID+"/"))
		if assert.NotNil(t, doc.Description) {
			assert.Equal(t, "Grievance meeting notes", *doc.Description)
		}
		assert.Nil(t, doc.CaseID)
	})

	t.Run("Disallowed extension", func(t *testing.T) {
		_, admin, client := setup(t)

		body, contentType := buildUploadBody(t, "payload.exe", "MZ", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+client.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := UploadClientDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "File type not allowed")
	})

	t.Run("Oversized file", func(t *testing.T) {
		_, admin, client := setup(t)

		body, contentType := buildUploadBody(t, "dump.txt", strings.Repeat("a", MaxUploadSize+1), nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+client.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := UploadClientDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "20 MB")
	})

	t.Run("Missing file", func(t *testing.T) {
		_, admin, client := setup(t)

		body, contentType := buildUploadBody(t, "", "", map[string]string{"description": "no file attached"})
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+client.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := UploadClientDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "File is required")
	})

	t.Run("Client not found", func(t *testing.T) {
		_, admin, _ := setup(t)

		body, contentType := buildUploadBody(t, "evidence.txt", "notes", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/missing/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := UploadClientDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadCaseDocument(t *testing.T) {
	setup := func(t *testing.T) (*gorm.DB, *models.User, *models.Case) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)
		return database, admin, caseRecord
	}

	t.Run("Success touches case activity", func(t *testing.T) {
		database, admin, caseRecord := setup(t)
		assert.Nil(t, caseRecord.LastActivityAt)

		body, contentType := buildUploadBody(t, "termination_letter.pdf", "%PDF-1.4", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+caseRecord.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UploadCaseDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var doc models.Document
		assert.NoError(t, database.First(&doc, "case_id = ?", caseRecord.ID).Error)
		assert.Equal(t, caseRecord.ClientID, doc.ClientID)
		assert.True(t, strings.Contains(doc.StorageKey, "/cases/"+caseRecord.ID+"/"))

		assert.NoError(t, database.First(caseRecord, "id = ?", caseRecord.ID).Error)
		assert.NotNil(t, caseRecord.LastActivityAt)
	})

	t.Run("Closed case rejects uploads", func(t *testing.T) {
		database, admin, caseRecord := setup(t)
		assert.NoError(t, database.Model(caseRecord).Update("status", models.CaseStatusClosed).Error)

		body, contentType := buildUploadBody(t, "late.txt", "too late", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+caseRecord.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UploadCaseDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "closed case")
	})

	t.Run("Consultant blocked from unassigned case", func(t *testing.T) {
		database, _, caseRecord := setup(t)
		consultant := createTestUser(t, database, "c1", "c1@test.com", models.RoleConsultant)

		body, contentType := buildUploadBody(t, "notes.txt", "notes", nil)
		_, c, _ := setupEcho(http.MethodPost, "/api/cases/"+caseRecord.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", consultant)

		err := UploadCaseDocument(c)
		assert.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})
}

func TestUploadContractDocument(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		contract := createTestContract(t, database, "v1", client.ID, 1, models.ContractStatusDraft)

		body, contentType := buildUploadBody(t, "signed_agreement.pdf", "%PDF-1.4", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/contracts/"+contract.ID+"/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues(contract.ID)
		c.Set("user", admin)

		err := UploadContractDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var doc models.Document
		assert.NoError(t, database.First(&doc, "contract_id = ?", contract.ID).Error)
		assert.Equal(t, client.ID, doc.ClientID)
		assert.True(t, strings.Contains(doc.StorageKey, "/contracts/"+contract.ID+"/"))
	})

	t.Run("Contract not found", func(t *testing.T) {
		admin := createTestAdmin(t, setupTestDB(t))

		body, contentType := buildUploadBody(t, "signed.pdf", "%PDF-1.4", nil)
		_, c, rec := setupEcho(http.MethodPost, "/api/contracts/missing/documents", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := UploadContractDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetClientDocuments(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	client := createTestClient(t, database, "acme")

	older := &models.Document{
		ID:               "doc-old",
		ClientID:         client.ID,
		FileName:         "a.pdf",
		FileOriginalName: "handbook.pdf",
		StorageKey:       "clients/client-acme/secret-blob-old",
		FileSize:         10,
		CreatedAt:        time.Now().Add(-2 * time.Hour),
	}
	newer := &models.Document{
		ID:               "doc-new",
		ClientID:         client.ID,
		FileName:         "b.pdf",
		FileOriginalName: "policy.pdf",
		StorageKey:       "clients/client-acme/secret-blob-new",
		FileSize:         20,
		CreatedAt:        time.Now().Add(-1 * time.Hour),
	}
	assert.NoError(t, database.Create(older).Error)
	assert.NoError(t, database.Create(newer).Error)

	t.Run("Newest first without storage keys", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/clients/"+client.ID+"/documents", nil)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := GetClientDocuments(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Less(t, strings.Index(body, "doc-new"), strings.Index(body, "doc-old"))
		assert.Contains(t, body, "handbook.pdf")
		assert.NotContains(t, body, "secret-blob")
	})

	t.Run("Client not found", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/clients/missing/documents", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := GetClientDocuments(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	t.Run("Streams local files as attachment", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		doc := uploadClientDocument(t, database, admin, client.ID, "evidence.txt", "Signed meeting notes.")

		_, c, rec := setupEcho(http.MethodGet, "/api/documents/"+doc.ID+"/download", nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("user", admin)

		err := DownloadDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Signed meeting notes.", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "evidence.txt")
	})

	t.Run("Document not found", func(t *testing.T) {
		admin := createTestAdmin(t, setupTestDB(t))

		_, c, rec := setupEcho(http.MethodGet, "/api/documents/missing/download", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := DownloadDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	setup := func(t *testing.T) (*gorm.DB, *models.User, *models.Document) {
		database := setupTestDB(t)
		uploader := createTestUser(t, database, "c1", "c1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")
		doc := uploadClientDocument(t, database, uploader, client.ID, "notes.txt", "to be removed")
		return database, uploader, doc
	}

	t.Run("Uploader deletes own document", func(t *testing.T) {
		database, uploader, doc := setup(t)

		_, c, rec := setupEcho(http.MethodDelete, "/api/documents/"+doc.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("user", uploader)

		err := DeleteDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		database.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		_, _, err = services.Storage.Get(context.Background(), doc.StorageKey)
		assert.Error(t, err)
	})

	t.Run("Non-uploader cannot delete", func(t *testing.T) {
		database, _, doc := setup(t)
		staff := createTestUser(t, database, "s1", "s1@test.com", models.RoleStaff)

		_, c, _ := setupEcho(http.MethodDelete, "/api/documents/"+doc.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("user", staff)

		err := DeleteDocument(c)
		assert.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("Admin can delete any upload", func(t *testing.T) {
		database, _, doc := setup(t)
		admin := createTestAdmin(t, database)

		_, c, rec := setupEcho(http.MethodDelete, "/api/documents/"+doc.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("user", admin)

		err := DeleteDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Document not found", func(t *testing.T) {
		_, uploader, _ := setup(t)

		_, c, rec := setupEcho(http.MethodDelete, "/api/documents/missing", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", uploader)

		err := DeleteDocument(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
