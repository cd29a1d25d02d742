package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

// MaxUploadSize is the per-file upload cap
const MaxUploadSize = 20 << 20 // 20 MB

// allowedUploadExtensions is the document upload allowlist
var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".txt":  true,
}

// validateUploadFile enforces the extension allowlist and size cap
func validateUploadFile(file *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExtensions[ext] {
		return "File type not allowed. Accepted: pdf, doc, docx, xls, xlsx, png, jpg, txt"
	}
	if file.Size > MaxUploadSize {
		return "File exceeds the 20 MB size limit"
	}
	return ""
}

// storeDocument uploads the file and creates the document row
func storeDocument(c echo.Context, file *multipart.FileHeader, storageKey string, doc *models.Document) error {
	uploadResult, err := services.Storage.Upload(context.Background(), file, storageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed")
	}

	currentUser := middleware.GetCurrentUser(c)

	doc.FileName = uploadResult.FileName
	doc.FileOriginalName = file.Filename
	doc.StorageKey = uploadResult.Key
	doc.FileSize = uploadResult.FileSize
	doc.MimeType = uploadResult.MimeType
	doc.UploadedByID = &currentUser.ID

	if description := c.FormValue("description"); description != "" {
		doc.Description = &description
	}

	if err := db.DB.Create(doc).Error; err != nil {
		// Roll back the uploaded blob
		services.Storage.Delete(context.Background(), uploadResult.Key)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save document record")
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Document", doc.ID, doc.FileOriginalName,
		"Document uploaded", nil, map[string]interface{}{
			"file_size": doc.FileSize,
			"mime_type": doc.MimeType,
		})

	return c.JSON(http.StatusCreated, doc)
}

// UploadClientDocument uploads a document scoped to a client
func UploadClientDocument(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "File is required",
		})
	}

	if msg := validateUploadFile(file); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": msg,
		})
	}

	key := services.GenerateClientDocumentKey(client.ID, file.Filename)
	doc := &models.Document{ClientID: client.ID}
	return storeDocument(c, file, key, doc)
}

// UploadCaseDocument uploads a document scoped to a case
func UploadCaseDocument(c echo.Context) error {
	caseRecord, err := findAccessibleCase(c)
	if caseRecord == nil {
		return err
	}

	if caseRecord.IsClosed() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Cannot upload documents to a closed case",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "File is required",
		})
	}

	if msg := validateUploadFile(file); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": msg,
		})
	}

	key := services.GenerateCaseDocumentKey(caseRecord.ClientID, caseRecord.ID, file.Filename)
	doc := &models.Document{
		ClientID: caseRecord.ClientID,
		CaseID:   &caseRecord.ID,
	}

	response := storeDocument(c, file, key, doc)
	if doc.ID != "" {
		if err := services.TouchCaseActivity(db.DB, caseRecord.ID); err != nil {
			c.Logger().Warnf("failed to touch case activity for %s: %v", caseRecord.ID, err)
		}
	}
	return response
}

// UploadContractDocument uploads a document scoped to a contract (e.g. the
// signed copy)
func UploadContractDocument(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "File is required",
		})
	}

	if msg := validateUploadFile(file); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": msg,
		})
	}

	key := services.GenerateContractDocumentKey(contract.ClientID, contract.ID, file.Filename)
	doc := &models.Document{
		ClientID:   contract.ClientID,
		ContractID: &contract.ID,
	}
	return storeDocument(c, file, key, doc)
}

// GetClientDocuments lists a client's documents, newest first
func GetClientDocuments(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var documents []models.Document
	if err := db.DB.
		Preload("UploadedBy").
		Where("client_id = ?", client.ID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch documents")
	}

	return c.JSON(http.StatusOK, documents)
}

// DownloadDocument serves a document. R2-backed storage redirects to a
// short-lived signed URL; local storage streams the file.
func DownloadDocument(c echo.Context) error {
	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Document not found",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDownload, "Document", doc.ID, doc.FileOriginalName,
		"Document downloaded", nil, nil)

	if _, ok := services.Storage.(*services.R2Storage); ok {
		url, err := services.Storage.GetSignedURL(context.Background(), doc.StorageKey, 15*time.Minute)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get download URL")
		}
		return c.Redirect(http.StatusTemporaryRedirect, url)
	}

	reader, contentType, err := services.Storage.Get(context.Background(), doc.StorageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	defer reader.Close()

	if doc.MimeType != "" {
		contentType = doc.MimeType
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=\""+doc.FileOriginalName+"\"")
	return c.Stream(http.StatusOK, contentType, reader)
}

// DeleteDocument removes a document's blob and row. Only the uploader or an
// admin may delete.
func DeleteDocument(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Document not found",
		})
	}

	isUploader := doc.UploadedByID != nil && *doc.UploadedByID == currentUser.ID
	if !isUploader && !currentUser.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	// Remove the blob before the row
	if err := services.Storage.Delete(context.Background(), doc.StorageKey); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete file")
	}

	if err := db.DB.Delete(&doc).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete document record",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "Document", doc.ID, doc.FileOriginalName,
		"Document deleted", nil, nil)

	return c.NoContent(http.StatusNoContent)
}
