package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"studymate/internal/app"
	"studymate/internal/transport/http/response"
)

type DocumentHandler struct {
	documents *app.DocumentService
	maxBytes  int64
}

func NewDocumentHandler(documents *app.DocumentService, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &DocumentHandler{documents: documents, maxBytes: maxBytes}
}

// Upload accepts a multipart form with "file" (PDF) and an optional "title".
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
			fmt.Sprintf("file too large (max %d MB)", h.maxBytes>>20))
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.documents.Upload(c.Request.Context(), app.UploadInput{
		FileName:    file.Filename,
		Title:       c.PostForm("title"),
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(c, "upload", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Upload successful",
		"document": result.Document,
		"chunks":   result.Chunks,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		writeError(c, "list documents", err)
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get document", err)
		return
	}
	response.OK(c, doc)
}

// Stream returns the stored file inline as application/pdf.
func (h *DocumentHandler) Stream(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	doc, data, err := h.documents.Open(c.Request.Context(), id)
	if err != nil {
		writeError(c, "stream document", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		writeError(c, "delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "Document deleted",
		"deleted_document_id": id,
	})
}

func (h *DocumentHandler) Reindex(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	result, err := h.documents.Reindex(c.Request.Context(), id)
	if err != nil {
		writeError(c, "reindex document", err)
		return
	}
	response.OK(c, result)
}
