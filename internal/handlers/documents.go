package handlers

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/format"
	"github.com/gperojohn83-art/Construction/internal/media/sniffer"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/service"
)

type documentResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	SizeBytes  int64     `json:"sizeBytes"`
	SizeLabel  string    `json:"sizeLabel"`
	Checksum   string    `json:"checksum"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toDocument(d models.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		ProjectID:  d.ProjectID,
		Name:       d.Name,
		Format:     d.Format,
		SizeBytes:  d.SizeBytes,
		SizeLabel:  format.Bytes(d.SizeBytes),
		Checksum:   hex.EncodeToString(d.Checksum),
		UploadedBy: d.UploadedBy,
		CreatedAt:  d.CreatedAt,
	}
}

func (h HandlerSet) UploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	doc, err := h.Documents.Upload(c.Request.Context(), currentSession(c), service.UploadInput{
		ProjectID:    c.Param("id"),
		Filename:     header.Filename,
		DeclaredType: sniffer.MimeTypeFromHTTP(http.Header(header.Header)),
		File:         file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": toDocument(doc)})
}

func (h HandlerSet) ListDocuments(c *gin.Context) {
	docs, err := h.Documents.List(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, toDocument(d))
	}
	c.JSON(http.StatusOK, gin.H{"documents": items})
}

func (h HandlerSet) DocumentURL(c *gin.Context) {
	link, err := h.Documents.DownloadURL(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link.URL, "expiresAt": link.ExpiresAt})
}
