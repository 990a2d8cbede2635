// Attachment HTTP handlers.
//
// Attachments bind an uploaded file to any entity by (entityType, entityID).
// The binary content is written to the key-value layer under a blob key; the
// attachment record only carries metadata plus that key. Deleting the record
// releases the blob through the store's release hook.
//
//   - POST   /attachments                  (multipart upload)
//   - GET    /attachments                  (list by entity)
//   - GET    /attachments/{id}/content     (download)
//   - DELETE /attachments/{id}
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/kv"
)

// maxAttachmentBytes caps one uploaded file. The router's global body limit
// is raised for the upload route; this is the per-file ceiling.
const maxAttachmentBytes = 8 << 20

// UploadAttachment stores a multipart file upload and its metadata.
// Form fields: entity_type, entity_id, category; file field: file.
func (h *Handlers) UploadAttachment(c *gin.Context) {
	entityType := c.PostForm("entity_type")
	entityID := c.PostForm("entity_id")
	if entityType == "" || entityID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "entity_type and entity_id are required")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file field is required")
		return
	}
	if fh.Size > maxAttachmentBytes {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "file exceeds the upload limit")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "cannot read upload")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "cannot read upload")
		return
	}

	ctx := c.Request.Context()
	att := h.app.Attachments.Add(ctx, func(a *domain.Attachment) {
		a.EntityType = entityType
		a.EntityID = entityID
		a.Category = c.PostForm("category")
		a.FileName = fh.Filename
		a.ContentType = fh.Header.Get("Content-Type")
		a.Size = fh.Size
		a.BlobKey = string(kv.BlobKey(a.ID))
	})

	if err := h.app.Blobs.Set(ctx, kv.Key(att.BlobKey), content); err != nil {
		// Roll the metadata back; an attachment without content is useless.
		h.app.Attachments.Delete(ctx, att.ID)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "cannot store file content")
		return
	}
	ok(c, http.StatusCreated, att)
}

// ListAttachments lists attachment metadata for one entity
// (entity_type + entity_id query params).
func (h *Handlers) ListAttachments(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")

	items := h.app.Attachments.Filter(func(a *domain.Attachment) bool {
		if entityType != "" && a.EntityType != entityType {
			return false
		}
		if entityID != "" && a.EntityID != entityID {
			return false
		}
		return true
	})
	ok(c, http.StatusOK, gin.H{"attachments": items})
}

// DownloadAttachment streams the attachment's binary content.
func (h *Handlers) DownloadAttachment(c *gin.Context) {
	att, found := h.app.Attachments.Find(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "attachment not found")
		return
	}

	content, present, err := h.app.Blobs.Get(c.Request.Context(), kv.Key(att.BlobKey))
	if err != nil || !present {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "attachment content not found")
		return
	}

	ct := att.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	c.Data(http.StatusOK, ct, content)
}

// DeleteAttachment removes the attachment record; the store's release hook
// deletes the blob.
func (h *Handlers) DeleteAttachment(c *gin.Context) {
	if !h.app.Attachments.Delete(c.Request.Context(), c.Param("id")) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "attachment not found")
		return
	}
	noContent(c)
}
