package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/docsniff"
	"studyhub/client/internal/models"
)

const maxUploadBytes = 50 << 20

func (h HandlerSet) UploadView(c *gin.Context) {
	cats, err := h.api.Categories(c.Request.Context())
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("load categories failed")
		cats = []models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"view": "upload", "categories": cats})
}

func (h HandlerSet) UploadDocument(c *gin.Context) {
	title := c.PostForm("title")
	categoryID, err := strconv.ParseInt(c.PostForm("categoryId"), 10, 64)
	if title == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and categoryId required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Tệp quá lớn (tối đa 50MB)."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	result, head, err := docsniff.Detect(file)
	if err != nil {
		if errors.Is(err, docsniff.ErrUnknownType) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "Định dạng tệp không được hỗ trợ.",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	if result.Avatar() {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "Vui lòng tải lên tài liệu học tập, không phải hình ảnh.",
		})
		return
	}

	rest, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	content := append(head, rest...)

	doc, err := h.api.UploadDocument(c.Request.Context(), title, categoryID,
		fileHeader.Filename, result.MIME, content)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.log.Error().Err(err).Str("file", fileHeader.Filename).Msg("upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tải lên thất bại. Vui lòng thử lại."})
		return
	}

	h.log.Info().Int64("document_id", doc.ID).Str("type", string(result.Type)).
		Msg("document uploaded")
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}
