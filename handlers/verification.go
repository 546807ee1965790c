package handlers

import (
	"net/http"
	"strconv"

	"lexassist/models"
	"lexassist/services/lawyer"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the document size limit.
const multipartOverhead = 1 << 20

type VerificationHandler struct {
	LawyerService lawyer.LawyerService
}

// UploadDocumentHandler handles multipart POST /api/verification/documents
// with fields "kind" and "file".
func (h *VerificationHandler) UploadDocumentHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, lawyer.MaxDocumentSize+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fh.Size > lawyer.MaxDocumentSize {
		respondError(c, lawyer.ErrFileTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	doc, err := h.LawyerService.UploadDocument(c.Request.Context(), currentUserID(c), c.PostForm("kind"), fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *VerificationHandler) SubmitHandler(c *gin.Context) {
	var req models.VerificationSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vr, err := h.LawyerService.Submit(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vr)
}

// MineHandler returns the caller's latest request; 404 when there is none.
func (h *VerificationHandler) MineHandler(c *gin.Context) {
	vr, err := h.LawyerService.Mine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if vr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no verification request"})
		return
	}
	c.JSON(http.StatusOK, vr)
}

func (h *VerificationHandler) QueueHandler(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.LawyerService.Queue(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(items, total, page))
}

func (h *VerificationHandler) ReviewHandler(c *gin.Context) {
	var req models.VerificationDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vr, err := h.LawyerService.Review(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vr)
}

// DocumentHandler returns a short-lived signed link to one document.
func (h *VerificationHandler) DocumentHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, lawyer.ErrDocumentNotFound)
		return
	}
	link, err := h.LawyerService.DocumentURL(c.Request.Context(), actorFrom(c), c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link, "expiresIn": int(lawyer.DocumentURLTTL.Seconds())})
}
