package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apidocs "github.com/prepmate/prepmate/internal/api/documents"
	"github.com/prepmate/prepmate/internal/chunker"
	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/models"
	"github.com/prepmate/prepmate/internal/parsing"
	"github.com/prepmate/prepmate/internal/storage"
	"github.com/prepmate/prepmate/pkg/utils"
)

// DefaultMaxFileSize caps uploads at 2MB.
const DefaultMaxFileSize = 2 * 1024 * 1024

type DocumentHandler struct {
	Store         db.Store
	Files         storage.Store
	Log           *zap.Logger
	MaxFileSize   int64
	WordsPerChunk int
}

// Upload accepts a multipart PDF under field "resume" or "jd", stores the
// raw file, extracts and chunks its text, and replaces any existing
// document of the same type for this user.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	maxSize := h.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		sendError(w, http.StatusBadRequest, msgFileTooLarge)
		return
	}

	file, header, docType, ok := pickUpload(r)
	if !ok {
		sendError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	if !parsing.IsPDF(header.Filename) {
		sendError(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}
	if header.Size > maxSize {
		sendError(w, http.StatusBadRequest, msgFileTooLarge)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.Log.Error("reading upload failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	key := uuid.NewString() + ".pdf"
	if err := h.Files.Put(r.Context(), key, &buf); err != nil {
		h.Log.Error("storing upload failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	// Extract from the stored bytes so a failed write never leaves a
	// document referencing a missing file.
	stored, err := h.Files.Get(r.Context(), key)
	if err != nil {
		h.Log.Error("reading stored upload failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	text, err := parsing.ExtractTextFromPDF(stored)
	if err != nil || strings.TrimSpace(text) == "" {
		h.discardFile(r, key)
		if err != nil {
			h.Log.Warn("pdf extraction failed", zap.Error(err))
		}
		sendError(w, http.StatusUnprocessableEntity, msgExtractionFailed)
		return
	}

	chunkTexts := chunker.Chunk(text, h.WordsPerChunk)
	chunks := make([]models.Chunk, len(chunkTexts))
	for i, t := range chunkTexts {
		chunks[i] = models.Chunk{Position: i, Text: t}
	}

	// Replace any prior document of this type, file included.
	if old, err := h.Store.GetDocumentByType(r.Context(), userID, docType); err == nil {
		h.discardFile(r, old.StorageKey)
		if err := h.Store.DeleteDocument(r.Context(), old.ID, userID); err != nil && !errors.Is(err, db.ErrNotFound) {
			h.Log.Error("replacing old document failed", zap.Error(err))
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		h.discardFile(r, key)
		h.Log.Error("old document lookup failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       docType,
		FileName:   header.Filename,
		FileSize:   header.Size,
		StorageKey: key,
		Chunks:     chunks,
	}

	if err := h.Store.CreateDocument(r.Context(), doc); err != nil {
		h.discardFile(r, key)
		h.Log.Error("document insert failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	h.Log.Info("document uploaded",
		zap.String("user_id", userID),
		zap.String("doc_id", doc.ID),
		zap.String("type", string(docType)),
		zap.String("size", utils.FormatFileSize(header.Size)),
		zap.Int("chunks", len(chunks)),
	)

	sendSuccess(w, http.StatusCreated, msgUploadSuccess, apidocs.UploadResponse{
		DocID:       doc.ID,
		FileName:    doc.FileName,
		Type:        string(doc.Type),
		ChunksCount: len(chunks),
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	docs, err := h.Store.ListDocuments(r.Context(), userID)
	if err != nil {
		h.Log.Error("listing documents failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	summaries := make([]apidocs.DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = apidocs.DocumentSummary{
			ID:        doc.ID,
			Type:      string(doc.Type),
			FileName:  doc.FileName,
			FileSize:  doc.FileSize,
			CreatedAt: doc.CreatedAt.Format(time.RFC3339),
		}
	}

	sendSuccess(w, http.StatusOK, msgDocumentsFetched, summaries)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	id := r.PathValue("id")

	doc, err := h.Store.GetDocument(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, http.StatusNotFound, msgDocumentNotFound)
			return
		}
		h.Log.Error("document lookup failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	h.discardFile(r, doc.StorageKey)

	if err := h.Store.DeleteDocument(r.Context(), id, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, http.StatusNotFound, msgDocumentNotFound)
			return
		}
		h.Log.Error("document delete failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	h.Log.Info("document deleted", zap.String("user_id", userID), zap.String("doc_id", id))
	sendSuccess(w, http.StatusOK, msgDeleteSuccess, nil)
}

// discardFile best-effort removes a stored file; a leaked blob is logged,
// never surfaced.
func (h *DocumentHandler) discardFile(r *http.Request, key string) {
	if key == "" {
		return
	}
	if err := h.Files.Delete(r.Context(), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.Log.Warn("discarding stored file failed", zap.String("key", key), zap.Error(err))
	}
}

// pickUpload returns whichever of the two accepted multipart fields is
// present, preferring "resume" when both are.
func pickUpload(r *http.Request) (multipart.File, *multipart.FileHeader, models.DocumentType, bool) {
	if file, header, err := r.FormFile("resume"); err == nil {
		return file, header, models.DocumentTypeResume, true
	}
	if file, header, err := r.FormFile("jd"); err == nil {
		return file, header, models.DocumentTypeJD, true
	}
	return nil, nil, "", false
}
