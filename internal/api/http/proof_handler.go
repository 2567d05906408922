package http

import (
	"io"
	"net/http"
	"path/filepath"

	"adrewards-backend/internal/service"
	"adrewards-backend/internal/storage"
)

// ProofHandler serves proof screenshot uploads for the local storage backend
// and hands out upload URLs.
type ProofHandler struct {
	proofSvc service.ProofStorageService
	storage  storage.StorageInterface
}

func NewProofHandler(proofSvc service.ProofStorageService, backend storage.StorageInterface) *ProofHandler {
	return &ProofHandler{proofSvc: proofSvc, storage: backend}
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type uploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	ProofURL  string `json:"proof_url"`
}

// GetUploadURL returns a presigned upload URL plus the public URL the client
// submits with the proof.
func (h *ProofHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	var req uploadURLRequest
	if !decodeBody(w, r, &req) {
		return
	}

	uploadURL, proofURL, err := h.proofSvc.GetUploadURL(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{UploadURL: uploadURL, ProofURL: proofURL})
}

// HandleUpload accepts the PUT the presigned URL points at.
func (h *ProofHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	if err := h.storage.SaveFile(key, r.Body); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"upload-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload streams a stored proof back for review.
func (h *ProofHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.storage.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}
