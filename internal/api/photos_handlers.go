package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/registro/backend/internal/repo"
	"github.com/registro/backend/internal/storage"
	"gorm.io/gorm"
)

// Limite de upload de foto (5MB); acima disso o multipart nem é lido inteiro.
const maxPhotoBytes = 5 << 20

var photoExtByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// UploadPhoto recebe a foto via multipart (campo "photo") e grava no
// namespace da pessoa. Upload novo substitui o anterior.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if h.Store == nil {
		http.Error(w, `{"error":"storage indisponível"}`, http.StatusServiceUnavailable)
		return
	}
	p, err := repo.PersonByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, `{"error":"arquivo muito grande ou multipart inválido"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, `{"error":"campo photo obrigatório"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Tipo pelo conteúdo, não pela extensão enviada.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := photoExtByType[contentType]
	if !ok {
		http.Error(w, `{"error":"formato não suportado (jpeg, png ou webp)"}`, http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	objectPath := fmt.Sprintf("%s/photo-%d.%s", id.String(), time.Now().UnixNano(), ext)
	if err := h.Store.Save(objectPath, file); err != nil {
		log.Printf("[api] salvar foto %s (%s): %v", id, header.Filename, err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	// Remove a foto anterior; falha aqui não desfaz o upload.
	if old := deref(p.PhotoPath); old != "" && old != objectPath {
		if err := h.Store.RemoveAll(old); err != nil {
			log.Printf("[api] remover foto antiga %s: %v", old, err)
		}
	}
	if err := repo.SetPersonPhotoPath(r.Context(), h.DB, id, objectPath); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.invalidatePersonCache(id.String())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Foto atualizada."})
}

// PhotoURL emite uma signed URL de leitura da foto, válida por 10 minutos.
// O app pede uma nova a cada exibição; o objeto nunca é servido sem token.
func (h *Handler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	if h.Signer == nil {
		http.Error(w, `{"error":"storage indisponível"}`, http.StatusServiceUnavailable)
		return
	}
	p, err := repo.PersonByID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if p.PhotoPath == nil || *p.PhotoPath == "" {
		http.Error(w, `{"error":"sem foto"}`, http.StatusNotFound)
		return
	}
	u, err := h.Signer.SignedURL(*p.PhotoPath)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"url":                u,
		"expires_in_seconds": int(storage.SignedURLTTL.Seconds()),
	})
}

var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ServeFile é o endpoint público /files: valida o token da signed URL e
// devolve o objeto. Token inválido ou vencido é sempre 403, sem distinção.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Signer == nil {
		http.Error(w, `{"error":"storage indisponível"}`, http.StatusServiceUnavailable)
		return
	}
	objectPath, err := h.Signer.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	rc, err := h.Store.Open(objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectMissing) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	defer rc.Close()
	ct := contentTypeByExt[strings.ToLower(path.Ext(objectPath))]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "private, max-age=0")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("[api] servir arquivo %s: %v", objectPath, err)
	}
}
