package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// UploadFotos appends photos to an existing boletim. Files travel under the
// "fotos" multipart field; the whole batch is validated before any upload
// starts.
func (h *BoletimHandler) UploadFotos(w http.ResponseWriter, r *http.Request) {
	boletimID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "formulário multipart inválido", http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["fotos"]) == 0 {
		http.Error(w, "nenhuma foto enviada", http.StatusBadRequest)
		return
	}

	var uploads []FotoUpload
	for _, header := range r.MultipartForm.File["fotos"] {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "erro ao ler arquivo", http.StatusBadRequest)
			return
		}
		conteudo, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "erro ao ler arquivo", http.StatusBadRequest)
			return
		}
		uploads = append(uploads, FotoUpload{
			NomeArquivo: header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Conteudo:    conteudo,
		})
	}

	// validate the batch through the same staging rules as the form
	draft, err := BoletimDraft{}.StageFotos(uploads)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fotos, err := h.svc.AddFotos(r.Context(), boletimID, draft.Fotos)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "boletim não encontrado", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("upload fotos boletim %s: %v", boletimID, err)
		http.Error(w, "erro ao salvar fotos", http.StatusInternalServerError)
		return
	}

	urls := make(map[string]string, len(fotos))
	for _, f := range fotos {
		urls[f.ID.String()] = h.svc.PublicURL(f.CaminhoStorage)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fotos":    fotos,
		"fotoUrls": urls,
	})
}

// ListFotos returns a boletim's photos in display order with resolved URLs.
func (h *BoletimHandler) ListFotos(w http.ResponseWriter, r *http.Request) {
	boletimID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	fotos, err := h.svc.ListFotos(r.Context(), boletimID)
	if err != nil {
		log.Printf("list fotos boletim %s: %v", boletimID, err)
		http.Error(w, "erro ao listar fotos", http.StatusInternalServerError)
		return
	}

	urls := make(map[string]string, len(fotos))
	for _, f := range fotos {
		urls[f.ID.String()] = h.svc.PublicURL(f.CaminhoStorage)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fotos":    fotos,
		"fotoUrls": urls,
	})
}

// DeleteFoto removes one photo from a boletim.
func (h *BoletimHandler) DeleteFoto(w http.ResponseWriter, r *http.Request) {
	fotoID, err := uuid.Parse(mux.Vars(r)["fotoId"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	err = h.svc.DeleteFoto(r.Context(), fotoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "foto não encontrada", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("delete foto %s: %v", fotoID, err)
		http.Error(w, "erro ao excluir foto", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
