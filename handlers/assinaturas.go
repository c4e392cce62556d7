package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/utils"
)

// UploadAssinaturaResponsavel stores the reusable signature of a responsible
// party. Accepts either a multipart "assinatura" PNG file or a JSON body
// with a base64 payload (how the capture pad submits).
// POST /api/v1/admin/responsaveis/{id}/assinatura
func (h *BoletimHandler) UploadAssinaturaResponsavel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	var png []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			http.Error(w, "formulário multipart inválido", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("assinatura")
		if err != nil {
			http.Error(w, "arquivo de assinatura ausente", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if err := utils.ValidateImageFile(header.Filename, header.Header.Get("Content-Type"), header.Size); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if png, err = io.ReadAll(file); err != nil {
			http.Error(w, "erro ao ler arquivo", http.StatusBadRequest)
			return
		}
	} else {
		var req assinaturaPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "JSON inválido", http.StatusBadRequest)
			return
		}
		if png, err = base64.StdEncoding.DecodeString(req.PNGBase64); err != nil || len(png) == 0 {
			http.Error(w, "assinatura inválida", http.StatusBadRequest)
			return
		}
	}

	url, err := h.svc.SaveAssinaturaResponsavel(r.Context(), id, png)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "responsável não encontrado", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("assinatura responsavel %s: %v", id, err)
		http.Error(w, "erro ao salvar assinatura", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// DeleteAssinaturaResponsavel clears a responsible party's stored signature.
// DELETE /api/v1/admin/responsaveis/{id}/assinatura
func (h *BoletimHandler) DeleteAssinaturaResponsavel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	err = h.svc.DeleteAssinaturaResponsavel(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "responsável não encontrado", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("delete assinatura responsavel %s: %v", id, err)
		http.Error(w, "erro ao excluir assinatura", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
