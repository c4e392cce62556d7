package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/middleware"
	"github.com/defesacivil-sl/boletim/models"
)

// BoletimHandler exposes the record lifecycle over HTTP.
type BoletimHandler struct {
	svc *BoletimService
}

func NewBoletimHandler(svc *BoletimService) *BoletimHandler {
	return &BoletimHandler{svc: svc}
}

// boletimRequest is the wire form of a create/update submission. In
// multipart requests it travels in the "dados" form field, with photo files
// under "fotos".
type boletimRequest struct {
	Numero          int                 `json:"numero,omitempty"`
	Ano             int                 `json:"ano,omitempty"`
	Campos          map[string]string   `json:"campos"`
	Encaminhamentos []string            `json:"encaminhamentos,omitempty"`
	Assinatura      *assinaturaPayload  `json:"assinatura,omitempty"`
}

type assinaturaPayload struct {
	PNGBase64 string                 `json:"pngBase64"`
	Metadados map[string]interface{} `json:"metadados,omitempty"`
}

// decodeBoletimRequest reads either a JSON body or a multipart form with
// staged photo files.
func decodeBoletimRequest(r *http.Request) (boletimRequest, []FotoUpload, error) {
	var req boletimRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// photo staging caps each file at 2 MiB, so 32 MiB bounds the form
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return req, nil, errors.New("formulário multipart inválido")
		}
		if err := json.Unmarshal([]byte(r.FormValue("dados")), &req); err != nil {
			return req, nil, errors.New("campo dados inválido")
		}

		var uploads []FotoUpload
		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["fotos"] {
				f, err := header.Open()
				if err != nil {
					return req, nil, err
				}
				conteudo, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return req, nil, err
				}
				uploads = append(uploads, FotoUpload{
					NomeArquivo: header.Filename,
					ContentType: header.Header.Get("Content-Type"),
					Conteudo:    conteudo,
				})
			}
		}
		return req, uploads, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, errors.New("JSON inválido")
	}
	return req, nil, nil
}

// buildDraft replays the submission through the draft transitions.
func buildDraft(req boletimRequest, uploads []FotoUpload) (BoletimDraft, error) {
	draft := BoletimDraft{Campos: map[string]string{}}
	for nome, valor := range req.Campos {
		draft = draft.ComCampo(nome, valor)
	}
	for _, raw := range req.Encaminhamentos {
		id, err := uuid.Parse(raw)
		if err != nil {
			return draft, errors.New("encaminhamento inválido: " + raw)
		}
		draft = draft.ToggleEncaminhamento(id)
	}

	if len(uploads) > 0 {
		var err error
		draft, err = draft.StageFotos(uploads)
		if err != nil {
			return draft, err
		}
	}

	if req.Assinatura != nil && req.Assinatura.PNGBase64 != "" {
		png, err := base64.StdEncoding.DecodeString(req.Assinatura.PNGBase64)
		if err != nil {
			return draft, errors.New("assinatura inválida")
		}
		draft = draft.ComAssinatura(png, req.Assinatura.Metadados)
	}
	return draft, nil
}

// NewBoletimDefaults primes a create-mode form: next number for the current
// year plus configured defaults.
func (h *BoletimHandler) NewBoletimDefaults(w http.ResponseWriter, r *http.Request) {
	ano := time.Now().Year()
	if s := r.URL.Query().Get("ano"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			ano = n
		}
	}

	numero, err := h.svc.NextNumero(r.Context(), ano)
	if err != nil {
		http.Error(w, "erro ao buscar próximo número", http.StatusInternalServerError)
		return
	}

	draft := NovoDraft(h.svc.configValor(r.Context(), "uf_padrao", "RS"),
		h.svc.configValor(r.Context(), "municipio_padrao", "São Leopoldo"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"numero": numero,
		"ano":    ano,
		"campos": draft.Campos,
	})
}

// GetFormConfig serves the dependent lookup data the form needs before it
// is interactive.
func (h *BoletimHandler) GetFormConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.LoadFormConfig(r.Context())
	if err != nil {
		log.Printf("form config: %v", err)
		http.Error(w, "erro ao carregar configurações do sistema", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// CreateBoletim runs the create commit. A business-key collision answers
// 409 without writing anything; failures after the record insert answer 500
// with the record left in its partial state.
func (h *BoletimHandler) CreateBoletim(w http.ResponseWriter, r *http.Request) {
	req, uploads, err := decodeBoletimRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	draft, err := buildDraft(req, uploads)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ano := req.Ano
	if ano == 0 {
		ano = time.Now().Year()
	}
	numero := req.Numero
	if numero == 0 {
		if numero, err = h.svc.NextNumero(r.Context(), ano); err != nil {
			http.Error(w, "erro ao buscar próximo número", http.StatusInternalServerError)
			return
		}
	}

	var criadoPor *uuid.UUID
	if id, err := uuid.Parse(middleware.GetUserID(r)); err == nil {
		criadoPor = &id
	}

	b, err := h.svc.Create(r.Context(), draft, numero, ano, criadoPor)
	switch {
	case errors.Is(err, ErrNumeroDuplicado):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		log.Printf("create boletim %d/%d: %v", numero, ano, err)
		http.Error(w, "erro ao salvar boletim", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"boletim": b}
	if !h.svc.VerificaGeofence(r.Context(), b) {
		resp["foraDoLimite"] = true
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// UpdateBoletim maps a submission onto an existing record and replaces its
// referral set.
func (h *BoletimHandler) UpdateBoletim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	req, _, err := decodeBoletimRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	draft, err := buildDraft(req, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Update(r.Context(), id, draft)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "boletim não encontrado", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("update boletim %s: %v", id, err)
		http.Error(w, "erro ao salvar boletim", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"boletim": b})
}

// GetBoletim serves the full record in the shape the edit form binds to:
// the record with joins, the flattened referral id list, and resolved
// display URLs for photos and signatures.
func (h *BoletimHandler) GetBoletim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "boletim não encontrado", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("get boletim %s: %v", id, err)
		http.Error(w, "erro ao carregar dados do boletim", http.StatusInternalServerError)
		return
	}

	encaminhamentoIDs := make([]uuid.UUID, 0, len(b.Encaminhamentos))
	for _, be := range b.Encaminhamentos {
		encaminhamentoIDs = append(encaminhamentoIDs, be.EncaminhamentoID)
	}

	fotoURLs := make(map[string]string, len(b.Fotos))
	for _, f := range b.Fotos {
		fotoURLs[f.ID.String()] = h.svc.PublicURL(f.CaminhoStorage)
	}
	assinaturaURLs := make(map[string]string, len(b.Assinaturas))
	for _, a := range b.Assinaturas {
		assinaturaURLs[a.ID.String()] = h.svc.PublicURL(a.CaminhoStorage)
	}

	resp := map[string]interface{}{
		"boletim":           b,
		"encaminhamentoIds": encaminhamentoIDs,
		"fotoUrls":          fotoURLs,
		"assinaturaUrls":    assinaturaURLs,
	}
	if b.Responsavel1ID != nil {
		url, _ := h.svc.ResolveAssinaturaResponsavel(r.Context(), b.Responsavel1ID.String())
		resp["assinaturaResponsavel1Url"] = url
	}
	if b.Responsavel2ID != nil {
		url, _ := h.svc.ResolveAssinaturaResponsavel(r.Context(), b.Responsavel2ID.String())
		resp["assinaturaResponsavel2Url"] = url
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SearchBoletins lists records under the combinable filters.
func (h *BoletimHandler) SearchBoletins(w http.ResponseWriter, r *http.Request) {
	busca, err := models.ParseBuscaBoletins(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	boletins, err := h.svc.Search(r.Context(), busca)
	if err != nil {
		log.Printf("search boletins: %v", err)
		http.Error(w, "erro ao buscar boletins", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total": len(boletins),
		"data":  boletins,
	})
}

// DeleteBoletim removes a record with its dependents.
func (h *BoletimHandler) DeleteBoletim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	err = h.svc.Delete(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "boletim não encontrado", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("delete boletim %s: %v", id, err)
		http.Error(w, "erro ao excluir boletim", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAssinaturaResponsavel resolves the displayable signature URL for one
// responsible party ("" clears the slot on the client).
func (h *BoletimHandler) GetAssinaturaResponsavel(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ResolveAssinaturaResponsavel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		log.Printf("resolve assinatura: %v", err)
		http.Error(w, "erro ao carregar assinatura", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
