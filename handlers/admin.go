package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/config"
	"github.com/defesacivil-sl/boletim/middleware"
	"github.com/defesacivil-sl/boletim/models"
)

// GetAllUsers lists operator accounts for the admin panel.
// GET /api/v1/admin/users
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := (page - 1) * limit

	var users []models.User
	if err := config.DB.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		http.Error(w, "erro ao listar usuários", http.StatusInternalServerError)
		return
	}

	var total int64
	if err := config.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		http.Error(w, "erro ao listar usuários", http.StatusInternalServerError)
		return
	}

	out := make([]userPayload, len(users))
	for i, u := range users {
		out[i] = userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  out,
	})
}

// UpdateUserRole promotes or demotes an account.
// PUT /api/v1/admin/users/{id}/role
func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		http.Error(w, "papel inválido", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	res := config.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		http.Error(w, "erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	Sessions.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateUser disables an account without removing it; its boletins keep
// their created_by reference. Admins cannot deactivate themselves.
// DELETE /api/v1/admin/users/{id}
func DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == middleware.GetUserID(r) {
		http.Error(w, "não é possível desativar o próprio usuário", http.StatusBadRequest)
		return
	}

	res := config.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		http.Error(w, "erro ao desativar usuário", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	Sessions.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// Lookup entities share the same admin surface: list (all states, unlike the
// form config which only sees active rows), create, rename, and soft delete
// by flipping situacao. Rows stay so old boletins still resolve their names.

func listLookup(w http.ResponseWriter, r *http.Request, dest interface{}) {
	q := config.DB.Order("nome ASC")
	if s := r.URL.Query().Get("situacao"); s != "" {
		q = q.Where("situacao = ?", s)
	}
	if err := q.Find(dest).Error; err != nil {
		http.Error(w, "erro ao listar cadastros", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": dest})
}

func createLookup(w http.ResponseWriter, r *http.Request, dest interface{}) {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if err := config.DB.Create(dest).Error; err != nil {
		http.Error(w, "erro ao criar cadastro", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dest)
}

// updateLookup applies only the mutable columns; id and timestamps are never
// client-writable.
func updateLookup(w http.ResponseWriter, r *http.Request, model interface{}, cols []string) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	updates := map[string]interface{}{}
	for _, col := range cols {
		if v, ok := body[col]; ok {
			updates[col] = v
		}
	}
	if s, ok := updates["situacao"].(string); ok {
		if s != string(models.SituacaoAtiva) && s != string(models.SituacaoInativa) {
			http.Error(w, "situação inválida", http.StatusBadRequest)
			return
		}
	}
	if len(updates) == 0 {
		http.Error(w, "nada para atualizar", http.StatusBadRequest)
		return
	}

	res := config.DB.Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		http.Error(w, "erro ao atualizar cadastro", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "cadastro não encontrado", http.StatusNotFound)
		return
	}

	if err := config.DB.First(model, "id = ?", id).Error; err != nil {
		http.Error(w, "erro ao atualizar cadastro", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model)
}

func deactivateLookup(w http.ResponseWriter, r *http.Request, model interface{}) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}
	res := config.DB.Model(model).Where("id = ?", id).Update("situacao", models.SituacaoInativa)
	if res.Error != nil {
		http.Error(w, "erro ao desativar cadastro", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "cadastro não encontrado", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func GetTiposConstrucao(w http.ResponseWriter, r *http.Request) {
	listLookup(w, r, &[]models.TipoConstrucao{})
}
func CreateTipoConstrucao(w http.ResponseWriter, r *http.Request) {
	createLookup(w, r, &models.TipoConstrucao{})
}
func UpdateTipoConstrucao(w http.ResponseWriter, r *http.Request) {
	updateLookup(w, r, &models.TipoConstrucao{}, []string{"nome", "situacao"})
}
func DeleteTipoConstrucao(w http.ResponseWriter, r *http.Request) {
	deactivateLookup(w, r, &models.TipoConstrucao{})
}

func GetEncaminhamentos(w http.ResponseWriter, r *http.Request) {
	listLookup(w, r, &[]models.Encaminhamento{})
}
func CreateEncaminhamento(w http.ResponseWriter, r *http.Request) {
	createLookup(w, r, &models.Encaminhamento{})
}
func UpdateEncaminhamento(w http.ResponseWriter, r *http.Request) {
	updateLookup(w, r, &models.Encaminhamento{}, []string{"nome", "situacao"})
}
func DeleteEncaminhamento(w http.ResponseWriter, r *http.Request) {
	deactivateLookup(w, r, &models.Encaminhamento{})
}

func GetResponsaveis(w http.ResponseWriter, r *http.Request) {
	listLookup(w, r, &[]models.Responsavel{})
}
func CreateResponsavel(w http.ResponseWriter, r *http.Request) {
	createLookup(w, r, &models.Responsavel{})
}
func UpdateResponsavel(w http.ResponseWriter, r *http.Request) {
	updateLookup(w, r, &models.Responsavel{}, []string{"nome", "cargo", "situacao"})
}
func DeleteResponsavel(w http.ResponseWriter, r *http.Request) {
	deactivateLookup(w, r, &models.Responsavel{})
}

func GetBairros(w http.ResponseWriter, r *http.Request) {
	listLookup(w, r, &[]models.Bairro{})
}
func CreateBairro(w http.ResponseWriter, r *http.Request) {
	createLookup(w, r, &models.Bairro{})
}
func UpdateBairro(w http.ResponseWriter, r *http.Request) {
	updateLookup(w, r, &models.Bairro{}, []string{"nome", "situacao"})
}
func DeleteBairro(w http.ResponseWriter, r *http.Request) {
	deactivateLookup(w, r, &models.Bairro{})
}

// GetCamposObrigatorios lists the per-field required flags.
// GET /api/v1/admin/campos-obrigatorios
func GetCamposObrigatorios(w http.ResponseWriter, r *http.Request) {
	var campos []models.CampoObrigatorio
	if err := config.DB.Order("campo ASC").Find(&campos).Error; err != nil {
		http.Error(w, "erro ao listar campos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": campos})
}

// UpdateCamposObrigatorios upserts the full map of required flags in one
// request, the way the admin panel saves them.
// PUT /api/v1/admin/campos-obrigatorios
func UpdateCamposObrigatorios(w http.ResponseWriter, r *http.Request) {
	var req map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if len(req) == 0 {
		http.Error(w, "nada para atualizar", http.StatusBadRequest)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for campo, obrigatorio := range req {
			row := models.CampoObrigatorio{Campo: campo, Obrigatorio: obrigatorio}
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, "erro ao salvar campos", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetConfiguracoes lists the key/value settings (default state and
// municipality, optional geofence boundary).
// GET /api/v1/admin/configuracoes
func GetConfiguracoes(w http.ResponseWriter, r *http.Request) {
	var cfgs []models.Configuracao
	if err := config.DB.Order("chave ASC").Find(&cfgs).Error; err != nil {
		http.Error(w, "erro ao listar configurações", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": cfgs})
}

// UpdateConfiguracao upserts one setting.
// PUT /api/v1/admin/configuracoes/{chave}
func UpdateConfiguracao(w http.ResponseWriter, r *http.Request) {
	chave := strings.TrimSpace(mux.Vars(r)["chave"])
	if chave == "" {
		http.Error(w, "chave inválida", http.StatusBadRequest)
		return
	}
	var req struct {
		Valor string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	row := models.Configuracao{Chave: chave, Valor: req.Valor}
	if err := config.DB.Save(&row).Error; err != nil {
		http.Error(w, "erro ao salvar configuração", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(row)
}
