package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/config"
	"github.com/defesacivil-sl/boletim/models"
)

// RelatorioFiltro combines the report filters. All are optional; the period
// bounds apply to data_solicitacao.
type RelatorioFiltro struct {
	DataInicio        string
	DataFim           string
	TipoConstrucaoID  string
	ResponsavelID     string
	EncaminhamentoID  string
	BairroID          string
}

func parseRelatorioFiltro(r *http.Request) RelatorioFiltro {
	q := r.URL.Query()
	return RelatorioFiltro{
		DataInicio:       q.Get("data_inicio"),
		DataFim:          q.Get("data_fim"),
		TipoConstrucaoID: q.Get("tipo_construcao_id"),
		ResponsavelID:    q.Get("responsavel_id"),
		EncaminhamentoID: q.Get("encaminhamento_id"),
		BairroID:         q.Get("bairro_id"),
	}
}

func (f RelatorioFiltro) apply(q *gorm.DB) *gorm.DB {
	if f.DataInicio != "" {
		q = q.Where("data_solicitacao >= ?", f.DataInicio)
	}
	if f.DataFim != "" {
		q = q.Where("data_solicitacao <= ?", f.DataFim)
	}
	if f.TipoConstrucaoID != "" {
		q = q.Where("tipo_construcao_id = ?", f.TipoConstrucaoID)
	}
	if f.BairroID != "" {
		q = q.Where("bairro_id = ?", f.BairroID)
	}
	if f.ResponsavelID != "" {
		q = q.Where("responsavel1_id = ? OR responsavel2_id = ?", f.ResponsavelID, f.ResponsavelID)
	}
	if f.EncaminhamentoID != "" {
		q = q.Where("id IN (?)", config.DB.
			Model(&models.BoletimEncaminhamento{}).
			Select("boletim_id").
			Where("encaminhamento_id = ?", f.EncaminhamentoID))
	}
	return q
}

func loadRelatorio(f RelatorioFiltro) ([]models.Boletim, error) {
	var boletins []models.Boletim
	err := f.apply(config.DB.Model(&models.Boletim{})).
		Preload("TipoConstrucao").
		Preload("Bairro").
		Preload("Responsavel1").
		Preload("Responsavel2").
		Preload("Encaminhamentos.Encaminhamento").
		Order("ano DESC, numero DESC").
		Find(&boletins).Error
	return boletins, err
}

// GetRelatorio lists the boletins matching the report filters.
// GET /api/v1/relatorios
func GetRelatorio(w http.ResponseWriter, r *http.Request) {
	boletins, err := loadRelatorio(parseRelatorioFiltro(r))
	if err != nil {
		log.Printf("relatorio: %v", err)
		http.Error(w, "erro ao gerar relatório", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total": len(boletins),
		"data":  boletins,
	})
}

type contagem struct {
	Nome  string `json:"nome"`
	Total int64  `json:"total"`
}

// GetEstatisticas aggregates counts for the dashboard: per year, per month
// of the selected year, per construction type, referral and neighborhood.
// GET /api/v1/relatorios/estatisticas
func GetEstatisticas(w http.ResponseWriter, r *http.Request) {
	ano := time.Now().Year()
	if s := r.URL.Query().Get("ano"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			ano = n
		}
	}

	var porAno []struct {
		Ano   int   `json:"ano"`
		Total int64 `json:"total"`
	}
	if err := config.DB.Model(&models.Boletim{}).
		Select("ano, COUNT(*) AS total").
		Group("ano").
		Order("ano DESC").
		Scan(&porAno).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}

	// month bucketing happens here instead of SQL so the same query runs on
	// any dialect
	var datas []models.DateOnly
	if err := config.DB.Model(&models.Boletim{}).
		Where("ano = ?", ano).
		Pluck("data_solicitacao", &datas).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}
	porMes := make([]int64, 12)
	for _, d := range datas {
		if !d.IsZero() {
			porMes[time.Time(d).Month()-1]++
		}
	}

	var porTipo []contagem
	if err := config.DB.Model(&models.Boletim{}).
		Select("COALESCE(tipos_construcao.nome, 'Não informado') AS nome, COUNT(*) AS total").
		Joins("LEFT JOIN tipos_construcao ON tipos_construcao.id = boletins.tipo_construcao_id").
		Where("boletins.ano = ?", ano).
		Group("tipos_construcao.nome").
		Order("total DESC").
		Scan(&porTipo).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}

	var porBairro []contagem
	if err := config.DB.Model(&models.Boletim{}).
		Select("COALESCE(bairros.nome, 'Não informado') AS nome, COUNT(*) AS total").
		Joins("LEFT JOIN bairros ON bairros.id = boletins.bairro_id").
		Where("boletins.ano = ?", ano).
		Group("bairros.nome").
		Order("total DESC").
		Scan(&porBairro).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}

	var porEncaminhamento []contagem
	if err := config.DB.Model(&models.BoletimEncaminhamento{}).
		Select("encaminhamentos.nome AS nome, COUNT(*) AS total").
		Joins("JOIN encaminhamentos ON encaminhamentos.id = boletim_encaminhamentos.encaminhamento_id").
		Joins("JOIN boletins ON boletins.id = boletim_encaminhamentos.boletim_id").
		Where("boletins.ano = ?", ano).
		Group("encaminhamentos.nome").
		Order("total DESC").
		Scan(&porEncaminhamento).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}

	var recentes []models.Boletim
	if err := config.DB.Model(&models.Boletim{}).
		Preload("Bairro").
		Order("created_at DESC").
		Limit(5).
		Find(&recentes).Error; err != nil {
		http.Error(w, "erro ao gerar estatísticas", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ano":               ano,
		"porAno":            porAno,
		"porMes":            porMes,
		"porTipoConstrucao": porTipo,
		"porBairro":         porBairro,
		"porEncaminhamento": porEncaminhamento,
		"recentes":          recentes,
	})
}
