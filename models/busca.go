package models

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BuscaLimitePadrao caps list/search results when the caller asks for no
// explicit page size.
const BuscaLimitePadrao = 50

// BuscaBoletins holds the combinable search filters for the boletim list.
// Every filter is optional; empty means "do not restrict".
type BuscaBoletins struct {
	Texto      string   // matched against nome_requerente, cpf and endereco
	Numero     *int     // exact business number
	Ano        *int     // exact year
	DataInicio DateOnly // inclusive lower bound on data_solicitacao
	DataFim    DateOnly // inclusive upper bound on data_solicitacao
	Limite     int
}

// ParseBuscaBoletins reads the search filters from query parameters.
func ParseBuscaBoletins(r *http.Request) (BuscaBoletins, error) {
	q := r.URL.Query()
	busca := BuscaBoletins{
		Texto:  strings.TrimSpace(q.Get("q")),
		Limite: BuscaLimitePadrao,
	}

	if s := q.Get("numero"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return busca, fmt.Errorf("numero inválido: %q", s)
		}
		busca.Numero = &n
	}
	if s := q.Get("ano"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return busca, fmt.Errorf("ano inválido: %q", s)
		}
		busca.Ano = &n
	}
	if s := q.Get("data_inicio"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return busca, fmt.Errorf("data_inicio inválida: %q", s)
		}
		busca.DataInicio = DateOnly(t)
	}
	if s := q.Get("data_fim"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return busca, fmt.Errorf("data_fim inválida: %q", s)
		}
		busca.DataFim = DateOnly(t)
	}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			busca.Limite = n
		}
	}
	return busca, nil
}

// Apply adds the filters to a boletim query. Free text is OR-combined and
// case-insensitive; LOWER/LIKE instead of ILIKE keeps the clause portable
// across postgres and the sqlite test database.
func (f BuscaBoletins) Apply(db *gorm.DB) *gorm.DB {
	if f.Texto != "" {
		pattern := "%" + strings.ToLower(f.Texto) + "%"
		db = db.Where(
			"LOWER(nome_requerente) LIKE ? OR LOWER(cpf) LIKE ? OR LOWER(endereco) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if f.Numero != nil {
		db = db.Where("numero = ?", *f.Numero)
	}
	if f.Ano != nil {
		db = db.Where("ano = ?", *f.Ano)
	}
	if !f.DataInicio.IsZero() {
		db = db.Where("data_solicitacao >= ?", time.Time(f.DataInicio))
	}
	if !f.DataFim.IsZero() {
		db = db.Where("data_solicitacao <= ?", time.Time(f.DataFim))
	}
	limite := f.Limite
	if limite <= 0 {
		limite = BuscaLimitePadrao
	}
	return db.Order("created_at DESC").Limit(limite)
}
