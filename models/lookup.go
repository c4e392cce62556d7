package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Situacao is the lifecycle state of a lookup entity. Lookups referenced by
// existing boletins are never hard-deleted; deactivation keeps the row so
// old records still resolve their names.
type Situacao string

const (
	SituacaoAtiva   Situacao = "ativa"
	SituacaoInativa Situacao = "inativa"
)

// TipoConstrucao classifies the inspected construction (alvenaria, madeira, mista...).
type TipoConstrucao struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"size:100;not null" json:"nome"`
	Situacao  Situacao  `gorm:"size:20;not null;default:ativa" json:"situacao"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TipoConstrucao) TableName() string { return "tipos_construcao" }

func (t *TipoConstrucao) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Situacao == "" {
		t.Situacao = SituacaoAtiva
	}
	return
}

// Encaminhamento is a categorical next-action tag attachable to boletins
// (Assistência Social, Interdição, Obras...).
type Encaminhamento struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"size:100;not null" json:"nome"`
	Situacao  Situacao  `gorm:"size:20;not null;default:ativa" json:"situacao"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Encaminhamento) TableName() string { return "encaminhamentos" }

func (e *Encaminhamento) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Situacao == "" {
		e.Situacao = SituacaoAtiva
	}
	return
}

// Responsavel is a staff member assignable to boletins. The stored signature
// is reused across records: boletins reference the responsavel and the
// signature is dereferenced at render time, never copied onto the record.
type Responsavel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nome            string    `gorm:"size:100;not null" json:"nome"`
	Cargo           string    `gorm:"size:100" json:"cargo"`
	AssinaturaPath  string    `gorm:"size:500" json:"assinaturaPath,omitempty"`
	Situacao        Situacao  `gorm:"size:20;not null;default:ativa" json:"situacao"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Responsavel) TableName() string { return "responsaveis" }

func (r *Responsavel) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Situacao == "" {
		r.Situacao = SituacaoAtiva
	}
	return
}

// Bairro is a neighborhood of the municipality.
type Bairro struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"size:100;not null" json:"nome"`
	Situacao  Situacao  `gorm:"size:20;not null;default:ativa" json:"situacao"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Bairro) TableName() string { return "bairros" }

func (b *Bairro) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Situacao == "" {
		b.Situacao = SituacaoAtiva
	}
	return
}
