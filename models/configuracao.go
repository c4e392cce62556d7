package models

import (
	"time"
)

// CampoObrigatorio configures which optional form fields the UI must treat
// as mandatory. This is presentation-layer configuration only; nothing here
// is enforced when writing boletins.
type CampoObrigatorio struct {
	Campo       string    `gorm:"size:100;primaryKey" json:"campo"`
	Obrigatorio bool      `gorm:"not null;default:false" json:"obrigatorio"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (CampoObrigatorio) TableName() string { return "campos_obrigatorios" }

// Configuracao is a key/value system setting (default municipality, report
// header text, etc.).
type Configuracao struct {
	Chave     string    `gorm:"size:100;primaryKey" json:"chave"`
	Valor     string    `gorm:"type:text" json:"valor"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Configuracao) TableName() string { return "configuracoes" }
