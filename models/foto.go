package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Foto is a photo attached to a persisted boletim. Rows only exist after the
// owning boletim does; before that, uploads live as provisional entries in
// the form draft and never touch this table.
type Foto struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoletimID      uuid.UUID `gorm:"type:uuid;not null;index" json:"boletimId"`
	NomeArquivo    string    `gorm:"size:255;not null" json:"nomeArquivo"`
	CaminhoStorage string    `gorm:"size:500;not null" json:"caminhoStorage"`
	Ordem          int       `gorm:"not null;default:0" json:"ordem"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Foto) TableName() string { return "fotos" }

func (f *Foto) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// Assinatura is the requester's signature captured for one boletim.
// Responsible-party signatures are not stored here; they live on the
// Responsavel row and are resolved at render time.
type Assinatura struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BoletimID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"boletimId"`
	Tipo           string         `gorm:"size:20;not null;default:requerente" json:"tipo"`
	CaminhoStorage string         `gorm:"size:500;not null" json:"caminhoStorage"`
	Metadados      datatypes.JSON `gorm:"type:jsonb" json:"metadados,omitempty"` // capture info: canvas size, device
	CreatedAt      time.Time      `json:"createdAt"`
}

func (Assinatura) TableName() string { return "assinaturas" }

func (a *Assinatura) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
