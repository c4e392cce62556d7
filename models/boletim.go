package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormatNumeroBoletim renders a business key as "numero/ano", e.g. "12/2025".
func FormatNumeroBoletim(numero, ano int) string {
	return fmt.Sprintf("%d/%d", numero, ano)
}

// Boletim is one civil-defense inspection report ("Boletim de Atendimento").
// The business key is (Numero, Ano); the uuid is the system identifier.
type Boletim struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Numero int       `gorm:"not null;uniqueIndex:idx_boletim_numero_ano" json:"numero"`
	Ano    int       `gorm:"not null;uniqueIndex:idx_boletim_numero_ano" json:"ano"`

	// Identificação do requerente
	UF                        string     `gorm:"size:2;not null" json:"uf"`
	Municipio                 string     `gorm:"size:100;not null" json:"municipio"`
	NomeRequerente            string     `gorm:"size:255;not null" json:"nomeRequerente"`
	CPF                       string     `gorm:"size:14" json:"cpf,omitempty"`
	RG                        string     `gorm:"size:20" json:"rg,omitempty"`
	DataNascimento            DateOnly   `gorm:"type:date" json:"dataNascimento,omitempty"`
	Endereco                  string     `gorm:"type:text" json:"endereco,omitempty"`
	BairroID                  *uuid.UUID `gorm:"type:uuid" json:"bairroId,omitempty"`
	Bairro                    *Bairro    `gorm:"foreignKey:BairroID" json:"bairro,omitempty"`
	Telefone                  string     `gorm:"size:20" json:"telefone,omitempty"`
	ObservacoesIdentificacao  string     `gorm:"type:text" json:"observacoesIdentificacao,omitempty"`

	// Solicitação
	DataSolicitacao    DateOnly `gorm:"type:date;not null;index" json:"dataSolicitacao"`
	HorarioSolicitacao string   `gorm:"size:5;not null" json:"horarioSolicitacao"`
	Solicitacao        string   `gorm:"type:text;not null" json:"solicitacao"`

	// Constatações e diagnóstico
	Relatorio   string `gorm:"type:text;not null" json:"relatorio"`
	Diagnostico string `gorm:"type:text" json:"diagnostico,omitempty"`

	TipoConstrucaoID *uuid.UUID      `gorm:"type:uuid" json:"tipoConstrucaoId,omitempty"`
	TipoConstrucao   *TipoConstrucao `gorm:"foreignKey:TipoConstrucaoID" json:"tipoConstrucao,omitempty"`

	OutrosEncaminhamento string `gorm:"size:255" json:"outrosEncaminhamento,omitempty"`

	// Vistoria
	DataVistoria  DateOnly `gorm:"type:date;not null" json:"dataVistoria"`
	FeitoRegistro bool     `gorm:"default:false" json:"feitoRegistro"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`

	Responsavel1ID *uuid.UUID   `gorm:"type:uuid" json:"responsavel1Id,omitempty"`
	Responsavel1   *Responsavel `gorm:"foreignKey:Responsavel1ID" json:"responsavel1,omitempty"`
	Responsavel2ID *uuid.UUID   `gorm:"type:uuid" json:"responsavel2Id,omitempty"`
	Responsavel2   *Responsavel `gorm:"foreignKey:Responsavel2ID" json:"responsavel2,omitempty"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Encaminhamentos []BoletimEncaminhamento `gorm:"foreignKey:BoletimID;constraint:OnDelete:CASCADE" json:"encaminhamentos,omitempty"`
	Fotos           []Foto                  `gorm:"foreignKey:BoletimID;constraint:OnDelete:CASCADE" json:"fotos,omitempty"`
	Assinaturas     []Assinatura            `gorm:"foreignKey:BoletimID;constraint:OnDelete:CASCADE" json:"assinaturas,omitempty"`
}

func (Boletim) TableName() string { return "boletins" }

func (b *Boletim) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// BoletimEncaminhamento is one row of the boletim<->encaminhamento join.
// The set for a boletim is replaced wholesale on every save, never diffed.
type BoletimEncaminhamento struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BoletimID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"boletimId"`
	EncaminhamentoID uuid.UUID       `gorm:"type:uuid;not null" json:"encaminhamentoId"`
	Encaminhamento   *Encaminhamento `gorm:"foreignKey:EncaminhamentoID" json:"encaminhamento,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (BoletimEncaminhamento) TableName() string { return "boletim_encaminhamentos" }

func (be *BoletimEncaminhamento) BeforeCreate(tx *gorm.DB) (err error) {
	if be.ID == uuid.Nil {
		be.ID = uuid.New()
	}
	return
}

// NumeroCompleto renders the business key the way it is printed on the form.
func (b *Boletim) NumeroCompleto() string {
	return FormatNumeroBoletim(b.Numero, b.Ano)
}
