package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/defesacivil-sl/boletim/models"
	"github.com/defesacivil-sl/boletim/utils"
)

// BoletimDraft is the in-progress form state for one boletim, owned by the
// active editing session until Commit hands the record to the database.
// All transitions go through the intent methods below; each returns an
// updated copy, so transitions are deterministic and testable without an
// HTTP harness.
type BoletimDraft struct {
	Campos          map[string]string
	Encaminhamentos []uuid.UUID
	Fotos           []FotoProvisoria
	Assinatura      *AssinaturaCaptura
}

// FotoProvisoria is a photo staged before the owning boletim exists. The ID
// is synthetic and local to the draft; it is never persisted.
type FotoProvisoria struct {
	ID          uuid.UUID
	NomeArquivo string
	ContentType string
	Conteudo    []byte
}

// AssinaturaCaptura is the requester signature captured during the session.
type AssinaturaCaptura struct {
	PNG       []byte
	Metadados map[string]interface{}
}

// FotoUpload is one file coming off the wire, before staging validation.
type FotoUpload struct {
	NomeArquivo string
	ContentType string
	Conteudo    []byte
}

// NovoDraft primes a create-mode draft with today's date/time and the
// configured state/municipality defaults.
func NovoDraft(uf, municipio string) BoletimDraft {
	agora := time.Now()
	return BoletimDraft{
		Campos: map[string]string{
			"uf":                  uf,
			"municipio":           municipio,
			"data_solicitacao":    agora.Format("2006-01-02"),
			"horario_solicitacao": agora.Format("15:04"),
			"data_vistoria":       agora.Format("2006-01-02"),
			"feito_registro":      "false",
		},
	}
}

// ComCampo records a field change.
func (d BoletimDraft) ComCampo(nome, valor string) BoletimDraft {
	campos := make(map[string]string, len(d.Campos)+1)
	for k, v := range d.Campos {
		campos[k] = v
	}
	campos[nome] = valor
	d.Campos = campos
	return d
}

// ToggleEncaminhamento adds the referral when absent and removes it when
// present.
func (d BoletimDraft) ToggleEncaminhamento(id uuid.UUID) BoletimDraft {
	out := make([]uuid.UUID, 0, len(d.Encaminhamentos)+1)
	found := false
	for _, e := range d.Encaminhamentos {
		if e == id {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		out = append(out, id)
	}
	d.Encaminhamentos = out
	return d
}

// StageFotos validates and stages a batch of uploads. Validation failure
// aborts the whole batch at the first bad file and leaves the draft
// unchanged; the error names the file and the reason.
func (d BoletimDraft) StageFotos(files []FotoUpload) (BoletimDraft, error) {
	staged := make([]FotoProvisoria, 0, len(files))
	for _, f := range files {
		if err := utils.ValidateImageFile(f.NomeArquivo, f.ContentType, int64(len(f.Conteudo))); err != nil {
			return d, err
		}
		staged = append(staged, FotoProvisoria{
			ID:          uuid.New(),
			NomeArquivo: f.NomeArquivo,
			ContentType: f.ContentType,
			Conteudo:    f.Conteudo,
		})
	}
	fotos := make([]FotoProvisoria, 0, len(d.Fotos)+len(staged))
	fotos = append(fotos, d.Fotos...)
	fotos = append(fotos, staged...)
	d.Fotos = fotos
	return d, nil
}

// RemoveFoto drops one staged photo by its synthetic id.
func (d BoletimDraft) RemoveFoto(id uuid.UUID) BoletimDraft {
	fotos := make([]FotoProvisoria, 0, len(d.Fotos))
	for _, f := range d.Fotos {
		if f.ID == id {
			continue
		}
		fotos = append(fotos, f)
	}
	d.Fotos = fotos
	return d
}

// ComAssinatura records the captured requester signature.
func (d BoletimDraft) ComAssinatura(png []byte, metadados map[string]interface{}) BoletimDraft {
	d.Assinatura = &AssinaturaCaptura{PNG: png, Metadados: metadados}
	return d
}

func (d BoletimDraft) campo(nome string) string {
	return strings.TrimSpace(d.Campos[nome])
}

// ToBoletim maps the form field representation onto the stored
// representation: empty foreign-key selections become nil, uuid strings are
// parsed, date fields go from "2006-01-02" to DateOnly. numero/ano carry the
// business key assigned by the caller.
func (d BoletimDraft) ToBoletim(numero, ano int, criadoPor *uuid.UUID) (models.Boletim, error) {
	b := models.Boletim{
		Numero:                   numero,
		Ano:                      ano,
		UF:                       d.campo("uf"),
		Municipio:                d.campo("municipio"),
		NomeRequerente:           d.campo("nome_requerente"),
		CPF:                      d.campo("cpf"),
		RG:                       d.campo("rg"),
		Endereco:                 d.campo("endereco"),
		Telefone:                 d.campo("telefone"),
		ObservacoesIdentificacao: d.campo("observacoes_identificacao"),
		HorarioSolicitacao:       d.campo("horario_solicitacao"),
		Solicitacao:              d.campo("solicitacao"),
		Relatorio:                d.campo("relatorio"),
		Diagnostico:              d.campo("diagnostico"),
		OutrosEncaminhamento:     d.campo("outros_encaminhamento"),
		FeitoRegistro:            d.campo("feito_registro") == "true",
		CreatedBy:                criadoPor,
	}

	if b.NomeRequerente == "" {
		return b, fmt.Errorf("nome_requerente é obrigatório")
	}
	if cpf := b.CPF; cpf != "" && !utils.ValidateCPF(cpf) {
		return b, fmt.Errorf("cpf inválido: %s", cpf)
	}

	var err error
	if b.DataSolicitacao, err = d.parseData("data_solicitacao", true); err != nil {
		return b, err
	}
	if b.DataVistoria, err = d.parseData("data_vistoria", true); err != nil {
		return b, err
	}
	if b.DataNascimento, err = d.parseData("data_nascimento", false); err != nil {
		return b, err
	}

	if b.TipoConstrucaoID, err = d.parseFK("tipo_construcao_id"); err != nil {
		return b, err
	}
	if b.Responsavel1ID, err = d.parseFK("responsavel1_id"); err != nil {
		return b, err
	}
	if b.Responsavel2ID, err = d.parseFK("responsavel2_id"); err != nil {
		return b, err
	}
	if b.BairroID, err = d.parseFK("bairro_id"); err != nil {
		return b, err
	}

	if lat := d.campo("latitude"); lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return b, fmt.Errorf("latitude inválida: %q", lat)
		}
		b.Latitude = &v
	}
	if lng := d.campo("longitude"); lng != "" {
		v, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			return b, fmt.Errorf("longitude inválida: %q", lng)
		}
		b.Longitude = &v
	}

	return b, nil
}

func (d BoletimDraft) parseData(nome string, obrigatorio bool) (models.DateOnly, error) {
	valor := d.campo(nome)
	if valor == "" {
		if obrigatorio {
			return models.DateOnly{}, fmt.Errorf("%s é obrigatório", nome)
		}
		return models.DateOnly{}, nil
	}
	t, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return models.DateOnly{}, fmt.Errorf("%s inválida: %q", nome, valor)
	}
	return models.DateOnly(t), nil
}

// parseFK coerces a form selection into a nullable uuid: the empty string
// means "no selection" and becomes nil.
func (d BoletimDraft) parseFK(nome string) (*uuid.UUID, error) {
	valor := d.campo(nome)
	if valor == "" {
		return nil, nil
	}
	id, err := uuid.Parse(valor)
	if err != nil {
		return nil, fmt.Errorf("%s inválido: %q", nome, valor)
	}
	return &id, nil
}
