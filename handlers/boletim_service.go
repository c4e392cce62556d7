package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/models"
	"github.com/defesacivil-sl/boletim/pkg/storage"
	"github.com/defesacivil-sl/boletim/utils"
)

// ErrNumeroDuplicado signals a business-key collision on (numero, ano).
var ErrNumeroDuplicado = errors.New("já existe um boletim com este número/ano")

// BoletimService drives the boletim lifecycle: next-number assignment,
// form-config loading, the multi-step commit and its dependent entities
// (referral join rows, photos, signatures).
type BoletimService struct {
	db    *gorm.DB
	store storage.Store
}

func NewBoletimService(db *gorm.DB, store storage.Store) *BoletimService {
	return &BoletimService{db: db, store: store}
}

// NextNumero returns the next sequence number for the year. The counter is
// per-year: MAX(numero)+1 scoped to ano, read inside a transaction.
func (s *BoletimService) NextNumero(ctx context.Context, ano int) (int, error) {
	var numero int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Boletim{}).
			Where("ano = ?", ano).
			Select("COALESCE(MAX(numero), 0) + 1").
			Scan(&numero).Error
	})
	if err != nil {
		return 0, fmt.Errorf("buscar próximo número: %w", err)
	}
	return numero, nil
}

// Existe reports whether a boletim with the business key already exists.
func (s *BoletimService) Existe(ctx context.Context, numero, ano int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Boletim{}).
		Where("numero = ? AND ano = ?", numero, ano).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FormConfig is the dependent lookup data the form needs before it is
// interactive.
type FormConfig struct {
	TiposConstrucao    []models.TipoConstrucao `json:"tiposConstrucao"`
	Encaminhamentos    []models.Encaminhamento `json:"encaminhamentos"`
	Responsaveis       []models.Responsavel    `json:"responsaveis"`
	Bairros            []models.Bairro         `json:"bairros"`
	CamposObrigatorios map[string]bool         `json:"camposObrigatorios"`
}

// LoadFormConfig fetches all active lookups and the required-field
// configuration concurrently. Any individual failure collapses into one
// aggregate error; callers cannot distinguish partial from total failure.
func (s *BoletimService) LoadFormConfig(ctx context.Context) (*FormConfig, error) {
	cfg := &FormConfig{CamposObrigatorios: make(map[string]bool)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("situacao = ?", models.SituacaoAtiva).
			Order("nome").Find(&cfg.TiposConstrucao).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("situacao = ?", models.SituacaoAtiva).
			Order("nome").Find(&cfg.Encaminhamentos).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("situacao = ?", models.SituacaoAtiva).
			Order("nome").Find(&cfg.Responsaveis).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("situacao = ?", models.SituacaoAtiva).
			Order("nome").Find(&cfg.Bairros).Error
	})
	g.Go(func() error {
		var campos []models.CampoObrigatorio
		if err := s.db.WithContext(gctx).Find(&campos).Error; err != nil {
			return err
		}
		for _, c := range campos {
			cfg.CamposObrigatorios[c.Campo] = c.Obrigatorio
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("erro ao carregar configurações do sistema: %w", err)
	}
	return cfg, nil
}

// ResolveAssinaturaResponsavel maps a responsible-party selection to the
// displayable URL of their stored signature. The empty selection and a
// lookup miss both resolve to the empty string, clearing any previously
// displayed signature instead of retaining stale state. Re-resolving the
// same selection always yields the same URL.
func (s *BoletimService) ResolveAssinaturaResponsavel(ctx context.Context, responsavelID string) (string, error) {
	if responsavelID == "" {
		return "", nil
	}
	var resp models.Responsavel
	err := s.db.WithContext(ctx).First(&resp, "id = ?", responsavelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if resp.AssinaturaPath == "" {
		return "", nil
	}
	return s.store.PublicURL(resp.AssinaturaPath), nil
}

// SaveAssinaturaResponsavel stores a responsible party's reusable signature
// image and records its path. Replacing removes the previous object after
// the new one is stored.
func (s *BoletimService) SaveAssinaturaResponsavel(ctx context.Context, responsavelID uuid.UUID, png []byte) (string, error) {
	var resp models.Responsavel
	if err := s.db.WithContext(ctx).First(&resp, "id = ?", responsavelID).Error; err != nil {
		return "", err
	}

	path := storage.AssinaturaPath("responsavel", responsavelID.String())
	stored, err := s.store.Save(ctx, path, png, "image/png")
	if err != nil {
		return "", fmt.Errorf("salvar assinatura: %w", err)
	}
	anterior := resp.AssinaturaPath
	if err := s.db.WithContext(ctx).Model(&resp).Update("assinatura_path", stored).Error; err != nil {
		return "", err
	}
	if anterior != "" && anterior != stored {
		if err := s.store.Remove(ctx, anterior); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("remove assinatura %s: %v", anterior, err)
		}
	}
	return s.store.PublicURL(stored), nil
}

// DeleteAssinaturaResponsavel clears the stored signature. Existing boletins
// referencing this responsavel resolve to "" afterwards.
func (s *BoletimService) DeleteAssinaturaResponsavel(ctx context.Context, responsavelID uuid.UUID) error {
	var resp models.Responsavel
	if err := s.db.WithContext(ctx).First(&resp, "id = ?", responsavelID).Error; err != nil {
		return err
	}
	// Update zeroes the field on resp too, so keep the path before it runs
	anterior := resp.AssinaturaPath
	if anterior == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&resp).Update("assinatura_path", "").Error; err != nil {
		return err
	}
	if err := s.store.Remove(ctx, anterior); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("remove assinatura %s: %v", anterior, err)
	}
	return nil
}

// Get loads one boletim with its joined lookup names, referral associations,
// photos and signatures.
func (s *BoletimService) Get(ctx context.Context, id uuid.UUID) (*models.Boletim, error) {
	var b models.Boletim
	err := s.db.WithContext(ctx).
		Preload("TipoConstrucao").
		Preload("Responsavel1").
		Preload("Responsavel2").
		Preload("Bairro").
		Preload("Encaminhamentos.Encaminhamento").
		Preload("Fotos", func(db *gorm.DB) *gorm.DB { return db.Order("ordem") }).
		Preload("Assinaturas").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Search lists boletins under the combinable filters, newest first.
func (s *BoletimService) Search(ctx context.Context, busca models.BuscaBoletins) ([]models.Boletim, error) {
	var boletins []models.Boletim
	q := busca.Apply(s.db.WithContext(ctx).Model(&models.Boletim{}).Preload("TipoConstrucao"))
	if err := q.Find(&boletins).Error; err != nil {
		return nil, err
	}
	return boletins, nil
}

// Create runs the commit sequence for a new boletim:
//
//  1. re-check uniqueness of (numero, ano); a collision aborts before any
//     write,
//  2. insert the record with normalized foreign keys,
//  3. upload every provisional photo against the new id,
//  4. persist the captured requester signature,
//  5. replace the referral association set.
//
// Steps 3-5 are independent requests with no rollback: a failure there
// surfaces as an error while the record keeps whatever partial state the
// preceding steps produced. That gap is accepted, not hidden.
func (s *BoletimService) Create(ctx context.Context, draft BoletimDraft, numero, ano int, criadoPor *uuid.UUID) (*models.Boletim, error) {
	existe, err := s.Existe(ctx, numero, ano)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrNumeroDuplicado
	}

	b, err := draft.ToBoletim(numero, ano, criadoPor)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		// the unique index is the second line of defense against a racing create
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrNumeroDuplicado
		}
		return nil, err
	}

	for i, foto := range draft.Fotos {
		if err := s.salvarFoto(ctx, b.ID, foto, i); err != nil {
			return &b, fmt.Errorf("enviar foto %s: %w", foto.NomeArquivo, err)
		}
	}

	if draft.Assinatura != nil {
		if err := s.salvarAssinaturaRequerente(ctx, b.ID, draft.Assinatura); err != nil {
			return &b, fmt.Errorf("salvar assinatura: %w", err)
		}
	}

	if err := s.ReplaceEncaminhamentos(ctx, b.ID, draft.Encaminhamentos); err != nil {
		return &b, err
	}
	return &b, nil
}

// Update maps the draft onto an existing boletim and saves it, then
// unconditionally replaces the referral set. The business key is immutable
// here; photos on persisted records go through the foto endpoints directly.
func (s *BoletimService) Update(ctx context.Context, id uuid.UUID, draft BoletimDraft) (*models.Boletim, error) {
	var existing models.Boletim
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	b, err := draft.ToBoletim(existing.Numero, existing.Ano, existing.CreatedBy)
	if err != nil {
		return nil, err
	}
	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt

	if err := s.db.WithContext(ctx).Save(&b).Error; err != nil {
		return nil, err
	}
	if err := s.ReplaceEncaminhamentos(ctx, b.ID, draft.Encaminhamentos); err != nil {
		return &b, err
	}
	return &b, nil
}

// Delete removes a boletim with its join rows, photos and signatures, and
// best-effort removes the stored blobs.
func (s *BoletimService) Delete(ctx context.Context, id uuid.UUID) error {
	var fotos []models.Foto
	s.db.WithContext(ctx).Where("boletim_id = ?", id).Find(&fotos)
	var assinaturas []models.Assinatura
	s.db.WithContext(ctx).Where("boletim_id = ?", id).Find(&assinaturas)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("boletim_id = ?", id).Delete(&models.BoletimEncaminhamento{}).Error; err != nil {
			return err
		}
		if err := tx.Where("boletim_id = ?", id).Delete(&models.Foto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("boletim_id = ?", id).Delete(&models.Assinatura{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Boletim{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range fotos {
		if err := s.store.Remove(ctx, f.CaminhoStorage); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("remove foto %s: %v", f.CaminhoStorage, err)
		}
	}
	for _, a := range assinaturas {
		if err := s.store.Remove(ctx, a.CaminhoStorage); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("remove assinatura %s: %v", a.CaminhoStorage, err)
		}
	}
	return nil
}

// ReplaceEncaminhamentos swaps the whole referral association set:
// delete-all then insert-selected. An empty selection leaves zero rows.
func (s *BoletimService) ReplaceEncaminhamentos(ctx context.Context, boletimID uuid.UUID, encaminhamentoIDs []uuid.UUID) error {
	if err := s.db.WithContext(ctx).
		Where("boletim_id = ?", boletimID).
		Delete(&models.BoletimEncaminhamento{}).Error; err != nil {
		return fmt.Errorf("remover encaminhamentos: %w", err)
	}
	if len(encaminhamentoIDs) == 0 {
		return nil
	}

	rows := make([]models.BoletimEncaminhamento, 0, len(encaminhamentoIDs))
	for _, encID := range encaminhamentoIDs {
		rows = append(rows, models.BoletimEncaminhamento{
			BoletimID:        boletimID,
			EncaminhamentoID: encID,
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("inserir encaminhamentos: %w", err)
	}
	return nil
}

// AddFotos appends staged photos to an existing boletim, continuing the
// display order after the current last photo. Same per-photo commit as the
// create path: first failure stops the batch, earlier photos stay saved.
func (s *BoletimService) AddFotos(ctx context.Context, boletimID uuid.UUID, fotos []FotoProvisoria) ([]models.Foto, error) {
	var b models.Boletim
	if err := s.db.WithContext(ctx).First(&b, "id = ?", boletimID).Error; err != nil {
		return nil, err
	}

	var ordem int
	if err := s.db.WithContext(ctx).Model(&models.Foto{}).
		Where("boletim_id = ?", boletimID).
		Select("COALESCE(MAX(ordem), -1) + 1").
		Scan(&ordem).Error; err != nil {
		return nil, err
	}

	var salvas []models.Foto
	for i, foto := range fotos {
		if err := s.salvarFoto(ctx, boletimID, foto, ordem+i); err != nil {
			return salvas, fmt.Errorf("salvar foto %s: %w", foto.NomeArquivo, err)
		}
	}
	err := s.db.WithContext(ctx).
		Where("boletim_id = ?", boletimID).
		Order("ordem ASC").
		Find(&salvas).Error
	return salvas, err
}

// ListFotos returns a boletim's photos in display order.
func (s *BoletimService) ListFotos(ctx context.Context, boletimID uuid.UUID) ([]models.Foto, error) {
	var fotos []models.Foto
	err := s.db.WithContext(ctx).
		Where("boletim_id = ?", boletimID).
		Order("ordem ASC").
		Find(&fotos).Error
	return fotos, err
}

// DeleteFoto removes one stored photo: row first, object second. A missing
// object is not an error.
func (s *BoletimService) DeleteFoto(ctx context.Context, fotoID uuid.UUID) error {
	var f models.Foto
	if err := s.db.WithContext(ctx).First(&f, "id = ?", fotoID).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Foto{}, "id = ?", fotoID).Error; err != nil {
		return fmt.Errorf("remover foto: %w", err)
	}
	if err := s.store.Remove(ctx, f.CaminhoStorage); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("remove foto %s: %v", f.CaminhoStorage, err)
	}
	return nil
}

// salvarFoto uploads one provisional photo and inserts its row. Payloads
// are downscaled/recompressed when decodable; otherwise the original bytes
// go up unchanged.
func (s *BoletimService) salvarFoto(ctx context.Context, boletimID uuid.UUID, foto FotoProvisoria, ordem int) error {
	conteudo := foto.Conteudo
	contentType := foto.ContentType
	if comprimido, err := utils.CompressImage(conteudo); err == nil {
		conteudo = comprimido
		contentType = "image/jpeg"
	}

	path := storage.FotoPath(boletimID.String(), foto.NomeArquivo)
	stored, err := s.store.Save(ctx, path, conteudo, contentType)
	if err != nil {
		return err
	}

	row := models.Foto{
		BoletimID:      boletimID,
		NomeArquivo:    foto.NomeArquivo,
		CaminhoStorage: stored,
		Ordem:          ordem,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *BoletimService) salvarAssinaturaRequerente(ctx context.Context, boletimID uuid.UUID, captura *AssinaturaCaptura) error {
	path := storage.AssinaturaPath("requerente", boletimID.String())
	stored, err := s.store.Save(ctx, path, captura.PNG, "image/png")
	if err != nil {
		return err
	}

	row := models.Assinatura{
		BoletimID:      boletimID,
		Tipo:           "requerente",
		CaminhoStorage: stored,
	}
	if len(captura.Metadados) > 0 {
		if meta, err := json.Marshal(captura.Metadados); err == nil {
			row.Metadados = datatypes.JSON(meta)
		}
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// VerificaGeofence checks vistoria coordinates against the configured
// municipality boundary. Missing configuration or coordinates mean "inside";
// the result is advisory and never blocks a save.
func (s *BoletimService) VerificaGeofence(ctx context.Context, b *models.Boletim) bool {
	if b.Latitude == nil || b.Longitude == nil {
		return true
	}
	var cfg models.Configuracao
	err := s.db.WithContext(ctx).First(&cfg, "chave = ?", "limite_municipio").Error
	if err != nil {
		return true
	}
	fence, err := utils.ParseGeofence(cfg.Valor)
	if err != nil || fence == nil {
		if err != nil {
			log.Printf("geofence configurado é inválido: %v", err)
		}
		return true
	}
	return fence.Contains(*b.Latitude, *b.Longitude)
}

// configValor reads one configuration value, falling back to padrao when
// the key is absent.
func (s *BoletimService) configValor(ctx context.Context, chave, padrao string) string {
	var cfg models.Configuracao
	if err := s.db.WithContext(ctx).First(&cfg, "chave = ?", chave).Error; err != nil {
		return padrao
	}
	return cfg.Valor
}

// PublicURL derives the displayable URL for a stored object path.
func (s *BoletimService) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return s.store.PublicURL(path)
}
