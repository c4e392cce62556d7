package handlers

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/defesacivil-sl/boletim/models"
	"github.com/defesacivil-sl/boletim/pkg/storage"
)

func newTestService(t *testing.T) (*BoletimService, *gorm.DB, *storage.Memory) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TipoConstrucao{},
		&models.Encaminhamento{},
		&models.Responsavel{},
		&models.Bairro{},
		&models.Boletim{},
		&models.BoletimEncaminhamento{},
		&models.Foto{},
		&models.Assinatura{},
		&models.CampoObrigatorio{},
		&models.Configuracao{},
	))

	store := storage.NewMemory()
	return NewBoletimService(db, store), db, store
}

func criarBoletim(t *testing.T, svc *BoletimService, numero, ano int) *models.Boletim {
	t.Helper()
	b, err := svc.Create(context.Background(), draftValido(), numero, ano, nil)
	require.NoError(t, err)
	return b
}

func TestNextNumeroIsPerYear(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.NextNumero(ctx, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, n, "empty year starts at 1")

	criarBoletim(t, svc, 1, 2026)
	criarBoletim(t, svc, 2, 2026)

	n, err = svc.NextNumero(ctx, 2026)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// another year has its own counter
	n, err = svc.NextNumero(ctx, 2027)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCreateRejectsDuplicateNumeroAno(t *testing.T) {
	svc, _, _ := newTestService(t)
	criarBoletim(t, svc, 7, 2026)

	_, err := svc.Create(context.Background(), draftValido(), 7, 2026, nil)
	require.ErrorIs(t, err, ErrNumeroDuplicado)

	// same numero in a different year is fine
	criarBoletim(t, svc, 7, 2027)
}

func TestCreatePersistsDependents(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	enc := models.Encaminhamento{Nome: "Assistência Social"}
	require.NoError(t, db.Create(&enc).Error)

	draft := draftValido().ToggleEncaminhamento(enc.ID)
	draft, err := draft.StageFotos([]FotoUpload{
		{NomeArquivo: "frente.jpg", ContentType: "image/jpeg", Conteudo: []byte("jpg-bytes")},
		{NomeArquivo: "fundos.jpg", ContentType: "image/jpeg", Conteudo: []byte("jpg-bytes-2")},
	})
	require.NoError(t, err)
	draft = draft.ComAssinatura([]byte("png-bytes"), map[string]interface{}{"largura": 300})

	criador := uuid.New()
	b, err := svc.Create(ctx, draft, 1, 2026, &criador)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, b.ID)

	loaded, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Fotos, 2)
	require.Equal(t, 0, loaded.Fotos[0].Ordem)
	require.Equal(t, 1, loaded.Fotos[1].Ordem)
	require.Len(t, loaded.Encaminhamentos, 1)
	require.Equal(t, enc.ID, loaded.Encaminhamentos[0].EncaminhamentoID)
	require.Len(t, loaded.Assinaturas, 1)
	require.Equal(t, "requerente", loaded.Assinaturas[0].Tipo)

	// two photos and one signature landed in the blob store
	require.Equal(t, 3, store.Len())
	for _, f := range loaded.Fotos {
		_, ok := store.Get(f.CaminhoStorage)
		require.True(t, ok, "photo blob missing for %s", f.CaminhoStorage)
	}
}

func TestUpdateKeepsBusinessKeyAndReplacesEncaminhamentos(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	enc1 := models.Encaminhamento{Nome: "Interdição"}
	enc2 := models.Encaminhamento{Nome: "Obras"}
	require.NoError(t, db.Create(&enc1).Error)
	require.NoError(t, db.Create(&enc2).Error)

	b, err := svc.Create(ctx, draftValido().ToggleEncaminhamento(enc1.ID), 3, 2026, nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, b.ID, draftValido().
		ComCampo("nome_requerente", "João Pereira").
		ToggleEncaminhamento(enc2.ID))
	require.NoError(t, err)

	require.Equal(t, 3, updated.Numero)
	require.Equal(t, 2026, updated.Ano)
	require.Equal(t, "João Pereira", updated.NomeRequerente)

	loaded, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Encaminhamentos, 1, "old referral set must be fully replaced")
	require.Equal(t, enc2.ID, loaded.Encaminhamentos[0].EncaminhamentoID)
}

func TestUpdateWithEmptySelectionClearsEncaminhamentos(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	enc := models.Encaminhamento{Nome: "Interdição"}
	require.NoError(t, db.Create(&enc).Error)

	b, err := svc.Create(ctx, draftValido().ToggleEncaminhamento(enc.ID), 4, 2026, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, draftValido())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.BoletimEncaminhamento{}).
		Where("boletim_id = ?", b.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteRemovesRowsAndBlobs(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	draft, err := draftValido().StageFotos([]FotoUpload{
		{NomeArquivo: "frente.jpg", ContentType: "image/jpeg", Conteudo: []byte("x")},
	})
	require.NoError(t, err)
	draft = draft.ComAssinatura([]byte("png"), nil)

	b, err := svc.Create(ctx, draft, 5, 2026, nil)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	require.NoError(t, svc.Delete(ctx, b.ID))

	_, err = svc.Get(ctx, b.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var count int64
	require.NoError(t, db.Model(&models.Foto{}).Where("boletim_id = ?", b.ID).Count(&count).Error)
	require.Zero(t, count)
	require.Zero(t, store.Len(), "blobs must be removed with the record")

	require.ErrorIs(t, svc.Delete(ctx, b.ID), gorm.ErrRecordNotFound)
}

func TestSearch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, draftValido().
		ComCampo("nome_requerente", "Maria da Silva").
		ComCampo("data_solicitacao", "2026-03-10").
		ComCampo("data_vistoria", "2026-03-10"), 1, 2026, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, draftValido().
		ComCampo("nome_requerente", "João Pereira").
		ComCampo("data_solicitacao", "2026-06-20").
		ComCampo("data_vistoria", "2026-06-20"), 2, 2026, nil)
	require.NoError(t, err)

	found, err := svc.Search(ctx, models.BuscaBoletins{Texto: "maria"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Maria da Silva", found[0].NomeRequerente)

	numero := 2
	found, err = svc.Search(ctx, models.BuscaBoletins{Numero: &numero})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 2, found[0].Numero)

	found, err = svc.Search(ctx, models.BuscaBoletins{Texto: "ninguém"})
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestLoadFormConfigFiltersInactiveLookups(t *testing.T) {
	svc, db, _ := newTestService(t)

	require.NoError(t, db.Create(&models.TipoConstrucao{Nome: "Alvenaria"}).Error)
	require.NoError(t, db.Create(&models.TipoConstrucao{Nome: "Taipa", Situacao: models.SituacaoInativa}).Error)
	require.NoError(t, db.Create(&models.Bairro{Nome: "Centro"}).Error)
	require.NoError(t, db.Create(&models.CampoObrigatorio{Campo: "cpf", Obrigatorio: true}).Error)

	cfg, err := svc.LoadFormConfig(context.Background())
	require.NoError(t, err)

	require.Len(t, cfg.TiposConstrucao, 1, "deactivated lookups stay out of the form")
	require.Equal(t, "Alvenaria", cfg.TiposConstrucao[0].Nome)
	require.Len(t, cfg.Bairros, 1)
	require.True(t, cfg.CamposObrigatorios["cpf"])
}

func TestResolveAssinaturaResponsavel(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	com := models.Responsavel{Nome: "Eng. Carla", AssinaturaPath: "assinaturas/responsavel/carla.png"}
	sem := models.Responsavel{Nome: "Téc. Bruno"}
	require.NoError(t, db.Create(&com).Error)
	require.NoError(t, db.Create(&sem).Error)

	// empty selection clears
	url, err := svc.ResolveAssinaturaResponsavel(ctx, "")
	require.NoError(t, err)
	require.Empty(t, url)

	// unknown id clears instead of erroring
	url, err = svc.ResolveAssinaturaResponsavel(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Empty(t, url)

	// party without a stored signature clears
	url, err = svc.ResolveAssinaturaResponsavel(ctx, sem.ID.String())
	require.NoError(t, err)
	require.Empty(t, url)

	// resolving twice yields the same URL
	url, err = svc.ResolveAssinaturaResponsavel(ctx, com.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, url)
	again, err := svc.ResolveAssinaturaResponsavel(ctx, com.ID.String())
	require.NoError(t, err)
	require.Equal(t, url, again)
}

func TestSaveAndDeleteAssinaturaResponsavel(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	resp := models.Responsavel{Nome: "Eng. Carla"}
	require.NoError(t, db.Create(&resp).Error)

	url, err := svc.SaveAssinaturaResponsavel(ctx, resp.ID, []byte("png-1"))
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Equal(t, 1, store.Len())

	// replacing drops the previous object
	_, err = svc.SaveAssinaturaResponsavel(ctx, resp.ID, []byte("png-2"))
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, svc.DeleteAssinaturaResponsavel(ctx, resp.ID))
	require.Zero(t, store.Len())

	var reloaded models.Responsavel
	require.NoError(t, db.First(&reloaded, "id = ?", resp.ID).Error)
	require.Empty(t, reloaded.AssinaturaPath)

	// deleting when nothing is stored is a no-op
	require.NoError(t, svc.DeleteAssinaturaResponsavel(ctx, resp.ID))
}

func TestAddFotosContinuesOrdering(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	draft, err := draftValido().StageFotos([]FotoUpload{
		{NomeArquivo: "a.jpg", ContentType: "image/jpeg", Conteudo: []byte("a")},
		{NomeArquivo: "b.jpg", ContentType: "image/jpeg", Conteudo: []byte("b")},
	})
	require.NoError(t, err)
	b, err := svc.Create(ctx, draft, 8, 2026, nil)
	require.NoError(t, err)

	mais, err := BoletimDraft{}.StageFotos([]FotoUpload{
		{NomeArquivo: "c.jpg", ContentType: "image/jpeg", Conteudo: []byte("c")},
	})
	require.NoError(t, err)

	fotos, err := svc.AddFotos(ctx, b.ID, mais.Fotos)
	require.NoError(t, err)
	require.Len(t, fotos, 3)
	require.Equal(t, []int{0, 1, 2}, []int{fotos[0].Ordem, fotos[1].Ordem, fotos[2].Ordem})
	require.Equal(t, "c.jpg", fotos[2].NomeArquivo)

	_, err = svc.AddFotos(ctx, uuid.New(), mais.Fotos)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteFoto(t *testing.T) {
	svc, db, store := newTestService(t)
	ctx := context.Background()

	draft, err := draftValido().StageFotos([]FotoUpload{
		{NomeArquivo: "a.jpg", ContentType: "image/jpeg", Conteudo: []byte("a")},
	})
	require.NoError(t, err)
	b, err := svc.Create(ctx, draft, 9, 2026, nil)
	require.NoError(t, err)

	var foto models.Foto
	require.NoError(t, db.First(&foto, "boletim_id = ?", b.ID).Error)

	require.NoError(t, svc.DeleteFoto(ctx, foto.ID))
	require.Zero(t, store.Len())

	require.ErrorIs(t, svc.DeleteFoto(ctx, foto.ID), gorm.ErrRecordNotFound)
}

func TestVerificaGeofence(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	lat, lng := -29.75, -51.15
	dentro := &models.Boletim{Latitude: &lat, Longitude: &lng}
	foraLat, foraLng := -29.60, -51.15
	fora := &models.Boletim{Latitude: &foraLat, Longitude: &foraLng}

	// no boundary configured: everything passes
	require.True(t, svc.VerificaGeofence(ctx, dentro))
	require.True(t, svc.VerificaGeofence(ctx, fora))

	require.NoError(t, db.Create(&models.Configuracao{
		Chave: "limite_municipio",
		Valor: `{"coordinates":[{"lat":-29.70,"lng":-51.20},{"lat":-29.70,"lng":-51.10},{"lat":-29.80,"lng":-51.10},{"lat":-29.80,"lng":-51.20}]}`,
	}).Error)

	require.True(t, svc.VerificaGeofence(ctx, dentro))
	require.False(t, svc.VerificaGeofence(ctx, fora))

	// records without coordinates are never flagged
	require.True(t, svc.VerificaGeofence(ctx, &models.Boletim{}))
}
