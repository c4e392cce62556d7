package handlers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func draftValido() BoletimDraft {
	return NovoDraft("RS", "São Leopoldo").
		ComCampo("nome_requerente", "Maria da Silva").
		ComCampo("solicitacao", "Vistoria em muro com rachaduras").
		ComCampo("relatorio", "Muro apresenta risco de queda")
}

func TestComCampoDoesNotMutateReceiver(t *testing.T) {
	base := NovoDraft("RS", "São Leopoldo")
	modified := base.ComCampo("nome_requerente", "Maria")

	if base.Campos["nome_requerente"] != "" {
		t.Errorf("base draft was mutated: %q", base.Campos["nome_requerente"])
	}
	if modified.Campos["nome_requerente"] != "Maria" {
		t.Errorf("modified draft missing field: %q", modified.Campos["nome_requerente"])
	}
	if base.Campos["uf"] != "RS" || modified.Campos["uf"] != "RS" {
		t.Error("defaults should survive field updates on both drafts")
	}
}

func TestNovoDraftDefaults(t *testing.T) {
	d := NovoDraft("RS", "São Leopoldo")

	for _, campo := range []string{"data_solicitacao", "horario_solicitacao", "data_vistoria"} {
		if d.Campos[campo] == "" {
			t.Errorf("NovoDraft did not prime %s", campo)
		}
	}
	if d.Campos["feito_registro"] != "false" {
		t.Errorf("feito_registro = %q, expected \"false\"", d.Campos["feito_registro"])
	}
}

func TestToggleEncaminhamento(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	d := BoletimDraft{}.ToggleEncaminhamento(a).ToggleEncaminhamento(b)
	if len(d.Encaminhamentos) != 2 {
		t.Fatalf("expected 2 after two toggles, got %d", len(d.Encaminhamentos))
	}

	d = d.ToggleEncaminhamento(a)
	if len(d.Encaminhamentos) != 1 || d.Encaminhamentos[0] != b {
		t.Errorf("toggling again should remove only that id, got %v", d.Encaminhamentos)
	}
}

func TestStageFotosAbortsWholeBatchOnFirstFailure(t *testing.T) {
	d := BoletimDraft{}
	staged, err := d.StageFotos([]FotoUpload{
		{NomeArquivo: "a.jpg", ContentType: "image/jpeg", Conteudo: []byte("ok")},
		{NomeArquivo: "b.pdf", ContentType: "application/pdf", Conteudo: []byte("no")},
		{NomeArquivo: "c.jpg", ContentType: "image/jpeg", Conteudo: []byte("ok")},
	})
	if err == nil {
		t.Fatal("expected error for the pdf in the batch")
	}
	if !strings.Contains(err.Error(), "b.pdf") {
		t.Errorf("error should name the offending file, got %q", err.Error())
	}
	if len(staged.Fotos) != 0 {
		t.Errorf("no photo should be staged when one fails, got %d", len(staged.Fotos))
	}
}

func TestStageFotosAssignsSyntheticIDs(t *testing.T) {
	d, err := BoletimDraft{}.StageFotos([]FotoUpload{
		{NomeArquivo: "a.jpg", ContentType: "image/jpeg", Conteudo: []byte("1")},
		{NomeArquivo: "b.jpg", ContentType: "image/jpeg", Conteudo: []byte("2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Fotos) != 2 {
		t.Fatalf("expected 2 staged photos, got %d", len(d.Fotos))
	}
	if d.Fotos[0].ID == uuid.Nil || d.Fotos[1].ID == uuid.Nil {
		t.Error("staged photos need synthetic ids")
	}
	if d.Fotos[0].ID == d.Fotos[1].ID {
		t.Error("synthetic ids must be distinct")
	}
}

func TestRemoveFoto(t *testing.T) {
	d, err := BoletimDraft{}.StageFotos([]FotoUpload{
		{NomeArquivo: "a.jpg", ContentType: "image/jpeg", Conteudo: []byte("1")},
		{NomeArquivo: "b.jpg", ContentType: "image/jpeg", Conteudo: []byte("2")},
	})
	if err != nil {
		t.Fatal(err)
	}

	d = d.RemoveFoto(d.Fotos[0].ID)
	if len(d.Fotos) != 1 || d.Fotos[0].NomeArquivo != "b.jpg" {
		t.Errorf("expected only b.jpg to remain, got %v", d.Fotos)
	}

	// removing an unknown id is a no-op
	d = d.RemoveFoto(uuid.New())
	if len(d.Fotos) != 1 {
		t.Errorf("removing unknown id changed the draft: %v", d.Fotos)
	}
}

func TestToBoletimMapsFields(t *testing.T) {
	tipoID := uuid.New()
	criadoPor := uuid.New()

	d := draftValido().
		ComCampo("cpf", "529.982.247-25").
		ComCampo("tipo_construcao_id", tipoID.String()).
		ComCampo("latitude", "-29.76").
		ComCampo("longitude", "-51.15").
		ComCampo("feito_registro", "true")

	b, err := d.ToBoletim(12, 2026, &criadoPor)
	if err != nil {
		t.Fatal(err)
	}

	if b.Numero != 12 || b.Ano != 2026 {
		t.Errorf("business key = %d/%d, expected 12/2026", b.Numero, b.Ano)
	}
	if b.NumeroCompleto() != "12/2026" {
		t.Errorf("NumeroCompleto() = %q", b.NumeroCompleto())
	}
	if b.TipoConstrucaoID == nil || *b.TipoConstrucaoID != tipoID {
		t.Errorf("tipo_construcao_id not mapped: %v", b.TipoConstrucaoID)
	}
	if b.BairroID != nil {
		t.Errorf("empty bairro selection must map to nil, got %v", b.BairroID)
	}
	if b.Latitude == nil || *b.Latitude != -29.76 {
		t.Errorf("latitude not mapped: %v", b.Latitude)
	}
	if !b.FeitoRegistro {
		t.Error("feito_registro should be true")
	}
	if b.CreatedBy == nil || *b.CreatedBy != criadoPor {
		t.Errorf("created_by not carried: %v", b.CreatedBy)
	}
}

func TestToBoletimValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(BoletimDraft) BoletimDraft
		wantErr string
	}{
		{
			"missing requester name",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("nome_requerente", "") },
			"nome_requerente é obrigatório",
		},
		{
			"invalid cpf",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("cpf", "123.456.789-00") },
			"cpf inválido",
		},
		{
			"missing solicitation date",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("data_solicitacao", "") },
			"data_solicitacao é obrigatório",
		},
		{
			"unparseable date",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("data_vistoria", "31/12/2026") },
			"data_vistoria inválida",
		},
		{
			"malformed foreign key",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("responsavel1_id", "not-a-uuid") },
			"responsavel1_id inválido",
		},
		{
			"malformed latitude",
			func(d BoletimDraft) BoletimDraft { return d.ComCampo("latitude", "sul") },
			"latitude inválida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mutate(draftValido()).ToBoletim(1, 2026, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ToBoletim() error = %v, expected to contain %q", err, tt.wantErr)
			}
		})
	}
}
