package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defesacivil-sl/boletim/config"
)

func TestExportRelatorioCSV(t *testing.T) {
	svc, db, _ := newTestService(t)
	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	_, err := svc.Create(context.Background(), draftValido(), 1, 2026, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/relatorios/export/csv", nil)
	rec := httptest.NewRecorder()
	ExportRelatorioCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.Bytes()
	// Excel only honors UTF-8 accents when the payload opens with the BOM
	require.True(t, bytes.HasPrefix(body, []byte("\xEF\xBB\xBF")),
		"CSV payload must start with the UTF-8 BOM")

	out := rec.Body.String()
	require.Contains(t, out, "Nome do Requerente")
	require.Contains(t, out, "Maria da Silva")
	require.Contains(t, out, "1/2026")
}
