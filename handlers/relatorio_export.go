package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/defesacivil-sl/boletim/models"
)

var relatorioCabecalho = []string{
	"Número", "Ano", "Data Solicitação", "Nome do Requerente", "CPF",
	"Endereço", "Bairro", "Telefone", "Tipo de Construção",
	"Encaminhamentos", "Responsáveis", "Data Vistoria", "Solicitação",
	"Diagnóstico",
}

func relatorioLinha(b models.Boletim) []string {
	var bairro, tipo string
	if b.Bairro != nil {
		bairro = b.Bairro.Nome
	}
	if b.TipoConstrucao != nil {
		tipo = b.TipoConstrucao.Nome
	}

	var encs []string
	for _, be := range b.Encaminhamentos {
		if be.Encaminhamento != nil {
			encs = append(encs, be.Encaminhamento.Nome)
		}
	}
	if b.OutrosEncaminhamento != "" {
		encs = append(encs, b.OutrosEncaminhamento)
	}

	var resps []string
	if b.Responsavel1 != nil {
		resps = append(resps, b.Responsavel1.Nome)
	}
	if b.Responsavel2 != nil {
		resps = append(resps, b.Responsavel2.Nome)
	}

	return []string{
		b.NumeroCompleto(),
		fmt.Sprintf("%d", b.Ano),
		b.DataSolicitacao.String(),
		b.NomeRequerente,
		b.CPF,
		b.Endereco,
		bairro,
		b.Telefone,
		tipo,
		strings.Join(encs, "; "),
		strings.Join(resps, "; "),
		b.DataVistoria.String(),
		b.Solicitacao,
		b.Diagnostico,
	}
}

// ExportRelatorioCSV streams the filtered report as CSV. The UTF-8 BOM
// up front keeps accented characters intact when the file lands in Excel.
// GET /api/v1/relatorios/export/csv
func ExportRelatorioCSV(w http.ResponseWriter, r *http.Request) {
	boletins, err := loadRelatorio(parseRelatorioFiltro(r))
	if err != nil {
		log.Printf("export csv: %v", err)
		http.Error(w, "erro ao gerar relatório", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(&buf)
	writer.Write(relatorioCabecalho)
	for _, b := range boletins {
		writer.Write(relatorioLinha(b))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		http.Error(w, "erro ao gerar arquivo CSV", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("boletins_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.Write(buf.Bytes())
}

// ExportRelatorioExcel renders the filtered report as a styled xlsx sheet.
// GET /api/v1/relatorios/export/excel
func ExportRelatorioExcel(w http.ResponseWriter, r *http.Request) {
	boletins, err := loadRelatorio(parseRelatorioFiltro(r))
	if err != nil {
		log.Printf("export excel: %v", err)
		http.Error(w, "erro ao gerar relatório", http.StatusInternalServerError)
		return
	}

	f, err := criarPlanilha(boletins)
	if err != nil {
		http.Error(w, "erro ao gerar arquivo Excel", http.StatusInternalServerError)
		return
	}
	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "erro ao gerar arquivo Excel", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("boletins_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.Write(buffer.Bytes())
}

func criarPlanilha(boletins []models.Boletim) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Boletins"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheet, "A1", "Boletins de Atendimento - Defesa Civil")
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetRowHeight(sheet, 1, 30)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Gerado em: %s", time.Now().Format("02/01/2006 15:04")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for col, label := range relatorioCabecalho {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheet, name, name, 22)
	}

	for row, b := range boletins {
		for col, value := range relatorioLinha(b) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+5)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}
