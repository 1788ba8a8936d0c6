package infra

// pdf.go: acta de conteo de caja mayor rendered with go-pdf/fpdf.
// A4 portrait: header, count summary, denomination table, difference and
// signature lines. Saved as storagePath/acta_conteo_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"sistemaservicios/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarActaConteo writes the certificate of a cash count and returns its path.
func GenerarActaConteo(c *model.Conteo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("acta_conteo_%s.pdf", c.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 9, tr("Acta de Conteo de Caja Mayor"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Conteo N° "+c.ID.String()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	fila := func(label, valor string) {
		pdf.CellFormat(contentW*0.4, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.6, 6, tr(valor), "", 1, "L", false, 0, "")
	}
	fila("Fecha:", c.Fecha.Format("02/01/2006 15:04"))
	fila("Moneda:", string(c.Moneda))
	fila("Responsable:", c.UsuarioID.String())
	if c.Observaciones != nil && *c.Observaciones != "" {
		fila("Observaciones:", *c.Observaciones)
	}
	pdf.Ln(4)

	// ── Denominations ────────────────────────────────────────────────────────
	col1, col2, col3 := contentW*0.4, contentW*0.2, contentW*0.4
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, tr("Denominación"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Cantidad", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, d := range c.Detalles {
		pdf.CellFormat(col1, 6, d.Denominacion.StringFixed(2), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	total := func(label, valor string, bold bool) {
		estilo := ""
		if bold {
			estilo = "B"
		}
		pdf.SetFont("Helvetica", estilo, 10)
		pdf.CellFormat(col1+col2, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, valor, "", 1, "R", false, 0, "")
	}
	total("Total contado:", c.Total.StringFixed(2), true)
	total("Saldo según sistema:", c.SaldoSistema.StringFixed(2), false)
	total("Diferencia:", c.Diferencia.StringFixed(2), true)
	if c.AjusteGenerado && c.MovimientoCajaMayorID != nil {
		total("Ajuste registrado, movimiento N°", fmt.Sprintf("%d", *c.MovimientoCajaMayorID), false)
	}

	// ── Signatures ───────────────────────────────────────────────────────────
	pdf.Ln(25)
	half := contentW / 2
	pdf.CellFormat(half, 5, "______________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 5, "______________________", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(half, 5, "Responsable del conteo", "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 5, tr("Tesorería"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
