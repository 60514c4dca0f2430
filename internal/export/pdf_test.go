package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uncompressedWriter() *PDFWriter {
	w := NewPDFWriter()
	w.compress = false
	return w
}

func TestPDFWriter_Write(t *testing.T) {
	report := NewReport(sampleTransactions(3), time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, uncompressedWriter().Write(&buf, report))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, out, "Historial de Transacciones")
	assert.Contains(t, out, "Generado el: 05/10/2024")
	assert.Contains(t, out, "Total de transacciones: 3")
	assert.Contains(t, out, "Resumen Financiero:")
	assert.Contains(t, out, "Supermercado")
	assert.Contains(t, out, "gina 1 de 1")
	assert.NotContains(t, out, "🍔")
}

func TestPDFWriter_Write_Paginates(t *testing.T) {
	report := NewReport(sampleTransactions(80), time.Now())

	var buf bytes.Buffer
	require.NoError(t, uncompressedWriter().Write(&buf, report))

	assert.Contains(t, buf.String(), "gina 1 de 3")
	assert.Contains(t, buf.String(), "gina 3 de 3")
}

func TestPDFWriter_Write_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDFWriter().Write(&buf, NewReport(nil, time.Now())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
