package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Hora", "Lunes", "Miércoles"},
		Rows: []map[string]string{
			{"Hora": "07:00 - 07:45", "Lunes": "Matemática", "Miércoles": ""},
			{"Hora": "07:45 - 08:30", "Lunes": "Matemática", "Miércoles": "Física"},
		},
		Merges: []Merge{{Header: "Lunes", FirstRow: 0, LastRow: 1}},
	}
}

func TestCSVExporterOptions(t *testing.T) {
	plain, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(plain, []byte("Hora,Lunes,Miércoles\n")))

	excel, err := NewCSVExporter(WithBOM(), WithDelimiter(';')).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(excel, append(append([]byte{}, utf8BOM...), "Hora;Lunes;Miércoles\n"...)))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	out, err := NewPDFExporter(WithLandscape()).Render(sampleDataset(), "Horario sección 1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterWritesSheet(t *testing.T) {
	out, err := NewXLSXExporter("Horario").Render(sampleDataset(), "Horario sección 1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Horario"}, f.GetSheetList())
	title, err := f.GetCellValue("Horario", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Horario sección 1", title)
}
