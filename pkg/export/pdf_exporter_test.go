package export

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Name", "Branch"},
		Rows: []map[string]string{
			{"Name": "Riya Sharma", "Branch": "Computer Science & Engineering"},
		},
	}

	out, err := NewPDFExporter().Render(data, "Admission Enquiries Report", "Generated on: 2025-06-10")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterTranslatesNonASCIIText(t *testing.T) {
	data := Dataset{
		Headers: []string{"Branch"},
		Rows: []map[string]string{
			{"Branch": "MBA – Logistics and Supply Chain Management"},
		},
	}

	out, err := NewPDFExporter().Render(data, "", "")
	require.NoError(t, err)

	content := pageContent(t, out)
	assert.Contains(t, string(content), "MBA \x96 Logistics")
	assert.NotContains(t, string(content), "–")
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Report", "")
	require.Error(t, err)
}

// pageContent inflates the first stream in the document, which holds the
// first page's drawing operations.
func pageContent(t *testing.T, pdf []byte) []byte {
	t.Helper()
	start := bytes.Index(pdf, []byte("stream\n"))
	require.GreaterOrEqual(t, start, 0)
	start += len("stream\n")
	end := bytes.Index(pdf[start:], []byte("\nendstream"))
	require.Greater(t, end, 0)

	zr, err := zlib.NewReader(bytes.NewReader(pdf[start : start+end]))
	require.NoError(t, err)
	defer zr.Close() //nolint:errcheck

	content, err := io.ReadAll(zr)
	require.NoError(t, err)
	return content
}
