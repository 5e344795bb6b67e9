package feed

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

func buildArchive(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entry, err := archive.Create(name)
	require.NoError(t, err)

	// файл поставщика закодирован в windows-1251
	encoded := transform.NewWriter(entry, charmap.Windows1251.NewEncoder())
	_, err = io.WriteString(encoded, content)
	require.NoError(t, err)
	require.NoError(t, encoded.Close())
	require.NoError(t, archive.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListItemsParsesRemnantsFile(t *testing.T) {
	content := "выгрузка от 2024-01-01\n" +
		"Код;Наименование;Количество;Цена\n" +
		"12345;Casio G-Shock;>10;5'990.00 руб.\n" +
		"67890;Casio Edifice;1;12 500.00 руб.\n" +
		"11111;Casio Vintage;5;500.00 руб.\n" +
		";Без кода;3;100.00 руб.\n" +
		"22222;Без цены;2;руб.\n"
	server := serveArchive(t, buildArchive(t, "ostatki.csv", content))

	fetcher := NewFetcher(server.URL, 1, io.Discard)
	items, err := fetcher.ListItems(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.InventoryItem{
		{SKU: "12345", Stock: 100, Price: 5990},
		{SKU: "67890", Stock: 0, Price: 12500},
		{SKU: "11111", Stock: 5, Price: 500},
	}, items)
}

func TestListItemsFailsWithoutRequiredColumns(t *testing.T) {
	content := "Артикул;Остаток\nA;1\n"
	server := serveArchive(t, buildArchive(t, "ostatki.csv", content))

	_, err := NewFetcher(server.URL, 0, io.Discard).ListItems(context.Background())
	var srcErr *engine.SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestListItemsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := NewFetcher(server.URL, 0, io.Discard).ListItems(context.Background())
	var srcErr *engine.SourceUnavailableError
	assert.ErrorAs(t, err, &srcErr)
}

func TestNormalizeQuantity(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want int
	}{
		{">10", 100},
		{"1", 0},
		{"7", 7},
		{" 3 ", 3},
		{"-2", 0},
		{"мало", 0},
	} {
		assert.Equal(t, tc.want, NormalizeQuantity(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParsePrice(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want float64
	}{
		{"5'990.00 руб.", 5990},
		{"12 500.00 руб.", 12500},
		{"100", 100},
		{"1.99", 1},
	} {
		got, err := ParsePrice(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}

	_, err := ParsePrice("руб.")
	assert.Error(t, err)
}
