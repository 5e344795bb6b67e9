package feed

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

// Column names of the supplier remnants file.
const (
	columnCode     = "Код"
	columnQuantity = "Количество"
	columnPrice    = "Цена"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Fetcher downloads the supplier remnants archive and turns it into an
// inventory snapshot. The archive carries a single windows-1251 CSV.
type Fetcher struct {
	url        string
	headerRows int
	client     *http.Client
	log        logger.Logger
}

func NewFetcher(url string, headerRows int, writer io.Writer) *Fetcher {
	return &Fetcher{
		url:        url,
		headerRows: headerRows,
		client:     &http.Client{Timeout: 60 * time.Second},
		log:        logger.NewLogger(writer, "[feed]"),
	}
}

// ListItems implements engine.InventorySource. Any failure here is fatal to
// the run: without the snapshot no changes can be computed.
func (f *Fetcher) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &engine.SourceUnavailableError{Source: f.url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &engine.SourceUnavailableError{Source: f.url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &engine.SourceUnavailableError{Source: f.url, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &engine.SourceUnavailableError{Source: f.url, Err: fmt.Errorf("reading archive: %w", err)}
	}
	f.log.Log("fetched feed archive: %d bytes", len(body))

	items, err := f.parseArchive(body)
	if err != nil {
		return nil, &engine.SourceUnavailableError{Source: f.url, Err: err}
	}
	f.log.Log("parsed %d inventory item(s)", len(items))
	return items, nil
}

func (f *Fetcher) parseArchive(body []byte) ([]models.InventoryItem, error) {
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	entry := pickCSVEntry(archive)
	if entry == nil {
		return nil, fmt.Errorf("archive has no csv entry")
	}
	file, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", entry.Name, err)
	}
	defer file.Close()

	return f.parseCSV(file)
}

func pickCSVEntry(archive *zip.Reader) *zip.File {
	for _, file := range archive.File {
		if strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			return file
		}
	}
	if len(archive.File) > 0 {
		return archive.File[0]
	}
	return nil
}

func (f *Fetcher) parseCSV(file io.Reader) ([]models.InventoryItem, error) {
	// файл выгружается в windows-1251
	decoded := transform.NewReader(file, charmap.Windows1251.NewDecoder())
	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	for skip := 0; skip < f.headerRows; skip++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skipping header rows: %w", err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading column header: %w", err)
	}
	codeIdx, quantityIdx, priceIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columnCode:
			codeIdx = i
		case columnQuantity:
			quantityIdx = i
		case columnPrice:
			priceIdx = i
		}
	}
	if codeIdx < 0 || quantityIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("feed is missing required columns %q, %q, %q", columnCode, columnQuantity, columnPrice)
	}

	var items []models.InventoryItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feed row: %w", err)
		}
		if codeIdx >= len(record) || quantityIdx >= len(record) || priceIdx >= len(record) {
			continue
		}
		sku := strings.TrimSpace(record[codeIdx])
		if sku == "" {
			continue
		}
		price, err := ParsePrice(record[priceIdx])
		if err != nil {
			f.log.Log("skipping %s: %v", sku, err)
			continue
		}
		items = append(items, models.InventoryItem{
			SKU:   sku,
			Stock: NormalizeQuantity(record[quantityIdx]),
			Price: price,
		})
	}
	return items, nil
}

// NormalizeQuantity maps the supplier's quantity notation onto a stock count:
// ">10" means plenty (pushed as 100), a bare "1" means the last display unit
// and is not sold (pushed as 0).
func NormalizeQuantity(raw string) int {
	switch value := strings.TrimSpace(raw); value {
	case ">10":
		return 100
	case "1":
		return 0
	default:
		count, err := strconv.Atoi(value)
		if err != nil || count < 0 {
			return 0
		}
		return count
	}
}

// ParsePrice converts the supplier's price notation, e.g. "5'990.00 руб.",
// into whole rubles: everything after the decimal point is dropped, all
// non-digit characters are stripped.
func ParsePrice(raw string) (float64, error) {
	whole := strings.SplitN(raw, ".", 2)[0]
	digits := nonDigits.ReplaceAllString(whole, "")
	if digits == "" {
		return 0, fmt.Errorf("price %q has no digits", raw)
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	return value, nil
}
