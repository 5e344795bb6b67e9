package ozon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/internal/marketplaces"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

const (
	DefaultAPIURL = "https://api-seller.ozon.ru"

	productListPath  = "/v2/product/list"
	importStocksPath = "/v1/product/import/stocks"
	importPricesPath = "/v1/product/import/prices"

	listPageLimit = 1000

	// /v1/product/import/stocks принимает до 100 позиций за запрос.
	defaultMaxBatchSize  = 100
	defaultIntervalFloor = 500 * time.Millisecond
)

type Config struct {
	ClientID             string
	APIKey               string
	APIURL               string
	MaxBatchSize         int
	RequestIntervalFloor time.Duration
}

// Adapter pushes stock and price updates to the Ozon seller API.
type Adapter struct {
	cfg    Config
	client *marketplaces.Client
	store  engine.BaselineStore
	log    logger.Logger
}

// NewAdapter wires an already-authenticated Ozon adapter. store may be nil;
// the baseline then degrades to zero values for every known offer.
func NewAdapter(cfg Config, store engine.BaselineStore, writer io.Writer) *Adapter {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	auth := func(r *http.Request) {
		r.Header.Set("Client-Id", cfg.ClientID)
		r.Header.Set("Api-Key", cfg.APIKey)
	}
	return &Adapter{
		cfg:    cfg,
		client: marketplaces.NewClient("ozon", cfg.APIURL, auth, writer),
		store:  store,
		log:    logger.NewLogger(writer, "[ozon]"),
	}
}

func (a *Adapter) ID() string { return "ozon" }

func (a *Adapter) MaxBatchSize() int {
	if a.cfg.MaxBatchSize > 0 {
		return a.cfg.MaxBatchSize
	}
	return defaultMaxBatchSize
}

func (a *Adapter) RequestIntervalFloor() time.Duration {
	if a.cfg.RequestIntervalFloor > 0 {
		return a.cfg.RequestIntervalFloor
	}
	return defaultIntervalFloor
}

// FetchBaseline lists every offer known to the store on Ozon and overlays the
// last pushed values from the baseline store. Read-only.
func (a *Adapter) FetchBaseline(ctx context.Context) (map[string]models.RemoteItem, error) {
	offerIDs, err := a.listOfferIDs(ctx)
	if err != nil {
		return nil, err
	}

	var stored map[string]models.RemoteItem
	if a.store != nil {
		stored, err = a.store.Load(ctx, a.ID())
		if err != nil {
			return nil, &engine.TransientError{Err: fmt.Errorf("loading stored baseline: %w", err)}
		}
	}
	return marketplaces.OverlayStored(offerIDs, stored), nil
}

// listOfferIDs pages through /v2/product/list using the last_id cursor.
func (a *Adapter) listOfferIDs(ctx context.Context) ([]string, error) {
	var offerIDs []string
	lastID := ""
	for {
		request := productListRequest{
			Filter: productListFilter{Visibility: "ALL"},
			LastID: lastID,
			Limit:  listPageLimit,
		}
		var response productListResponse
		if err := a.client.DoJSON(ctx, http.MethodPost, productListPath, request, &response); err != nil {
			return nil, err
		}
		for _, item := range response.Result.Items {
			offerIDs = append(offerIDs, item.OfferID)
		}
		lastID = response.Result.LastID
		if len(response.Result.Items) == 0 || len(offerIDs) >= response.Result.Total || lastID == "" {
			break
		}
	}
	return offerIDs, nil
}

// PushBatch sends one batch as at most two import calls (stocks and prices)
// and returns a record per entry. Per-item marketplace rejections become
// Failed records; a transport failure of either call fails the whole push so
// the dispatcher can retry the entire batch.
func (a *Adapter) PushBatch(ctx context.Context, batch models.Batch) ([]models.OutcomeRecord, error) {
	itemErrs := make(map[string]string, len(batch.Entries))
	var stocks []stockUpdate
	var prices []priceUpdate

	for _, entry := range batch.Entries {
		if verr := marketplaces.ValidateEntry(entry); verr != nil {
			itemErrs[entry.SKU] = verr.Error()
			continue
		}
		switch entry.Field {
		case models.FieldStock:
			stocks = append(stocks, stockUpdate{OfferID: entry.SKU, Stock: entry.NewStock})
		case models.FieldPrice:
			prices = append(prices, newPriceUpdate(entry))
		case models.FieldBoth:
			stocks = append(stocks, stockUpdate{OfferID: entry.SKU, Stock: entry.NewStock})
			prices = append(prices, newPriceUpdate(entry))
		case models.FieldRemoved:
			// снять с продажи: остаток в ноль
			stocks = append(stocks, stockUpdate{OfferID: entry.SKU, Stock: 0})
		}
	}

	if len(stocks) > 0 {
		var response importResponse
		if err := a.client.DoJSON(ctx, http.MethodPost, importStocksPath, importStocksRequest{Stocks: stocks}, &response); err != nil {
			return nil, err
		}
		mergeImportResults(itemErrs, response.Result)
	}
	if len(prices) > 0 {
		var response importResponse
		if err := a.client.DoJSON(ctx, http.MethodPost, importPricesPath, importPricesRequest{Prices: prices}, &response); err != nil {
			return nil, err
		}
		mergeImportResults(itemErrs, response.Result)
	}

	records := make([]models.OutcomeRecord, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		record := models.OutcomeRecord{SKU: entry.SKU, BatchSeq: batch.Seq, Status: models.StatusSucceeded}
		if detail, failed := itemErrs[entry.SKU]; failed {
			record.Status = models.StatusFailed
			record.ErrorDetail = detail
		}
		records = append(records, record)
	}

	marketplaces.PersistBaseline(ctx, a.store, a.ID(), batch, itemErrs, a.log)
	return records, nil
}

func mergeImportResults(itemErrs map[string]string, results []importItemResult) {
	for _, result := range results {
		if result.Updated {
			continue
		}
		detail := "rejected by marketplace"
		if len(result.Errors) > 0 {
			detail = fmt.Sprintf("%s: %s", result.Errors[0].Code, result.Errors[0].Message)
		}
		if _, exists := itemErrs[result.OfferID]; !exists {
			itemErrs[result.OfferID] = detail
		}
	}
}

func newPriceUpdate(entry models.Change) priceUpdate {
	return priceUpdate{
		AutoActionEnabled: "UNKNOWN",
		CurrencyCode:      "RUB",
		OfferID:           entry.SKU,
		OldPrice:          "0",
		Price:             strconv.FormatFloat(entry.NewPrice, 'f', -1, 64),
	}
}
