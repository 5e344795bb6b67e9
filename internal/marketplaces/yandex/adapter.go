package yandex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/internal/marketplaces"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

const (
	DefaultAPIURL = "https://api.partner.market.yandex.ru"

	offerListLimit = 200

	defaultMaxBatchSize  = 500
	defaultIntervalFloor = time.Second
)

type Config struct {
	Token      string
	CampaignID string
	BusinessID string

	APIURL               string
	MaxBatchSize         int
	RequestIntervalFloor time.Duration
}

// Adapter pushes stock and price updates to the Yandex.Market partner API.
// Stocks go to the campaign, prices to the business the campaign belongs to.
type Adapter struct {
	cfg    Config
	client *marketplaces.Client
	store  engine.BaselineStore
	log    logger.Logger
}

func NewAdapter(cfg Config, store engine.BaselineStore, writer io.Writer) *Adapter {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Adapter{
		cfg:    cfg,
		client: marketplaces.NewClient("yandex-market", cfg.APIURL, marketplaces.BearerAuth(cfg.Token), writer),
		store:  store,
		log:    logger.NewLogger(writer, "[yandex-market]"),
	}
}

func (a *Adapter) ID() string { return "yandex-market" }

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

func (a *Adapter) listOfferIDs(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("/campaigns/%s/offers", a.cfg.CampaignID)

	var offerIDs []string
	pageToken := ""
	for {
		request := offerListRequest{PageToken: pageToken, Limit: offerListLimit}
		var response offerListResponse
		if err := a.client.DoJSON(ctx, http.MethodPost, endpoint, request, &response); err != nil {
			return nil, err
		}
		for _, offer := range response.Result.Offers {
			offerIDs = append(offerIDs, offer.OfferID)
		}
		pageToken = response.Result.Paging.NextPageToken
		if pageToken == "" || len(response.Result.Offers) == 0 {
			break
		}
	}
	return offerIDs, nil
}

// PushBatch sends the batch as at most two partner API calls. The API
// acknowledges per call, not per item, so a rejected call fails only the
// entries it carried.
func (a *Adapter) PushBatch(ctx context.Context, batch models.Batch) ([]models.OutcomeRecord, error) {
	itemErrs := make(map[string]string, len(batch.Entries))
	var stocks []offerStocks
	var prices []offerPrice

	for _, entry := range batch.Entries {
		if verr := marketplaces.ValidateEntry(entry); verr != nil {
			itemErrs[entry.SKU] = verr.Error()
			continue
		}
		switch entry.Field {
		case models.FieldStock:
			stocks = append(stocks, newOfferStocks(entry.SKU, entry.NewStock))
		case models.FieldPrice:
			prices = append(prices, newOfferPrice(entry))
		case models.FieldBoth:
			stocks = append(stocks, newOfferStocks(entry.SKU, entry.NewStock))
			prices = append(prices, newOfferPrice(entry))
		case models.FieldRemoved:
			stocks = append(stocks, newOfferStocks(entry.SKU, 0))
		}
	}

	if len(stocks) > 0 {
		endpoint := fmt.Sprintf("/campaigns/%s/offers/stocks", a.cfg.CampaignID)
		if err := a.call(ctx, http.MethodPut, endpoint, updateStocksRequest{SKUs: stocks}); err != nil {
			return nil, err
		}
	}
	if len(prices) > 0 {
		endpoint := fmt.Sprintf("/businesses/%s/offer-prices/updates", a.cfg.BusinessID)
		if err := a.call(ctx, http.MethodPost, endpoint, updatePricesRequest{Offers: prices}); err != nil {
			return nil, err
		}
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

func (a *Adapter) call(ctx context.Context, method, endpoint string, body interface{}) error {
	var response apiStatusResponse
	if err := a.client.DoJSON(ctx, method, endpoint, body, &response); err != nil {
		return err
	}
	if response.Status != "" && response.Status != "OK" {
		detail := response.Status
		if len(response.Errors) > 0 {
			detail = fmt.Sprintf("%s: %s", response.Errors[0].Code, response.Errors[0].Message)
		}
		return fmt.Errorf("%s rejected the call: %s", endpoint, detail)
	}
	return nil
}

func newOfferStocks(sku string, count int) offerStocks {
	return offerStocks{SKU: sku, Items: []stockItem{{Count: count}}}
}

func newOfferPrice(entry models.Change) offerPrice {
	return offerPrice{
		OfferID: entry.SKU,
		Price:   priceValue{Value: entry.NewPrice, CurrencyID: "RUR"},
	}
}
