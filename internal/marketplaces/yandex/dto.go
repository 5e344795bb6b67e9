package yandex

type offerListRequest struct {
	PageToken string `json:"page_token,omitempty"`
	Limit     int    `json:"limit"`
}

type offerListResponse struct {
	Result struct {
		Offers []struct {
			OfferID string `json:"offerId"`
		} `json:"offers"`
		Paging struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
	} `json:"result"`
}

type stockItem struct {
	Count int `json:"count"`
}

type offerStocks struct {
	SKU   string      `json:"sku"`
	Items []stockItem `json:"items"`
}

type updateStocksRequest struct {
	SKUs []offerStocks `json:"skus"`
}

type priceValue struct {
	Value      float64 `json:"value"`
	CurrencyID string  `json:"currencyId"`
}

type offerPrice struct {
	OfferID string     `json:"offerId"`
	Price   priceValue `json:"price"`
}

type updatePricesRequest struct {
	Offers []offerPrice `json:"offers"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiStatusResponse — общий конверт ответа партнёрского API.
type apiStatusResponse struct {
	Status string     `json:"status"`
	Errors []apiError `json:"errors"`
}
