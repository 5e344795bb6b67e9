package ozon

type productListRequest struct {
	Filter productListFilter `json:"filter"`
	LastID string            `json:"last_id"`
	Limit  int               `json:"limit"`
}

type productListFilter struct {
	Visibility string `json:"visibility"`
}

type productListResponse struct {
	Result struct {
		Items []struct {
			OfferID string `json:"offer_id"`
		} `json:"items"`
		Total  int    `json:"total"`
		LastID string `json:"last_id"`
	} `json:"result"`
}

type stockUpdate struct {
	OfferID string `json:"offer_id"`
	Stock   int    `json:"stock"`
}

type importStocksRequest struct {
	Stocks []stockUpdate `json:"stocks"`
}

// priceUpdate — формат /v1/product/import/prices: цена строкой, без копеек.
type priceUpdate struct {
	AutoActionEnabled string `json:"auto_action_enabled"`
	CurrencyCode      string `json:"currency_code"`
	OfferID           string `json:"offer_id"`
	OldPrice          string `json:"old_price"`
	Price             string `json:"price"`
}

type importPricesRequest struct {
	Prices []priceUpdate `json:"prices"`
}

type importResponse struct {
	Result []importItemResult `json:"result"`
}

type importItemResult struct {
	OfferID string            `json:"offer_id"`
	Updated bool              `json:"updated"`
	Errors  []importItemError `json:"errors"`
}

type importItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
