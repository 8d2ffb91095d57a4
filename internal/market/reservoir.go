package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"FloorSentinel/internal/model"
)

// ReservoirClient implements MarketData against the Reservoir REST API.
type ReservoirClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewReservoirClient creates a client with optional proxy support.
func NewReservoirClient(baseURL, apiKey, proxyURL string) *ReservoirClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ReservoirClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (c *ReservoirClient) Name() string { return "reservoir" }

// rsCollection is the expected JSON shape of a collection record.
type rsCollection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FloorAsk *struct {
		Price float64 `json:"price"`
	} `json:"floorAsk"`
	Volume         map[string]float64 `json:"volume"`
	VolumeChange   map[string]float64 `json:"volumeChange"`
	TokenCount     int64              `json:"tokenCount"`
	OwnerCount     int64              `json:"ownerCount"`
	TopHolderShare float64            `json:"topHolderShare"`
}

func (c *ReservoirClient) Collection(ctx context.Context, id string) (*Collection, error) {
	endpoint := fmt.Sprintf("%s/collections/v5?id=%s&includeTopBid=true", c.BaseURL, url.QueryEscape(id))
	var result struct {
		Collections []rsCollection `json:"collections"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch collection: %w", err)
	}
	if len(result.Collections) == 0 {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	rc := result.Collections[0]

	col := &Collection{
		ID:              id,
		Name:            rc.Name,
		Volume24h:       rc.Volume["1day"],
		VolumeChange24h: rc.VolumeChange["1day"],
		TokenCount:      rc.TokenCount,
		OwnerCount:      rc.OwnerCount,
		TopHolderShare:  rc.TopHolderShare,
	}
	if rc.FloorAsk != nil {
		col.FloorPrice = rc.FloorAsk.Price
	}
	return col, nil
}

func (c *ReservoirClient) Sales(ctx context.Context, id string, limit int) ([]Sale, error) {
	endpoint := fmt.Sprintf("%s/sales/v4?collection=%s&limit=%d&sortBy=timestamp&sortDirection=desc",
		c.BaseURL, url.QueryEscape(id), limit)
	var result struct {
		Sales []struct {
			Token struct {
				TokenID string `json:"tokenId"`
			} `json:"token"`
			Price     float64 `json:"price"`
			From      string  `json:"from"`
			To        string  `json:"to"`
			Timestamp int64   `json:"timestamp"`
		} `json:"sales"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}
	sales := make([]Sale, len(result.Sales))
	for i, s := range result.Sales {
		sales[i] = Sale{
			TokenID:   s.Token.TokenID,
			Price:     s.Price,
			From:      s.From,
			To:        s.To,
			Timestamp: time.Unix(s.Timestamp, 0),
		}
	}
	return sales, nil
}

func (c *ReservoirClient) FloorHistory(ctx context.Context, id string) ([]model.FloorPricePoint, error) {
	endpoint := fmt.Sprintf("%s/collections/v5/%s/floorask/v1?normalizeRoyalties=true", c.BaseURL, url.PathEscape(id))
	var result struct {
		Prices []struct {
			Timestamp int64   `json:"timestamp"`
			Price     float64 `json:"price"`
		} `json:"prices"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch floor history: %w", err)
	}
	points := make([]model.FloorPricePoint, len(result.Prices))
	for i, p := range result.Prices {
		points[i] = model.FloorPricePoint{
			Timestamp: time.Unix(p.Timestamp, 0),
			Price:     p.Price,
		}
	}
	// Ensure chronological order
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

func (c *ReservoirClient) ActiveListings(ctx context.Context, id string, limit int, maxPrice float64) ([]model.Listing, error) {
	endpoint := fmt.Sprintf("%s/orders/asks/v4?collection=%s&sortBy=price&sortDirection=asc&status=active&normalizeRoyalties=true&limit=%d",
		c.BaseURL, url.QueryEscape(id), limit)
	var result struct {
		Orders []struct {
			ID         string  `json:"id"`
			Price      float64 `json:"price"`
			Maker      string  `json:"maker"`
			ValidFrom  int64   `json:"validFrom"`
			ValidUntil int64   `json:"validUntil"`
			Source     string  `json:"source"`
			Criteria   struct {
				Data struct {
					Token struct {
						TokenID string `json:"tokenId"`
					} `json:"token"`
				} `json:"data"`
			} `json:"criteria"`
		} `json:"orders"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	listings := make([]model.Listing, 0, len(result.Orders))
	for _, o := range result.Orders {
		if maxPrice > 0 && o.Price > maxPrice {
			continue
		}
		listings = append(listings, model.Listing{
			ID:         o.ID,
			TokenID:    o.Criteria.Data.Token.TokenID,
			Price:      o.Price,
			Maker:      o.Maker,
			ValidFrom:  o.ValidFrom,
			ValidUntil: o.ValidUntil,
			Source:     o.Source,
		})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Price < listings[j].Price })
	return listings, nil
}

func (c *ReservoirClient) TokenRarity(ctx context.Context, collectionID, tokenID string) (float64, error) {
	endpoint := fmt.Sprintf("%s/tokens/v5?collection=%s&tokenId=%s&includeAttributes=true",
		c.BaseURL, url.QueryEscape(collectionID), url.QueryEscape(tokenID))
	var result struct {
		Tokens []struct {
			Token struct {
				RarityRank int64 `json:"rarityRank"`
			} `json:"token"`
			Collection struct {
				TokenCount int64 `json:"tokenCount"`
			} `json:"collection"`
		} `json:"tokens"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch token rarity: %w", err)
	}
	if len(result.Tokens) == 0 {
		return 0, fmt.Errorf("token %s:%s: %w", collectionID, tokenID, ErrNotFound)
	}
	tk := result.Tokens[0]
	if tk.Token.RarityRank <= 0 || tk.Collection.TokenCount <= 0 {
		return 0, fmt.Errorf("rarity for %s:%s not reported: %w", collectionID, tokenID, ErrNotFound)
	}
	return float64(tk.Token.RarityRank) / float64(tk.Collection.TokenCount) * 100, nil
}

func (c *ReservoirClient) BuyTransaction(ctx context.Context, collectionID, tokenID, taker string) (*model.TxRequest, error) {
	endpoint := c.BaseURL + "/execute/buy/v7"
	payload := map[string]any{
		"items": []map[string]any{
			{"token": collectionID + ":" + tokenID, "quantity": 1},
		},
		"taker":    taker,
		"currency": "0x0000000000000000000000000000000000000000",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal buy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute buy: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("execute buy: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Path []struct {
			Data *struct {
				To    string `json:"to"`
				Data  string `json:"data"`
				Value string `json:"value"`
			} `json:"data"`
		} `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode buy response: %w", err)
	}
	if len(result.Path) == 0 || result.Path[0].Data == nil {
		return nil, fmt.Errorf("buy %s:%s: no transaction data: %w", collectionID, tokenID, ErrNotFound)
	}

	data := result.Path[0].Data
	value, err := parseWei(data.Value)
	if err != nil {
		return nil, fmt.Errorf("parse tx value %q: %w", data.Value, err)
	}
	return &model.TxRequest{
		To:    data.To,
		Data:  data.Data,
		Value: value,
	}, nil
}

func (c *ReservoirClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseWei parses a decimal or 0x-hex wei amount.
func parseWei(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount")
	}
	return v, nil
}
