package gas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultEtherscanURL = "https://api.etherscan.io/api"

// EtherscanOracle implements Oracle via the Etherscan gas tracker.
type EtherscanOracle struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewEtherscanOracle creates an oracle with optional proxy support.
func NewEtherscanOracle(apiKey, proxyURL string) *EtherscanOracle {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &EtherscanOracle{
		APIKey:  apiKey,
		BaseURL: defaultEtherscanURL,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (o *EtherscanOracle) Prices(ctx context.Context) (*Prices, error) {
	endpoint := fmt.Sprintf("%s?module=gastracker&action=gasoracle&apikey=%s", o.BaseURL, url.QueryEscape(o.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gas prices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch gas prices: status %d", resp.StatusCode)
	}

	// Etherscan reports gwei values as strings.
	var result struct {
		Status string `json:"status"`
		Result struct {
			SafeGasPrice    string `json:"SafeGasPrice"`
			ProposeGasPrice string `json:"ProposeGasPrice"`
			FastGasPrice    string `json:"FastGasPrice"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gas prices: %w", err)
	}
	if result.Status != "1" {
		return nil, fmt.Errorf("gas oracle returned status %q", result.Status)
	}

	standard, err := strconv.ParseFloat(result.Result.SafeGasPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse standard gas price: %w", err)
	}
	fast, err := strconv.ParseFloat(result.Result.ProposeGasPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse fast gas price: %w", err)
	}
	rapid, err := strconv.ParseFloat(result.Result.FastGasPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse rapid gas price: %w", err)
	}

	return &Prices{StandardGwei: standard, FastGwei: fast, RapidGwei: rapid}, nil
}
