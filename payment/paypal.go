package payment

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// PayPalStatusCompleted is PayPal's terminal status for a captured order.
const PayPalStatusCompleted = "COMPLETED"

// PayPal talks to the Checkout Orders v2 API. Every call exchanges the client
// credentials for a fresh access token; there is no persistent token cache.
type PayPal struct {
	BaseURL   string
	ClientID  string
	AppSecret string
	Client    *http.Client
}

func NewPayPalFromEnv() (*PayPal, error) {
	p := &PayPal{
		BaseURL:   os.Getenv("PAYPAL_API_URL"),
		ClientID:  os.Getenv("PAYPAL_CLIENT_ID"),
		AppSecret: os.Getenv("PAYPAL_APP_SECRET"),
		Client:    http.DefaultClient,
	}
	if p.BaseURL == "" || p.ClientID == "" || p.AppSecret == "" {
		return nil, fmt.Errorf("paypal configuration missing")
	}
	return p, nil
}

// generateAccessToken performs the client-credentials grant.
func (p *PayPal) generateAccessToken() (string, error) {
	req, err := http.NewRequest("POST", p.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.ClientID + ":" + p.AppSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := p.do(req)
	if err != nil {
		return "", err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to parse paypal token response: %v", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal returned empty access token")
	}
	return tok.AccessToken, nil
}

// CreateIntent creates a PayPal order for the amount and returns its id.
func (p *PayPal) CreateIntent(orderRef string, amount float64) (string, error) {
	token, err := p.generateAccessToken()
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": orderRef,
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         fmt.Sprintf("%.2f", amount),
				},
			},
		},
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", p.BaseURL+"/v2/checkout/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := p.do(req)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse paypal order response: %v", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("paypal returned empty order id")
	}
	return created.ID, nil
}

// CaptureIntent captures the PayPal order and reports the result.
func (p *PayPal) CaptureIntent(externalID string) (Capture, error) {
	token, err := p.generateAccessToken()
	if err != nil {
		return Capture{}, err
	}

	req, err := http.NewRequest("POST", p.BaseURL+"/v2/checkout/orders/"+externalID+"/capture", nil)
	if err != nil {
		return Capture{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := p.do(req)
	if err != nil {
		return Capture{}, err
	}

	var captured struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			Payments    struct {
				Captures []struct {
					Amount struct {
						Value string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(body, &captured); err != nil {
		return Capture{}, fmt.Errorf("failed to parse paypal capture response: %v", err)
	}

	out := Capture{
		ID:         captured.ID,
		Status:     captured.Status,
		Completed:  captured.Status == PayPalStatusCompleted,
		PayerEmail: captured.Payer.EmailAddress,
	}
	if len(captured.PurchaseUnits) > 0 {
		unit := captured.PurchaseUnits[0]
		out.OrderRef = unit.ReferenceID
		if len(unit.Payments.Captures) > 0 {
			out.Amount, _ = strconv.ParseFloat(unit.Payments.Captures[0].Amount.Value, 64)
		}
	}
	return out, nil
}

// do runs the request and treats any non-2xx response as a hard failure with
// the response body as diagnostic text.
func (p *PayPal) do(req *http.Request) ([]byte, error) {
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach paypal: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("paypal API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
