package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// PushService sends document notifications (overdue invoices, payment
// reminders) over the FCM HTTP v1 API. Without messaging credentials the
// service still stores device tokens but drops all sends; a nil
// *PushService is also valid and drops everything.
type PushService struct {
	projectID   string
	db          *sql.DB
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

type serviceAccountCredentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// NewPushService initializes a push service from the service account JSON
// at credentialsPath. An empty path returns a token-store-only service:
// devices can register, sends are dropped until credentials arrive.
func NewPushService(credentialsPath string, db *sql.DB) (*PushService, error) {
	if credentialsPath == "" {
		return &PushService{db: db}, nil
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %v", err)
	}

	var creds serviceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("error parsing credentials: %v", err)
	}
	if creds.ProjectID == "" || creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("credentials file is missing required fields")
	}

	config := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(creds.PrivateKey, "\\n", "\n")),
		Scopes:     []string{"https://www.googleapis.com/auth/firebase.messaging"},
		TokenURL:   creds.TokenURI,
	}

	return &PushService{
		projectID:   creds.ProjectID,
		db:          db,
		httpClient:  &http.Client{},
		tokenSource: config.TokenSource(context.Background()),
	}, nil
}

// SendNotification sends one push message to a device token.
func (p *PushService) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if p == nil || p.tokenSource == nil {
		return nil
	}
	if token == "" {
		return fmt.Errorf("push token cannot be empty")
	}

	oauthToken, err := p.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
			"webpush": map[string]interface{}{
				"notification": map[string]interface{}{
					"title": title,
					"body":  body,
				},
				"fcm_options": map[string]interface{}{
					"link": data["action"],
				},
			},
		},
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", p.projectID)
	return p.sendHTTPv1Request(ctx, endpoint, oauthToken.AccessToken, message)
}

// SendNotificationToUser pushes to the device registered for a user.
// Users without a registered token are skipped silently.
func (p *PushService) SendNotificationToUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	if p == nil {
		return nil
	}

	var pushToken string
	err := p.db.QueryRow(`SELECT fcm_token FROM users WHERE id = $1 AND fcm_token IS NOT NULL AND fcm_token != ''`, userID).Scan(&pushToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("error fetching push token for user %d: %v", userID, err)
	}

	return p.SendNotification(ctx, pushToken, title, body, data)
}

// NotifyOverdueInvoice pushes an overdue-invoice alert to the user who
// created the invoice.
func (p *PushService) NotifyOverdueInvoice(ctx context.Context, createdBy int, invoiceNumber, clientName string) error {
	if p == nil {
		return nil
	}
	title := "Invoice overdue"
	body := fmt.Sprintf("Invoice %s for %s is past its due date", invoiceNumber, clientName)
	return p.SendNotificationToUser(ctx, createdBy, title, body, map[string]string{
		"type":           "invoice_overdue",
		"invoice_number": invoiceNumber,
	})
}

// SavePushToken saves or replaces the device token for a user.
func (p *PushService) SavePushToken(userID int, token string) error {
	if p == nil {
		return fmt.Errorf("push notifications are not configured")
	}
	if _, err := p.db.Exec(`UPDATE users SET fcm_token = $1 WHERE id = $2`, token, userID); err != nil {
		return fmt.Errorf("error saving push token: %v", err)
	}
	return nil
}

// RemovePushToken clears the device token for a user.
func (p *PushService) RemovePushToken(userID int) error {
	if p == nil {
		return nil
	}
	if _, err := p.db.Exec(`UPDATE users SET fcm_token = NULL WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("error removing push token: %v", err)
	}
	return nil
}

func (p *PushService) sendHTTPv1Request(ctx context.Context, endpoint, accessToken string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResp map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil {
			return fmt.Errorf("FCM API error (status %d): %v", resp.StatusCode, errorResp)
		}
		return fmt.Errorf("FCM API error: status code %d", resp.StatusCode)
	}

	var fcmResponse struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fcmResponse); err == nil && fcmResponse.Name != "" {
		log.Printf("Push notification sent: %s", fcmResponse.Name)
	}
	return nil
}
