// Package payment authenticates and interprets payment provider notifications.
package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrBadSignature = errors.New("bad signature")

// Notification carries the fields the provider posts to the webhook.
type Notification struct {
	TestNotification string `json:"test_notification"`
	SHA1Hash         string `json:"sha1_hash"`
	NotificationType string `json:"notification_type"`
	OperationID      string `json:"operation_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Datetime         string `json:"datetime"`
	Sender           string `json:"sender"`
	Codepro          string `json:"codepro"`
	Label            string `json:"label"`
}

// SigningString is the '&'-joined field list the provider hashes. The secret sits
// between codepro and label.
func (n Notification) SigningString(secret string) string {
	return strings.Join([]string{
		n.NotificationType,
		n.OperationID,
		n.Amount,
		n.Currency,
		n.Datetime,
		n.Sender,
		n.Codepro,
		secret,
		n.Label,
	}, "&")
}

// Sign returns the hex SHA-1 of the signing string.
func Sign(n Notification, secret string) string {
	sum := sha1.Sum([]byte(n.SigningString(secret)))
	return hex.EncodeToString(sum[:])
}

// Verify checks n.SHA1Hash against the digest computed with secret.
func Verify(n Notification, secret string) error {
	want := Sign(n, secret)
	if subtle.ConstantTimeCompare([]byte(want), []byte(n.SHA1Hash)) != 1 {
		return ErrBadSignature
	}
	return nil
}

func (n Notification) IsTest() bool {
	return n.TestNotification == "true"
}

func (n Notification) ParseAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(n.Amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", n.Amount, err)
	}
	return amount, nil
}

// Decode reads a notification from a form-encoded body (the provider's format) or JSON.
func Decode(r *http.Request) (Notification, error) {
	var n Notification
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return n, err
		}
		f := r.PostForm
		n = Notification{
			TestNotification: f.Get("test_notification"),
			SHA1Hash:         f.Get("sha1_hash"),
			NotificationType: f.Get("notification_type"),
			OperationID:      f.Get("operation_id"),
			Amount:           f.Get("amount"),
			Currency:         f.Get("currency"),
			Datetime:         f.Get("datetime"),
			Sender:           f.Get("sender"),
			Codepro:          f.Get("codepro"),
			Label:            f.Get("label"),
		}
		return n, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal(body, &n); err != nil {
		return n, err
	}
	return n, nil
}
