package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// signaturePrefix marks a version 2 (HMAC-SHA256) Data API signature.
const signaturePrefix = "$02$"

// timestampLayout is the UTC minute-resolution timestamp the Data API expects.
const timestampLayout = "20060102-1504"

// SecurityPacket carries the non-secret authentication fields of a request.
// Timestamp and Signature are filled in by Client.Request.
type SecurityPacket struct {
	ConsumerKey string `json:"consumer_key"`
	Domain      string `json:"domain"`
	Timestamp   string `json:"timestamp,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Signature   string `json:"signature,omitempty"`
}

// FormatTimestamp renders t in the security packet timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Sign computes the request signature over the security fields, the encoded
// request packet and the action. Empty optional parts are left out of the
// signed string.
func Sign(security SecurityPacket, secret, requestJSON, action string) string {
	parts := []string{security.ConsumerKey, security.Domain, security.Timestamp}
	if security.UserID != "" {
		parts = append(parts, security.UserID)
	}
	if requestJSON != "" {
		parts = append(parts, requestJSON)
	}
	if action != "" {
		parts = append(parts, action)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "_")))
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
