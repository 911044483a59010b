package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	var sb strings.Builder
	for _, c := range b {
		sb.WriteByte(trackingAlphabet[int(c)%len(trackingAlphabet)])
	}
	return sb.String()
}

// GenerateTrackingNumber produces a shipment tracking reference, unique per
// assignment so a reassigned order never reuses the old number.
func GenerateTrackingNumber() string {
	return fmt.Sprintf("TRK%d%s", time.Now().UnixMilli(), randomToken(6))
}

// GenerateTransactionID synthesizes a gateway transaction reference for
// simulated payments.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), randomToken(8))
}
