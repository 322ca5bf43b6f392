package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// razorpayVerifier checks checkout signatures: hex(HMAC-SHA256(secret, orderID|paymentID)).
type razorpayVerifier struct {
	keySecret []byte
}

func NewRazorpayVerifier(keySecret string) PaymentVerifier {
	return &razorpayVerifier{keySecret: []byte(keySecret)}
}

func (v *razorpayVerifier) VerifySignature(orderID, paymentID, signature string) bool {
	if len(v.keySecret) == 0 || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := SignPayment(v.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayment computes the signature the gateway attaches to a captured payment.
func SignPayment(keySecret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
