package processor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// VerifyAndParse checks the signature header against the raw request body and
// decodes the event. Verification fails closed: any signature or payload
// problem returns a VerificationError and the event never reaches a handler.
func VerifyAndParse(payload []byte, sigHeader, secret string) (*Event, error) {
	sigHeader = strings.TrimSpace(sigHeader)
	if sigHeader == "" || strings.TrimSpace(secret) == "" {
		return nil, &VerificationError{Err: ErrInvalidSignature}
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, &VerificationError{Err: err}
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	verified := false
	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, &VerificationError{Err: ErrInvalidSignature}
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, &VerificationError{Err: ErrInvalidPayload}
	}
	if strings.TrimSpace(event.ID) == "" || strings.TrimSpace(event.Type) == "" {
		return nil, &VerificationError{Err: ErrInvalidPayload}
	}

	return &event, nil
}

// SignPayload computes the signature header value for a payload, used by
// tests to produce verifiable webhook requests.
func SignPayload(payload []byte, secret string, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" && value != "" {
			signatures = append(signatures, value)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("malformed signature header")
	}
	return timestamp, signatures, nil
}
