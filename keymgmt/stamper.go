package keymgmt

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Stamper signs an outgoing request body and attaches the proof header the
// key-management service authenticates with.
type Stamper interface {
	Stamp(req *http.Request, body []byte) error
}

// SignFunc produces a signature over the request body. The caller owns the
// key material; the stamper only handles header encoding.
type SignFunc func(body []byte) (signature string, err error)

// APIKeyStamper stamps requests with an X-Stamp header carrying the public
// key, signature scheme, and a signature produced by Sign.
type APIKeyStamper struct {
	PublicKey string
	Scheme    string
	Sign      SignFunc
}

const defaultSignatureScheme = "SIGNATURE_SCHEME_TK_API_P256"

type stampPayload struct {
	PublicKey string `json:"publicKey"`
	Scheme    string `json:"scheme"`
	Signature string `json:"signature"`
}

func (s *APIKeyStamper) Stamp(req *http.Request, body []byte) error {
	signature, err := s.Sign(body)
	if err != nil {
		return err
	}

	scheme := s.Scheme
	if scheme == "" {
		scheme = defaultSignatureScheme
	}

	payload, err := json.Marshal(stampPayload{
		PublicKey: s.PublicKey,
		Scheme:    scheme,
		Signature: signature,
	})
	if err != nil {
		return err
	}

	req.Header.Set("X-Stamp", base64.RawURLEncoding.EncodeToString(payload))
	return nil
}

// StamperFunc adapts a function to the Stamper interface.
type StamperFunc func(req *http.Request, body []byte) error

func (f StamperFunc) Stamp(req *http.Request, body []byte) error {
	return f(req, body)
}
