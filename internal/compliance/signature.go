package compliance

import "strings"

// Signature is a signature record attached to a documentation record. The
// timestamp is left untyped because upstream payloads carry it as either a
// string or a decoded time value.
type Signature struct {
	Timestamp any    `json:"timestamp"`
	SignerID  string `json:"signerId"`
	Data      string `json:"data"`
}

// ValidateSignature checks the structural completeness of a signature: a
// timestamp that parses to an instant after the Unix epoch, a non-blank
// signer ID, and non-blank signature data. The requirements argument is
// accepted so per-jurisdiction signature policies can vary the checks later;
// it does not affect the result today.
func ValidateSignature(sig *Signature, requirements []string) bool {
	if sig == nil {
		return false
	}
	if _, ok := parseInstant(sig.Timestamp); !ok {
		return false
	}
	if strings.TrimSpace(sig.SignerID) == "" {
		return false
	}
	return strings.TrimSpace(sig.Data) != ""
}

// signatureFrom coerces a document value into a Signature. Request payloads
// decode signatures as generic maps; internal callers may pass the struct
// directly.
func signatureFrom(v any) *Signature {
	switch t := v.(type) {
	case nil:
		return nil
	case *Signature:
		return t
	case Signature:
		return &t
	case map[string]any:
		sig := &Signature{Timestamp: t["timestamp"]}
		if id, ok := t["signerId"].(string); ok {
			sig.SignerID = id
		} else if id, ok := t["signer_id"].(string); ok {
			sig.SignerID = id
		}
		if data, ok := t["data"].(string); ok {
			sig.Data = data
		}
		return sig
	default:
		return nil
	}
}
