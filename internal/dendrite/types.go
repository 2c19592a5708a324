package dendrite

const (
	SignatureHeader = "x-signature"
	HotkeyHeader    = "x-hotkey"
	MessageHeader   = "x-message"
)

// HashChallenge is the request sent to miner axons. The route is derived
// from the type name: POST /HashChallenge.
type HashChallenge struct {
	Nonce int `json:"nonce" validate:"required,min=0,max=10000"`
}

// HashResponse carries a miner's answer to a challenge.
type HashResponse struct {
	GeneratedHash string `json:"generated_hash"`
	Timestamp     int64  `json:"timestamp"`
}

// StdResponse is the standardized envelope axons answer with.
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// AuthParams holds the signed identity attached to outgoing requests.
type AuthParams struct {
	Hotkey    string `validate:"required,len=48"`
	Message   string `validate:"required,min=1"`
	Signature string `validate:"required,startswith=0x,len=130"`
}
