// Package dendrite implements the validator-side client that fans hash
// challenges out to miner axons.
package dendrite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/pkg/signature"
)

// Dendrite queries miner axons over HTTP with retries, zstd compression and
// signed identity headers.
type Dendrite struct {
	httpClient *retryablehttp.Client
	encoder    *zstd.Encoder
	decoder    *zstd.Decoder
	keyring    *signature.Keyring
	hotkey     string
}

// NewDendrite builds a Dendrite from the client env config. The keyring is
// optional; without it requests are sent unsigned (dev setups).
func NewDendrite(cfg *config.ClientEnvConfig, keyring *signature.Keyring) (*Dendrite, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = cfg.ClientTimeout
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	d := &Dendrite{
		httpClient: client,
		encoder:    encoder,
		decoder:    decoder,
		keyring:    keyring,
	}
	if keyring != nil {
		d.hotkey = keyring.Address()
	}
	return d, nil
}

// Close releases the compression resources.
func (d *Dendrite) Close() {
	if d.encoder != nil {
		d.encoder.Close()
	}
	if d.decoder != nil {
		d.decoder.Close()
	}
}

// CreateAuthParams signs the ownership message with the local hotkey.
func (d *Dendrite) CreateAuthParams() (AuthParams, error) {
	if d.keyring == nil {
		return AuthParams{}, fmt.Errorf("keyring not initialized")
	}

	message := "I swear that I am the owner of hotkey:" + d.hotkey
	sig, err := d.keyring.Sign(message)
	if err != nil {
		return AuthParams{}, fmt.Errorf("failed to sign message: %w", err)
	}

	return AuthParams{
		Hotkey:    d.hotkey,
		Message:   message,
		Signature: sig,
	}, nil
}

// AxonURL formats the base URL for an axon entry.
func AxonURL(axon kami.AxonInfo) string {
	return fmt.Sprintf("http://%s:%d", axon.IP, axon.Port)
}

func (d *Dendrite) call(ctx context.Context, baseURL string, ch HashChallenge) (HashResponse, error) {
	var out HashResponse

	payload, err := sonic.Marshal(ch)
	if err != nil {
		return out, fmt.Errorf("marshal challenge: %w", err)
	}
	compressed := d.encoder.EncodeAll(payload, nil)

	endpoint := strings.TrimSuffix(baseURL, "/") + "/HashChallenge"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, compressed)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("Accept-Encoding", "zstd")
	if d.keyring != nil {
		auth, err := d.CreateAuthParams()
		if err != nil {
			return out, err
		}
		req.Header.Set(HotkeyHeader, auth.Hotkey)
		req.Header.Set(MessageHeader, auth.Message)
		req.Header.Set(SignatureHeader, auth.Signature)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("challenge request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read response body: %w", err)
	}

	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "zstd") {
		body, err = d.decoder.DecodeAll(body, nil)
		if err != nil {
			return out, fmt.Errorf("decompress response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(body))
	}

	var envelope StdResponse[HashResponse]
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return out, fmt.Errorf("unmarshal response: %w", err)
	}
	if envelope.Error != nil {
		return out, fmt.Errorf("axon error: %s", *envelope.Error)
	}

	return envelope.Body, nil
}

// Query sends the challenge to every axon concurrently and returns responses
// in axon order. A failed or unreachable peer yields a zero HashResponse and
// its error in the matching slot; the round itself never aborts.
func (d *Dendrite) Query(ctx context.Context, axons []kami.AxonInfo, ch HashChallenge) ([]HashResponse, []error) {
	responses := make([]HashResponse, len(axons))
	errs := make([]error, len(axons))

	var wg sync.WaitGroup
	for i, axon := range axons {
		if axon.IP == "" || axon.Port == 0 {
			errs[i] = fmt.Errorf("axon %d has no endpoint", i)
			continue
		}

		wg.Add(1)
		go func(i int, axon kami.AxonInfo) {
			defer wg.Done()
			resp, err := d.call(ctx, AxonURL(axon), ch)
			if err != nil {
				log.Debug().Err(err).Str("axon", AxonURL(axon)).Int("nonce", ch.Nonce).Msg("challenge query failed")
				errs[i] = err
				return
			}
			responses[i] = resp
		}(i, axon)
	}
	wg.Wait()

	return responses, errs
}
