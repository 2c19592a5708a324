package miner

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashnet-labs/hashcheck/internal/challenge"
	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/dendrite"
)

type mockVerifier struct {
	valid bool
	err   error
}

func (m *mockVerifier) Verify(message, sig, hotkey string) (bool, error) {
	return m.valid, m.err
}

func testMiner(t *testing.T, verifier *mockVerifier) *Miner {
	cfg := &config.ServerEnvConfig{Address: "127.0.0.1", Port: 8091, BodySizeLimit: 1 << 20}
	chainCfg := &config.ChainEnvConfig{Netuid: 1}
	if verifier == nil {
		return NewMiner(cfg, chainCfg, nil, nil)
	}
	return NewMiner(cfg, chainCfg, nil, verifier)
}

func postChallenge(t *testing.T, m *Miner, nonce int, headers map[string]string) *http.Response {
	payload, err := sonic.Marshal(dendrite.HashChallenge{Nonce: nonce})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/HashChallenge", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := m.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) dendrite.StdResponse[dendrite.HashResponse] {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope dendrite.StdResponse[dendrite.HashResponse]
	require.NoError(t, sonic.Unmarshal(body, &envelope))
	return envelope
}

func TestHashChallengeReturnsDigest(t *testing.T) {
	m := testMiner(t, nil)

	resp := postChallenge(t, m, 42, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.Nil(t, envelope.Error)
	assert.Equal(t, challenge.HashKey(42), envelope.Body.GeneratedHash)
	assert.NotZero(t, envelope.Body.Timestamp)
}

func TestHashChallengeRejectsOutOfRangeNonce(t *testing.T) {
	m := testMiner(t, nil)

	resp := postChallenge(t, m, challenge.MaxKey+1, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignatureMiddlewareRejectsMissingHeaders(t *testing.T) {
	m := testMiner(t, &mockVerifier{valid: true})

	resp := postChallenge(t, m, 1, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignatureMiddlewareRejectsInvalidSignature(t *testing.T) {
	m := testMiner(t, &mockVerifier{valid: false})

	headers := map[string]string{
		dendrite.HotkeyHeader:    "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ",
		dendrite.MessageHeader:   "msg",
		dendrite.SignatureHeader: "0xdead",
	}
	resp := postChallenge(t, m, 1, headers)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSignatureMiddlewareVerifierError(t *testing.T) {
	m := testMiner(t, &mockVerifier{err: errors.New("verification error")})

	headers := map[string]string{
		dendrite.HotkeyHeader:    "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ",
		dendrite.MessageHeader:   "msg",
		dendrite.SignatureHeader: "0xdead",
	}
	resp := postChallenge(t, m, 1, headers)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSignatureMiddlewareAcceptsValidSignature(t *testing.T) {
	m := testMiner(t, &mockVerifier{valid: true})

	headers := map[string]string{
		dendrite.HotkeyHeader:    "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ",
		dendrite.MessageHeader:   "msg",
		dendrite.SignatureHeader: "0xdead",
	}
	resp := postChallenge(t, m, 9, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, challenge.HashKey(9), envelope.Body.GeneratedHash)
}

func TestHealthIsWhitelisted(t *testing.T) {
	m := testMiner(t, &mockVerifier{valid: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := m.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
