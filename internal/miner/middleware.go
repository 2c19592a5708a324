package miner

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/dendrite"
	"github.com/hashnet-labs/hashcheck/pkg/signature"
)

var whitelistedRoutes = []string{"/health"}

func isWhitelisted(path string) bool {
	for _, route := range whitelistedRoutes {
		if path == route {
			return true
		}
	}
	return false
}

// ZstdMiddleware transparently decompresses zstd request bodies and
// compresses responses for clients that accept zstd.
func ZstdMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path()) {
			return c.Next()
		}

		if strings.EqualFold(c.Get("content-encoding"), "zstd") {
			body := c.Body()
			if len(body) > 0 {
				decoder, err := zstd.NewReader(nil)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(
						errorResponse(fmt.Errorf("failed to create zstd decoder: %w", err)))
				}
				defer decoder.Close()

				decompressed, err := decoder.DecodeAll(body, nil)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(
						errorResponse(fmt.Errorf("failed to decompress zstd data: %w", err)))
				}
				c.Request().SetBody(decompressed)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		if strings.Contains(strings.ToLower(c.Get("accept-encoding")), "zstd") {
			responseBody := c.Response().Body()
			if len(responseBody) > 0 {
				encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				if err != nil {
					log.Err(err).Msg("failed to create zstd encoder, sending uncompressed")
					return nil
				}
				defer encoder.Close()

				compressed := encoder.EncodeAll(responseBody, nil)
				c.Response().SetBody(compressed)
				c.Set("content-encoding", "zstd")
				c.Set("content-length", fmt.Sprintf("%d", len(compressed)))
			}
		}

		return nil
	}
}

// SignatureMiddleware rejects requests whose identity headers do not carry a
// valid sr25519 signature.
func SignatureMiddleware(verifier signature.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path()) {
			return c.Next()
		}

		sig := c.Get(dendrite.SignatureHeader)
		hotkey := c.Get(dendrite.HotkeyHeader)
		message := c.Get(dendrite.MessageHeader)

		if hotkey == "" || sig == "" || message == "" {
			errMsg := fmt.Sprintf("%s, missing headers, expected: %s, %s, %s",
				http.StatusText(http.StatusBadRequest),
				dendrite.SignatureHeader, dendrite.HotkeyHeader, dendrite.MessageHeader)
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse(fmt.Errorf("%s", errMsg)))
		}

		valid, err := verifier.Verify(message, sig, hotkey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(
				errorResponse(fmt.Errorf("signature verification error: %w", err)))
		}
		if !valid {
			return c.Status(fiber.StatusForbidden).JSON(
				errorResponse(fmt.Errorf("%s due to invalid signature", http.StatusText(http.StatusForbidden))))
		}

		log.Debug().Str("hotkey", hotkey).Msg("verified request signature")
		return c.Next()
	}
}

func errorResponse(err error) dendrite.StdResponse[map[string]any] {
	msg := err.Error()
	return dendrite.StdResponse[map[string]any]{Body: map[string]any{}, Error: &msg}
}
