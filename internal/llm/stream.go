package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Wire shape of one SSE "data:" event.
type providerStreamChunk struct {
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// CompleteStream opens a streaming generation and emits text deltas on
// the returned channel. The connection is established with the same retry
// policy as Complete; once streaming starts there are no mid-stream
// retries.
func (c *client) CompleteStream(parentCtx context.Context, req *CompletionRequest) (<-chan StreamResult, error) {
	bodyBytes, err := c.encodeRequest(req, true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.requestContext(parentCtx)

	results := make(chan StreamResult, 16)

	go func() {
		defer close(results)
		defer cancel()

		resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Response, error) {
			return c.post(ctx, bodyBytes)
		})
		if err != nil {
			c.logger.Error("stream connect failed",
				zap.String("model", c.cfg.Model),
				zap.Error(err),
			)
			results <- StreamResult{Err: err}
			return
		}
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		chunkCount := 0

		for {
			select {
			case <-ctx.Done():
				c.logger.Info("stream cancelled",
					zap.String("model", c.cfg.Model),
					zap.Error(ctx.Err()),
				)
				return
			default:
			}

			line, err := reader.ReadBytes('\n')
			if err != nil {
				if errors.Is(err, io.EOF) {
					c.logger.Info("stream completed",
						zap.String("model", c.cfg.Model),
						zap.Int("chunks", chunkCount),
					)
					return
				}
				results <- StreamResult{Err: fmt.Errorf("llmclient: read stream line: %w", err)}
				return
			}

			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			const prefix = "data: "
			if !bytes.HasPrefix(line, []byte(prefix)) {
				continue
			}

			payload := bytes.TrimSpace(line[len(prefix):])

			if bytes.Equal(payload, []byte("[DONE]")) {
				c.logger.Info("stream received [DONE]",
					zap.String("model", c.cfg.Model),
					zap.Int("chunks", chunkCount),
				)
				return
			}

			var chunk providerStreamChunk
			if err := json.Unmarshal(payload, &chunk); err != nil {
				results <- StreamResult{Err: fmt.Errorf("llmclient: unmarshal stream chunk: %w", err)}
				return
			}

			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" && choice.FinishReason == "" {
					continue
				}

				sc := &StreamChunk{
					Delta:        choice.Delta.Content,
					FinishReason: choice.FinishReason,
				}
				chunkCount++

				select {
				case <-ctx.Done():
					return
				case results <- StreamResult{Chunk: sc}:
				}
			}
		}
	}()

	return results, nil
}
