package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/llm"
)

const maxGenerateBody = 256 << 10

const generateRequestSchema = `{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "minLength": 1},
    "systemInstruction": {"type": "string"}
  },
  "required": ["prompt"]
}`

var generateSchema = mustCompileSchema("generate-request", generateRequestSchema)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("parse schema %s: %v", name, err))
	}
	url := fmt.Sprintf("schema://%s.json", name)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return c.MustCompile(url)
}

// decodeGenerateRequest parses and validates a /api/generate body.
func decodeGenerateRequest(r io.Reader) (llm.GenerateRequest, error) {
	var req llm.GenerateRequest
	raw, err := io.ReadAll(io.LimitReader(r, maxGenerateBody))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := generateSchema.Validate(doc); err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decode body: %w", err)
	}
	return req, nil
}

// generate is the text-generation proxy: one prompt in, one text out.
func (s *Server) generate(c *gin.Context) {
	if !s.configured {
		c.JSON(http.StatusInternalServerError, llm.ErrorBody{Error: "API key not configured"})
		return
	}

	req, err := decodeGenerateRequest(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}

	ctx := llm.WithPurpose(c.Request.Context(), llm.PurposeProxy)
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.UserText(req.SystemInstruction, req.Prompt))
	if errors.Is(err, llm.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, llm.ErrorBody{Error: "API key not configured"})
		return
	}
	if err != nil {
		s.logger.Error("generate failed",
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, llm.ErrorBody{
			Error:   "Failed to get response from Gemini.",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, llm.GenerateResponse{Text: resp.Text})
}
