package handlers

import (
	"context"

	"github.com/deskos/deskos-api/internal/ai"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type GenerateHandler struct {
	ai     AIClientInterface
	logger *zap.Logger
}

func NewGenerateHandler(aiClient AIClientInterface, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		ai:     aiClient,
		logger: logger,
	}
}

func (h *GenerateHandler) ListModels(c *drift.Context) {
	models, err := h.ai.ListModels(context.Background())
	if err != nil {
		h.logger.Error("failed to list models", zap.Error(err))
		c.InternalServerError("failed to list models")
		return
	}

	_ = c.JSON(200, models)
}

// sseSender is the part of drift's SSE context the stream mapping needs.
type sseSender interface {
	Send(data string, event string, id string) error
	SendJSON(v interface{}, event string, id string) error
}

// sendStreamEvent maps one generation event onto the SSE wire.
func sendStreamEvent(sseCtx sseSender, ev ai.StreamEvent) error {
	switch ev.Type {
	case ai.EventStatus:
		return sseCtx.Send(ev.Text, "status", "")
	case ai.EventToken:
		return sseCtx.SendJSON(map[string]string{
			"type": "token",
			"text": ev.Text,
		}, "token", "")
	case ai.EventUsage:
		return sseCtx.SendJSON(map[string]any{
			"type":          "usage",
			"input_tokens":  ev.InputTokens,
			"output_tokens": ev.OutputTokens,
		}, "usage", "")
	case ai.EventResult:
		return sseCtx.SendJSON(map[string]any{
			"type":        "result",
			"source_code": ev.Result.SourceCode,
			"metadata":    ev.Result.Metadata,
		}, "result", "")
	}
	return nil
}

func (h *GenerateHandler) Generate(c *drift.Context) {
	var req dto.GenerateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Prompt == "" {
		c.BadRequest("prompt is required")
		return
	}

	sseCtx := c.SSE()

	err := h.ai.StreamApp(c.Request.Context(), req.Prompt, req.Model, func(ev ai.StreamEvent) {
		_ = sendStreamEvent(sseCtx, ev)
	})
	if err != nil {
		h.logger.Error("generation failed", zap.Error(err))
		_ = sseCtx.SendJSON(map[string]string{
			"type":    "error",
			"message": "generation failed",
		}, "error", "")
	}
}

func (h *GenerateHandler) Modify(c *drift.Context) {
	var req dto.ModifyCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.ExistingCode == "" {
		c.BadRequest("existing_code is required")
		return
	}
	if req.ModificationPrompt == "" {
		c.BadRequest("modification_prompt is required")
		return
	}

	sseCtx := c.SSE()

	err := h.ai.StreamModification(c.Request.Context(), req.ExistingCode, req.ModificationPrompt, req.Model, func(ev ai.StreamEvent) {
		_ = sendStreamEvent(sseCtx, ev)
	})
	if err != nil {
		h.logger.Error("code modification failed", zap.Error(err))
		_ = sseCtx.SendJSON(map[string]string{
			"type":    "error",
			"message": "code modification failed",
		}, "error", "")
	}
}
