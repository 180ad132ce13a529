package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/deskos/deskos-api/internal/services"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type DatabaseHandler struct {
	documents DocumentServiceInterface
	logger    *zap.Logger
}

func NewDatabaseHandler(documents DocumentServiceInterface, logger *zap.Logger) *DatabaseHandler {
	return &DatabaseHandler{
		documents: documents,
		logger:    logger,
	}
}

// listParams reads limit/offset query parameters with the store defaults.
func listParams(c *drift.Context) (int64, int64, bool) {
	limit, offset := int64(100), int64(0)

	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.BadRequest("invalid limit")
			return 0, 0, false
		}
		limit = parsed
	}
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.BadRequest("invalid offset")
			return 0, 0, false
		}
		offset = parsed
	}
	return limit, offset, true
}

func (h *DatabaseHandler) ListCollections(c *drift.Context) {
	collections, err := h.documents.Collections(context.Background())
	if err != nil {
		h.logger.Error("failed to list collections", zap.Error(err))
		c.InternalServerError("failed to list collections")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  collections,
		Links: map[string]string{"self": "/api/db"},
	})
}

func (h *DatabaseHandler) CreateDocument(c *drift.Context) {
	collection := c.Param("collection")

	var data json.RawMessage
	if err := c.BindJSON(&data); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	doc, err := h.documents.Create(context.Background(), collection, data)
	if err != nil {
		h.logger.Error("failed to create document",
			zap.String("collection", collection), zap.Error(err))
		c.InternalServerError("failed to create document")
		return
	}

	_ = c.JSON(201, dto.Response{
		Data:  doc,
		Links: map[string]string{"self": "/api/db/" + collection + "/" + doc.ID},
	})
}

func (h *DatabaseHandler) ListDocuments(c *drift.Context) {
	collection := c.Param("collection")

	limit, offset, ok := listParams(c)
	if !ok {
		return
	}

	result, err := h.documents.List(context.Background(), collection, limit, offset)
	if err != nil {
		h.logger.Error("failed to list documents",
			zap.String("collection", collection), zap.Error(err))
		c.InternalServerError("failed to list documents")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: result.Documents,
		Meta: dto.ListMeta{Count: result.Count, Limit: limit, Offset: offset},
		Links: map[string]string{
			"self":        "/api/db/" + collection,
			"collections": "/api/db",
		},
	})
}

func (h *DatabaseHandler) GetDocument(c *drift.Context) {
	collection := c.Param("collection")
	id := c.Param("id")

	doc, err := h.documents.Get(context.Background(), collection, id)
	if errors.Is(err, services.ErrDocumentNotFound) {
		c.NotFound("document not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		c.InternalServerError("failed to get document")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  doc,
		Links: map[string]string{"self": "/api/db/" + collection + "/" + id},
	})
}

func (h *DatabaseHandler) UpdateDocument(c *drift.Context) {
	collection := c.Param("collection")
	id := c.Param("id")

	var data json.RawMessage
	if err := c.BindJSON(&data); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	doc, err := h.documents.Update(context.Background(), collection, id, data)
	if errors.Is(err, services.ErrDocumentNotFound) {
		c.NotFound("document not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		c.InternalServerError("failed to update document")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  doc,
		Links: map[string]string{"self": "/api/db/" + collection + "/" + id},
	})
}

func (h *DatabaseHandler) DeleteDocument(c *drift.Context) {
	collection := c.Param("collection")
	id := c.Param("id")

	deleted, err := h.documents.Delete(context.Background(), collection, id)
	if err != nil {
		h.logger.Error("failed to delete document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		c.InternalServerError("failed to delete document")
		return
	}
	if !deleted {
		c.NotFound("document not found")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "document deleted"})
}

func (h *DatabaseHandler) Reset(c *drift.Context) {
	if err := h.documents.Reset(context.Background()); err != nil {
		h.logger.Error("failed to reset database", zap.Error(err))
		c.InternalServerError("failed to reset database")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "database reset"})
}

func (h *DatabaseHandler) Query(c *drift.Context) {
	var req dto.QueryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Query == "" {
		c.BadRequest("query is required")
		return
	}

	rows, err := h.documents.Query(context.Background(), req.Query)
	if errors.Is(err, services.ErrQueryNotAllowed) {
		c.BadRequest("only SELECT queries are allowed")
		return
	}
	if err != nil {
		h.logger.Error("failed to execute query", zap.Error(err))
		c.InternalServerError("failed to execute query")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: rows,
		Meta: map[string]int{"count": len(rows)},
	})
}
