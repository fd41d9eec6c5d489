package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/ai"
	"tienda-api/internal/app"
	"tienda-api/internal/model"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

const (
	msgAssistantUnavailable = "El asistente no está disponible en este momento."
	msgAssistantBlocked     = "No pude generar una respuesta para ese mensaje. ¿Podrías reformularlo?"
	msgAssistantFailed      = "Lo siento, ocurrió un error al procesar tu mensaje. Intenta de nuevo más tarde."
)

// ChatService is the part of app.ChatService the handler needs.
type ChatService interface {
	HandleTurn(ctx context.Context, input app.ChatTurnInput) (*app.ChatTurnResult, error)
	GetHistory(ctx context.Context, token string, userID *uint, limit int) ([]model.ChatMessage, error)
}

type ChatHandler struct {
	chatService ChatService
}

type ChatRequest struct {
	SessionToken string `json:"session_token" binding:"max=64"`
	Message      string `json:"message" binding:"required,max=1000"`
}

type ChatResponse struct {
	Reply        string `json:"reply"`
	SessionToken string `json:"session_token"`
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}

	result, err := h.chatService.HandleTurn(c.Request.Context(), app.ChatTurnInput{
		SessionToken: req.SessionToken,
		UserID:       optionalUserID(c),
		Message:      req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.ValidationFailed(c, map[string][]string{
				"message": {"El mensaje no puede estar vacío."},
			})
		case errors.Is(err, ai.ErrNotConfigured):
			middleware.Logger(c).WithError(err).Error("assistant provider not configured")
			response.Error(c, http.StatusInternalServerError, response.CodeAssistantDisabled, msgAssistantUnavailable)
		case errors.Is(err, ai.ErrBlocked):
			middleware.Logger(c).WithError(err).Warn("assistant reply blocked")
			response.Error(c, http.StatusInternalServerError, response.CodeAssistantBlocked, msgAssistantBlocked)
		default:
			middleware.Logger(c).WithError(err).Error("chat turn failed")
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, msgAssistantFailed)
		}
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:        result.Reply,
		SessionToken: result.SessionToken,
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	token := c.Query("session_token")
	if token == "" {
		response.ValidationFailed(c, map[string][]string{
			"session_token": {"El campo session_token es obligatorio."},
		})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), token, optionalUserID(c), limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrSessionForbidden):
			// foreign sessions look the same as missing ones
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		default:
			middleware.Logger(c).WithError(err).Error("get chat history failed")
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}
	if history == nil {
		history = []model.ChatMessage{}
	}

	response.OK(c, history)
}
