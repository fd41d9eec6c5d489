package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tienda-api/internal/ai"
	"tienda-api/internal/assistant"
	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

const (
	personaInstruction = "Eres el asistente de compras de nuestra tienda de ropa en línea. " +
		"Responde siempre en español, con un tono cercano y breve. " +
		"Recomienda solo productos que aparezcan en el contexto del catálogo que te comparta; " +
		"si no hay coincidencias, sugiere alternativas de la tienda sin inventar precios, tallas ni colores."
	personaAcknowledgement = "Entendido. Ayudaré a los clientes a encontrar productos del catálogo de la tienda."
	catalogContextPrefix   = "Contexto del catálogo de la tienda:\n"

	historyPageSize = 50
)

// Generator produces the assistant reply for an assembled conversation.
type Generator interface {
	Generate(ctx context.Context, cfg ai.GenerateConfig, turns []ai.Turn) (string, error)
}

type HistoryCache interface {
	Get(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	// Set reports false when the snapshot was discarded because the session
	// changed after it was read.
	Set(ctx context.Context, sessionID uint, messages []model.ChatMessage) (bool, error)
	Invalidate(ctx context.Context, sessionID uint) error
}

type ChatOptions struct {
	HistoryWindow    int
	ContextMaxChars  int
	MaxMessageLength int
}

type ChatService struct {
	sessionRepo  *repository.ChatSessionRepository
	messageRepo  *repository.ChatMessageRepository
	matcher      *assistant.CatalogMatcher
	generator    Generator
	historyCache HistoryCache
	llm          ai.GenerateConfig
	opts         ChatOptions
	logger       logrus.FieldLogger
	now          func() time.Time
}

type ChatTurnInput struct {
	SessionToken string
	UserID       *uint
	Message      string
}

type ChatTurnResult struct {
	Reply        string
	SessionToken string
	SessionID    uint
}

func NewChatService(
	sessionRepo *repository.ChatSessionRepository,
	messageRepo *repository.ChatMessageRepository,
	matcher *assistant.CatalogMatcher,
	generator Generator,
	historyCache HistoryCache,
	llm ai.GenerateConfig,
	opts ChatOptions,
	logger logrus.FieldLogger,
) *ChatService {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 6
	}
	if opts.ContextMaxChars <= 0 {
		opts.ContextMaxChars = assistant.DefaultContextMaxChars
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = 1000
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		matcher:      matcher,
		generator:    generator,
		historyCache: historyCache,
		llm:          llm,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// ResolveSession finds or creates the session for this caller and stamps its
// last activity. An authenticated caller without a token continues their most
// recently active session.
func (s *ChatService) ResolveSession(token string, userID *uint) (*model.ChatSession, error) {
	token = strings.TrimSpace(token)
	if token == "" && userID != nil {
		latest, err := s.sessionRepo.LatestByUserID(*userID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			token = latest.Token
		}
	}
	if token == "" {
		token = uuid.NewString()
	}
	return s.sessionRepo.TouchByToken(token, userID, s.now())
}

// HandleTurn runs one chat exchange. Once input is valid the user message is
// stored before anything else can fail; the assistant message is stored only
// after the provider answered.
func (s *ChatService) HandleTurn(ctx context.Context, input ChatTurnInput) (*ChatTurnResult, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" || utf8.RuneCountInString(text) > s.opts.MaxMessageLength {
		return nil, ErrInvalidInput
	}

	session, err := s.ResolveSession(input.SessionToken, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve chat session failed: %w", err)
	}
	log := s.logger.WithField("chat_session_id", session.ID)

	keywords := assistant.ExtractKeywords(text)
	userMessage := &model.ChatMessage{
		ChatSessionID:  session.ID,
		Role:           model.RoleUser,
		Content:        text,
		IsProductQuery: len(keywords) > 0,
		CreatedAt:      s.now(),
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, log, session.ID)

	catalogContext := ""
	if userMessage.IsProductQuery {
		products, err := s.matcher.Match(keywords)
		if err != nil {
			return nil, err
		}
		catalogContext = assistant.FormatCatalogContext(products, true, s.opts.ContextMaxChars)
		log.WithFields(logrus.Fields{
			"keywords": keywords,
			"matches":  len(products),
		}).Debug("catalog search done")
	}

	recent, err := s.messageRepo.ListRecentBySessionID(session.ID, s.opts.HistoryWindow)
	if err != nil {
		return nil, err
	}
	turns := buildTurns(recent, userMessage, catalogContext)

	reply, err := s.generator.Generate(ctx, s.llm, turns)
	if err != nil {
		log.WithError(err).Warn("assistant generation failed")
		return nil, err
	}
	reply = strings.TrimSpace(reply)

	assistantMessage := &model.ChatMessage{
		ChatSessionID: session.ID,
		Role:          model.RoleAssistant,
		Content:       reply,
		CreatedAt:     s.now(),
	}
	if err := s.messageRepo.Create(assistantMessage); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, log, session.ID)

	return &ChatTurnResult{
		Reply:        reply,
		SessionToken: session.Token,
		SessionID:    session.ID,
	}, nil
}

// GetHistory returns up to limit of the latest messages of a session. A
// session owned by a user is visible to that user only.
func (s *ChatService) GetHistory(ctx context.Context, token string, userID *uint, limit int) ([]model.ChatMessage, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != nil && (userID == nil || *userID != *session.UserID) {
		return nil, ErrSessionForbidden
	}

	if s.historyCache != nil {
		cached, hit, err := s.historyCache.Get(ctx, session.ID)
		if err != nil {
			s.logger.WithError(err).WithField("chat_session_id", session.ID).Warn("read chat history cache failed")
		} else if hit {
			return lastMessages(cached, limit), nil
		}
	}

	messages, err := s.messageRepo.ListRecentBySessionID(session.ID, historyPageSize)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		stored, err := s.historyCache.Set(ctx, session.ID, messages)
		if err != nil {
			s.logger.WithError(err).WithField("chat_session_id", session.ID).Warn("write chat history cache failed")
		} else if !stored {
			s.logger.WithField("chat_session_id", session.ID).Debug("chat history changed while reading, snapshot not cached")
		}
	}
	return lastMessages(messages, limit), nil
}

func (s *ChatService) invalidateHistory(ctx context.Context, log logrus.FieldLogger, sessionID uint) {
	if s.historyCache == nil {
		return
	}
	if err := s.historyCache.Invalidate(ctx, sessionID); err != nil {
		log.WithError(err).Warn("invalidate chat history cache failed")
	}
}

// buildTurns lays out the provider conversation: persona pair, prior history,
// optional catalog context, then the current message.
func buildTurns(recent []model.ChatMessage, current *model.ChatMessage, catalogContext string) []ai.Turn {
	turns := make([]ai.Turn, 0, len(recent)+4)
	turns = append(turns,
		ai.Turn{Role: ai.RoleUser, Text: personaInstruction},
		ai.Turn{Role: ai.RoleModel, Text: personaAcknowledgement},
	)
	for _, message := range recent {
		if message.ID == current.ID {
			continue
		}
		role := ai.RoleUser
		if message.Role == model.RoleAssistant {
			role = ai.RoleModel
		}
		turns = append(turns, ai.Turn{Role: role, Text: message.Content})
	}
	if catalogContext != "" {
		turns = append(turns, ai.Turn{Role: ai.RoleUser, Text: catalogContextPrefix + catalogContext})
	}
	turns = append(turns, ai.Turn{Role: ai.RoleUser, Text: current.Content})
	return turns
}

func lastMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
