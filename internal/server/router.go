package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmadesk/backend/internal/gateway"
	"github.com/pharmadesk/backend/internal/session"
	"github.com/pharmadesk/backend/internal/store"
)

const userIDContextKey = "pharmadesk_user_id"

var (
	errMissingStore         = errors.New("store dependency required")
	errMissingTokenManager  = errors.New("token manager dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// TokenManager validates the bearer tokens carrying the operator identifier,
// and mints them when dev tokens are enabled.
type TokenManager interface {
	Issue(userID string) (string, int64, error)
	Validate(token string) (string, error)
}

// Dependencies wires the HTTP layer.
type Dependencies struct {
	Store        *store.Store
	TokenManager TokenManager
	Logger       *zap.Logger
	// AllowDevTokens exposes POST /session/token for local development;
	// production deployments receive tokens from the external identity
	// provider instead.
	AllowDevTokens bool
}

// NewHTTPHandler builds the gin router for the CRM API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		store:  deps.Store,
		tokens: deps.TokenManager,
		logger: logger,
	}

	if deps.AllowDevTokens {
		router.POST("/session/token", handler.handleMintToken)
	}

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/state", handler.handleState)
	protected.GET("/events", handler.handleEvents)

	protected.GET("/leads", handler.handleListLeads)
	protected.POST("/leads", handler.handleCreateLead)
	protected.PATCH("/leads/:id", handler.handleUpdateLead)
	protected.DELETE("/leads/:id", handler.handleDeleteLead)

	protected.GET("/manufacturers", handler.handleListManufacturers)
	protected.POST("/manufacturers", handler.handleCreateManufacturer)
	protected.PATCH("/manufacturers/:id", handler.handleUpdateManufacturer)
	protected.DELETE("/manufacturers/:id", handler.handleDeleteManufacturer)

	protected.GET("/orders", handler.handleListOrders)
	protected.POST("/orders", handler.handleCreateOrder)
	protected.PATCH("/orders/:id", handler.handleUpdateOrder)
	protected.DELETE("/orders/:id", handler.handleDeleteOrder)

	protected.GET("/documents", handler.handleListDocuments)
	protected.POST("/documents", handler.handleCreateDocument)
	protected.PATCH("/documents/:id", handler.handleUpdateDocument)
	protected.DELETE("/documents/:id", handler.handleDeleteDocument)

	return router, nil
}

type httpHandler struct {
	store  *store.Store
	tokens TokenManager
	logger *zap.Logger
}

type mintTokenPayload struct {
	UserID string `json:"user_id"`
}

type tokenResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleMintToken(c *gin.Context) {
	var request mintTokenPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, expiresIn, err := h.tokens.Issue(request.UserID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, tokenResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

// authorizeRequest resolves the operator from the bearer token and attaches
// the identifier to the request context, where the session provider consumed
// by the gateways picks it up.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.Validate(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Request = c.Request.WithContext(session.WithUserID(c.Request.Context(), subject))
	c.Next()
}

// writeGatewayError maps the gateway failure taxonomy onto HTTP statuses.
func (h *httpHandler) writeGatewayError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, gateway.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "detail": err.Error()})
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, gateway.ErrTransport):
		h.logger.Error("remote store unavailable", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "store_unavailable"})
	default:
		h.logger.Error("request failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
