package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/driftboard/listlink/internal/auth"
	"github.com/driftboard/listlink/internal/lists"
	"github.com/driftboard/listlink/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityContextKey = "listlink_identity"
	accessContextKey   = "listlink_access"

	defaultCookieName = "listlink_session"
)

var (
	errMissingUserService = errors.New("user service dependency required")
	errMissingListService = errors.New("list service dependency required")
	errMissingTokens      = errors.New("token manager dependency required")
)

// TokenManager issues and validates session tokens.
type TokenManager interface {
	IssueToken(userID, email string) (string, error)
	ValidateToken(token string) (auth.Identity, error)
	TokenTTL() time.Duration
}

// Dependencies wires the HTTP surface to its collaborators.
type Dependencies struct {
	UserService *users.Service
	ListService *lists.Service
	Tokens      TokenManager
	CookieName  string
	Logger      *zap.Logger
}

// NewHTTPHandler builds the gin router for the API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.UserService == nil {
		return nil, errMissingUserService
	}
	if deps.ListService == nil {
		return nil, errMissingListService
	}
	if deps.Tokens == nil {
		return nil, errMissingTokens
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cookieName := strings.TrimSpace(deps.CookieName)
	if cookieName == "" {
		cookieName = defaultCookieName
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		userService: deps.UserService,
		listService: deps.ListService,
		tokens:      deps.Tokens,
		cookieName:  cookieName,
		logger:      logger,
	}

	router.GET("/healthz", handler.handleHealth)

	router.POST("/auth/signup", handler.handleSignUp)
	router.POST("/auth/signin", handler.handleSignIn)
	router.POST("/auth/signout", handler.handleSignOut)
	router.GET("/auth/me", handler.requireIdentity, handler.handleMe)

	api := router.Group("/api")
	api.POST("/lists", handler.requireIdentity, handler.handleCreateList)
	api.GET("/me/lists", handler.requireIdentity, handler.handleOwnedLists)

	linked := api.Group("/lists/:id")
	linked.Use(handler.resolveListAccess)
	linked.GET("", handler.handleGetList)
	linked.PATCH("", handler.handleUpdateListTitle)
	linked.DELETE("", handler.handleDeleteList)
	linked.POST("/items", handler.handleCreateItem)
	linked.PATCH("/items/:itemId", handler.handleUpdateItem)
	linked.DELETE("/items/:itemId", handler.handleDeleteItem)

	return router, nil
}

type httpHandler struct {
	userService *users.Service
	listService *lists.Service
	tokens      TokenManager
	cookieName  string
	logger      *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// extractIdentity returns the verified identity carried by the request, or
// nil when no usable credential is present. The session cookie is preferred
// and a Bearer header accepted as fallback. Invalid tokens count as absent
// identity here; routes that demand identity use requireIdentity instead.
func (h *httpHandler) extractIdentity(c *gin.Context) *auth.Identity {
	token := ""
	if cookie, err := c.Cookie(h.cookieName); err == nil {
		token = cookie
	}
	if token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
	}
	if token == "" {
		return nil
	}

	identity, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Debug("session token rejected", zap.Error(err))
		return nil
	}
	return &identity
}

// requireIdentity aborts with 401 unless the request carries a valid
// session token.
func (h *httpHandler) requireIdentity(c *gin.Context) {
	identity := h.extractIdentity(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(identityContextKey, identity)
	c.Next()
}

// resolveListAccess resolves the link identifier in the path together with
// the request's optional identity, and stores the resulting access for the
// route handler. Every list and item route below /api/lists/:id passes
// through here; handlers never re-derive permission.
func (h *httpHandler) resolveListAccess(c *gin.Context) {
	identity := h.extractIdentity(c)

	var resolverIdentity *lists.Identity
	if identity != nil {
		resolverIdentity = &lists.Identity{UserID: identity.UserID}
	}

	access, err := h.listService.ResolveAccess(c.Request.Context(), c.Param("id"), resolverIdentity)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.Set(accessContextKey, access)
	c.Next()
}

func (h *httpHandler) currentIdentity(c *gin.Context) *auth.Identity {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

func (h *httpHandler) currentAccess(c *gin.Context) (lists.Access, bool) {
	value, exists := c.Get(accessContextKey)
	if !exists {
		return lists.Access{}, false
	}
	access, ok := value.(lists.Access)
	return access, ok
}

// abortWithListError maps list service outcomes onto HTTP statuses:
// malformed identifier shape is 400, no matching record 404, insufficient
// permission 403. Anything unexpected is an opaque 500.
func (h *httpHandler) abortWithListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lists.ErrBadIdentifier):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_identifier"})
	case errors.Is(err, lists.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "list_not_found"})
	case errors.Is(err, lists.ErrItemNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
	case errors.Is(err, lists.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, lists.ErrInvalidTitle), errors.Is(err, lists.ErrInvalidItemText):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	default:
		h.logger.Error("list operation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
