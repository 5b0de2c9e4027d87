package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/content-service/internal/auth"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/logger"
	logicv1 "github.com/duynhne/content-service/internal/logic/v1"
	"github.com/duynhne/content-service/middleware"
)

// Dependencies are the services and settings a Handler is built from.
type Dependencies struct {
	Auth       *logicv1.AuthService
	Users      *logicv1.UserService
	Posts      *logicv1.PostService
	Comments   *logicv1.CommentService
	Cookies    *auth.CookieManager
	CookieName string
	// Production hides internal error detail from 500 responses.
	Production bool
}

// Handler groups HTTP handlers for API v1.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	auth       *logicv1.AuthService
	users      *logicv1.UserService
	posts      *logicv1.PostService
	comments   *logicv1.CommentService
	cookies    *auth.CookieManager
	cookieName string
	production bool
}

// NewHandler creates a new Handler.
func NewHandler(d Dependencies) *Handler {
	return &Handler{
		auth:       d.Auth,
		users:      d.Users,
		posts:      d.Posts,
		comments:   d.Comments,
		cookies:    d.Cookies,
		cookieName: d.CookieName,
		production: d.Production,
	}
}

// RegisterRoutes registers all API v1 routes on api. authn guards the
// routes that need a session.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, authn *middleware.Authenticator) {
	authed := authn.RequireAuth()
	admin := middleware.RequireRole(domain.RoleAdmin)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	users := api.Group("/users", authed)
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", admin, h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", admin, h.DeleteUser)
	}

	// GET /posts/:id resolves the post by slug; gin needs one wildcard name
	// per path segment.
	posts := api.Group("/posts")
	{
		posts.GET("", h.ListPosts)
		posts.GET("/:id", h.GetPost)
		posts.POST("", authed, admin, h.CreatePost)
		posts.PUT("/:id", authed, admin, h.UpdatePost)
		posts.DELETE("/:id", authed, admin, h.DeletePost)

		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", authed, h.CreateComment)
		posts.PUT("/:id/comments/:commentId", authed, h.UpdateComment)
		posts.DELETE("/:id/comments/:commentId", authed, h.DeleteComment)
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startWebSpan(c, "auth.register")
	defer span.End()

	var req domain.RegisterRequest
	if !bindAndValidate(c, span, &req) {
		middleware.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return
	}

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("register", "failure").Inc()
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}

	if !h.startSession(c, span, user) {
		return
	}
	middleware.AuthAttempts.WithLabelValues("register", "success").Inc()
	logger.FromContext(ctx).Info().Int64("user_id", user.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startWebSpan(c, "auth.login")
	defer span.End()

	var req domain.LoginRequest
	if !bindAndValidate(c, span, &req) {
		middleware.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return
	}

	user, err := h.auth.Authenticate(ctx, req)
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("login", "failure").Inc()
		h.fail(c, span, err, http.StatusBadRequest)
		return
	}

	if !h.startSession(c, span, user) {
		return
	}
	middleware.AuthAttempts.WithLabelValues("login", "success").Inc()
	logger.FromContext(ctx).Info().Int64("user_id", user.ID).Msg("Login successful")
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startWebSpan(c, "auth.logout")
	defer span.End()

	token, _ := h.cookies.Get(c, h.cookieName)
	h.auth.Logout(ctx, token)
	h.cookies.Clear(c, h.cookieName)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) startSession(c *gin.Context, span trace.Span, user *domain.PublicUser) bool {
	token, err := h.auth.IssueSession(user)
	if err != nil {
		h.fail(c, span, err, http.StatusBadRequest)
		return false
	}
	h.cookies.Set(c, h.cookieName, token)
	return true
}

func startWebSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), name, trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
}
