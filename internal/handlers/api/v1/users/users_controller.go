// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devflow/internal/contextutils"
	"devflow/internal/response"
	"devflow/internal/services"
)

const defaultTopTags = 10

// UserController handles profile, community and collection endpoints
type UserController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Routes mounts the user endpoints
func (c *UserController) Routes(r chi.Router) {
	r.Get("/", c.ListUsers)
	r.Post("/", c.CreateUser)

	r.Route("/{clerkId}", func(r chi.Router) {
		r.Get("/", c.GetUserInfo)
		r.Patch("/", c.UpdateUser)
		r.Delete("/", c.DeleteUser)
		r.Get("/questions", c.UserQuestions)
		r.Get("/answers", c.UserAnswers)
		r.Get("/saved", c.SavedQuestions)
		r.Get("/top-tags", c.TopTags)
	})
}

// ===============================
// PROFILE OPERATIONS
// ===============================

// CreateUser handles POST /api/v1/users, called when the identity provider
// registers a new subject
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.serviceCollection.UserService.CreateUser(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, user)
}

// GetUserInfo handles GET /api/v1/users/{clerkId}
func (c *UserController) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := c.serviceCollection.UserService.UserInfo(r.Context(), chi.URLParam(r, "clerkId"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, info)
}

// UpdateUser handles PATCH /api/v1/users/{clerkId}. Callers edit only
// their own profile.
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	clerkID, err := c.requireSelf(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.UpdateUserRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.ClerkID = clerkID

	user, err := c.serviceCollection.UserService.UpdateUser(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, user)
}

// DeleteUser handles DELETE /api/v1/users/{clerkId}
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	clerkID, err := c.requireSelf(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.UserService.DeleteUser(r.Context(), clerkID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("User deleted via API", zap.String("clerk_id", clerkID))
	c.responseBuilder.WriteNoContent(w, r)
}

// ListUsers handles GET /api/v1/users
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	search, sort, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.UserService.ListUsers(r.Context(), &services.ListUsersRequest{
		Search: search,
		Sort:   sort,
		Page:   page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// ===============================
// USER CONTENT
// ===============================

// UserQuestions handles GET /api/v1/users/{clerkId}/questions
func (c *UserController) UserQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := response.ParsePage(r.URL.Query())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.UserService.UserQuestions(r.Context(), &services.UserContentRequest{
		ClerkID: chi.URLParam(r, "clerkId"),
		Page:    page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// UserAnswers handles GET /api/v1/users/{clerkId}/answers
func (c *UserController) UserAnswers(w http.ResponseWriter, r *http.Request) {
	page, err := response.ParsePage(r.URL.Query())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.UserService.UserAnswers(r.Context(), &services.UserContentRequest{
		ClerkID: chi.URLParam(r, "clerkId"),
		Page:    page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// SavedQuestions handles GET /api/v1/users/{clerkId}/saved. The saved
// collection is private to its owner.
func (c *UserController) SavedQuestions(w http.ResponseWriter, r *http.Request) {
	clerkID, err := c.requireSelf(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	search, sort, page, err := response.ParseListing(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.UserService.SavedQuestions(r.Context(), &services.SavedQuestionsRequest{
		ClerkID: clerkID,
		Search:  search,
		Sort:    sort,
		Page:    page,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WritePage(c.responseBuilder, w, r, result)
}

// TopTags handles GET /api/v1/users/{clerkId}/top-tags?limit=
func (c *UserController) TopTags(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopTags
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.responseBuilder.WriteError(w, r, services.InvalidInputError("limit", "must be a non-negative integer"))
			return
		}
		limit = v
	}

	tags, err := c.serviceCollection.TagService.TopInteractedTags(r.Context(), chi.URLParam(r, "clerkId"), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, tags)
}

// requireSelf returns the path subject when it is the caller
func (c *UserController) requireSelf(r *http.Request) (string, error) {
	caller := contextutils.GetClerkID(r.Context())
	if caller == "" {
		return "", services.NewUnauthenticatedError("sign in to manage this profile")
	}
	if caller != chi.URLParam(r, "clerkId") {
		return "", services.NewForbiddenError("profile belongs to another user")
	}
	return caller, nil
}
