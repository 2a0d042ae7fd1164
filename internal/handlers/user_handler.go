package handlers

import (
	"net/http"
	"time"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"

	"github.com/gin-gonic/gin"
)

type userRequest struct {
	Username    string            `json:"username" binding:"required,max=150"`
	Email       string            `json:"email" binding:"omitempty,email,max=254"`
	FirstName   string            `json:"first_name" binding:"max=150"`
	LastName    string            `json:"last_name" binding:"max=150"`
	Password    string            `json:"password"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	PhoneNumber string            `json:"phone_number" binding:"max=20"`
	Avatar      string            `json:"avatar"`
	ResetAvatar bool              `json:"reset_avatar"`
}

func userRequestFrom(u *models.User) userRequest {
	return userRequest{
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Status:      u.Status,
		PhoneNumber: u.PhoneNumber,
		Avatar:      u.Avatar,
	}
}

func (r userRequest) apply(u *models.User) {
	u.Username = r.Username
	u.Email = r.Email
	u.FirstName = r.FirstName
	u.LastName = r.LastName
	u.Role = r.Role
	u.Status = r.Status
	u.PhoneNumber = r.PhoneNumber
	u.Avatar = r.Avatar
	if r.ResetAvatar {
		u.Avatar = ""
	}
}

type userResponse struct {
	*models.User
	FullName         string `json:"full_name"`
	LastLoginDisplay string `json:"last_login_display"`
}

func newUserResponse(u *models.User, now time.Time) userResponse {
	return userResponse{User: u, FullName: u.FullName(), LastLoginDisplay: u.LastLoginDisplay(now)}
}

func userResponses(users []models.User) []userResponse {
	now := time.Now()
	results := make([]userResponse, len(users))
	for i := range users {
		results[i] = newUserResponse(&users[i], now)
	}
	return results
}

func (h *Handler) ListUsers(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	users, count, err := h.svc.Users.ListUsers(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, opts, count, userResponses(users))
}

// ListUsersByRole returns the unpaginated users holding ?role=.
func (h *Handler) ListUsersByRole(c *gin.Context) {
	users, err := h.svc.Users.ListByRole(c.Request.Context(), c.Query("role"))
	if err != nil {
		if verr, ok := apperrors.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Fields["role"]})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponses(users))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	user := &models.User{}
	req.apply(user)
	if err := h.svc.Users.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user, time.Now()))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.svc.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, time.Now()))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.svc.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req userRequest
	if isPartial(c) {
		req = userRequestFrom(user)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(user)

	updated, err := h.svc.Users.UpdateUser(c.Request.Context(), user, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(updated, time.Now()))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Users.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleUserStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.svc.Users.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, time.Now()))
}
