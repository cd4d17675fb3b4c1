package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/metrics"
	"transcendent/backend/internal/models"
)

// region --- DTOs ---

type LoginInput struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type LoginResponse struct {
	Success    bool    `json:"success"`
	AccessCode *string `json:"access_code"`
}

// endregion

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a session token. Any earlier session of the user ends.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username formData string true "Username"
// @Param        password formData string true "Password"
// @Success      200  {object}  LoginResponse
// @Failure      500  {object}  StatusResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) error {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	ctx := c.Request.Context()
	user, err := h.users.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	if user == nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		h.log.Info("Login rejected", zap.String("username", input.Username))
		c.JSON(http.StatusOK, LoginResponse{Success: false})
		return nil
	}

	session, err := h.sessions.Create(ctx, user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	h.log.Info("User logged in", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, LoginResponse{Success: true, AccessCode: &session.Token})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Ends the session carried by the request.
// @Tags         auth
// @Produce      json
// @Param        auth query string true "Session token"
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /logout [post]
// @Router       /logout/ [post]
func (h *Handler) Logout(c *gin.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Delete(c.Request.Context(), session); err != nil {
		return err
	}

	h.log.Info("User logged out", zap.Uint("user_id", session.UserID))
	c.JSON(http.StatusOK, StatusResponse{Success: true})
	return nil
}
