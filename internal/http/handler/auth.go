package handler

import (
	"net/http"

	"session-auth/internal/auth"
	"session-auth/internal/domain/user"
	"session-auth/internal/http/middleware"
	"session-auth/internal/session"
	"session-auth/pkg/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	engine   *auth.Engine
	sessions SessionRegenerator
}

func NewAuthHandler(engine *auth.Engine, sessions SessionRegenerator) *AuthHandler {
	return &AuthHandler{engine: engine, sessions: sessions}
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	User      *UserView `json:"user"`
	TwoFactor string    `json:"two_factor"`
	CSRFToken string    `json:"csrf_token"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

type TwoFactorResponse struct {
	TwoFactor string `json:"two_factor"`
}

type ResetRequest struct {
	Identifier string `json:"identifier"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type ResetLinkResponse struct {
	Valid bool `json:"valid"`
}

// UserView is the public projection of an AuthSession. Secrets stay out.
type UserView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Role        string        `json:"role"`
	ProjectRole string        `json:"project_role,omitempty"`
	ClientID    string        `json:"client_id"`
	ProfileID   string        `json:"profile_id,omitempty"`
	IsLDAP      bool          `json:"is_ldap"`
	TwoFactor   string        `json:"two_factor"`
	Settings    user.Settings `json:"settings"`
}

func newUserView(as *session.AuthSession, state auth.State) *UserView {
	return &UserView{
		ID:          as.ID.String(),
		Name:        as.Name,
		Email:       as.Mail,
		Role:        string(as.Role),
		ProjectRole: as.ProjectRole,
		ClientID:    as.ClientID.String(),
		ProfileID:   as.ProfileID,
		IsLDAP:      as.IsLDAP,
		TwoFactor:   state.String(),
		Settings:    as.Settings,
	}
}

// Login authenticates the posted credentials into a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := validator.Identifier(req.Identifier); err != nil || req.Password == "" {
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	sc, err := h.sessions.Regenerate(c)
	if err != nil {
		c.Logger().Errorf("login: %v", err)
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}

	if err := h.engine.Login(c.Request().Context(), sc, req.Identifier, req.Password); err != nil {
		return RespondWithMappedError(c, err)
	}

	csrf, err := middleware.CSRFToken(sc)
	if err != nil {
		c.Logger().Errorf("login: csrf token: %v", err)
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}

	as, _ := h.engine.CurrentUser(sc)
	state := h.engine.TwoFactorState(sc)
	return c.JSON(http.StatusOK, LoginResponse{
		User:      newUserView(as, state),
		TwoFactor: state.String(),
		CSRFToken: csrf,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	sc, err := middleware.Current(c)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}
	if err := h.engine.Logout(c.Request().Context(), sc); err != nil {
		return RespondWithMappedError(c, err)
	}
	return respondMessage(c, http.StatusOK, msgLoggedOut)
}

// VerifyTwoFactor checks a one-time code for a session awaiting its second
// factor.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	var req VerifyCodeRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := validator.TOTPCode(req.Code); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	sc, err := middleware.Current(c)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}
	if err := h.engine.VerifyCode(c.Request().Context(), sc, req.Code); err != nil {
		return RespondWithMappedError(c, err)
	}
	return c.JSON(http.StatusOK, TwoFactorResponse{TwoFactor: h.engine.TwoFactorState(sc).String()})
}

// RequestReset always answers 202 so callers cannot probe for accounts.
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req ResetRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := validator.Email(req.Identifier); err == nil {
		if err := h.engine.IssueResetLink(c.Request().Context(), req.Identifier); err != nil {
			c.Logger().Debugf(msgResetRequestFailed, req.Identifier, err)
		}
	}
	return respondMessage(c, http.StatusAccepted, msgResetRequested)
}

func (h *AuthHandler) ShowResetLink(c echo.Context) error {
	tok := c.Param("token")
	if validator.ResetToken(tok) != nil || !h.engine.ValidateResetLink(c.Request().Context(), tok) {
		return respondError(c, http.StatusNotFound, msgResetLinkInvalid)
	}
	return c.JSON(http.StatusOK, ResetLinkResponse{Valid: true})
}

func (h *AuthHandler) CompleteReset(c echo.Context) error {
	tok := c.Param("token")
	if validator.ResetToken(tok) != nil {
		return respondError(c, http.StatusNotFound, msgResetLinkInvalid)
	}

	var req ChangePasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if err := h.engine.ChangePassword(c.Request().Context(), req.Password, tok); err != nil {
		return RespondWithMappedError(c, err)
	}
	return respondMessage(c, http.StatusOK, msgPasswordChanged)
}

// Me returns the session's principal.
func (h *AuthHandler) Me(c echo.Context) error {
	sc, err := middleware.Current(c)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgSessionUnavailable)
	}
	as, ok := h.engine.CurrentUser(sc)
	if !ok {
		return RespondWithMappedError(c, auth.ErrNoSession)
	}
	return c.JSON(http.StatusOK, newUserView(as, h.engine.TwoFactorState(sc)))
}

// Roles lists the role catalog, highest privilege first.
func (h *AuthHandler) Roles(c echo.Context) error {
	roles := h.engine.Roles().Roles()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return c.JSON(http.StatusOK, map[string][]string{"roles": out})
}
