package handlers

import (
	"net/http"

	"donation_backend/internal/services"
	"donation_backend/internal/services/dto"
	"donation_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// CookieConfig - атрибуты cookie админ-сессии
type CookieConfig struct {
	Name   string
	Secure bool
}

type AdminHandler struct {
	*BaseHandler
	adminService   services.AdminService
	sessionService services.SessionService
	cookie         CookieConfig
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService, sessionService services.SessionService, cookie CookieConfig) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    base,
		adminService:   adminService,
		sessionService: sessionService,
		cookie:         cookie,
	}
}

func (h *AdminHandler) CheckSetup(c *gin.Context) {
	status, err := h.adminService.CheckSetup(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Register открыт, пока нет ни одного администратора; дальше нужна сессия.
func (h *AdminHandler) Register(c *gin.Context) {
	var req dto.AdminCredentialsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	_, authenticated := h.GetAdminID(c)

	if err := h.adminService.Register(c.Request.Context(), h.GetDB(c), &req, authenticated); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Admin account created"})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	if _, ok := h.GetAdminID(c); !ok {
		apperrors.HandleError(c, apperrors.ErrAuthenticationRequired)
		return
	}

	var req dto.AdminCredentialsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.adminService.CreateUser(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Admin account created"})
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminCredentialsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	session, err := h.adminService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token, int(h.sessionService.TTL().Seconds()))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged in"})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	sessionID, ok := h.GetSessionID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.ErrAuthenticationRequired)
		return
	}

	if err := h.adminService.Logout(c.Request.Context(), h.GetDB(c), sessionID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *AdminHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
