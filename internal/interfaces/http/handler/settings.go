package handler

import (
	"github.com/gin-gonic/gin"

	settingsapp "github.com/sparkcode/dashboard/internal/application/settings"
	"github.com/sparkcode/dashboard/internal/domain/settings"
)

// LogoFormField is the multipart field carrying the logo file
const LogoFormField = "logo"

// SettingsHandler handles branding, notification preferences, logo upload
// and the manual system test. Every route is admin only.
type SettingsHandler struct {
	BaseHandler
	service *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// SaveGlobalRequest is the system configuration form. An empty logoUrl
// keeps the current logo.
type SaveGlobalRequest struct {
	CompanyName string `json:"companyName" binding:"required,notblank,max=200" example:"SparkCode"`
	Theme       string `json:"theme" binding:"omitempty,oneof=light dark" example:"light"`
	LogoURL     string `json:"logoUrl" binding:"omitempty,url"`
}

// NotificationsRequest is the e-mail preferences form
type NotificationsRequest struct {
	EmailAlerts       bool `json:"emailAlerts"`
	ProjectCreated    bool `json:"projectCreated"`
	StudentEnrollment bool `json:"studentEnrollment"`
}

// LogoResponse is the URL of an uploaded logo
type LogoResponse struct {
	LogoURL string `json:"logoUrl"`
}

// Global godoc
// @Summary      Get system configuration
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=GlobalSettingsResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings/global [get]
func (h *SettingsHandler) Global(c *gin.Context) {
	g, err := h.service.Global(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toGlobalSettingsResponse(g))
}

// SaveGlobal godoc
// @Summary      Save system configuration
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body SaveGlobalRequest true "Configuration"
// @Success      200 {object} dto.Response{data=GlobalSettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings/global [put]
func (h *SettingsHandler) SaveGlobal(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req SaveGlobalRequest
	if !h.BindJSON(c, &req) {
		return
	}
	g, err := h.service.SaveGlobal(c.Request.Context(), session, settingsapp.SaveGlobalInput{
		CompanyName: req.CompanyName,
		Theme:       settings.Theme(req.Theme),
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toGlobalSettingsResponse(g))
}

// Notifications godoc
// @Summary      Get notification preferences
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=settings.Notifications}
// @Security     BearerAuth
// @Router       /settings/notifications [get]
func (h *SettingsHandler) Notifications(c *gin.Context) {
	prefs, err := h.service.Notifications(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// SaveNotifications godoc
// @Summary      Save notification preferences
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body NotificationsRequest true "Preferences"
// @Success      200 {object} dto.Response{data=settings.Notifications}
// @Security     BearerAuth
// @Router       /settings/notifications [put]
func (h *SettingsHandler) SaveNotifications(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req NotificationsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	prefs := settings.Notifications{
		EmailAlerts:       req.EmailAlerts,
		ProjectCreated:    req.ProjectCreated,
		StudentEnrollment: req.StudentEnrollment,
	}
	if err := h.service.SaveNotifications(c.Request.Context(), session, prefs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// UploadLogo godoc
// @Summary      Upload dashboard logo
// @Description  Stores the image and points the configuration at it
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      201 {object} dto.Response{data=LogoResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings/logo [post]
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	fh, err := c.FormFile(LogoFormField)
	if err != nil {
		h.BadRequest(c, "A logo file is required in the \""+LogoFormField+"\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	url, err := h.service.UploadLogo(c.Request.Context(), session, settingsapp.LogoUpload{
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, LogoResponse{LogoURL: url})
}

// SystemTest godoc
// @Summary      Run manual system test
// @Description  Writes a success entry to the activity feed naming the admin
// @Tags         settings
// @Produce      json
// @Success      201 {object} dto.Response{data=ActivityResponse}
// @Security     BearerAuth
// @Router       /settings/system-test [post]
func (h *SettingsHandler) SystemTest(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	a, err := h.service.SystemTest(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toActivityResponse(a))
}
