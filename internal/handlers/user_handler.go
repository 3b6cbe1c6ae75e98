package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/audit"
	"github.com/salonworks/booking-api/internal/config"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/storage"
	"github.com/salonworks/booking-api/internal/validators"
)

type UserHandler struct {
	db      *gorm.DB
	config  *config.Config
	avatars *storage.AvatarStore
	audit   *audit.Dispatcher
}

func NewUserHandler(
	db *gorm.DB,
	cfg *config.Config,
	avatars *storage.AvatarStore,
	dispatcher *audit.Dispatcher,
) *UserHandler {
	return &UserHandler{
		db:      db,
		config:  cfg,
		avatars: avatars,
		audit:   dispatcher,
	}
}

// --------- Requests ---------

type SignupRequest struct {
	Username  string `json:"username" binding:"required,min=3"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Notification *string `json:"notification,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --------- Auth ---------

func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validators.CheckEmailDomain(email); err != nil {
		httperr.BadRequest(c, "invalid_email_domain", err.Error())
		return
	}

	var count int64
	h.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, email).
		Count(&count)
	if count > 0 {
		httperr.Conflict(c, "user_already_exists", "Username or email already taken.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process password.")
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		Status:       models.UserStatusActive,
	}

	if err := h.db.Create(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_create_user", "Could not create user.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue token.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var user models.User
	if err := h.db.
		Where("username = ?", req.Username).
		First(&user).Error; err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Wrong username or password.")
		return
	}

	if user.Status != models.UserStatusActive {
		httperr.Forbidden(c, "account_disabled", "Account is not active.")
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(req.Password),
	); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Wrong username or password.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *UserHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

// --------- Me ---------

func (h *UserHandler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)
	h.updateUser(c, userID)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(req.CurrentPassword),
	); err != nil {
		httperr.BadRequest(c, "wrong_password", "Current password does not match.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process password.")
		return
	}

	user.PasswordHash = string(hashed)
	if err := h.db.Save(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "password_changed",
		Entity:   "user",
		EntityID: &user.ID,
	})

	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" file, converts it and stores
// the resulting URL on the profile.
func (h *UserHandler) UploadImage(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Multipart field 'image' is required.")
		return
	}
	defer file.Close()

	url, err := h.avatars.Upload(c.Request.Context(), userID, file)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("image", url).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"image": url})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	// Soft disable rather than a destructive delete.
	if err := h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("status", models.UserStatusInactive).Error; err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --------- Admin ---------

type AdminCreateUserRequest struct {
	SignupRequest
	Role string `json:"role"`
}

// AdminCreate provisions an account with any role, no token issued.
func (h *UserHandler) AdminCreate(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		httperr.BadRequest(c, "invalid_role", "Unknown role.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	h.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, email).
		Count(&count)
	if count > 0 {
		httperr.Conflict(c, "user_already_exists", "Username or email already taken.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process password.")
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         role,
		Status:       models.UserStatusActive,
	}

	if err := h.db.Create(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	q := h.db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(c, err)
		return
	}

	var users []models.User
	if err := q.
		Order("created_at DESC").
		Offset(offsetParam(c)).
		Limit(limitParam(c)).
		Find(&users).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.Paged(c, users, total)
}

func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	if err := h.db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	h.updateUser(c, c.Param("id"))
}

func (h *UserHandler) updateUser(c *gin.Context, id string) {
	var user models.User
	if err := h.db.Where("id = ?", id).First(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := validators.CheckEmailDomain(email); err != nil {
			httperr.BadRequest(c, "invalid_email_domain", err.Error())
			return
		}
		user.Email = email
	}
	if req.Notification != nil {
		user.Notification = *req.Notification
	}

	if err := h.db.Save(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, user)
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !models.ValidRole(req.Role) {
		httperr.BadRequest(c, "invalid_role", "Unknown role.")
		return
	}

	h.setUserField(c, "role", req.Role, "role_changed")
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !models.ValidUserStatus(req.Status) {
		httperr.BadRequest(c, "invalid_status", "Unknown status.")
		return
	}

	h.setUserField(c, "status", req.Status, "status_changed")
}

func (h *UserHandler) Activate(c *gin.Context) {
	h.setUserField(c, "status", models.UserStatusActive, "user_activated")
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setUserField(c, "status", models.UserStatusInactive, "user_deactivated")
}

func (h *UserHandler) setUserField(
	c *gin.Context,
	column string,
	value string,
	action string,
) {
	id := c.Param("id")

	var user models.User
	if err := h.db.Where("id = ?", id).First(&user).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := h.db.Model(&user).Update(column, value).Error; err != nil {
		writeError(c, err)
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   action,
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]string{column: value},
	})

	httpresp.OK(c, user)
}

func (h *UserHandler) ListByRole(c *gin.Context) {
	role := c.Param("role")
	if !models.ValidRole(role) {
		httperr.BadRequest(c, "invalid_role", "Unknown role.")
		return
	}

	var users []models.User
	if err := h.db.
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, users)
}

func (h *UserHandler) ListByStatus(c *gin.Context) {
	status := c.Param("status")
	if !models.ValidUserStatus(status) {
		httperr.BadRequest(c, "invalid_status", "Unknown status.")
		return
	}

	var users []models.User
	if err := h.db.
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, users)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.db.Delete(&models.User{}, "id = ?", id).Error; err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
