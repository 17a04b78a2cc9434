package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminController struct {
	db *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

func (c *AdminController) GetUsers(ctx *gin.Context) {
	var users []models.User

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	offset := (page - 1) * limit

	query := c.db.Model(&models.User{})
	countQuery := c.db.Model(&models.User{})

	if search := ctx.Query("search"); search != "" {
		query = query.Where("email LIKE ?", "%"+search+"%")
		countQuery = countQuery.Where("email LIKE ?", "%"+search+"%")
	}

	result := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&users)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch users")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch users")
		return
	}

	var count int64
	countQuery.Count(&count)

	totalPages := math.Ceil(float64(count) / float64(limit))

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	userId, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var input struct {
		Role string `json:"role" binding:"required,oneof=customer staff admin"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid role")
		return
	}

	result := c.db.Model(&models.User{}).Where("id = ?", userId).Update("role", input.Role)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("role update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update user role")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User role updated successfully."})
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	admin, _ := middlewares.CurrentUser(ctx)

	userId, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if uint(userId) == admin.ID {
		sendErrorResponse(ctx, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	result := c.db.Delete(&models.User{}, userId)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("user delete error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User deleted successfully."})
}
