package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TicketController struct {
	db *gorm.DB
}

func NewTicketController(db *gorm.DB) *TicketController {
	return &TicketController{db: db}
}

func (c *TicketController) CreateTicket(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var input struct {
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	ticket := models.SupportTicket{
		UserID:  user.ID,
		Subject: input.Subject,
		Message: input.Message,
		Status:  models.TicketStatusOpen,
	}
	if err := c.db.Create(&ticket).Error; err != nil {
		log.Error().Err(err).Msg("ticket create error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create ticket")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"ticket": ticket})
}

func (c *TicketController) GetMyTickets(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var tickets []models.SupportTicket
	result := c.db.Preload("Replies").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&tickets)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch tickets")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch tickets")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"tickets": tickets})
}

// ReplyToTicket accepts replies from the ticket owner or staff.
func (c *TicketController) ReplyToTicket(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	ticketId, err := strconv.Atoi(ctx.Param("ticketId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	var ticket models.SupportTicket
	if err := c.db.First(&ticket, ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Ticket not found")
		} else {
			log.Error().Err(err).Msg("failed to fetch ticket")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch ticket")
		}
		return
	}

	if ticket.UserID != user.ID && !user.IsStaff() {
		sendErrorResponse(ctx, http.StatusForbidden, "You cannot reply to this ticket")
		return
	}

	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	reply := models.TicketReply{
		TicketID: ticket.ID,
		UserID:   user.ID,
		Message:  input.Message,
	}
	if err := c.db.Create(&reply).Error; err != nil {
		log.Error().Err(err).Msg("ticket reply create error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	// A staff reply moves a fresh ticket into progress.
	if user.IsStaff() && ticket.Status == models.TicketStatusOpen {
		if err := c.db.Model(&ticket).Update("status", models.TicketStatusInProgress).Error; err != nil {
			log.Error().Err(err).Msg("ticket status update error")
		}
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"reply": reply})
}

func (c *TicketController) GetAllTickets(ctx *gin.Context) {
	var tickets []models.SupportTicket

	query := c.db.Preload("Replies").Order("created_at desc")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if result := query.Find(&tickets); result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch tickets")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch tickets")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"tickets": tickets})
}

func (c *TicketController) UpdateTicketStatus(ctx *gin.Context) {
	ticketId, err := strconv.Atoi(ctx.Param("ticketId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	var input struct {
		Status string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid status")
		return
	}

	result := c.db.Model(&models.SupportTicket{}).Where("id = ?", ticketId).Update("status", input.Status)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("ticket status update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update ticket status")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Ticket not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Ticket status updated successfully."})
}
