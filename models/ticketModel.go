package models

import "gorm.io/gorm"

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

type SupportTicket struct {
	gorm.Model
	UserID  uint          `json:"userId"`
	Subject string        `json:"subject" binding:"required"`
	Message string        `json:"message" binding:"required"`
	Status  string        `json:"status" gorm:"size:32;default:open"`
	Replies []TicketReply `json:"replies" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

type TicketReply struct {
	gorm.Model
	TicketID uint   `json:"ticketId"`
	UserID   uint   `json:"userId"`
	Message  string `json:"message" binding:"required"`
}
