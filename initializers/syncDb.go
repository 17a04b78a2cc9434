package initializers

import (
	"github.com/Njoroge/sokoni-api/models"
	"github.com/rs/zerolog/log"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.SupportTicket{},
		&models.TicketReply{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	log.Info().Msg("Database synced successfully.")
}
