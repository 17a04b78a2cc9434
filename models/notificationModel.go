package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userId"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
	Read    bool   `json:"read"`
}
