package dto

import "time"

type TelegramLoginRequestDTO struct {
	InitData string `json:"init_data" example:"query_id=AAH...&user=%7B%22id%22%3A42%7D&auth_date=1700000000&hash=..."`
}

type LoginResponseDTO struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at" example:"2024-01-02T15:04:05Z"`
	User      UserResponseDTO `json:"user"`
}
