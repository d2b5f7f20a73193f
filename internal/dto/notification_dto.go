// FILE: internal/dto/notification_dto.go
package dto

type UpdatePreferencesRequest struct {
	ChatEmailEnabled *bool    `json:"chatEmailEnabled"`
	MutedRooms       []string `json:"mutedRooms"`
}

type PreferencesResponse struct {
	ChatEmailEnabled bool     `json:"chatEmailEnabled"`
	MutedRooms       []string `json:"mutedRooms"`
}
