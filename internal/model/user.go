package model

type User struct {
	ID                string `json:"id"`
	ProviderUserID    string `json:"providerUserId"`
	Email             string `json:"email"`
	DisplayName       string `json:"displayName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	HasPremium        bool   `json:"hasPremium"`
}

type GetMeRequest struct{}

type GetMeResponse User
