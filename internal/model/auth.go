package model

// AccessToken is the payload of the bearer token. LongExpire is a unix time
// in milliseconds fixed at login and copied on every refresh.
type AccessToken struct {
	ID                string `json:"id"`
	ProviderUserID    string `json:"providerUserId"`
	DisplayName       string `json:"displayName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	HasPremium        bool   `json:"hasPremium"`
	LongExpire        int64  `json:"longExpire"`
}

type AuthorizeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type AuthorizeResponse struct {
	JWTToken     string `json:"jwtToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	JWTToken     string `json:"jwtToken"`
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetAuthorizationURLRequest struct{}

type GetAuthorizationURLResponse struct {
	URL string `json:"url"`
}
