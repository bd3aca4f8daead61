package authapi

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorListResponse struct {
	Errors []string `json:"errors"`
}

type meResponse struct {
	UserID string `json:"userId"`
}
