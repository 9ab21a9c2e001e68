package respond

// LoginRespond is returned on successful login, register and refresh.
type LoginRespond struct {
	Uuid         string `json:"uuid"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
