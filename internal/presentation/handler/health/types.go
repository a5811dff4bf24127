package health

type pingResponse struct {
	Message string `json:"message" example:"pong"`
}

type healthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}
