package models

const StatusOnline = "online"

type User struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}
