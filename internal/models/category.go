package models

type Category struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"action"`
}
