package models

type Config struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
