package models

import (
	"time"
)

// FoodAnalysis is the JSON contract returned by the vision model.
type FoodAnalysis struct {
	FoodName              string  `json:"foodName"`
	Calories              float64 `json:"calories"`
	Protein               float64 `json:"protein"`
	Carbs                 float64 `json:"carbs"`
	Fat                   float64 `json:"fat"`
	Iron                  float64 `json:"iron"`
	Zinc                  float64 `json:"zinc"`
	Calcium               float64 `json:"calcium"`
	FolicAcid             float64 `json:"folicAcid"`
	VitaminA              float64 `json:"vitaminA"`
	StuntingNutritionScore int    `json:"stuntingNutritionScore"`
	Tip                   string  `json:"tip"`
	IsHealthy             bool    `json:"isHealthy"`
}

type FoodLog struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	ImageURL  string       `json:"image_url" db:"image_url"`
	Analysis  FoodAnalysis `json:"analysis"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
