package services

import (
	"testing"
)

const sampleAnalysis = `{
	"foodName": "Bubur kacang hijau",
	"calories": 210,
	"protein": 8.5,
	"carbs": 36,
	"fat": 3.2,
	"iron": 2.1,
	"zinc": 1.1,
	"calcium": 55,
	"folicAcid": 0.12,
	"vitaminA": 10,
	"stuntingNutritionScore": 78,
	"tip": "Tambahkan santan secukupnya untuk lemak sehat.",
	"isHealthy": true
}`

func TestParseFoodAnalysis(t *testing.T) {
	analysis, err := ParseFoodAnalysis(sampleAnalysis)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if analysis.FoodName != "Bubur kacang hijau" {
		t.Errorf("foodName = %q", analysis.FoodName)
	}
	if analysis.StuntingNutritionScore != 78 {
		t.Errorf("score = %d, want 78", analysis.StuntingNutritionScore)
	}
	if !analysis.IsHealthy {
		t.Error("isHealthy should be true")
	}
}

func TestParseFoodAnalysisFenced(t *testing.T) {
	fenced := "```json\n" + sampleAnalysis + "\n```"
	analysis, err := ParseFoodAnalysis(fenced)
	if err != nil {
		t.Fatalf("parse of fenced payload failed: %v", err)
	}
	if analysis.Calories != 210 {
		t.Errorf("calories = %v, want 210", analysis.Calories)
	}
}

func TestParseFoodAnalysisClampsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"foodName":"x","stuntingNutritionScore":140}`, 100},
		{`{"foodName":"x","stuntingNutritionScore":-5}`, 0},
	}

	for _, tt := range tests {
		analysis, err := ParseFoodAnalysis(tt.raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if analysis.StuntingNutritionScore != tt.want {
			t.Errorf("score = %d, want %d", analysis.StuntingNutritionScore, tt.want)
		}
	}
}

func TestParseFoodAnalysisRejectsGarbage(t *testing.T) {
	if _, err := ParseFoodAnalysis("I cannot identify the food in this image."); err == nil {
		t.Error("prose response should be rejected")
	}
	if _, err := ParseFoodAnalysis(`{"calories": 100}`); err == nil {
		t.Error("response without foodName should be rejected")
	}
}
