package models

import "time"

// BusinessInfo is the intake data a session is created with.
type BusinessInfo struct {
	Industry    string `json:"industry"    validate:"required,oneof=restaurant retail service healthcare education technology manufacturing construction finance beauty fitness entertainment automotive agriculture logistics other"`
	Region      string `json:"region"      validate:"required,oneof=seoul busan daegu incheon gwangju daejeon ulsan gyeonggi gangwon chungbuk chungnam jeonbuk jeonnam gyeongbuk gyeongnam jeju"`
	Size        string `json:"size"        validate:"required,oneof=small medium large"`
	Description string `json:"description,omitempty"`
}

// AnalysisResult is the output of the business analysis step.
type AnalysisResult struct {
	Summary         string    `json:"summary"`
	Score           float64   `json:"score"`
	Insights        []string  `json:"insights"`
	MarketTrends    []string  `json:"market_trends"`
	Recommendations []string  `json:"recommendations"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Report aggregates the selected results of every step into the final
// deliverable payload. Rendering it to PDF/HTML is a downstream concern.
type Report struct {
	BusinessName string          `json:"business_name"`
	Summary      string          `json:"summary"`
	Analysis     *AnalysisResult `json:"analysis,omitempty"`
	SignboardURL string          `json:"signboard_url,omitempty"`
	InteriorURL  string          `json:"interior_url,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
