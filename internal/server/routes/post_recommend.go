package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tastemap/backend/internal/server/middleware"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/place"
)

// RecommendPlacesHandler runs the full recommendation chain. Finding
// nothing is a valid outcome: the response then carries a user-facing
// message and an empty result list.
func RecommendPlacesHandler(c echo.Context) error {
	type recommendBody struct {
		Query               string   `json:"query" validate:"required"`
		Region              string   `json:"region"`
		Theme               string   `json:"theme"`
		TopN                int      `json:"top_n"`
		ReviewTexts         []string `json:"review_texts"`
		PreferredCategories []string `json:"preferred_categories"`
	}

	type recommendResponse struct {
		Message string               `json:"message,omitempty"`
		Results []place.RankedResult `json:"results"`
	}

	data := new(recommendBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, recommendResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, recommendResponse{
			Message: "Invalid request body",
		})
	}
	topN := data.TopN
	if topN <= 0 {
		topN = 5
	}

	app := c.(*middleware.AppContext).App
	recommendation, err := app.Pipeline.Recommend(
		c.Request().Context(),
		place.Query{Text: data.Query, Region: data.Region, Theme: data.Theme},
		place.Profile{ReviewTexts: data.ReviewTexts, PreferredCategories: data.PreferredCategories},
		topN,
	)
	if err != nil {
		logger.Error("Recommendation failed", "err", err)
		return c.JSON(http.StatusInternalServerError, recommendResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, recommendResponse{
		Message: recommendation.Message,
		Results: recommendation.Results,
	})
}
