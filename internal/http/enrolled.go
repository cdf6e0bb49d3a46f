package http

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/listing"
	"github.com/jmehdipour/enroll-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func listEnrolledHandler(repo repository.EnrollmentsRepository, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := repo.List(c.Request().Context())
		if err != nil {
			logger.Error("list enrollments failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch users"})
		}

		c.Response().Header().Set("X-Total-Count", strconv.Itoa(len(list)))
		return c.JSON(http.StatusOK, list)
	}
}

func searchEnrolledHandler(repo repository.EnrollmentsRepository, logger *zap.Logger, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := repo.List(c.Request().Context())
		if err != nil {
			logger.Error("list enrollments failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch users"})
		}

		return c.JSON(http.StatusOK, listing.Apply(list, queryFrom(c), now()))
	}
}

func enrolledPageHandler(repo repository.EnrollmentsRepository, logger *zap.Logger, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := repo.List(c.Request().Context())
		if err != nil {
			logger.Error("list enrollments failed", zap.Error(err))
			return c.String(http.StatusInternalServerError, "Failed to fetch users")
		}

		return c.Render(http.StatusOK, "enrolled.html", enrolledView{
			List:   listing.Apply(list, queryFrom(c), now()),
			apiKey: c.QueryParam("api_key"),
		})
	}
}

func queryFrom(c echo.Context) listing.Query {
	return listing.ParseQuery(c.QueryParam("q"), c.QueryParam("window"), c.QueryParam("sort"), c.QueryParam("page"))
}

type enrolledView struct {
	List   listing.Page
	apiKey string
}

// PageURL links to page n keeping the current filters.
func (v enrolledView) PageURL(n int) string {
	q := v.List.Query
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("q", q.Search)
	}
	if q.Window != listing.WindowAll {
		vals.Set("window", string(q.Window))
	}
	if q.Sort != listing.SortNewest {
		vals.Set("sort", string(q.Sort))
	}
	if n > 1 {
		vals.Set("page", strconv.Itoa(n))
	}
	if v.apiKey != "" {
		vals.Set("api_key", v.apiKey)
	}
	if len(vals) == 0 {
		return "/enrolled"
	}
	return "/enrolled?" + vals.Encode()
}

func (v enrolledView) PrevURL() string { return v.PageURL(v.List.Page - 1) }
func (v enrolledView) NextURL() string { return v.PageURL(v.List.Page + 1) }

func (v enrolledView) APIKey() string { return v.apiKey }
