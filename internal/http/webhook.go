package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/jmehdipour/enroll-gateway/internal/metrics"
	"github.com/jmehdipour/enroll-gateway/internal/payload"
	"github.com/jmehdipour/enroll-gateway/internal/service/intake"
	"github.com/jmehdipour/enroll-gateway/internal/signature"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	headerSignature    = "Framer-Signature"
	headerSubmissionID = "Framer-Webhook-Submission-Id"
)

func webhookHandler(svc *intake.Service, secret string, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		// the signature covers the exact bytes received, so read before parsing
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			var tooLarge *echo.HTTPError
			if errors.As(err, &tooLarge) {
				return err
			}
			metrics.WebhooksTotal.WithLabelValues("bad_request").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		}

		sig := c.Request().Header.Get(headerSignature)
		submissionID := c.Request().Header.Get(headerSubmissionID)
		if sig == "" || submissionID == "" {
			metrics.WebhooksTotal.WithLabelValues("bad_request").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required headers"})
		}

		if !signature.Verify(secret, submissionID, body, sig) {
			metrics.WebhooksTotal.WithLabelValues("unauthorized").Inc()
			logger.Warn("invalid webhook signature", zap.String("submission_id", submissionID))
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		}

		sub, err := payload.Parse(body, svc.RequireTelephone())
		if err != nil {
			return badSubmission(c, err)
		}

		out, err := svc.Submit(c.Request().Context(), submissionID, sub)
		if err != nil {
			var verr *payload.ValidationError
			if errors.As(err, &verr) {
				return badSubmission(c, err)
			}
			metrics.WebhooksTotal.WithLabelValues("error").Inc()
			logger.Error("webhook processing failed", zap.String("submission_id", submissionID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}

		if out.Created {
			metrics.WebhooksTotal.WithLabelValues("created").Inc()
		} else {
			metrics.WebhooksTotal.WithLabelValues("duplicate").Inc()
		}
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

func badSubmission(c echo.Context, err error) error {
	var verr *payload.ValidationError
	if errors.As(err, &verr) {
		metrics.WebhooksTotal.WithLabelValues("invalid_fields").Inc()
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "Missing required fields",
			"missing": verr.Missing,
		})
	}
	metrics.WebhooksTotal.WithLabelValues("bad_request").Inc()
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
}
