package handlers

import (
	"context"
	"errors"
	"strings"

	"souqnest/internal/apiclient"
	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/normalize"
	"souqnest/internal/repos"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// User-facing messages. Internal error text is logged, never shown.
const (
	msgConnection = "We couldn't reach the catalog service. Please check your connection and try again."
	msgDenied     = "You don't have access to this page."
	msgNotFound   = "We couldn't find what you were looking for."
	msgBackend    = "This action needs the live catalog service; it is unavailable in demo mode."
	msgGeneric    = "Something went wrong. Please try again."
)

type failure struct {
	Status  int
	Message string
	Fields  map[string]string
}

// classify maps an error onto a status, a safe message and per-field errors.
func classify(err error) failure {
	var fe validate.FieldErrors
	var de *normalize.DecodeError
	switch {
	case errors.As(err, &fe):
		return failure{fiber.StatusBadRequest, "Please correct the highlighted fields.", fe}
	case apiclient.IsValidation(err):
		return failure{fiber.StatusBadRequest, "Please correct the highlighted fields.", apiclient.FieldErrors(err)}
	case errors.Is(err, domain.ErrNotFound):
		return failure{fiber.StatusNotFound, msgNotFound, nil}
	case errors.Is(err, domain.ErrBackendRequired):
		return failure{fiber.StatusServiceUnavailable, msgBackend, nil}
	case errors.Is(err, repos.ErrQuotaExceeded):
		return failure{fiber.StatusRequestEntityTooLarge, "Your session is full. Remove some items and try again.", nil}
	case apiclient.IsConnection(err), errors.Is(err, context.DeadlineExceeded):
		return failure{fiber.StatusBadGateway, msgConnection, nil}
	case errors.As(err, &de):
		return failure{fiber.StatusBadGateway, msgGeneric, nil}
	}
	var ae *apiclient.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apiclient.KindUnauthorized:
			return failure{fiber.StatusUnauthorized, "Please log in again.", nil}
		case apiclient.KindForbidden:
			return failure{fiber.StatusForbidden, msgDenied, nil}
		}
	}
	return failure{fiber.StatusInternalServerError, msgGeneric, nil}
}

// pageError renders the shared notice page for err.
func pageError(c *fiber.Ctx, action string, err error) error {
	f := classify(err)
	logFailure(c, action, err, f)
	return c.Status(f.Status).Render("notfound", fiber.Map{"Message": f.Message, "Status": f.Status})
}

// jsonError writes {error, fields?} for err.
func jsonError(c *fiber.Ctx, action string, err error) error {
	f := classify(err)
	logFailure(c, action, err, f)
	body := fiber.Map{"error": f.Message}
	if len(f.Fields) > 0 {
		body["fields"] = f.Fields
	}
	return c.Status(f.Status).JSON(body)
}

func logFailure(c *fiber.Ctx, action string, err error, f failure) {
	switch {
	case f.Status >= 500:
		applog.Error(c, action+".fail", err, map[string]any{"status": f.Status})
	case f.Status == fiber.StatusBadRequest:
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": keys(f.Fields)})
	default:
		applog.Warn(c, action+".fail", err, map[string]any{"status": f.Status})
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ErrorHandler is the app-level error boundary. It logs err and answers
// with a static notice: JSON under the admin API, the notice page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	applog.Error(c, "server.error", err, nil)
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	if strings.HasPrefix(c.Path(), AdminAPIPrefix) {
		return c.Status(code).JSON(fiber.Map{"error": msgGeneric})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msgGeneric, "Status": code}); rerr != nil {
		return c.Status(code).SendString(msgGeneric)
	}
	return nil
}
