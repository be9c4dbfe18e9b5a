package httpapi

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-readings-api/internal/auth"
	"github.com/i474232898/weather-readings-api/internal/reading"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. Read routes are
// public; every mutating route requires an admin bearer token.
func RegisterRoutes(app *fiber.App, service *reading.Service, tokens *auth.TokenManager) {
	v1 := app.Group("/api/v1")

	v1.Post("/auth/login", loginHandler(tokens))

	readings := v1.Group("/readings")

	readings.Get("/", func(c *fiber.Ctx) error {
		rs, err := service.ListAll(c.Context())
		if err != nil {
			return storeError(err)
		}
		if rs == nil {
			rs = []reading.Reading{}
		}
		return c.JSON(rs)
	})

	readings.Get("/latest", func(c *fiber.Ctx) error {
		r, err := service.Latest(c.Context())
		if err != nil {
			return translate(err, "No weather data available")
		}
		return c.JSON(r)
	})

	readings.Get("/date/:date", func(c *fiber.Ctx) error {
		date, err := dayParam(c)
		if err != nil {
			return err
		}
		rs, err := service.ByDay(c.Context(), date)
		if err != nil {
			return translate(err, "No weather data found for this date")
		}
		return c.JSON(rs)
	})

	readings.Get("/range", func(c *fiber.Ctx) error {
		startDate, endDate, err := rangeParams(c)
		if err != nil {
			return err
		}
		rs, err := service.ByRange(c.Context(), startDate, endDate)
		if err != nil {
			return translate(err, "No weather data found for this date range")
		}
		return c.JSON(rs)
	})

	readings.Get("/filter", func(c *fiber.Ctx) error {
		f, err := parseFilterQuery(c)
		if err != nil {
			return err
		}
		rs, err := service.Search(c.Context(), f)
		if err != nil {
			return translate(err, "No weather data found matching the filters")
		}
		return c.JSON(rs)
	})

	readings.Get("/stats", func(c *fiber.Ctx) error {
		startDate, endDate, err := rangeParams(c)
		if err != nil {
			return err
		}
		stats, err := service.Stats(c.Context(), startDate, endDate)
		if err != nil {
			return translate(err, "No weather data found for this date range")
		}
		return c.JSON(stats)
	})

	readings.Get("/hourly-stats/:date", func(c *fiber.Ctx) error {
		date, err := dayParam(c)
		if err != nil {
			return err
		}
		stats, err := service.HourlyStats(c.Context(), date)
		if err != nil {
			return translate(err, "No weather data found for this date")
		}
		return c.JSON(stats)
	})

	readings.Get("/:id", func(c *fiber.Ctx) error {
		r, err := service.Get(c.Context(), c.Params("id"))
		if err != nil {
			return translate(err, "Weather record not found")
		}
		return c.JSON(r)
	})

	readings.Post("/", auth.RequireAdmin(tokens), func(c *fiber.Ctx) error {
		var req createRequest
		if err := decodeStrict(c, &req); err != nil {
			return err
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		created, err := service.Create(c.Context(), req.toReading())
		if err != nil {
			return translate(err, "Weather record not found")
		}
		return c.JSON(created)
	})

	readings.Put("/:id", auth.RequireAdmin(tokens), func(c *fiber.Ctx) error {
		var req updateRequest
		if err := decodeStrict(c, &req); err != nil {
			return err
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		updated, err := service.Update(c.Context(), c.Params("id"), req.toPatch())
		if err != nil {
			return translate(err, "Weather record not found")
		}
		return c.JSON(updated)
	})

	readings.Delete("/:id", auth.RequireAdmin(tokens), func(c *fiber.Ctx) error {
		if err := service.Delete(c.Context(), c.Params("id")); err != nil {
			return translate(err, "Weather record not found")
		}
		return c.JSON(fiber.Map{"msg": "Weather record removed"})
	})
}

func loginHandler(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := decodeStrict(c, &req); err != nil {
			return err
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		token, expiresAt, err := tokens.Login(req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid password")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to issue token")
		}

		return c.JSON(fiber.Map{
			"token":     token,
			"expiresAt": expiresAt,
		})
	}
}

// translate maps service errors onto HTTP status codes. Unknown errors become
// an opaque 500; their detail is logged server-side, never returned.
func translate(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, reading.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, reading.ErrTimeConflict):
		return fiber.NewError(fiber.StatusConflict, "Weather record for this time already exists")
	case errors.Is(err, reading.ErrInvalidSort):
		return fiber.NewError(fiber.StatusBadRequest, "unsupported sort field")
	default:
		return storeError(err)
	}
}

func storeError(err error) error {
	slog.Error("store operation failed", "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, "failed to query weather data")
}
