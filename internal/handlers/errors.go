package handlers

import (
	"errors"

	"tienda/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// upstreamStatus maps a normalized backend failure onto the status the
// gateway replies with. Backend 4xx statuses pass through so the admin UI can
// tell its own mistakes from backend trouble.
func upstreamStatus(err error) int {
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		switch upErr.Kind {
		case upstream.KindNetwork:
			return fiber.StatusBadGateway
		case upstream.KindHTTP:
			if upErr.Status >= 400 && upErr.Status < 500 {
				return upErr.Status
			}
			return fiber.StatusBadGateway
		case upstream.KindApplication:
			return fiber.StatusUnprocessableEntity
		}
	}
	return fiber.StatusInternalServerError
}
