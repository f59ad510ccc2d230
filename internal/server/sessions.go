package server

import (
	"errors"

	"github.com/beetlebugorg/burnview/internal/metrics"
	"github.com/beetlebugorg/burnview/pkg/session"
	"github.com/gofiber/fiber/v2"
)

// snapshotResponse adds the rendered detail panel to a snapshot.
type snapshotResponse struct {
	*session.Snapshot
	Details []session.Detail `json:"details,omitempty"`
}

func newSnapshotResponse(snap *session.Snapshot) snapshotResponse {
	return snapshotResponse{Snapshot: snap, Details: snap.Details()}
}

// CreateSessionHandler starts a session and returns its id and initial state.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := deps.Sessions.Create()
		trackSessions(deps)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       s.ID(),
			"snapshot": newSnapshotResponse(s.Snapshot()),
		})
	}
}

// GetSessionHandler returns the latest snapshot of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := deps.Sessions.Get(c.Params("id"))
		if !ok {
			return errNotFound(c, "session not found")
		}
		return c.JSON(newSnapshotResponse(s.Snapshot()))
	}
}

// SessionEventHandler applies one event and returns the resulting snapshot.
//
// Body: {"type":"viewport","bounds":{...}} or {"type":"click",...}.
func SessionEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := deps.Sessions.Get(c.Params("id"))
		if !ok {
			return errNotFound(c, "session not found")
		}

		ev, err := session.DecodeEvent(c.Body())
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		snap, err := s.Submit(c.UserContext(), ev)
		switch {
		case errors.Is(err, session.ErrClosed):
			return errGone(c, "session closed")
		case err != nil:
			return errInternal(c, err.Error())
		}
		return c.JSON(newSnapshotResponse(snap))
	}
}

// DeleteSessionHandler closes a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Sessions.Remove(c.Params("id")) {
			return errNotFound(c, "session not found")
		}
		trackSessions(deps)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func trackSessions(deps *Dependencies) {
	metrics.ActiveSessions.Set(float64(deps.Sessions.Stats().Sessions))
}
