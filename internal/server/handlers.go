package server

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shreeshk9/group-trip-planner/internal/session"
)

type createSessionRequest struct {
	CreatorName   string `json:"creator_name" validate:"required"`
	ExpectedUsers int    `json:"num_users" validate:"min=1,max=20"`
}

type progressPayload struct {
	SessionID string   `json:"session_id"`
	Submitted int      `json:"submitted"`
	Expected  int      `json:"expected"`
	Users     []string `json:"users_submitted"`
	Ready     bool     `json:"ready"`
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	record, err := s.Store.Create(c.Context(), req.CreatorName, req.ExpectedUsers)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create session")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) getSession(c *fiber.Ctx) error {
	record, err := s.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(record)
}

func (s *Server) submitPreference(c *fiber.Ctx) error {
	var pref session.Preference
	if err := c.BodyParser(&pref); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(pref); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := s.Regions.Region(pref.Region); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unknown region: "+pref.Region)
	}

	id := c.Params("id")
	record, err := s.Store.SubmitPreference(c.Context(), id, pref)
	if err != nil {
		return sessionError(err)
	}

	progress := progressFor(record)
	s.broadcast(id, progress)
	return c.Status(fiber.StatusCreated).JSON(progress)
}

func (s *Server) getProgress(c *fiber.Ctx) error {
	record, err := s.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(progressFor(record))
}

type consensusRequest struct {
	Force bool `json:"force"`
}

func (s *Server) runConsensus(c *fiber.Ctx) error {
	var req consensusRequest
	_ = c.BodyParser(&req)

	id := c.Params("id")
	record, err := s.Store.Get(c.Context(), id)
	if err != nil {
		return sessionError(err)
	}
	if record.Status == session.StatusCompleted {
		return c.JSON(json.RawMessage(record.Results))
	}
	if len(record.Users) == 0 {
		return fiber.NewError(fiber.StatusConflict, "no preferences submitted yet")
	}
	if len(record.Users) < record.ExpectedUsers && !req.Force {
		return fiber.NewError(fiber.StatusConflict, "still waiting for participants; pass force to plan anyway")
	}

	result, err := s.Planner.BuildOptions(c.Context(), record.Users)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	results, err := json.Marshal(result)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not encode results")
	}
	if _, err := s.Store.MarkComplete(c.Context(), id, results); err != nil {
		return sessionError(err)
	}

	s.broadcast(id, fiber.Map{"session_id": id, "event": "consensus_complete"})
	return c.JSON(result)
}

func (s *Server) getResults(c *fiber.Ctx) error {
	record, err := s.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	if record.Status != session.StatusCompleted {
		return fiber.NewError(fiber.StatusConflict, "planning has not run yet")
	}
	return c.JSON(json.RawMessage(record.Results))
}

func (s *Server) broadcast(sessionID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.Stream.Broadcast(sessionID, raw)
}

func progressFor(record session.Record) progressPayload {
	names := make([]string, 0, len(record.Users))
	for _, u := range record.Users {
		names = append(names, u.Name)
	}
	return progressPayload{
		SessionID: record.SessionID,
		Submitted: len(record.Users),
		Expected:  record.ExpectedUsers,
		Users:     names,
		Ready:     len(record.Users) >= record.ExpectedUsers,
	}
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "concurrent update, retry")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
