package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/timelines/internal/domain"
	"github.com/pbaille/timelines/internal/store"
)

// EventRequest is the request body for creating or replacing an event
type EventRequest struct {
	Title string   `json:"title"`
	Note  string   `json:"note"`
	Date  string   `json:"date"`
	Tag   string   `json:"tag"`
	Media []string `json:"media"`
}

func (r EventRequest) input() (domain.EventInput, error) {
	in := domain.EventInput{
		Title: r.Title,
		Note:  r.Note,
		Tag:   r.Tag,
		Media: r.Media,
	}
	if in.Tag == "" {
		in.Tag = domain.DefaultTag
	}
	if r.Date != "" {
		date, err := domain.ParseDate(r.Date)
		if err != nil {
			return in, err
		}
		in.Date = date
	}
	return in, in.Validate()
}

func bindEvent(c *gin.Context) (domain.EventInput, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return domain.EventInput{}, false
	}
	in, err := req.input()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return domain.EventInput{}, false
	}
	return in, true
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid event id")
		return 0, false
	}
	return id, true
}

func (s *Server) listEvents(c *gin.Context) {
	filter := domain.Filter{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
	}
	events := s.store.SearchEvents(filter)

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func (s *Server) getEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	e, err := s.store.GetEvent(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) addEvent(c *gin.Context) {
	in, ok := bindEvent(c)
	if !ok {
		return
	}

	id, err := s.store.AddEvent(in.Title, in.Note, in.Date, in.Tag, in.Media)
	if errors.Is(err, domain.ErrDateOutOfRange) || errors.Is(err, store.ErrInvalidMedia) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	e, err := s.store.GetEvent(id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) updateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	in, ok := bindEvent(c)
	if !ok {
		return
	}

	updated, err := s.store.UpdateEvent(id, in.Title, in.Note, in.Date, in.Tag, in.Media)
	if errors.Is(err, domain.ErrDateOutOfRange) || errors.Is(err, store.ErrInvalidMedia) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !updated {
		writeError(c, http.StatusNotFound, "event not found")
		return
	}

	e, err := s.store.GetEvent(id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteEvent(id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "event not found")
		return
	}
	c.Status(http.StatusNoContent)
}
