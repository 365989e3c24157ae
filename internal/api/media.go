package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// uploadMedia stores a multipart "file" in the library and returns the URI
// to put in an event's media list
func (s *Server) uploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()

	uri, err := s.media.Save(fh.Filename, f)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"uri": uri})
}

func (s *Server) serveMedia(c *gin.Context) {
	p, err := s.media.Lookup(c.Param("name"))
	if err != nil {
		writeError(c, http.StatusNotFound, "media not found")
		return
	}
	c.File(p)
}
