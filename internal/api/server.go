package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/repository"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

// maxCalendarDays caps the calendar view
const maxCalendarDays = 62

// Server exposes the authoritative store to remote clients and renders
// read-only views of it
type Server struct {
	gateway *repository.Gateway
	useCase *usecases.CareUseCase
}

// NewServer creates the HTTP server handlers
func NewServer(gateway *repository.Gateway, useCase *usecases.CareUseCase) *Server {
	return &Server{
		gateway: gateway,
		useCase: useCase,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(viewTemplates)

	r.GET("/health", s.health)

	collections := r.Group("/api/collections")
	{
		collections.GET("/:name", s.getCollection)
		collections.PUT("/:name", s.putCollection)
		collections.PUT("", s.putCollections)
	}

	views := r.Group("/views")
	{
		views.GET("/tasks", s.tasksView)
		views.GET("/calendar", s.calendarView)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	Success(c, gin.H{"status": "ok"})
}

// getCollection answers with the bare JSON array so clients can store it as is
func (s *Server) getCollection(c *gin.Context) {
	records, err := s.gateway.GetCollection(c.Request.Context(), c.Param("name"))
	if err != nil {
		log.Printf("Error reading collection %s: %v", c.Param("name"), err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) putCollection(c *gin.Context) {
	var records []json.RawMessage
	if err := c.ShouldBindJSON(&records); err != nil {
		BadRequest(c, "body must be a JSON array: "+err.Error())
		return
	}
	if err := s.gateway.SetCollection(c.Request.Context(), c.Param("name"), records); err != nil {
		log.Printf("Error writing collection %s: %v", c.Param("name"), err)
		respondError(c, err)
		return
	}
	Success(c, gin.H{"records": len(records)})
}

func (s *Server) putCollections(c *gin.Context) {
	var batch map[string][]json.RawMessage
	if err := c.ShouldBindJSON(&batch); err != nil {
		BadRequest(c, "body must map collection names to JSON arrays: "+err.Error())
		return
	}
	if len(batch) == 0 {
		BadRequest(c, "no collections given")
		return
	}
	if err := s.gateway.SetCollections(c.Request.Context(), batch); err != nil {
		log.Printf("Error writing collections: %v", err)
		respondError(c, err)
		return
	}
	Success(c, gin.H{"collections": len(batch)})
}

func (s *Server) tasksView(c *gin.Context) {
	// the server's store can be written by any client, so skip the cache
	s.useCase.InvalidateViews()
	board, err := s.useCase.Tasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "tasks", tasksPage(board))
}

func (s *Server) calendarView(c *gin.Context) {
	start := care.DateOf(s.useCase.Now())
	if q := c.Query("start"); q != "" {
		d, err := care.ParseDate(q)
		if err != nil {
			BadRequest(c, "start must be YYYY-MM-DD")
			return
		}
		start = d
	}

	days := 0
	if q := c.Query("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > maxCalendarDays {
			BadRequest(c, "days must be between 1 and "+strconv.Itoa(maxCalendarDays))
			return
		}
		days = n
	}

	s.useCase.InvalidateViews()
	view, err := s.useCase.Calendar(c.Request.Context(), start, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "calendar", calendarPage(view))
}
