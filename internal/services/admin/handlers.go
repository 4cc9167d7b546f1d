package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

// Service holds the ports the Admin HTTP API needs: it only ever inserts
// or soft-deletes Monitor rows and enqueues force-check Jobs (spec §6).
type Service struct {
	Monitors monitor.Repo
	Queue    job.Queue
	Log      *zap.Logger
}

type registerRequest struct {
	ConvexURLID  string `json:"convexUrlId" binding:"required"`
	ConvexUserID string `json:"convexUserId" binding:"required"`
	LongURL      string `json:"longUrl" binding:"required"`
	ShortURL     string `json:"shortUrl"`
	IntervalMS   int64  `json:"intervalMs"`
	Environment  string `json:"environment"`
}

func (s *Service) registerOne(c *gin.Context, req registerRequest) (gin.H, int) {
	env := monitor.Environment(req.Environment)
	if env == "" {
		env = monitor.EnvProd
	}
	m, already, err := s.Monitors.Register(c.Request.Context(), monitor.RegisterInput{
		ExternalURLID:  req.ConvexURLID,
		ExternalUserID: req.ConvexUserID,
		LongURL:        req.LongURL,
		ShortURL:       req.ShortURL,
		IntervalMS:     req.IntervalMS,
		Environment:    env,
	})
	if err != nil {
		s.Log.Error("register monitor failed", zap.Error(err))
		return gin.H{"success": false}, http.StatusInternalServerError
	}
	if already {
		return gin.H{"success": true, "message": "Already registered"}, http.StatusOK
	}
	return gin.H{"success": true, "linkId": m.ID}, http.StatusCreated
}

// Register handles POST /monitors/register.
func (s *Service) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	body, status := s.registerOne(c, req)
	c.JSON(status, body)
}

// RegisterBatch handles POST /monitors/batch.
func (s *Service) RegisterBatch(c *gin.Context) {
	var reqs []registerRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	results := make([]gin.H, 0, len(reqs))
	for _, req := range reqs {
		body, _ := s.registerOne(c, req)
		results = append(results, body)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// ForceCheck handles POST /monitors/:id/force-check: enqueues a high
// priority Job immediately, out-of-band of next_check_at (spec §6).
func (s *Service) ForceCheck(c *gin.Context) {
	id := c.Param("id")
	m, err := s.Monitors.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	j := job.HealthCheckJob{
		LinkID:         m.ID,
		ExternalURLID:  m.ExternalURLID,
		ExternalUserID: m.ExternalUserID,
		LongURL:        m.LongURL,
		ShortURL:       m.ShortURL,
		Environment:    m.Environment,
	}
	jobID := job.ID(m.ID, time.Now().UnixMilli())
	if err := s.Queue.Enqueue(c.Request.Context(), j, job.EnqueueOptions{Priority: job.PriorityHigh, JobID: jobID}); err != nil {
		s.Log.Error("force-check enqueue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// Get handles GET /monitors/:id: a read-only status projection.
func (s *Service) Get(c *gin.Context) {
	id := c.Param("id")
	m, err := s.Monitors.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "monitor": m})
}

// Deactivate handles DELETE /monitors/:id: soft delete (is_active=false).
func (s *Service) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if err := s.Monitors.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
