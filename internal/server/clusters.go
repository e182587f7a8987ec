package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"area-map/internal/clusters"
)

type createClusterRequest struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Members []string `json:"members"`
}

// updateClusterRequest changes only the fields that are set. Visible and
// Selected go together: members listed in Visible are replaced by Selected.
type updateClusterRequest struct {
	Active   *bool    `json:"active"`
	Color    *string  `json:"color"`
	Visible  []string `json:"visible"`
	Selected []string `json:"selected"`
}

func (s *Server) listClusters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "clusters": loadClusters(c)})
}

func (s *Server) createCluster(c *gin.Context) {
	var req createClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	st, err := loadClusters(c).Create(req.Name, req.Color, req.Members)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := saveClusters(c, st); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.log.Info("cluster_saved", "name", req.Name, "members", len(req.Members))
	created, _ := st.Get(req.Name)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "cluster": created})
}

func (s *Server) updateCluster(c *gin.Context) {
	name := c.Param("name")
	var req updateClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	st := loadClusters(c)
	if _, ok := st.Get(name); !ok {
		fail(c, http.StatusNotFound, clusters.ErrNotFound)
		return
	}
	var err error
	if req.Active != nil {
		st, err = st.SetActive(name, *req.Active)
	}
	if err == nil && req.Color != nil {
		st, err = st.SetColor(name, *req.Color)
	}
	if err == nil && req.Visible != nil {
		st, err = st.EditVisible(name, req.Visible, req.Selected)
	}
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	if err := saveClusters(c, st); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	updated, _ := st.Get(name)
	c.JSON(http.StatusOK, gin.H{"ok": true, "cluster": updated})
}

func (s *Server) deleteCluster(c *gin.Context) {
	name := c.Param("name")
	st, err := loadClusters(c).Delete(name)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	if err := saveClusters(c, st); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.log.Info("cluster_deleted", "name", name)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// clusterShapes resolves active clusters against the whole record set.
func (s *Server) clusterShapes(c *gin.Context) {
	shapes := clusters.Shapes(loadClusters(c), s.records.Records())
	countShapes(shapes)
	c.JSON(http.StatusOK, gin.H{"ok": true, "clusters": shapes})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, clusters.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, clusters.ErrEmptyName), errors.Is(err, clusters.ErrNoMembers):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
