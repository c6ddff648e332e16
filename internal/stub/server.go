package stub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/remote"
)

type trainingFile struct {
	remote.TrainingFile
	content []byte
}

type Server struct {
	store  *Store
	auth   *authConfig
	script chatScript
	log    zerolog.Logger

	mu       sync.Mutex
	training map[string]trainingFile
}

type Options struct {
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	Currency      string
}

func NewServer(store *Store, opts Options, log zerolog.Logger) (*Server, error) {
	auth, err := newAuthConfig(opts.JWTSecret, opts.AdminEmail, opts.AdminPassword)
	if err != nil {
		return nil, err
	}
	currency := opts.Currency
	if currency == "" {
		currency = "₱"
	}
	return &Server{
		store:    store,
		auth:     auth,
		script:   chatScript{currency: currency},
		log:      log.With().Str("component", "stub").Logger(),
		training: make(map[string]trainingFile),
	}, nil
}

// Router wires the collaborator endpoints in the shapes the engine's clients
// expect: bare payloads, no response envelope.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	// The widget embeds on arbitrary restaurant sites.
	r.Use(cors.Default())

	r.POST("/api/login", s.login)
	r.GET("/api/config", s.getConfig)
	r.POST("/api/chat", s.chat)
	r.POST("/api/orders/create", s.createOrder)

	authed := r.Group("/")
	authed.Use(s.auth.authRequired())
	authed.POST("/api/config", s.saveConfig)
	authed.GET("/api/orders/list", s.listOrders)
	authed.POST("/api/orders/:order_id/status", s.updateOrderStatus)
	authed.GET("/api/training/files", s.listTraining)
	authed.POST("/api/training/upload", s.uploadTraining)
	authed.DELETE("/api/training/files/:file_id", s.deleteTraining)
	authed.GET("/api/training/files/:file_id/preview", s.previewTraining)

	return r
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !s.auth.verify(req.Email, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := s.auth.issueToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) getConfig(c *gin.Context) {
	brand, err := s.store.LoadBrand(c.Request.Context(), c.Query("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (s *Server) saveConfig(c *gin.Context) {
	var brand remote.BrandConfig
	if err := c.ShouldBindJSON(&brand); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.store.SaveBrand(c.Request.Context(), c.Query("restaurant_id"), &brand); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "saved"})
}

func (s *Server) chat(c *gin.Context) {
	var req struct {
		Message string                  `json:"message"`
		History []remote.HistoryMessage `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}

	brand, err := s.store.LoadBrand(c.Request.Context(), c.Query("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}
	c.JSON(http.StatusOK, s.script.reply(req.Message, brand))
}

func (s *Server) createOrder(c *gin.Context) {
	var p remote.Placement
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(p.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order has no items"})
		return
	}

	o, err := s.store.CreateOrder(c.Request.Context(), c.Query("restaurant_id"), p)
	if err != nil {
		s.log.Error().Err(err).Msg("order creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"order_id": o.PublicID,
		"message":  fmt.Sprintf("Order #%d placed successfully!", o.ID),
	})
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.store.ListOrders(c.Request.Context(), c.Query("restaurant_id"), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	records := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		var items []remote.LineItem
		_ = json.Unmarshal([]byte(o.ItemsJSON), &items)
		recItems := make([]gin.H, 0, len(items))
		for _, it := range items {
			recItems = append(recItems, gin.H{"name": it.Name})
		}
		records = append(records, gin.H{
			"id":            o.ID,
			"customer_name": o.CustomerName,
			"total_amount":  o.TotalAmount,
			"status":        o.Status,
			"created_at":    o.CreatedAt.Format("2006-01-02T15:04:05Z"),
			"items":         recItems,
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": records})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.store.UpdateOrderStatus(c.Request.Context(), c.Param("order_id"), req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated to " + req.Status})
}

func (s *Server) listTraining(c *gin.Context) {
	s.mu.Lock()
	files := make([]remote.TrainingFile, 0, len(s.training))
	for _, f := range s.training {
		files = append(files, f.TrainingFile)
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) uploadTraining(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	f := trainingFile{
		TrainingFile: remote.TrainingFile{
			ID:   uuid.NewString(),
			Name: header.Filename,
			Size: int64(len(content)),
		},
		content: content,
	}

	s.mu.Lock()
	s.training[f.ID] = f
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"message": "uploaded", "id": f.ID})
}

func (s *Server) deleteTraining(c *gin.Context) {
	id := c.Param("file_id")
	s.mu.Lock()
	_, ok := s.training[id]
	delete(s.training, id)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (s *Server) previewTraining(c *gin.Context) {
	id := c.Param("file_id")
	s.mu.Lock()
	f, ok := s.training[id]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	preview := string(f.content)
	if len(preview) > 2000 {
		preview = preview[:2000]
	}
	c.JSON(http.StatusOK, gin.H{"preview": preview})
}
