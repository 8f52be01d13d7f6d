package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pokedex-mcp/internal/config"
	"pokedex-mcp/internal/format"
	"pokedex-mcp/internal/pokedex"
	"pokedex-mcp/internal/pokemon"
)

// API serves the REST endpoints that back a browser client.
type API struct {
	svc       *pokedex.Service
	favorites FavoriteStore
	tools     *Tools
}

func NewAPI(svc *pokedex.Service, favs FavoriteStore, tools *Tools) *API {
	return &API{svc: svc, favorites: favs, tools: tools}
}

// NewRouter mounts /health, /tools, the MCP endpoint and the REST API.
func NewRouter(cfg config.HTTPConfig, api *API, mcpServer *mcp.Server, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		apiKeyAuth(cfg.APIKey, cfg.AuthHeader),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/tools", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tools": api.tools.Registry()})
	})
	router.Any(cfg.MCPPath, gin.WrapH(mcpHandler))

	v1 := router.Group("/api")
	{
		v1.GET("/pokemon/:name", api.getPokemon)
		v1.GET("/compare", api.compare)
		v1.GET("/search", api.search)
		v1.GET("/type/:type", api.byType)
		v1.GET("/generation/:id", api.byGeneration)
		v1.GET("/favorites", api.listFavorites)
		v1.POST("/favorites", api.addFavorite)
		v1.DELETE("/favorites/:id", api.removeFavorite)
		v1.GET("/cache", api.cacheStats)
		v1.DELETE("/cache", api.clearCache)
	}
	return router
}

// NewHTTPServer wraps the router with the configured timeouts.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           cfg.Address,
		Handler:        handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", time.Since(start).Milliseconds())
	}
}

func (a *API) getPokemon(c *gin.Context) {
	p, err := a.svc.Lookup(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type compareResponse struct {
	First      pokemon.Pokemon      `json:"first"`
	Second     pokemon.Pokemon      `json:"second"`
	Identical  bool                 `json:"identical"`
	Difference pokemon.Stats        `json:"difference"`
	Types      format.SetComparison `json:"types"`
	Abilities  format.SetComparison `json:"abilities"`
}

func (a *API) compare(c *gin.Context) {
	first, second, err := a.svc.Compare(c.Request.Context(), c.Query("a"), c.Query("b"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, compareResponse{
		First:      first,
		Second:     second,
		Identical:  first.Name == second.Name,
		Difference: first.Stats.Sub(second.Stats),
		Types:      format.CompareSets(first.Types, second.Types),
		Abilities:  format.CompareSets(first.Abilities, second.Abilities),
	})
}

func (a *API) search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := a.svc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}

func (a *API) byType(c *gin.Context) {
	res, err := a.svc.ByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}

func (a *API) byGeneration(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, &pokemon.ValidationError{Rule: "generation", Message: "Generation must be a number"})
		return
	}
	res, err := a.svc.ByGeneration(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}

func (a *API) listFavorites(c *gin.Context) {
	favs, err := a.favorites.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

type addFavoriteRequest struct {
	PokemonID   int    `json:"pokemonId"`
	PokemonName string `json:"pokemonName"`
}

func (a *API) addFavorite(c *gin.Context) {
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &pokemon.ValidationError{Rule: "body", Message: "invalid JSON body"})
		return
	}
	added, err := a.favorites.Add(c.Request.Context(), req.PokemonID, req.PokemonName)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added})
}

func (a *API) removeFavorite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, &pokemon.ValidationError{Rule: "id", Message: "Pokemon id must be a positive integer"})
		return
	}
	removed, err := a.favorites.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (a *API) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, a.svc.CacheStats())
}

func (a *API) clearCache(c *gin.Context) {
	a.svc.ClearCache()
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	var ue *pokemon.UpstreamError
	switch {
	case pokemon.IsValidation(err):
		status, code = http.StatusBadRequest, "invalid_input"
	case pokemon.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case pokemon.IsRateLimited(err):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case errors.As(err, &ue):
		status, code = http.StatusBadGateway, "upstream_error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": pokemon.Message(err)}})
}
