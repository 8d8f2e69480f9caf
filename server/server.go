package server

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"feedwords/analysis"
	"feedwords/feeds"
	"feedwords/models"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

//go:embed dist/*
var dist embed.FS

// SettingsStore persists the user's feed selection and stopwords
type SettingsStore interface {
	SelectedFeeds(ctx context.Context) (*models.FeedList, error)
	SaveSelectedFeeds(ctx context.Context, feeds *models.FeedList) error
	CustomStopwords(ctx context.Context) ([]string, error)
	SaveCustomStopwords(ctx context.Context, words []string) error
}

type HistoryReader interface {
	ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error)
}

// Runner performs one analysis pass
type Runner interface {
	Run(ctx context.Context) (*models.AnalysisResponse, error)
}

type ServerConfig struct {

	// Where feed selection and custom stopwords are read and saved
	Settings SettingsStore

	// Past analysis runs, optional
	History HistoryReader

	Analyzer Runner

	// Broadcast analysis events to SSE clients
	Broadcaster *Broadcaster

	// The feed catalog offered to users, the built-in one when empty
	Catalog []models.Feed

	// Comma separated list of allowed CORS origins
	CorsOrigins string

	// How often SSE clients get a keep-alive ping
	PingInterval time.Duration
}

type feedsRequest struct {
	Feeds *models.FeedList `json:"feeds"`
}

type feedsResponse struct {
	SelectedFeeds *models.FeedList `json:"selected_feeds"`
	DefaultFeeds  *models.FeedList `json:"default_feeds"`
}

type stopwordsRequest struct {
	Stopwords *[]string `json:"stopwords"`
}

type stopwordsResponse struct {
	CustomStopwords []string `json:"custom_stopwords"`
	DefaultCount    int      `json:"default_count"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type catalogResponse struct {
	Categories []string      `json:"categories"`
	Feeds      []models.Feed `json:"feeds"`
}

func errorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
}

func success(c *fiber.Ctx) error {
	return c.JSON(statusResponse{Status: "success"})
}

// Returns a fiber.App instance serving the analysis API and the browser UI
func Server(config *ServerConfig) *fiber.App {

	bc := config.Broadcaster
	if bc == nil {
		bc = NewBroadcaster()
	}

	catalog := config.Catalog
	defaultFeeds := feeds.ToFeedList(catalog)
	if len(catalog) == 0 {
		catalog = feeds.Catalog()
		defaultFeeds = feeds.DefaultCatalog()
	}

	pingInterval := config.PingInterval
	if pingInterval <= 0 {
		pingInterval = 5 * time.Second
	}

	corsOrigins := config.CorsOrigins
	if corsOrigins == "" {
		corsOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Cache-Control, Content-Type",
	}))

	// Only the catalog is static enough to cache
	app.Use(cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet || !strings.HasPrefix(c.Path(), "/api/catalog")
		},
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Include the query parameters in the cache key
			return c.Request().URI().String()
		},
	}))

	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metrics(c.Context())
		return nil
	})

	app.Get("/api/feeds", func(c *fiber.Ctx) error {
		selected, err := config.Settings.SelectedFeeds(c.Context())
		if err != nil {
			log.WithError(err).Error("Error reading selected feeds")
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(feedsResponse{
			SelectedFeeds: selected,
			DefaultFeeds:  defaultFeeds,
		})
	})

	app.Post("/api/feeds", func(c *fiber.Ctx) error {
		var request feedsRequest
		if err := json.Unmarshal(c.Body(), &request); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		}
		// A body without feeds leaves the selection untouched
		if request.Feeds == nil {
			return success(c)
		}
		if err := config.Settings.SaveSelectedFeeds(c.Context(), request.Feeds); err != nil {
			log.WithError(err).Error("Error saving selected feeds")
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		return success(c)
	})

	app.Get("/api/stopwords", func(c *fiber.Ctx) error {
		words, err := config.Settings.CustomStopwords(c.Context())
		if err != nil {
			log.WithError(err).Error("Error reading custom stopwords")
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		if words == nil {
			words = []string{}
		}
		return c.JSON(stopwordsResponse{
			CustomStopwords: words,
			DefaultCount:    analysis.BuiltinStopwordCount(),
		})
	})

	app.Post("/api/stopwords", func(c *fiber.Ctx) error {
		var request stopwordsRequest
		if err := json.Unmarshal(c.Body(), &request); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		}
		if request.Stopwords == nil {
			return success(c)
		}
		if err := config.Settings.SaveCustomStopwords(c.Context(), *request.Stopwords); err != nil {
			log.WithError(err).Error("Error saving custom stopwords")
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		return success(c)
	})

	app.Get("/api/catalog", func(c *fiber.Ctx) error {
		selected := catalog
		if category := c.Query("category"); category != "" {
			selected = feeds.InCategory(catalog, category)
		}
		return c.JSON(catalogResponse{
			Categories: feeds.Categories(catalog),
			Feeds:      selected,
		})
	})

	app.Get("/api/analyze", func(c *fiber.Ctx) error {
		response, err := config.Analyzer.Run(c.Context())
		if err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(response)
	})

	app.Get("/api/history", func(c *fiber.Ctx) error {
		if config.History == nil {
			return c.JSON([]models.AnalysisRun{})
		}

		limit := c.QueryInt("limit", models.DefaultHistoryLimit)
		if limit < 1 {
			limit = models.DefaultHistoryLimit
		}
		if limit > models.MaxHistoryLimit {
			limit = models.MaxHistoryLimit
		}

		runs, err := config.History.ListRuns(c.Context(), limit)
		if err != nil {
			log.WithError(err).Error("Error listing analysis runs")
			return errorResponse(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(runs)
	})

	app.Delete("/api/events", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(200).SendString("OK")
	})

	app.Get("/api/events", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		events := make(chan models.AnalysisEvent, 10) // Buffered channel

		// Register the client
		bc.AddClient(key, events)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			pings := time.NewTicker(pingInterval)
			defer pings.Stop()
			defer func() {
				log.Infof("Cleaning up SSE stream for client: %s", key)
				bc.RemoveClient(key)
			}()

			streamEvents(w, key, events, pings.C)
		}))

		return nil
	})

	// Serve the browser UI
	app.Use("/", filesystem.New(filesystem.Config{
		Browse:     false,
		Index:      "index.html",
		Root:       http.FS(dist),
		PathPrefix: "/dist",
	}))

	return app
}

// streamEvents writes the init event and then pings and analysis events
// until the events channel is closed or the client goes away.
func streamEvents(w *bufio.Writer, key string, events <-chan models.AnalysisEvent, pings <-chan time.Time) {
	// Send initial event with client key
	fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
	if err := w.Flush(); err != nil {
		log.Errorf("Failed to send init event: %v", err)
		return
	}

	for {
		select {
		case <-pings:
			// Send keep-alive pings
			if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
				log.Warnf("Failed to send ping to client %s: %v", key, err)
				return
			}
			if err := w.Flush(); err != nil {
				log.Warnf("Failed to flush ping for client %s: %v", key, err)
				return
			}

		case event, ok := <-events:
			if !ok {
				log.Infof("Analysis channel closed for client %s", key)
				return
			}
			jsonEvent, err := json.Marshal(event)
			if err != nil {
				log.Errorf("Error marshalling analysis event for client %s: %v", key, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: analysis\ndata: %s\n\n", jsonEvent); err != nil {
				log.Warnf("Failed to send analysis event to client %s: %v", key, err)
				return
			}
			if err := w.Flush(); err != nil {
				log.Warnf("Failed to flush analysis event for client %s: %v", key, err)
				return
			}
		}
	}
}
