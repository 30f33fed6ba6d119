package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/goodbooks/goodbooks-api/books"
	"github.com/goodbooks/goodbooks-api/gateway"
	"github.com/goodbooks/goodbooks-api/store"
	"github.com/goodbooks/goodbooks-api/utils"
)

var logrusLogger = logrus.New()

// GetMainEngine wires the middleware chain and the route table.
func GetMainEngine(cfg Config, api *books.Service) *gin.Engine {

	route := gin.New()
	route.HandleMethodNotAllowed = true

	route.Use(gin.Recovery())
	route.Use(gateway.RequestID())
	route.Use(gateway.RequestLogger(logrusLogger, gateway.LogSamplingConfig{}))
	route.Use(gateway.Instrumentation())
	route.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", gateway.APIKeyHeader, gateway.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(route)

	route.GET("/healthz", api.Healthz)
	route.GET("/stats", api.Stats)

	booksGroup := route.Group("/books")
	{
		booksGroup.GET("", api.ListBooks)
		booksGroup.GET("/:book_id", api.GetBook)
		booksGroup.GET("/:book_id/tags", api.GetBookTags)
		booksGroup.GET("/:book_id/ratings/summary", api.GetRatingSummary)
	}

	route.GET("/authors/:author_name/books", api.GetAuthorBooks)
	route.GET("/tags", api.ListTags)
	route.GET("/users/:user_id/to-read", api.GetUserToRead)

	ratings := route.Group("/ratings")
	ratings.Use(gateway.RequireAPIKey(gateway.APIKeyConfig{Key: cfg.APIKey}))
	{
		ratings.POST("", api.UpsertRating)
	}

	return route
}

func setupLogger(cfg Config) {
	if cfg.LogFile != "" {
		logrusLogger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	} else {
		logrusLogger.SetOutput(os.Stderr)
	}
	if cfg.Debug {
		logrusLogger.SetLevel(logrus.DebugLevel)
		logrusLogger.SetReportCaller(true)
	} else {
		logrusLogger.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
}

func main() {
	cfg := loadConfig()
	setupLogger(cfg)

	db, err := store.Connect(context.Background(), cfg.MongoURI, cfg.DBName)
	if err != nil {
		logrusLogger.Fatalf("error in connecting to db: %v", err)
	}

	redisClient := utils.GetRedis(cfg.RedisAddr)
	if err := redisClient.Ping().Err(); err != nil {
		// cache and counters are optional; the API serves without them
		logrusLogger.WithFields(logrus.Fields{
			"addr":    cfg.RedisAddr,
			"message": err.Error(),
		}).Warn("redis unreachable, caching disabled")
		redisClient = nil
	}

	api := &books.Service{Store: db, Redis: redisClient, Logger: logrusLogger}

	logrusLogger.Fatal(GetMainEngine(cfg, api).Run(cfg.addr()))
}
