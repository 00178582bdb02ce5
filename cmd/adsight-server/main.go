package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"adsight/internal/campaign"
	"adsight/internal/chunker"
	"adsight/internal/config"
	"adsight/internal/domain"
	"adsight/internal/embedding"
	"adsight/internal/embedding/openai"
	"adsight/internal/embedding/tfidf"
	"adsight/internal/httpx"
	"adsight/internal/index"
	"adsight/internal/router"
	"adsight/internal/service"
	"adsight/internal/summarizer"
	"adsight/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var cfg *config.AppConfig
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	emb := buildEmbedder(log, cfg)
	ch, err := chunker.NewTextChunker(cfg.Chunker.MaxChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		log.Fatal("invalid chunker config", zap.Error(err))
	}
	ix := index.New(emb, memory.NewStorage(), cfg.Store.PersistDir)
	eng := service.NewEngine(ch, ix, summarizer.NewFrequencySummarizer(), cfg.Retrieval.TopK)

	var records []domain.CampaignRecord
	if cfg.Data.CampaignsCSV != "" {
		records, err = campaign.Load(cfg.Data.CampaignsCSV)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn("no campaigns file; analytics questions will fail", zap.String("path", cfg.Data.CampaignsCSV))
			} else {
				log.Fatal("failed to load campaigns", zap.Error(err))
			}
		}
	}

	if err := eng.LoadKnowledgeBase(); err != nil {
		if errors.Is(err, index.ErrNotFound) {
			log.Warn("no persisted knowledge base; POST /v1/kb/build to create one", zap.String("dir", cfg.Store.PersistDir))
		} else {
			log.Fatal("failed to load knowledge base", zap.Error(err))
		}
	}

	handler := httpx.NewRouter(log, httpx.Deps{
		Records:    records,
		Dispatcher: router.NewDispatcher(records, eng),
		Engine:     eng,
		DocsGlob:   cfg.Data.DocsGlob,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("starting server", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}
}

func buildEmbedder(log *zap.Logger, cfg *config.AppConfig) embedding.Embedder {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatal("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatal("openai embedder init failed", zap.Error(err))
		}
		return client
	default:
		log.Fatal("unknown embedder", zap.String("type", cfg.Embedder.Type))
		return nil
	}
}
