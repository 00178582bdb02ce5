package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"adsight/internal/campaign"
	"adsight/internal/chunker"
	"adsight/internal/config"
	"adsight/internal/domain"
	"adsight/internal/embedding"
	"adsight/internal/embedding/openai"
	"adsight/internal/embedding/tfidf"
	"adsight/internal/index"
	"adsight/internal/router"
	"adsight/internal/service"
	"adsight/internal/summarizer"
	"adsight/internal/tui"
	"adsight/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		question string
		topK     int
		ingest   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/adsight/config.yaml if not provided)")
	flag.StringVar(&question, "question", "", "One-shot question; prints the answer and exits")
	flag.IntVar(&topK, "k", 0, "Number of passages to retrieve (default from config)")
	flag.BoolVar(&ingest, "ingest", false, "Rebuild the knowledge base from the given .txt files before answering")
	flag.Parse()
	inputs := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}

	emb := buildEmbedder(cfg)
	ch, err := chunker.NewTextChunker(cfg.Chunker.MaxChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunker config: %v", err)
	}
	ix := index.New(emb, memory.NewStorage(), cfg.Store.PersistDir)
	eng := service.NewEngine(ch, ix, summarizer.NewFrequencySummarizer(), cfg.Retrieval.TopK)

	var records []domain.CampaignRecord
	if cfg.Data.CampaignsCSV != "" {
		records, err = campaign.Load(cfg.Data.CampaignsCSV)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("no campaigns file at %s; analytics questions will fail", cfg.Data.CampaignsCSV)
			} else {
				log.Fatalf("failed to load campaigns: %v", err)
			}
		}
	}

	summary := prepareKnowledgeBase(eng, cfg, ingest, inputs)
	dispatcher := router.NewDispatcher(records, eng)

	if question != "" {
		ans, err := dispatcher.Ask(question, topK)
		if err != nil {
			log.Fatalf("failed to answer: %v", err)
		}
		fmt.Println(ans.Text)
		return
	}

	m := tui.New(dispatcher, summary, topK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildEmbedder(cfg *config.AppConfig) embedding.Embedder {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil
	}
}

// prepareKnowledgeBase rebuilds the index when asked to, otherwise loads
// the persisted one. A missing snapshot is not fatal; knowledge questions
// simply report the uninitialized index.
func prepareKnowledgeBase(eng *service.Engine, cfg *config.AppConfig, ingest bool, inputs []string) string {
	patterns := inputs
	if len(patterns) == 0 && cfg.Data.DocsGlob != "" {
		patterns = []string{cfg.Data.DocsGlob}
	}
	if ingest || len(inputs) > 0 {
		if len(patterns) == 0 {
			log.Fatalf("-ingest requires .txt files or a configured docs_glob")
		}
		docs, err := service.ReadDocuments(patterns)
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		summary, err := eng.BuildKnowledgeBase(docs)
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		return summary
	}
	if err := eng.LoadKnowledgeBase(); err != nil {
		if errors.Is(err, index.ErrNotFound) {
			log.Printf("no knowledge base at %s; run with -ingest to build one", cfg.Store.PersistDir)
			return ""
		}
		log.Fatalf("failed to load knowledge base: %v", err)
	}
	return ""
}
