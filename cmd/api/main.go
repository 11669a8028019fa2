package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"pageforge/internal/builder"
	"pageforge/internal/config"
	"pageforge/internal/docstore"
	"pageforge/internal/imagegen"
	"pageforge/internal/llm"
	"pageforge/internal/llmclient"
	"pageforge/internal/server"
	"pageforge/internal/server/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base, err := llmclient.NewGeminiClient(ctx, cfg.LLM.Model)
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}
	strongBase, err := llmclient.NewGeminiClient(ctx, cfg.LLM.StrongModel)
	if err != nil {
		log.Fatalf("init strong llm client: %v", err)
	}
	mws := []llm.Middleware{
		llm.WithLogging(nil),
		llm.Retry(cfg.LLM.MaxAttempts, cfg.LLM.RetryBase),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
		llm.WithTimeout(cfg.LLM.CallTimeout),
	}
	weak := llm.Wrap(base, mws...)
	strong := llm.Wrap(strongBase, mws...)

	imageModel, err := imagegen.NewGeminiImageModel(ctx, cfg.Image.Model)
	if err != nil {
		log.Fatalf("init image model: %v", err)
	}
	var remote imagegen.BlobStore
	if cfg.Image.Endpoint != "" {
		s3, err := imagegen.NewS3Store(imagegen.S3Config{
			Endpoint:  cfg.Image.Endpoint,
			Region:    cfg.Image.Region,
			AccessKey: cfg.Image.AccessKey,
			SecretKey: cfg.Image.SecretKey,
			Bucket:    cfg.Image.Bucket,
			UseSSL:    cfg.Image.UseSSL,
		})
		if err != nil {
			log.Printf("image bucket unavailable, using local storage: %v", err)
		} else {
			remote = s3
		}
	}
	generator := &imagegen.Generator{
		Model:    imageModel,
		LLM:      weak,
		Store:    remote,
		Fallback: &imagegen.LocalStore{Root: cfg.Image.LocalDir},
	}

	var images *docstore.Store
	if cfg.DatabaseDSN != "" {
		images, err = docstore.NewPostgres(cfg.DatabaseDSN)
		if err != nil {
			log.Printf("image store unavailable, persistence disabled: %v", err)
			images = nil
		} else {
			defer images.Close()
		}
	}

	pipeline := &builder.Pipeline{
		Planner:  &builder.Planner{LLM: weak, Strong: strong},
		Sections: &builder.SectionProcessor{LLM: weak, Strong: strong, Images: imageSynth{gen: generator}},
	}
	if images != nil {
		pipeline.Store = imageDocs{store: images}
	}

	api := &apiServer{pipeline: pipeline, images: images}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/build", api.handleBuild)
	mux.HandleFunc("/api/build/ws", api.handleBuildWS)
	mux.HandleFunc("/api/images/recent", api.handleRecentImages)

	srv := server.New(cfg.Port, middleware.CORS(mux))
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
