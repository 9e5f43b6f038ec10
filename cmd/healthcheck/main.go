package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"time"

	"settlement_console/internal/avatar"
	"settlement_console/internal/chatbot"
	"settlement_console/internal/config"
	"settlement_console/internal/models"
	"settlement_console/internal/services"
)

// healthcheck checks that the console can reach its backend and assistant service.
func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	msg := flag.String("msg", "", "also send this text to character chat")
	speak := flag.Bool("tts", false, "also synthesize the reply")
	timeout := flag.Duration("timeout", 15*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend := services.NewBackend(services.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.Timeout))
	participants, err := backend.ListParticipants(ctx)
	if err != nil {
		log.Fatalf("Backend %s unreachable: %v", cfg.Backend.BaseURL, err)
	}
	projects, err := backend.ListProjects(ctx)
	if err != nil {
		log.Fatalf("Failed to list projects: %v", err)
	}
	log.Printf("Backend OK: %d participants, %d projects", len(participants), len(projects))

	var page *url.URL
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		page = u
	}
	base := chatbot.ResolveAPIBase(cfg.Assistant.BaseURL, page)
	assistantAPI := services.NewAPIClient(base, cfg.Backend.Timeout)

	for _, p := range avatar.Characters() {
		data, err := assistantAPI.Download(ctx, base+p.ModelPath)
		if err != nil {
			log.Printf("Model %s unavailable: %v", p.ModelPath, err)
			continue
		}
		info, err := avatar.ParseGLB(data)
		if err != nil {
			log.Printf("Model %s is not a valid GLB: %v", p.ModelPath, err)
			continue
		}
		log.Printf("Model %s OK: %d bytes, clips %v", p.ModelPath, len(data), info.Clips)
	}

	if *msg == "" {
		return
	}
	assistant := services.NewAssistantService(assistantAPI)
	reply, err := assistant.CharacterChat(ctx, models.CharacterChatRequest{
		Message:   *msg,
		Character: cfg.Assistant.Character,
		Model:     cfg.Assistant.Model,
	})
	if err != nil {
		log.Fatalf("Character chat failed: %v", err)
	}
	log.Printf("%s: %s", cfg.Assistant.Character, reply)

	if *speak {
		audio, err := assistant.Synthesize(ctx, chatbot.CleanForSpeech(reply), cfg.Assistant.Character)
		if err != nil {
			log.Fatalf("Speech synthesis failed: %v", err)
		}
		log.Printf("Speech OK: %d bytes of audio", len(audio))
	}
}
