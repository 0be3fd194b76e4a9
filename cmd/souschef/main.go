// Package main is the entry point for the SousChef CLI: an interactive
// cooking-assistant chat plus an HTTP API server over the same core.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/souschef-agent/internal/adapters/http"
	"github.com/PabloGalante/souschef-agent/internal/adapters/llm"
	"github.com/PabloGalante/souschef-agent/internal/adapters/recipes"
	firestorestore "github.com/PabloGalante/souschef-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/souschef-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/souschef-agent/internal/app/agentflow"
	"github.com/PabloGalante/souschef-agent/internal/app/conversation"
	"github.com/PabloGalante/souschef-agent/internal/app/tools"
	"github.com/PabloGalante/souschef-agent/internal/config"
	"github.com/PabloGalante/souschef-agent/internal/domain"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "souschef",
		Short: "SousChef, an AI cooking assistant",
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the SousChef HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			svc, err := buildService(ctx, cfg)
			if err != nil {
				return err
			}

			handler := httpadapter.NewServer(svc)
			addr := ":" + cfg.Port
			log.Println("SousChef API listening on", addr)
			return http.ListenAndServe(addr, handler)
		},
	}
}

func newChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with SousChef in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			svc, err := buildService(ctx, cfg)
			if err != nil {
				return err
			}

			return runChat(ctx, svc, domain.UserID(userID))
		},
	}

	cmd.Flags().StringVar(&userID, "user", "local", "user id for the chat session")
	return cmd
}

// buildService wires storage, LLM, tools and the orchestrator from config.
func buildService(ctx context.Context, cfg *config.Config) (*conversation.Service, error) {
	var completions domain.CompletionClient
	if cfg.UseMockLLM {
		log.Println("[LLM] Using mock completion client")
		completions = llm.NewMockClient()
	} else {
		log.Println("[LLM] Using Vertex completion client")
		client, err := llm.NewGenAIClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("initializing Vertex client: %w", err)
		}
		completions = client
	}
	completions = llm.NewRetrying(completions, cfg.RetryAttempts)

	var (
		sessionStore domain.SessionStore
		memoryStore  domain.MemoryStore
	)
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.MaxHistoryTurns)
		if err != nil {
			return nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		// 1 store, implements 2 interfaces
		sessionStore = store
		memoryStore = store
	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		memoryStore = memstore.NewMemoryStore(cfg.MaxHistoryTurns)
	}

	dataset, err := recipes.Load(cfg.RecipeDataPath)
	if err != nil {
		return nil, err
	}

	extractor := tools.NewExtractor(completions)

	registry := tools.NewRegistry()
	if err := registry.Register(extractor); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewRecipeSearch(dataset, cfg.MaxRecipeResults)); err != nil {
		return nil, err
	}

	orchestrator, err := agentflow.New(cfg.Orchestrator, agentflow.Deps{
		Completions:     completions,
		Registry:        registry,
		Memory:          memoryStore,
		Extractor:       extractor,
		MaxToolRounds:   cfg.MaxToolRounds,
		MaxHistoryTurns: cfg.MaxHistoryTurns,
	})
	if err != nil {
		return nil, err
	}

	return conversation.NewService(orchestrator, sessionStore, memoryStore), nil
}

const chatBanner = `
Welcome to SousChef, your cooking assistant.

Things you can try:
  "Find gluten-free dinner recipes under 30 minutes"
  "I have salmon, lemon, and asparagus"
  "Show me easy vegan Italian recipes"

Commands:
  exit, quit, bye   end the session
  clear             reset conversation memory
  preferences       show your saved preferences
  help, ?           show this message
`

func runChat(ctx context.Context, svc *conversation.Service, userID domain.UserID) error {
	session, err := svc.StartSession(ctx, conversation.StartSessionInput{
		UserID: userID,
		Title:  "Terminal chat",
	})
	if err != nil {
		return err
	}

	fmt.Print(chatBanner, "\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "bye", "goodbye":
			printSessionSummary(ctx, svc, session.ID)
			fmt.Println("Happy cooking!")
			return nil
		case "clear":
			if err := svc.ResetMemory(ctx, session.ID); err != nil {
				fmt.Println("could not reset memory:", err)
				continue
			}
			fmt.Println("Conversation memory cleared. Starting fresh!")
			continue
		case "preferences":
			printPreferences(ctx, svc, session.ID)
			continue
		case "help", "?":
			fmt.Print(chatBanner, "\n")
			continue
		}

		turn, err := svc.SendMessage(ctx, conversation.SendMessageInput{
			SessionID: session.ID,
			Utterance: input,
		})
		if err != nil {
			fmt.Println("something went wrong:", err)
			continue
		}

		fmt.Println("\nsouschef>", turn.Response)
		fmt.Println()
	}
}

func printSessionSummary(ctx context.Context, svc *conversation.Service, id domain.SessionID) {
	turns, err := svc.History(ctx, id, 0)
	if err != nil {
		return
	}

	seen := make(map[string]bool)
	var toolsUsed []string
	for _, t := range turns {
		for _, inv := range t.Invocations {
			if !seen[inv.Tool] {
				seen[inv.Tool] = true
				toolsUsed = append(toolsUsed, inv.Tool)
			}
		}
	}

	fmt.Println("\nSession summary:")
	fmt.Println("  turns:", len(turns))
	if len(toolsUsed) > 0 {
		fmt.Println("  tools used:", strings.Join(toolsUsed, ", "))
	} else {
		fmt.Println("  tools used: none")
	}
}

func printPreferences(ctx context.Context, svc *conversation.Service, id domain.SessionID) {
	prefs, err := svc.Preferences(ctx, id)
	if err != nil {
		fmt.Println("could not load preferences:", err)
		return
	}
	if prefs.IsEmpty() {
		fmt.Println("No preferences saved yet.")
		return
	}
	fmt.Println("Your current preferences:", prefs.Summary())
}
