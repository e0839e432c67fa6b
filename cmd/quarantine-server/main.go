// Package main is the entry point for the quarantine simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KrokodileDandy/quarantine-server/internal/config"
	"github.com/KrokodileDandy/quarantine-server/internal/engine"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/infra/storage"
	"github.com/KrokodileDandy/quarantine-server/internal/network"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/metrics"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/optimization"
)

// journalPersisterAdapter translates domain events to journal records.
type journalPersisterAdapter struct {
	journal *storage.Journal
}

func (a *journalPersisterAdapter) Append(event events.GameEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		payload = []byte("{}")
	}
	start := time.Now()
	err = a.journal.Append(context.Background(), storage.Record{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Actor:     event.Actor,
		Payload:   string(payload),
		GameDay:   event.GameDay,
	})
	metrics.Get().RecordJournalWrite(time.Since(start), err)
	return err
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	difficulty := flag.String("difficulty", "NORMAL", "difficulty profile: EASY, NORMAL or HARD")
	configPath := flag.String("config", "", "optional YAML file overriding the difficulty profiles")
	journalPath := flag.String("journal", "", "optional SQLite event journal path (empty disables journaling)")
	speed := flag.Int("speed", 1, "initial game speed multiplier")
	seed := flag.Int64("seed", 0, "RNG seed (0 = derive from wall clock)")
	flag.Parse()

	appLogger := logger.New()
	tuning := optimization.DefaultConfig()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			appLogger.Error("failed to load config: %v", err)
			os.Exit(1)
		}
	}
	profile, err := cfg.Profile(config.Difficulty(*difficulty))
	if err != nil {
		appLogger.Error("%v", err)
		os.Exit(1)
	}

	var persister events.EventPersister
	if *journalPath != "" {
		appLogger.Info("opening event journal %q", *journalPath)
		journal, err := storage.OpenJournal(*journalPath, tuning)
		if err != nil {
			appLogger.Error("failed to open journal: %v", err)
			os.Exit(1)
		}
		defer journal.Close()
		persister = &journalPersisterAdapter{journal: journal}
	}

	eventLog := events.NewEventLog(persister)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	appLogger.Info("bootstrapping %s session (seed %d)", *difficulty, rngSeed)
	session, err := engine.NewSession(profile, rngSeed, eventLog, appLogger)
	if err != nil {
		appLogger.Error("failed to build session: %v", err)
		os.Exit(1)
	}
	session.SetGameSpeed(*speed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.Run(ctx)

	appLogger.Info("bootstrapping WebSocket hub")
	hub := network.NewHub(appLogger, tuning)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, session, w, r, appLogger)
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.Snapshot())
	})

	mux.HandleFunc("/api/weekly", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.WeeklyHistory())
	})

	mux.HandleFunc("/api/skills", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.SkillCatalog())
	})

	type amountReq struct {
		Amount int `json:"amount"`
	}
	purchase := func(action func(int) bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var req amountReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			writeResult(w, action(req.Amount))
		}
	}
	mux.HandleFunc("/api/purchase/police", purchase(session.BuyPoliceOfficers))
	mux.HandleFunc("/api/purchase/healthworkers", purchase(session.BuyHealthWorkers))
	mux.HandleFunc("/api/purchase/testkits", purchase(session.BuyTestKitHWs))

	mux.HandleFunc("/api/purchase/cure", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeResult(w, session.IntroduceCure())
	})

	mux.HandleFunc("/api/skills/point", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeResult(w, session.BuySkillPoint())
	})

	mux.HandleFunc("/api/skills/activate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Skill string `json:"skill"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Skill == "" {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		writeResult(w, session.ActivateSkill(engine.SkillID(req.Skill)))
	})

	mux.HandleFunc("/api/measures/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		writeResult(w, session.ToggleMeasure(req.Code))
	})

	mux.HandleFunc("/api/speed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Speed int `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		session.SetGameSpeed(req.Speed)
		writeResult(w, true)
	})

	mux.HandleFunc("/metrics", metrics.Get().Handler())

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		log.Printf("[QUARANTINE-SERVER] HTTP API & WS server listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[QUARANTINE-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[QUARANTINE-SERVER] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(map[string]bool{"ok": ok})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The browser front end runs on its own dev server.
	},
}

// serveWs handles websocket requests from viewers.
func serveWs(hub *network.Hub, session *engine.Session, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(hub, conn, func() any { return session.Snapshot() })
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
