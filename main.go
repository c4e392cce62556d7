package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/defesacivil-sl/boletim/config"
	"github.com/defesacivil-sl/boletim/handlers"
	"github.com/defesacivil-sl/boletim/middleware"
	"github.com/defesacivil-sl/boletim/pkg/storage"
	"github.com/defesacivil-sl/boletim/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}
	config.Connect()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := config.Migrations(config.DB); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}
	if err := config.SeedLookups(config.DB); err != nil {
		log.Printf("Warning: seeding encountered issues: %v", err)
	}
	if err := config.SeedAdminUser(config.DB); err != nil {
		log.Printf("Warning: admin seeding encountered issues: %v", err)
	}

	store, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("could not set up storage: %v", err)
	}

	handlers.Sessions = middleware.NewSessionProvider(config.DB)
	bh := handlers.NewBoletimHandler(handlers.NewBoletimService(config.DB, store))

	// /uploads only exists when serving off local disk; GCS serves its own URLs
	uploadsDir := ""
	if _, ok := store.(*storage.Local); ok {
		uploadsDir = "./uploads"
	}

	handler := routes.RegisterRoutes(bh, uploadsDir)
	handlerWithCORS := enableCORS(handler)
	log.Println("Server starting at port", port)
	log.Fatal(http.ListenAndServe(":"+port, handlerWithCORS))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
