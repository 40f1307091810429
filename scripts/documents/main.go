package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/container"
	"github.com/USSTM/wms-backend/internal/storage"
)

var (
	uploadPtr = flag.String("upload", "", "Path to a JSON file to store as the document of the same name")
	getPtr    = flag.String("get", "", "Kind of document to retrieve")
	listPtr   = flag.Bool("list", false, "List reference documents and their sizes")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	store, err := container.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open reference store: %v", err)
	}
	defer store.Close()

	if *uploadPtr != "" {
		filePath := *uploadPtr
		body, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read file: %v", err)
		}

		name := filepath.Base(filePath)
		fmt.Printf("Uploading %s to %s store as %s...\n", filePath, cfg.Store.Backend, name)
		if err := store.Put(ctx, name, body); err != nil {
			log.Fatalf("Failed to upload document: %v", err)
		}

		fmt.Println("Upload successful!")
		return
	}

	if *getPtr != "" {
		kind := storage.Kind(*getPtr)
		if !kind.Valid() {
			log.Fatalf("Unknown document kind: %s", *getPtr)
		}

		body, err := store.Get(ctx, kind.Document())
		if err != nil {
			log.Fatalf("Failed to get document: %v", err)
		}

		if err := os.WriteFile(kind.Document(), body, 0o644); err != nil {
			log.Fatalf("Failed to save document: %v", err)
		}
		fmt.Printf("Document saved to %s\n", kind.Document())
		return
	}

	if *listPtr {
		fmt.Printf("Listing documents in %s store...\n", cfg.Store.Backend)
		fmt.Printf("%-30s %s\n", "Document", "Size")
		fmt.Println("----------------------------------------")
		for _, kind := range storage.Kinds() {
			body, err := store.Get(ctx, kind.Document())
			switch {
			case errors.Is(err, storage.ErrDocumentNotFound):
				fmt.Printf("%-30s %s\n", kind.Document(), "missing")
			case err != nil:
				log.Fatalf("Failed to read %s: %v", kind.Document(), err)
			default:
				fmt.Printf("%-30s %d\n", kind.Document(), len(body))
			}
		}

		if store.S3Service != nil {
			names, err := store.S3Service.ListDocuments(ctx)
			if err != nil {
				log.Fatalf("Failed to list objects: %v", err)
			}
			fmt.Printf("\nObjects in bucket %s: %d\n", cfg.AWS.Bucket, len(names))
			for _, name := range names {
				fmt.Printf("- %s\n", name)
			}
		}
		return
	}

	flag.Usage()
}
