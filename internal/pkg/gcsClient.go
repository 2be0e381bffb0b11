package client

import (
	"context"
	"log"

	"cloud.google.com/go/storage"
)

func GCSClient(ctx context.Context) *storage.Client {
	client, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatalf("error to create the GCS client: %v", err)
	}
	return client
}
