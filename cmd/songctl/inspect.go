package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/urfave/cli/v3"

	"github.com/ajay-develops/spotify-clone/internal/config"
	"github.com/ajay-develops/spotify-clone/internal/db"
	"github.com/ajay-develops/spotify-clone/internal/song"
)

func checkCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Print the contents of the songs table",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pool, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			songs, err := song.NewRepository(pool).List(ctx)
			if err != nil {
				return err
			}

			logger.Info("songs table", "rows", len(songs))
			for _, s := range songs {
				owner := "(anonymous)"
				if s.UserID != nil {
					owner = *s.UserID
				}
				fmt.Printf("%6d  %-30s  %-20s  %s  owner=%s\n",
					s.ID, s.Title, s.Artist, s.CreatedAt.Format("2006-01-02 15:04"), owner)
			}
			return nil
		},
	}
}

func bucketsCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "buckets",
		Usage: "List objects in the songs and images buckets",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
				Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
				Secure: cfg.StorageUseSSL,
			})
			if err != nil {
				return fmt.Errorf("create minio client: %w", err)
			}

			for _, bucket := range []string{cfg.StorageSongsBucket, cfg.StorageImagesBucket} {
				logger.Info("listing bucket", "bucket", bucket)
				count := 0
				for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
					if obj.Err != nil {
						return fmt.Errorf("list %s: %w", bucket, obj.Err)
					}
					fmt.Printf("  %s/%s  (%d bytes)\n", bucket, obj.Key, obj.Size)
					count++
				}
				logger.Info("done", "bucket", bucket, "objects", count)
			}
			return nil
		},
	}
}
