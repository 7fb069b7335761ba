package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ajay-develops/spotify-clone/internal/auth"
	"github.com/ajay-develops/spotify-clone/internal/config"
	"github.com/ajay-develops/spotify-clone/internal/db"
	"github.com/ajay-develops/spotify-clone/internal/identity"
	"github.com/ajay-develops/spotify-clone/internal/song"
	"github.com/ajay-develops/spotify-clone/internal/storage"
)

var audioSuffixes = []string{".mp3", ".wav", ".m4a", ".ogg"}

// seedIdentity authenticates the seeder as a fixed account, created once
// per run.
type seedIdentity struct {
	userID string
}

func (s seedIdentity) Verify(ctx context.Context) (identity.Identity, error) {
	return identity.Identity{UserID: s.userID, AccountType: auth.AccountAnonymous}, nil
}

func seedCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Upload every audio file in a directory through the upload flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Directory containing audio files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "cover",
				Usage: "Fallback cover image for files without embedded artwork",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Fallback artist for files without an artist tag",
				Value: "Unknown Artist",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Parallel uploads",
				Value: 4,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSeed(ctx, cfg, logger, seedOptions{
				dir:         cmd.String("dir"),
				cover:       cmd.String("cover"),
				artist:      cmd.String("artist"),
				concurrency: int(cmd.Int("concurrency")),
			})
		},
	}
}

type seedOptions struct {
	dir         string
	cover       string
	artist      string
	concurrency int
}

func runSeed(ctx context.Context, cfg *config.Config, logger *log.Logger, opts seedOptions) error {
	files, err := audioFiles(opts.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no audio files found", "dir", opts.dir)
		return nil
	}

	var fallbackCover []byte
	var fallbackCoverName string
	if opts.cover != "" {
		fallbackCover, err = os.ReadFile(opts.cover)
		if err != nil {
			return fmt.Errorf("read cover %s: %w", opts.cover, err)
		}
		fallbackCoverName = filepath.Base(opts.cover)
	}

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("seeding", "files", len(files), "concurrency", opts.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			created, err := seedOne(gctx, svc, path, opts.artist, fallbackCover, fallbackCoverName)
			if err != nil {
				logger.Error("seed failed", "file", path, "err", err)
				return fmt.Errorf("seed %s: %w", path, err)
			}
			logger.Info("seeded", "id", created.ID, "title", created.Title, "artist", created.Artist)
			return nil
		})
	}

	return g.Wait()
}

// seedOne uploads one audio file. Title, artist, and cover art come from the
// file's tags when present; the upload itself goes through the same saga as
// an API upload, so a failure leaves no orphaned objects behind.
func seedOne(ctx context.Context, svc *song.Service, path, fallbackArtist string, fallbackCover []byte, fallbackCoverName string) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artist := fallbackArtist
	cover := fallbackCover
	coverName := fallbackCoverName

	if meta, err := tag.ReadFrom(f); err == nil {
		if meta.Title() != "" {
			title = meta.Title()
		}
		if meta.Artist() != "" {
			artist = meta.Artist()
		}
		if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
			cover = pic.Data
			coverName = "embedded." + pic.Ext
		}
	}
	if len(cover) == 0 {
		return nil, fmt.Errorf("no embedded artwork and no --cover fallback")
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return svc.Upload(ctx, song.UploadInput{
		Title:  title,
		Artist: artist,
		Song: song.File{
			Name:   filepath.Base(path),
			Size:   info.Size(),
			Reader: f,
		},
		Image: song.File{
			Name:   coverName,
			Size:   int64(len(cover)),
			Reader: bytes.NewReader(cover),
		},
	})
}

// buildService wires the same stack as cmd/api, plus a one-off anonymous
// account to own the seeded songs.
func buildService(ctx context.Context, cfg *config.Config) (*song.Service, func(), error) {
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	audioStore, err := storage.NewMinioStorage(
		cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey,
		cfg.StorageSongsBucket, cfg.StoragePublicBase, cfg.StorageUseSSL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	imageStore, err := storage.NewMinioStorage(
		cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey,
		cfg.StorageImagesBucket, cfg.StoragePublicBase, cfg.StorageUseSSL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	seeder, err := auth.NewRepository(pool).CreateAnonymous(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create seeder account: %w", err)
	}

	svc := song.NewService(song.NewRepository(pool), audioStore, imageStore, seedIdentity{userID: seeder.ID})
	return svc, pool.Close, nil
}

func audioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, s := range audioSuffixes {
			if ext == s {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return files, nil
}
