package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccfrost/albumdrop/internal/config"
	"github.com/ccfrost/albumdrop/internal/flickr"
	"github.com/ccfrost/albumdrop/internal/gphotos"
	"github.com/ccfrost/albumdrop/internal/lib"
	"github.com/ccfrost/albumdrop/internal/logging"
	"github.com/ccfrost/albumdrop/internal/server"
)

const albumdrop = "albumdrop"

// allowUnconfigured marks commands that start without backend credentials.
const allowUnconfigured = "allow-unconfigured"

var logger = logging.New(albumdrop)

func main() {
	var configPath string
	var cfg config.AlbumdropConfig

	rootCmd := cobra.Command{
		Use:          albumdrop,
		Short:        "Upload photos from URLs into albums",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Annotations[allowUnconfigured] != "" {
				if err := cfg.ValidateBasics(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
				return nil
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")

	serveCmd := cobra.Command{
		Use:         "serve",
		Short:       "Serve the upload endpoint over HTTP",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{allowUnconfigured: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := cmd.Flags().GetString("addr")
			if err != nil {
				return fmt.Errorf("invalid addr flag: %w", err)
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			l, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			return server.New(svc, cfg).Serve(ctx, l)
		},
	}
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (defaults to listen_addr from the config)")
	rootCmd.AddCommand(&serveCmd)

	uploadCmd := cobra.Command{
		Use:   "upload <url> <album-path>",
		Short: "Upload one photo from a URL",
		Long: `Download the photo at <url>, upload it privately and add it to the album
named by <album-path>. An album path "Event/Album" becomes the album
"Event -- Album", which is created if it does not exist.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := cmd.Flags().GetString("title")
			if err != nil {
				return fmt.Errorf("invalid title flag: %w", err)
			}
			description, err := cmd.Flags().GetString("description")
			if err != nil {
				return fmt.Errorf("invalid description flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			result, err := svc.UploadPhotoFromURL(ctx, lib.UploadRequest{
				SourceURL:   args[0],
				Title:       title,
				Description: description,
				AlbumTitle:  server.AlbumTitleFromPath(args[1]),
				Progress:    lib.DownloadProgress("Downloading"),
			})
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			verb := "Added to"
			if result.AlbumCreated {
				verb = "Created"
			}
			fmt.Printf("Uploaded photo %s. %s album %q (%s).\n", result.PhotoID, verb, result.AlbumTitle, result.AlbumID)
			photoURL, albumURL := svc.Links(result)
			if photoURL != "" {
				fmt.Println("Photo:", photoURL)
			}
			if albumURL != "" {
				fmt.Println("Album:", albumURL)
			}
			return nil
		},
	}
	uploadCmd.Flags().StringP("title", "t", "", "Photo title (defaults to a timestamp)")
	uploadCmd.Flags().StringP("description", "d", "", "Photo description (defaults to the album and date)")
	rootCmd.AddCommand(&uploadCmd)

	albumsCmd := cobra.Command{
		Use:   "albums",
		Short: "List the albums on the photo service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}

			albums := svc.Albums().GetAlbums(ctx, true)
			sort.Slice(albums, func(i, j int) bool {
				return strings.ToLower(albums[i].Title) < strings.ToLower(albums[j].Title)
			})
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE")
			for _, a := range albums {
				fmt.Fprintf(w, "%s\t%s\n", a.ID, a.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d albums\n", len(albums))
			return nil
		},
	}
	rootCmd.AddCommand(&albumsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newService connects to the configured backend. With settings missing it
// returns a service whose remote calls fail, so that the server can still
// report its health.
func newService(ctx context.Context, cfg config.AlbumdropConfig) (*lib.Service, error) {
	if missing := cfg.MissingSettings(); len(missing) > 0 {
		logger.Warn("Backend is not configured",
			slog.String("backend", cfg.Backend),
			slog.String("missing", strings.Join(missing, ", ")))
		return lib.NewService(cfg, lib.Unconfigured{Missing: missing}), nil
	}

	switch cfg.Backend {
	case config.BackendGooglePhotos:
		httpClient, err := gphotos.NewHTTPClient(ctx, cfg.GooglePhotos)
		if err != nil {
			return nil, err
		}
		client, err := gphotos.NewClient(httpClient)
		if err != nil {
			return nil, err
		}
		return lib.NewService(cfg, client), nil
	default:
		client, err := flickr.NewClient(cfg.Flickr, 0)
		if err != nil {
			return nil, err
		}
		return lib.NewService(cfg, client), nil
	}
}
