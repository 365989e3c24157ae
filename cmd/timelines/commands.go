package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pbaille/timelines/internal/api"
	"github.com/pbaille/timelines/internal/domain"
	"github.com/pbaille/timelines/internal/media"
)

// eventFlags are shared by add and edit
type eventFlags struct {
	note  string
	date  string
	tag   string
	media []string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.note, "note", "", "free-form note")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "event date, YYYY-MM-DD or RFC 3339 (default now)")
	cmd.Flags().StringVarP(&f.tag, "tag", "t", domain.DefaultTag, "category: "+strings.Join(domain.Tags(), ", "))
	cmd.Flags().StringArrayVarP(&f.media, "media", "m", nil, "image or video file to attach, or an existing URI (repeatable)")
}

// resolveMedia copies local files into the media library; URIs are kept as given
func resolveMedia(refs []string) ([]string, error) {
	if len(refs) == 0 {
		return []string{}, nil
	}

	var lib *media.Library
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if media.IsURI(ref) {
			out = append(out, ref)
			continue
		}
		if lib == nil {
			var err error
			if lib, err = getLibrary(); err != nil {
				return nil, err
			}
		}
		uri, err := lib.Import(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, uri)
	}
	return out, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id: %s", arg)
	}
	return id, nil
}

func addCmd() *cobra.Command {
	var flags eventFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new event",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.EventInput{
				Title: strings.Join(args, " "),
				Note:  flags.note,
				Date:  time.Now(),
				Tag:   flags.tag,
				Media: flags.media,
			}
			if flags.date != "" {
				date, err := domain.ParseDate(flags.date)
				if err != nil {
					return err
				}
				in.Date = date
			}
			if err := in.Validate(); err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			uris, err := resolveMedia(in.Media)
			if err != nil {
				return err
			}

			id, err := s.AddEvent(in.Title, in.Note, in.Date, in.Tag, uris)
			if err != nil {
				return errors.Wrap(err, "add event")
			}

			fmt.Printf("Added event %d: %s\n", id, truncate(in.Title, 60))
			if len(uris) > 0 {
				fmt.Printf("Attached %d media file(s)\n", len(uris))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func listCmd() *cobra.Command {
	var (
		filter domain.Filter
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			events := s.SearchEvents(filter)
			if len(events) == 0 {
				fmt.Println("No events found. Use 'timelines add' to create one.")
				return nil
			}
			if limit > 0 && len(events) > limit {
				events = events[:limit]
			}

			now := time.Now()
			for _, e := range events {
				marker := " "
				if e.IsFuture(now) {
					marker = "*"
				}
				line := fmt.Sprintf("%s %4d  %s  %-8s  %s", marker, e.ID, e.Date.Local().Format("2006-01-02"), e.Tag, truncate(e.Title, 50))
				if len(e.Media) > 0 {
					line += fmt.Sprintf("  [%d media]", len(e.Media))
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Tag, "tag", "t", domain.TagAll, "only show this category")
	cmd.Flags().StringVarP(&filter.Query, "search", "s", "", "only show titles containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of events to show (0 = all)")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show event details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.GetEvent(id)
			if err != nil {
				return err
			}

			when := "past"
			if e.IsFuture(time.Now()) {
				when = "upcoming"
			}

			fmt.Printf("ID:    %d\n", e.ID)
			fmt.Printf("Title: %s\n", e.Title)
			fmt.Printf("Date:  %s (%s)\n", e.Date.Local().Format("2006-01-02 15:04"), when)
			fmt.Printf("Tag:   %s\n", e.Tag)
			if e.Note != "" {
				fmt.Printf("Note:\n%s\n", e.Note)
			}
			if len(e.Media) > 0 {
				fmt.Printf("\nMedia (%d):\n", len(e.Media))
				for _, uri := range e.Media {
					fmt.Printf("  - [%s] %s\n", media.KindOf(uri), uri)
				}
			}
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var (
		flags      eventFlags
		title      string
		clearMedia bool
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an event; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			current, err := s.GetEvent(id)
			if err != nil {
				return err
			}

			in := domain.EventInput{
				Title: current.Title,
				Note:  current.Note,
				Date:  current.Date,
				Tag:   current.Tag,
				Media: current.Media,
			}
			changed := cmd.Flags().Changed
			if changed("title") {
				in.Title = title
			}
			if changed("note") {
				in.Note = flags.note
			}
			if changed("tag") {
				in.Tag = flags.tag
			}
			if changed("date") {
				if in.Date, err = domain.ParseDate(flags.date); err != nil {
					return err
				}
			}
			if clearMedia {
				in.Media = []string{}
			}
			if changed("media") {
				if in.Media, err = resolveMedia(flags.media); err != nil {
					return err
				}
			}
			if err := in.Validate(); err != nil {
				return err
			}

			updated, err := s.UpdateEvent(id, in.Title, in.Note, in.Date, in.Tag, in.Media)
			if err != nil {
				return errors.Wrap(err, "update event")
			}
			if !updated {
				fmt.Printf("Event %d no longer exists\n", id)
				return nil
			}
			fmt.Printf("Updated event %d\n", id)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().BoolVar(&clearMedia, "clear-media", false, "remove all attached media")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.DeleteEvent(id)
			if err != nil {
				return errors.Wrap(err, "delete event")
			}
			if !deleted {
				fmt.Printf("No event with id %d\n", id)
				return nil
			}
			fmt.Printf("Deleted event %d\n", id)
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List event categories",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range domain.Tags() {
				fmt.Println(t)
			}
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			lib, err := getLibrary()
			if err != nil {
				return err
			}

			return api.New(s, lib, cfg.Server.Address).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}
