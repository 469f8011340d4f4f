// ABOUTME: Listing mode: prints a directory's playlist without opening an audio device
// ABOUTME: Shows play order, phonetic sort key, companion cover and tags in a table

package main

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	"cover-player/library"
)

// RunList scans dir and writes the playlist it would play to w
func RunList(w io.Writer, dir string, workers int) error {
	root := library.NormalizePath(dir)

	paths, err := library.NewScanner(library.PinyinKey).Scan(root)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	debugf("[LIST] %s: %d tracks", root, len(paths))

	infos := library.ReadAllTrackInfo(paths, workers)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "#\tFile\tSort key\tCover\tArtist\tTitle"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(tw, "---\t----\t--------\t-----\t------\t-----"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for i, path := range paths {
		name := library.BaseName(path)

		cover := "-"
		if image, ok := library.CompanionImage(path); ok {
			cover = library.BaseName(image)
		}

		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(name, 40),
			truncate(library.PinyinKey(name), 30),
			truncate(cover, 30),
			truncate(infos[i].Artist, 20),
			truncate(infos[i].Title, 30),
		); err != nil {
			log.Printf("Warning: failed to write track %d: %v", i+1, err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	if _, err := fmt.Fprintf(w, "\n%d tracks in %s\n", len(paths), root); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}
