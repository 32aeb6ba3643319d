package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/pagetext"
)

// maxInputBytes bounds what summarize and keywords will read
const maxInputBytes = 10 << 20

// pageFlags are shared by the commands that analyze a page
type pageFlags struct {
	url  string
	demo bool
	json bool
	copy bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Page URL, used for the favicon and as the task link")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "Use the built-in sample job posting")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Print only the clipboard text")
}

// load reads the page named by args[0], or stdin when it is "-" or absent
func (f *pageFlags) load(cmd *cobra.Command, args []string) (models.PageContent, error) {
	if f.demo {
		return pagetext.DemoPage(), nil
	}

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	var (
		r    io.Reader
		name string
	)
	if path == "-" {
		r, name = cmd.InOrStdin(), ""
	} else {
		file, err := os.Open(path)
		if err != nil {
			return models.PageContent{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() {
			_ = file.Close()
		}()
		r, name = file, path
	}
	return ReadPage(r, name, f.url)
}

// ReadPage turns raw input into page content. HTML goes through pagetext;
// anything else is taken as the page text with the file name as its title.
func ReadPage(r io.Reader, name, pageURL string) (models.PageContent, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return models.PageContent{}, fmt.Errorf("read input: %w", err)
	}

	if looksLikeHTML(name, data) {
		return pagetext.Extract(bytes.NewReader(data), pageURL)
	}

	title := pagetext.DefaultTitle
	if name != "" {
		title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return models.PageContent{Text: string(data), Title: title, URL: pageURL}, nil
}

func looksLikeHTML(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) ||
		bytes.HasPrefix(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<body"))
}
